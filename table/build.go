package table

import (
	"github.com/corvid-works/glrforge/automaton"
	"github.com/corvid-works/glrforge/grammar"
	"github.com/corvid-works/glrforge/internal/sparsetab"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("glrforge.table")
}

// Build constructs ACTION/GOTO tables for c under opts. It always
// succeeds: unresolved conflicts are recorded in the returned Table's
// Conflicts and every candidate action survives in its cell for the GLR
// runtime to fork on; rejecting ambiguous grammars outright is left to
// callers who want a deterministic-LALR(1)-only pipeline.
func Build(g *grammar.Grammar, a *grammar.Analysis, c *automaton.CFSM, opts Options) *Table {
	var la *Lookaheads
	switch opts.Lookahead {
	case LR0:
		la = ComputeLR0(g, c)
	default:
		la = ComputeLALR1(g, a, c)
	}

	t := &Table{
		Grammar:   g,
		Automaton: c,
		action:    sparsetab.New(c.NumStates(), g.Symbols.NumTerminals(), -1),
		goExists:  sparsetab.New(c.NumStates(), g.Symbols.NumNonterminals(), -1),
		actions:   map[int32]Action{},
	}

	for i := 0; i < c.NumStates(); i++ {
		sid := automaton.StateID(i)
		state := c.State(sid)

		for _, tr := range c.Transitions(sid) {
			if tr.Symbol.IsTerminal() {
				t.addAction(sid, tr.Symbol, Action{Kind: ActionShift, Target: tr.Target})
			} else {
				t.goExists.Set(int(sid), ntCol(tr.Symbol), int32(tr.Target))
			}
		}

		for _, it := range state.Items.Items() {
			if !it.AtEnd() {
				continue
			}
			if it.Prod.ID == 0 {
				// The augmented item `S' -> start EOS .` accepts.
				tracer().Debugf("state %d accepts on EOS", sid)
				t.addAction(sid, g.EOS, Action{Kind: ActionAccept})
				continue
			}
			for _, term := range la.Of(sid, it) {
				tracer().Debugf("state %d: reduce %s on %s",
					sid, it.Prod.String(g.Symbols), g.Symbols.Name(term))
				t.addAction(sid, term, Action{Kind: ActionReduce, Prod: it.Prod})
			}
		}
	}

	t.resolveConflicts(g, opts)
	tracer().Infof("built table for %q: %d states, %d conflict(s)", g.Name, c.NumStates(), len(t.Conflicts))
	return t
}

// addAction records a candidate action for (state, terminal). Multiple
// calls for the same cell accumulate; conflict resolution happens once,
// after the whole table is populated, so precedence rules can see every
// candidate at once.
func (t *Table) addAction(s automaton.StateID, terminal grammar.Symbol, a Action) {
	id := t.encode(a)
	t.action.Add(int(s), termCol(terminal), id)
}

// resolveConflicts walks every ACTION cell with more than one candidate
// and records each as a Conflict. When opts.Precedence is enabled and
// the cell holds one shift and one reduce whose terminal and production
// both carry declared precedence, it is settled by resolveByPrecedence;
// every other conflict (reduce/reduce, a cell with more than one reduce
// candidate, or a missing precedence) leaves every candidate action in
// the cell for the GLR runtime to fork on.
func (t *Table) resolveConflicts(g *grammar.Grammar, opts Options) {
	t.action.Populated(func(row, col int, ids []int32) {
		if len(ids) < 2 {
			return
		}
		acts := make([]Action, len(ids))
		for i, id := range ids {
			acts[i] = t.actions[id]
		}
		terminal := terminalByCol(g, col)
		kind := ReduceReduce
		for _, a := range acts {
			if a.Kind == ActionShift {
				kind = ShiftReduce
			}
		}
		tracer().Debugf("conflict at state %d on %s, %d candidate action(s)",
			row, g.Symbols.Name(terminal), len(acts))

		conflict := Conflict{
			Kind:    kind,
			State:   automaton.StateID(row),
			Symbol:  terminal,
			Actions: acts,
		}

		if opts.Precedence == PrecedenceEnabled && kind == ShiftReduce {
			switch kind2, winner := resolveByPrecedence(g, acts, terminal); kind2 {
			case precWinner:
				tracer().Infof("state %d on %s: resolved by precedence, %s wins",
					row, g.Symbols.Name(terminal), winner.Kind)
				conflict.Resolved = true
				conflict.Reason = "resolved by declared precedence/associativity"
				t.replaceCell(row, col, winner)
				t.Conflicts = append(t.Conflicts, conflict)
				return
			case precRemoved:
				tracer().Infof("state %d on %s: NonAssoc tie, removing both candidates",
					row, g.Symbols.Name(terminal))
				conflict.Resolved = true
				conflict.Reason = "NonAssoc: both candidates rejected, cell left absent"
				t.action.Clear(row, col)
				t.Conflicts = append(t.Conflicts, conflict)
				return
			}
		}

		tracer().Infof("state %d on %s: unresolved, left as a GLR fork point",
			row, g.Symbols.Name(terminal))
		conflict.Reason = "no precedence declared for all candidates; left as a GLR fork point"
		t.Conflicts = append(t.Conflicts, conflict)
	})
}

// precedenceResolution is the outcome of comparing a shift/reduce pair's
// declared precedence.
type precedenceResolution int

const (
	// precUnresolved means no declared precedence covers both
	// candidates; the cell is left as a GLR fork.
	precUnresolved precedenceResolution = iota
	// precWinner means exactly one candidate survives.
	precWinner
	// precRemoved means a NonAssoc tie rejected both candidates; the
	// cell must be cleared entirely.
	precRemoved
)

// resolveByPrecedence implements the shift/reduce precedence rule:
// compare the shifted terminal's precedence against the reducing
// production's effective precedence (its own declared precedence, or
// else its rightmost terminal's); higher precedence wins, equal
// precedence defers to the terminal's associativity (left reduces,
// right shifts), and a tie at a terminal with any other associativity
// (NonAssoc, or a level given through Builder.Terminal without one)
// rejects both candidates outright. A cell with more than one reduce
// candidate is left unresolved.
func resolveByPrecedence(g *grammar.Grammar, acts []Action, terminal grammar.Symbol) (precedenceResolution, Action) {
	var shift *Action
	var reduce *Action
	reduces := 0
	for i := range acts {
		switch acts[i].Kind {
		case ActionShift:
			shift = &acts[i]
		case ActionReduce:
			reduce = &acts[i]
			reduces++
		}
	}
	if shift == nil || reduces != 1 {
		return precUnresolved, Action{}
	}
	shiftLevel, shiftAssoc := g.Symbols.Precedence(terminal)
	reduceLevel, _, ok := reduce.Prod.EffectivePrecedence(g.Symbols)
	if !ok || shiftLevel == 0 {
		return precUnresolved, Action{}
	}

	switch {
	case shiftLevel > reduceLevel:
		return precWinner, *shift
	case reduceLevel > shiftLevel:
		return precWinner, *reduce
	default:
		switch shiftAssoc {
		case grammar.AssocLeft:
			return precWinner, *reduce
		case grammar.AssocRight:
			return precWinner, *shift
		default:
			return precRemoved, Action{}
		}
	}
}

// replaceCell discards every candidate action in (row, col) and
// installs exactly one.
func (t *Table) replaceCell(row, col int, a Action) {
	id := t.encode(a)
	t.action.Set(row, col, id)
}

func terminalByCol(g *grammar.Grammar, col int) grammar.Symbol {
	var found grammar.Symbol
	g.Symbols.EachTerminal(func(s grammar.Symbol) {
		if s.Base() == col {
			found = s
		}
	})
	return found
}
