package table

import (
	"github.com/corvid-works/glrforge/automaton"
	"github.com/corvid-works/glrforge/grammar"
	"github.com/corvid-works/glrforge/internal/sparsetab"
)

// ActionEntry is one persisted ACTION cell, dense enough to gob-encode.
// Terminal is the terminal's dense Symbol.Base(); Target is valid for
// ActionShift, ProdID for ActionReduce.
type ActionEntry struct {
	State    int32
	Terminal int32
	Kind     uint8
	Target   int32
	ProdID   int32
}

// GotoEntry is one persisted GOTO cell.
type GotoEntry struct {
	State       int32
	Nonterminal int32
	Target      int32
}

// Snapshot returns every populated ACTION/GOTO cell of t in
// deterministic (row, col) order, suitable for a package like tableio
// to gob-encode.
func (t *Table) Snapshot() (actions []ActionEntry, gotos []GotoEntry) {
	t.action.Populated(func(row, col int, ids []int32) {
		for _, id := range ids {
			a := t.actions[id]
			e := ActionEntry{State: int32(row), Terminal: int32(col), Kind: uint8(a.Kind)}
			switch a.Kind {
			case ActionShift:
				e.Target = int32(a.Target)
			case ActionReduce:
				e.ProdID = int32(a.Prod.ID)
			}
			actions = append(actions, e)
		}
	})
	t.goExists.Populated(func(row, col int, ids []int32) {
		gotos = append(gotos, GotoEntry{State: int32(row), Nonterminal: int32(col), Target: ids[0]})
	})
	return actions, gotos
}

// FromSnapshot rebuilds a Table directly from persisted ACTION/GOTO
// entries against grammar g and automaton c, skipping LALR(1) lookahead
// propagation and conflict resolution entirely. c must be rebuilt from
// g beforehand: recomputing the canonical LR(0) collection is cheap
// relative to lookahead propagation and table construction, and the GLR
// runtime's error-recovery layer needs a live automaton.CFSM to inspect
// item sets, so only the expensive stages are skipped on a cache hit.
func FromSnapshot(g *grammar.Grammar, c *automaton.CFSM, actions []ActionEntry, gotos []GotoEntry) *Table {
	t := &Table{
		Grammar:   g,
		Automaton: c,
		action:    sparsetab.New(c.NumStates(), g.Symbols.NumTerminals(), -1),
		goExists:  sparsetab.New(c.NumStates(), g.Symbols.NumNonterminals(), -1),
		actions:   map[int32]Action{},
	}
	for _, e := range actions {
		a := Action{Kind: ActionKind(e.Kind)}
		switch a.Kind {
		case ActionShift:
			a.Target = automaton.StateID(e.Target)
		case ActionReduce:
			a.Prod = g.Production(grammar.ProductionID(e.ProdID))
		}
		t.addAction(automaton.StateID(e.State), terminalByCol(g, int(e.Terminal)), a)
	}
	for _, e := range gotos {
		t.goExists.Set(int(e.State), int(e.Nonterminal), e.Target)
	}
	return t
}
