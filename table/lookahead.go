// Package table builds ACTION/GOTO parsing tables from a grammar's CFSM,
// resolving shift/reduce conflicts by precedence and associativity where
// declared, and reporting the rest (every reduce/reduce conflict among
// them) as conflict cells the GLR runtime forks on.
//
// LALR(1) lookaheads follow DeRemer & Pennello's spontaneous-generation/
// propagation scheme. Rather than tracking separate "spontaneous" and
// "propagated" bookkeeping tables, lookaheads here are recomputed by
// rerunning LR(1) closure over each state's kernel every pass until a
// fixed point is reached. That costs extra closure recomputation, which
// only matters for very large grammars, and is much easier to convince
// oneself of than the fully optimized propagation-graph variant.
package table

import (
	"github.com/corvid-works/glrforge/automaton"
	"github.com/corvid-works/glrforge/grammar"
)

// itemKey identifies an item by (production id, dot position), ignoring
// lookahead; it is the LR(0) core automaton.Item already carries.
type itemKey = [2]int

// laSet is a mutable set of terminal Symbols used as a lookahead set.
type laSet struct {
	syms map[grammar.Symbol]bool
}

func newLASet() *laSet {
	return &laSet{syms: map[grammar.Symbol]bool{}}
}

func (s *laSet) add(sym grammar.Symbol) bool {
	if s.syms[sym] {
		return false
	}
	s.syms[sym] = true
	return true
}

func (s *laSet) union(other *laSet) bool {
	changed := false
	for sym := range other.syms {
		if s.add(sym) {
			changed = true
		}
	}
	return changed
}

func (s *laSet) has(sym grammar.Symbol) bool {
	return s.syms[sym]
}

func (s *laSet) members() []grammar.Symbol {
	out := make([]grammar.Symbol, 0, len(s.syms))
	for sym := range s.syms {
		out = append(out, sym)
	}
	return out
}

// Lookaheads holds, for every state and every item in that state
// (kernel and closure-derived alike), the set of terminals under which
// a reduce item's production should fire.
type Lookaheads struct {
	perState []map[itemKey]*laSet
}

// Of returns the lookahead terminals for item it in state s, or nil if
// none were computed (e.g. it is not a member of state s).
func (l *Lookaheads) Of(s automaton.StateID, it automaton.Item) []grammar.Symbol {
	if int(s) >= len(l.perState) {
		return nil
	}
	set, ok := l.perState[s][it.Key()]
	if !ok {
		return nil
	}
	return set.members()
}

// ComputeLALR1 runs LALR(1) lookahead propagation to a fixed point over
// c's states.
func ComputeLALR1(g *grammar.Grammar, a *grammar.Analysis, c *automaton.CFSM) *Lookaheads {
	n := c.NumStates()
	kernelLA := make([]map[itemKey]*laSet, n)
	for i := 0; i < n; i++ {
		kernelLA[i] = map[itemKey]*laSet{}
		for _, it := range c.State(automaton.StateID(i)).Kernel {
			kernelLA[i][it.Key()] = newLASet()
		}
	}
	// The augmented start item's lookahead is always just EOS.
	startItem := automaton.Item{Prod: g.Production(0), Dot: 0}
	kernelLA[0][startItem.Key()].add(g.EOS)

	full := make([]map[itemKey]*laSet, n)

	changed := true
	for changed {
		changed = false
		for i := 0; i < n; i++ {
			sid := automaton.StateID(i)
			state := c.State(sid)
			closed := closeWithLookaheads(g, a, state.Kernel, kernelLA[i])
			full[i] = closed

			for key, set := range closed {
				it := automaton.Item{Prod: g.Production(grammar.ProductionID(key[0])), Dot: key[1]}
				sym, ok := it.NextSymbol()
				if !ok {
					continue
				}
				target, ok := c.Goto(sid, sym)
				if !ok {
					continue
				}
				advanced := it.Advance()
				dst, ok := kernelLA[target][advanced.Key()]
				if !ok {
					dst = newLASet()
					kernelLA[target][advanced.Key()] = dst
				}
				if dst.union(set) {
					changed = true
				}
			}
		}
	}

	// One more closure pass to materialize final lookaheads for reduce
	// items once kernel sets have stopped growing.
	for i := 0; i < n; i++ {
		full[i] = closeWithLookaheads(g, a, c.State(automaton.StateID(i)).Kernel, kernelLA[i])
	}

	return &Lookaheads{perState: full}
}

// closeWithLookaheads computes, for every item reachable by LR(1)
// closure from kernel (whose items carry the lookahead sets in
// kernelLA), that item's accumulated lookahead set.
func closeWithLookaheads(g *grammar.Grammar, a *grammar.Analysis, kernel []automaton.Item, kernelLA map[itemKey]*laSet) map[itemKey]*laSet {
	result := map[itemKey]*laSet{}
	type work struct {
		it automaton.Item
		la *laSet
	}
	var worklist []work
	for _, it := range kernel {
		set := kernelLA[it.Key()]
		if set == nil {
			set = newLASet()
		}
		dst := ensureLASet(result, it.Key())
		if dst.union(set) {
			worklist = append(worklist, work{it, set})
		}
	}

	for len(worklist) > 0 {
		w := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		sym, ok := w.it.NextSymbol()
		if !ok || sym.IsTerminal() {
			continue
		}
		beta := w.it.Prod.RHS[w.it.Dot+1:]
		firstBeta, nullable := a.FirstOfSequence(beta)

		for _, p := range g.ProductionsFor(sym) {
			cand := automaton.Item{Prod: p, Dot: 0}
			dst := ensureLASet(result, cand.Key())
			grew := false
			for _, t := range firstBeta {
				if dst.add(t) {
					grew = true
				}
			}
			if nullable {
				for _, t := range w.la.members() {
					if dst.add(t) {
						grew = true
					}
				}
			}
			if grew {
				worklist = append(worklist, work{cand, dst})
			}
		}
	}
	return result
}

func ensureLASet(m map[itemKey]*laSet, k itemKey) *laSet {
	if s, ok := m[k]; ok {
		return s
	}
	s := newLASet()
	m[k] = s
	return s
}

// ComputeLR0 is selected by Options{Lookahead: LR0}: no lookahead
// computation at all, so every reduce item fires on every terminal.
// The resulting table is far more conflict-prone than an LALR(1) one,
// but the GLR runtime forks through the conflicts and the wrong forks
// die on the next token, so the language accepted is unchanged.
func ComputeLR0(g *grammar.Grammar, c *automaton.CFSM) *Lookaheads {
	var terminals []grammar.Symbol
	g.Symbols.EachTerminal(func(s grammar.Symbol) {
		terminals = append(terminals, s)
	})
	n := c.NumStates()
	full := make([]map[itemKey]*laSet, n)
	for i := 0; i < n; i++ {
		full[i] = map[itemKey]*laSet{}
		state := c.State(automaton.StateID(i))
		for _, it := range state.Items.Items() {
			set := newLASet()
			if it.AtEnd() {
				for _, t := range terminals {
					set.add(t)
				}
			}
			full[i][it.Key()] = set
		}
	}
	return &Lookaheads{perState: full}
}
