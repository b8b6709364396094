package automaton

import (
	"fmt"

	"github.com/corvid-works/glrforge/grammar"
	"github.com/corvid-works/glrforge/internal/iteratable"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("glrforge.automaton")
}

// StateID identifies a CFSM state. State 0 is always the initial state,
// whose kernel is the single item `S' -> . start EOS`.
type StateID int

// State is one node of the canonical LR(0) automaton: a closed item set
// plus its kernel (the items present before closure, used for state
// identity and for GLR diagnostics that want to print "what got us
// here" without the closure noise).
type State struct {
	ID     StateID
	Kernel []Item
	Items  *ItemSet
}

func (s *State) String(st *grammar.SymbolTable) string {
	out := fmt.Sprintf("state %d:\n", s.ID)
	for _, it := range s.Items.Items() {
		out += "  " + it.String(st) + "\n"
	}
	return out
}

// stateComparator orders States by serial ID for the treeset holding
// the discovery worklist.
func stateComparator(a, b interface{}) int {
	return utils.IntComparator(int(a.(*State).ID), int(b.(*State).ID))
}

// cfsmEdge is one goto transition between two states, labeled with the
// symbol that triggers it.
type cfsmEdge struct {
	from, to StateID
	label    grammar.Symbol
}

// CFSM is the canonical collection of LR(0) item sets together with the
// goto function between them.
//
// States carries the dense, by-id slice used for O(1) lookup by most of
// the rest of the tree (table, glrparse); all and edges are populated
// alongside it during Build, serving as the ID-ordered state collection
// and the transition-enumeration source Transitions reads from.
type CFSM struct {
	g      *grammar.Grammar
	States []*State

	all   *treeset.Set    // *State, ordered by ID
	edges *arraylist.List // *cfsmEdge, in discovery order

	gotoFn map[StateID]map[grammar.Symbol]StateID
}

// State looks up a state by id.
func (c *CFSM) State(id StateID) *State {
	if int(id) < 0 || int(id) >= len(c.States) {
		return nil
	}
	return c.States[id]
}

// Goto returns the state reached from id on symbol sym, and whether a
// transition exists.
func (c *CFSM) Goto(id StateID, sym grammar.Symbol) (StateID, bool) {
	row, ok := c.gotoFn[id]
	if !ok {
		return 0, false
	}
	next, ok := row[sym]
	return next, ok
}

// Transitions returns the (symbol, target) pairs leaving state id, in
// grammar declaration order (terminals then nonterminals) for
// deterministic iteration during table construction. Reads c.edges in
// the order Build populated it, filtered by origin state.
func (c *CFSM) Transitions(id StateID) []struct {
	Symbol grammar.Symbol
	Target StateID
} {
	var out []struct {
		Symbol grammar.Symbol
		Target StateID
	}
	it := c.edges.Iterator()
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		if e.from != id {
			continue
		}
		out = append(out, struct {
			Symbol grammar.Symbol
			Target StateID
		}{e.label, e.to})
	}
	return out
}

// closure computes the closure of a kernel item set: for every item
// `A -> α . B β` with B a nonterminal, add `B -> . γ` for every
// production of B, repeating to a fixed point.
//
// Uses iteratable.Set as the fixed-point worklist: IterateOnce/Next
// walks the set from the front while Add keeps appending to it, so
// items discovered mid-iteration are still visited before the loop
// ends.
func closure(g *grammar.Grammar, kernel []Item) *ItemSet {
	pending := iteratable.New()
	set := NewItemSetOf(kernel...)
	for _, it := range kernel {
		pending.Add(it)
	}

	pending.IterateOnce()
	for pending.Next() {
		it := pending.Item().(Item)
		sym, ok := it.NextSymbol()
		if !ok || sym.IsTerminal() {
			continue
		}
		for _, p := range g.ProductionsFor(sym) {
			cand := Item{Prod: p, Dot: 0}
			if set.Add(cand) {
				tracer().Debugf("closure adds %s", cand.String(g.Symbols))
				pending.Add(cand)
			}
		}
	}
	return set
}

// gotoSet computes goto(I, X): the closure of the kernel formed by
// advancing every item in I whose next symbol is X.
func gotoSet(g *grammar.Grammar, items *ItemSet, sym grammar.Symbol) []Item {
	var kernel []Item
	for _, it := range items.Items() {
		next, ok := it.NextSymbol()
		if ok && next == sym {
			advanced := it.Advance()
			tracer().Debugf("goto(%s) -%s-> %s",
				it.String(g.Symbols), g.Symbols.Name(sym), advanced.String(g.Symbols))
			kernel = append(kernel, advanced)
		}
	}
	if len(kernel) == 0 {
		return nil
	}
	return kernel
}

// Build constructs the canonical LR(0) automaton for g: state 0's
// kernel is the augmented start item, and goto is computed by repeated
// closure/goto until no new states or transitions appear. Build is
// deterministic: state ids are assigned in the order states are first
// discovered, which is itself governed by Grammar.EachSymbol's fixed
// terminal-then-nonterminal declaration order when scanning transitions
// out of each state.
//
// The discovery worklist is a treeset.Set ordered by state ID, and
// every transition found is recorded as an edge in an arraylist.List
// that Transitions later replays in discovery order.
func Build(g *grammar.Grammar) *CFSM {
	c := &CFSM{g: g, gotoFn: map[StateID]map[grammar.Symbol]StateID{}}
	c.all = treeset.NewWith(stateComparator)
	c.edges = arraylist.New()

	start := g.Production(0) // augmented S' -> start EOS
	initialKernel := []Item{{Prod: start, Dot: 0}}
	byFingerprint := map[string]StateID{}

	addState := func(kernel []Item) (StateID, bool) {
		items := closure(g, kernel)
		fp := items.Fingerprint()
		if id, ok := byFingerprint[fp]; ok {
			return id, false
		}
		id := StateID(len(c.States))
		st := &State{ID: id, Kernel: kernel, Items: items}
		c.States = append(c.States, st)
		c.all.Add(st)
		byFingerprint[fp] = id
		c.gotoFn[id] = map[grammar.Symbol]StateID{}
		tracer().Debugf("state %d added, %d item(s)", id, items.Len())
		return id, true
	}

	tracer().Debugf("=== build CFSM for %q ===", g.Name)
	_, _ = addState(initialKernel)

	worklist := treeset.NewWith(stateComparator)
	worklist.Add(c.States[0])
	for worklist.Size() > 0 {
		cur := worklist.Values()[0].(*State)
		worklist.Remove(cur)

		seen := map[grammar.Symbol]bool{}
		g.EachSymbol(func(sym grammar.Symbol) {
			if seen[sym] {
				return
			}
			tracer().Debugf("checking goto-set of state %d for symbol = %s", cur.ID, g.Symbols.Name(sym))
			kernel := gotoSet(g, cur.Items, sym)
			if kernel == nil {
				return
			}
			seen[sym] = true
			target, isNew := addState(kernel)
			if isNew {
				worklist.Add(c.States[target])
			}
			c.gotoFn[cur.ID][sym] = target
			c.edges.Add(&cfsmEdge{from: cur.ID, to: target, label: sym})
			tracer().Debugf("edge %d -%s-> %d", cur.ID, g.Symbols.Name(sym), target)
		})
	}

	tracer().Infof("built CFSM for %q: %d states, %d edges", g.Name, len(c.States), c.edges.Size())
	return c
}

// NumStates returns the number of states in the automaton.
func (c *CFSM) NumStates() int {
	return len(c.States)
}

// Grammar returns the grammar the automaton was built from.
func (c *CFSM) Grammar() *grammar.Grammar {
	return c.g
}
