package automaton

import (
	"testing"

	"github.com/corvid-works/glrforge/grammar"
)

// exprGrammar builds the small left-recursive expression grammar used
// across several package tests:
//
//	expr   -> expr PLUS term | term
//	term   -> term STAR factor | factor
//	factor -> NUM | LPAREN expr RPAREN
func exprGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder("expr")
	b.Start("expr")
	b.Left("PLUS")
	b.Left("STAR")

	b.Rule("expr").Clause("expr PLUS term", nil)
	b.Rule("expr").Clause("term", nil)
	b.Rule("term").Clause("term STAR factor", nil)
	b.Rule("term").Clause("factor", nil)
	b.Rule("factor").Clause("NUM", nil)
	b.Rule("factor").Clause("LPAREN expr RPAREN", nil)

	g, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return g
}

func TestBuildStartsAtAugmentedKernel(t *testing.T) {
	g := exprGrammar(t)
	c := Build(g)
	if c.NumStates() == 0 {
		t.Fatal("expected at least one state")
	}
	s0 := c.State(0)
	if s0 == nil {
		t.Fatal("state 0 missing")
	}
	if len(s0.Kernel) != 1 || s0.Kernel[0].Prod.ID != 0 || s0.Kernel[0].Dot != 0 {
		t.Fatalf("state 0 kernel = %+v, want the augmented start item at dot 0", s0.Kernel)
	}
}

func TestBuildIsDeterministicAcrossRuns(t *testing.T) {
	g := exprGrammar(t)
	c1 := Build(g)
	c2 := Build(g)
	if c1.NumStates() != c2.NumStates() {
		t.Fatalf("state counts differ: %d vs %d", c1.NumStates(), c2.NumStates())
	}
	for i := 0; i < c1.NumStates(); i++ {
		id := StateID(i)
		s1, s2 := c1.State(id), c2.State(id)
		if s1.Items.Fingerprint() != s2.Items.Fingerprint() {
			t.Fatalf("state %d fingerprint differs between runs", i)
		}
	}
}

func TestGotoMergesStatesWithEqualItemSets(t *testing.T) {
	g := exprGrammar(t)
	c := Build(g)
	// Every state reached by shifting "factor" out of "term -> . factor"
	// regardless of how we got there should collapse to the same target,
	// since state identity is the closed item set, not the path taken.
	seen := map[string]StateID{}
	for i := 0; i < c.NumStates(); i++ {
		sid := StateID(i)
		target, ok := c.Goto(sid, symbolOrFatal(t, g, "factor", false))
		if !ok {
			continue
		}
		fp := c.State(target).Items.Fingerprint()
		if prior, ok := seen[fp]; ok && prior != target {
			t.Fatalf("two distinct state ids (%d, %d) share fingerprint %q", prior, target, fp)
		}
		seen[fp] = target
	}
}

func TestTransitionsOnlyReportsOutgoingEdges(t *testing.T) {
	g := exprGrammar(t)
	c := Build(g)
	for i := 0; i < c.NumStates(); i++ {
		sid := StateID(i)
		for _, tr := range c.Transitions(sid) {
			target, ok := c.Goto(sid, tr.Symbol)
			if !ok || target != tr.Target {
				t.Fatalf("state %d: Transitions reports (%v -> %d) but Goto disagrees (%v, %d)",
					sid, tr.Symbol, tr.Target, ok, target)
			}
		}
	}
}

func TestClosureAddsProductionsForEveryNonterminalAfterDot(t *testing.T) {
	g := exprGrammar(t)
	start := g.Production(0)
	kernel := []Item{{Prod: start, Dot: 0}}
	set := closure(g, kernel)
	// closure(S' -> . expr EOS) must pull in "expr -> . term", since expr
	// is the symbol right after the dot in the kernel item.
	var sawExprTerm bool
	for _, it := range set.Items() {
		if it.Dot != 0 {
			continue
		}
		if it.Prod.LHS == start.RHS[0] && len(it.Prod.RHS) == 1 {
			sawExprTerm = true
		}
	}
	if !sawExprTerm {
		t.Fatalf("expected closure to include a production reducible to %v at dot 0", start.RHS[0])
	}
}

func symbolOrFatal(t *testing.T, g *grammar.Grammar, name string, terminal bool) grammar.Symbol {
	t.Helper()
	s, ok := g.Symbols.Lookup(name)
	if !ok {
		t.Fatalf("symbol %q not found", name)
	}
	if s.IsTerminal() != terminal {
		t.Fatalf("symbol %q terminal-ness = %v, want %v", name, s.IsTerminal(), terminal)
	}
	return s
}
