package table

import (
	"testing"

	"github.com/corvid-works/glrforge/automaton"
	"github.com/corvid-works/glrforge/grammar"
)

func buildTable(t *testing.T, g *grammar.Grammar, opts Options) *Table {
	t.Helper()
	a := grammar.Analyze(g)
	c := automaton.Build(g)
	return Build(g, a, c, opts)
}

// infixGrammar is an ambiguous infix expression grammar whose
// shift/reduce conflicts are resolvable by the declared precedence:
// STAR outranks PLUS, both left-associative.
func infixGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder("infix")
	b.Start("e")
	b.Left("PLUS")
	b.Left("STAR")
	b.Rule("e").
		Clause("e PLUS e", nil).
		Clause("e STAR e", nil).
		Clause("NUM", nil)
	g, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return g
}

func lookupTerm(t *testing.T, g *grammar.Grammar, name string) grammar.Symbol {
	t.Helper()
	s, ok := g.Symbols.Lookup(name)
	if !ok || !s.IsTerminal() {
		t.Fatalf("terminal %q not interned", name)
	}
	return s
}

func rhsHas(p *grammar.Production, sym grammar.Symbol) bool {
	for _, s := range p.RHS {
		if s == sym {
			return true
		}
	}
	return false
}

// TestPrecedenceShiftWinsOnHigherLevel: after "e PLUS e" with STAR as
// the next token, STAR's higher precedence must win the shift, so
// 1+2*3 groups as 1+(2*3).
func TestPrecedenceShiftWinsOnHigherLevel(t *testing.T) {
	g := infixGrammar(t)
	tab := buildTable(t, g, Options{Lookahead: LALR1, Precedence: PrecedenceEnabled})
	star := lookupTerm(t, g, "STAR")
	plus := lookupTerm(t, g, "PLUS")

	checked := 0
	for _, c := range tab.Conflicts {
		if c.Symbol != star {
			continue
		}
		var reducesPlus bool
		for _, a := range c.Actions {
			if a.Kind == ActionReduce && rhsHas(a.Prod, plus) {
				reducesPlus = true
			}
		}
		if !reducesPlus {
			continue
		}
		checked++
		if !c.Resolved {
			t.Fatalf("state %d on STAR: conflict against reduce(e PLUS e) not resolved", c.State)
		}
		acts := tab.ActionsAt(c.State, star)
		if len(acts) != 1 || acts[0].Kind != ActionShift {
			t.Fatalf("state %d on STAR: resolved cell = %v, want a single shift", c.State, acts)
		}
	}
	if checked == 0 {
		t.Fatal("no shift(STAR)/reduce(e PLUS e) conflict found; grammar fixture is wrong")
	}
}

// TestPrecedenceLeftAssocReduces: after "e PLUS e" with another PLUS
// coming, equal precedence plus left associativity must reduce, so
// 1+2+3 groups as (1+2)+3.
func TestPrecedenceLeftAssocReduces(t *testing.T) {
	g := infixGrammar(t)
	tab := buildTable(t, g, Options{Lookahead: LALR1, Precedence: PrecedenceEnabled})
	plus := lookupTerm(t, g, "PLUS")

	checked := 0
	for _, c := range tab.Conflicts {
		if c.Symbol != plus {
			continue
		}
		var reducesPlus bool
		for _, a := range c.Actions {
			if a.Kind == ActionReduce && rhsHas(a.Prod, plus) {
				reducesPlus = true
			}
		}
		if !reducesPlus {
			continue
		}
		checked++
		if !c.Resolved {
			t.Fatalf("state %d on PLUS: left-assoc tie not resolved", c.State)
		}
		acts := tab.ActionsAt(c.State, plus)
		if len(acts) != 1 || acts[0].Kind != ActionReduce {
			t.Fatalf("state %d on PLUS: resolved cell = %v, want a single reduce", c.State, acts)
		}
	}
	if checked == 0 {
		t.Fatal("no shift(PLUS)/reduce(e PLUS e) conflict found; grammar fixture is wrong")
	}
}

// TestNonAssocTieEmptiesCell: a NonAssoc terminal at equal precedence
// rejects both the shift and the reduce, leaving the cell absent so
// `a EQ b EQ c` is a syntax error.
func TestNonAssocTieEmptiesCell(t *testing.T) {
	b := grammar.NewBuilder("cmp")
	b.Start("e")
	b.NonAssoc("EQ")
	b.Rule("e").
		Clause("e EQ e", nil).
		Clause("NUM", nil)
	g, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	tab := buildTable(t, g, Options{Lookahead: LALR1, Precedence: PrecedenceEnabled})
	eq := lookupTerm(t, g, "EQ")

	checked := 0
	for _, c := range tab.Conflicts {
		if c.Symbol != eq || !c.Resolved {
			continue
		}
		checked++
		if acts := tab.ActionsAt(c.State, eq); len(acts) != 0 {
			t.Fatalf("state %d on EQ: cell = %v, want absent after NonAssoc rejection", c.State, acts)
		}
	}
	if checked == 0 {
		t.Fatal("no resolved NonAssoc conflict found; grammar fixture is wrong")
	}
}

// TestDisabledPrecedenceRetainsConflictCells: with precedence disabled,
// every candidate action must survive in its cell for the GLR runtime
// to fork on.
func TestDisabledPrecedenceRetainsConflictCells(t *testing.T) {
	g := infixGrammar(t)
	tab := buildTable(t, g, Options{Lookahead: LALR1, Precedence: PrecedenceDisabled})

	forkCells := 0
	for _, c := range tab.Conflicts {
		if c.Resolved {
			t.Fatalf("state %d on %s: conflict resolved with precedence disabled", c.State, g.Symbols.Name(c.Symbol))
		}
		acts := tab.ActionsAt(c.State, c.Symbol)
		if len(acts) < 2 {
			t.Fatalf("state %d on %s: conflict cell holds %d action(s), want all candidates", c.State, g.Symbols.Name(c.Symbol), len(acts))
		}
		forkCells++
	}
	if forkCells == 0 {
		t.Fatal("expected unresolved conflicts in the ambiguous grammar")
	}
}

// TestLALR1ReducesSubsetOfLR0: an LR(0) table fires every reduction on
// every terminal, so any reduce an LALR(1) cell proposes must also be
// present in the LR(0) cell, never the other way around.
func TestLALR1ReducesSubsetOfLR0(t *testing.T) {
	g := infixGrammar(t)
	lalr := buildTable(t, g, Options{Lookahead: LALR1, Precedence: PrecedenceDisabled})
	lr0 := buildTable(t, g, Options{Lookahead: LR0, Precedence: PrecedenceDisabled})

	for s := 0; s < lalr.Automaton.NumStates(); s++ {
		sid := automaton.StateID(s)
		g.Symbols.EachTerminal(func(term grammar.Symbol) {
			for _, a := range lalr.ActionsAt(sid, term) {
				if a.Kind != ActionReduce {
					continue
				}
				found := false
				for _, b := range lr0.ActionsAt(sid, term) {
					if b.Kind == ActionReduce && b.Prod.ID == a.Prod.ID {
						found = true
					}
				}
				if !found {
					t.Fatalf("state %d on %s: LALR(1) reduces by %d but LR(0) does not", s, g.Symbols.Name(term), a.Prod.ID)
				}
			}
		})
	}
}

// TestAcceptRegisteredOnEOS: the completed augmented item must yield an
// Accept action on EOS in exactly one state.
func TestAcceptRegisteredOnEOS(t *testing.T) {
	g := infixGrammar(t)
	tab := buildTable(t, g, Options{Lookahead: LALR1, Precedence: PrecedenceEnabled})

	accepts := 0
	for s := 0; s < tab.Automaton.NumStates(); s++ {
		for _, a := range tab.ActionsAt(automaton.StateID(s), g.EOS) {
			if a.Kind == ActionAccept {
				accepts++
			}
		}
	}
	if accepts != 1 {
		t.Fatalf("found %d Accept cells on EOS, want exactly 1", accepts)
	}
}

// TestSnapshotRoundTripPreservesCells: rebuilding a table from its own
// snapshot must reproduce every ACTION and GOTO cell.
func TestSnapshotRoundTripPreservesCells(t *testing.T) {
	g := infixGrammar(t)
	a := grammar.Analyze(g)
	c := automaton.Build(g)
	tab := Build(g, a, c, Options{Lookahead: LALR1, Precedence: PrecedenceEnabled})

	actions, gotos := tab.Snapshot()
	rebuilt := FromSnapshot(g, c, actions, gotos)

	for s := 0; s < c.NumStates(); s++ {
		sid := automaton.StateID(s)
		g.Symbols.EachTerminal(func(term grammar.Symbol) {
			want := tab.ActionsAt(sid, term)
			got := rebuilt.ActionsAt(sid, term)
			if len(want) != len(got) {
				t.Fatalf("state %d on %s: %d action(s) after round trip, want %d", s, g.Symbols.Name(term), len(got), len(want))
			}
			for i := range want {
				if want[i].Kind != got[i].Kind || want[i].Target != got[i].Target {
					t.Fatalf("state %d on %s: action %d differs after round trip", s, g.Symbols.Name(term), i)
				}
			}
		})
		g.Symbols.EachNonterminal(func(nt grammar.Symbol) {
			w, wok := tab.Goto(sid, nt)
			r, rok := rebuilt.Goto(sid, nt)
			if wok != rok || w != r {
				t.Fatalf("state %d GOTO on %s differs after round trip", s, g.Symbols.Name(nt))
			}
		})
	}
}
