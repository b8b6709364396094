package grammar

import "testing"

func symbolSetContains(t *testing.T, syms []Symbol, st *SymbolTable, name string) bool {
	t.Helper()
	for _, s := range syms {
		if st.Name(s) == name {
			return true
		}
	}
	return false
}

func TestAnalysisFirstOfExprGrammar(t *testing.T) {
	g := exprGrammar(t)
	a := Analyze(g)

	expr, _ := g.Symbols.Lookup("expr")
	first := a.First(expr)
	if len(first) != 2 {
		t.Fatalf("First(expr) = %v, want 2 members (NUM, LPAREN)", first)
	}
	if !symbolSetContains(t, first, g.Symbols, "NUM") || !symbolSetContains(t, first, g.Symbols, "LPAREN") {
		t.Fatalf("First(expr) = %v, want {NUM, LPAREN}", first)
	}
}

func TestAnalysisFollowOfExprGrammar(t *testing.T) {
	g := exprGrammar(t)
	a := Analyze(g)

	expr, _ := g.Symbols.Lookup("expr")
	follow := a.Follow(expr)
	want := map[string]bool{"PLUS": false, "RPAREN": false, glrforgeEOSNameForTest: false}
	for _, s := range follow {
		name := g.Symbols.Name(s)
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("Follow(expr) missing %s, got %v", name, follow)
		}
	}
}

// glrforgeEOSNameForTest avoids importing the root glrforge package
// just to name its EOS constant in a test table.
const glrforgeEOSNameForTest = "EOS"

func TestAnalysisNullable(t *testing.T) {
	b := NewBuilder("opt")
	b.Start("s")
	b.Rule("s").Clause("a B", nil)
	b.Rule("a").Clause("", nil)
	b.Rule("a").Clause("A", nil)
	g, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	a := Analyze(g)
	aSym, _ := g.Symbols.Lookup("a")
	if !a.Nullable(aSym) {
		t.Fatal("expected nonterminal a to be nullable")
	}
	sSym, _ := g.Symbols.Lookup("s")
	if a.Nullable(sSym) {
		t.Fatal("s should not be nullable: B is a required terminal")
	}
}

func TestAnalysisWarnsOnUnreachableNonterminal(t *testing.T) {
	b := NewBuilder("dead")
	b.Start("s")
	b.Rule("s").Clause("A", nil)
	b.Rule("unused").Clause("B", nil)
	g, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	a := Analyze(g)
	found := false
	for _, w := range a.Warnings() {
		if g.Symbols.Name(w.Nonterminal) == "unused" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning about unreachable nonterminal 'unused', got %v", a.Warnings())
	}
}
