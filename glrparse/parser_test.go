package glrparse

import (
	"strings"
	"testing"

	"github.com/corvid-works/glrforge"
	"github.com/corvid-works/glrforge/automaton"
	"github.com/corvid-works/glrforge/examples"
	"github.com/corvid-works/glrforge/grammar"
	"github.com/corvid-works/glrforge/table"
)

// buildParser runs a grammar all the way through analysis, automaton
// construction, and table building, mirroring the pipeline sketched in
// glrforge.go's own package doc example.
func buildParser(t *testing.T, g *grammar.Grammar, topts table.Options) *Parser {
	t.Helper()
	a := grammar.Analyze(g)
	cfsm := automaton.Build(g)
	tab := table.Build(g, a, cfsm, topts)
	return New(g, tab)
}

func tok(tt glrforge.TokType, v interface{}) glrforge.BasicToken {
	return glrforge.NewBasicToken(tt, v, glrforge.Position{})
}

func eos(g *grammar.Grammar) glrforge.BasicToken {
	return tok(g.TokType(g.EOS), nil)
}

// TestPrefixCalcAccepts covers scenario S1: Polish-notation arithmetic
// needs no precedence declarations to parse deterministically.
func TestPrefixCalcAccepts(t *testing.T) {
	g := examples.PrefixCalc()
	p := buildParser(t, g, table.Options{Lookahead: table.LALR1, Precedence: table.PrecedenceEnabled})

	// + 1 * 2 3  =>  1 + (2*3) = 7
	toks := []glrforge.Token{
		tok(examples.TokPLUS, "+"),
		tok(examples.TokNUM, 1.0),
		tok(examples.TokSTAR, "*"),
		tok(examples.TokNUM, 2.0),
		tok(examples.TokNUM, 3.0),
		eos(g),
	}
	res, err := p.Parse(Slice(toks))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, ok := res.First()
	if !ok {
		t.Fatal("expected an accepted value")
	}
	if v.(float64) != 7.0 {
		t.Fatalf("got %v, want 7", v)
	}
}

// TestInfixCalcRespectsPrecedence covers scenario S2: 2 + 3 * 4 must
// parse as 2 + (3*4) = 14, not (2+3)*4.
func TestInfixCalcRespectsPrecedence(t *testing.T) {
	g := examples.InfixCalc()
	p := buildParser(t, g, table.Options{Lookahead: table.LALR1, Precedence: table.PrecedenceEnabled})

	toks := []glrforge.Token{
		tok(examples.TokNUM, 2.0),
		tok(examples.TokPLUS, "+"),
		tok(examples.TokNUM, 3.0),
		tok(examples.TokSTAR, "*"),
		tok(examples.TokNUM, 4.0),
		eos(g),
	}
	res, err := p.Parse(Slice(toks))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, _ := res.First()
	if v.(float64) != 14.0 {
		t.Fatalf("got %v, want 14 (precedence not respected)", v)
	}
}

// TestInfixCalcParenthesization exercises the LPAREN/RPAREN clause:
// the parenthesized sum is reduced before the higher-precedence STAR.
func TestInfixCalcParenthesization(t *testing.T) {
	g := examples.InfixCalc()
	p := buildParser(t, g, table.Options{Lookahead: table.LALR1, Precedence: table.PrecedenceEnabled})

	// (1 + 2) * 3 = 9
	toks := []glrforge.Token{
		tok(examples.TokLPAREN, "("),
		tok(examples.TokNUM, 1.0),
		tok(examples.TokPLUS, "+"),
		tok(examples.TokNUM, 2.0),
		tok(examples.TokRPAREN, ")"),
		tok(examples.TokSTAR, "*"),
		tok(examples.TokNUM, 3.0),
		eos(g),
	}
	res, err := p.Parse(Slice(toks))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, _ := res.First()
	if v.(float64) != 9.0 {
		t.Fatalf("got %v, want 9", v)
	}
}

// TestAmbiguousInfixAcceptAll covers scenario S3: with precedence
// disabled, `1+2+3` has two distinct left/right-grouped derivations, and
// accept: all must return both.
func TestAmbiguousInfixAcceptAll(t *testing.T) {
	g := examples.AmbiguousInfixCalc()
	p := buildParser(t, g, table.Options{Lookahead: table.LALR1, Precedence: table.PrecedenceDisabled})

	toks := []glrforge.Token{
		tok(examples.TokNUM, 1.0),
		tok(examples.TokPLUS, "+"),
		tok(examples.TokNUM, 2.0),
		tok(examples.TokPLUS, "+"),
		tok(examples.TokNUM, 3.0),
		eos(g),
	}
	res, err := p.Parse(Slice(toks), WithAccept(AcceptAll))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Values) < 2 {
		t.Fatalf("expected at least 2 accepted derivations under accept:all, got %d", len(res.Values))
	}
	for _, v := range res.Values {
		if v.(float64) != 6.0 {
			t.Fatalf("derivation value = %v, want 6 regardless of grouping", v)
		}
	}
}

// TestEBNFListSumsElements drives a desugared `*` repetition over two
// COMMA NUM pairs and checks the synthesized sum; input order is
// checked by TestEBNFVectorPreservesInputOrder.
func TestEBNFListSumsElements(t *testing.T) {
	g := examples.EBNFList()
	p := buildParser(t, g, table.Options{Lookahead: table.LALR1, Precedence: table.PrecedenceEnabled})

	toks := []glrforge.Token{
		tok(examples.TokNUM, 1.0),
		tok(examples.TokCOMMA, ","),
		tok(examples.TokNUM, 2.0),
		tok(examples.TokCOMMA, ","),
		tok(examples.TokNUM, 3.0),
		eos(g),
	}
	res, err := p.Parse(Slice(toks))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, _ := res.First()
	if v.(float64) != 6.0 {
		t.Fatalf("got %v, want 6", v)
	}
}

// TestEBNFVectorPreservesInputOrder drives `list -> NUM+` and checks
// the synthesized vector element by element: the desugared repetition
// must deliver the values in input order, which a commutative
// aggregation like a sum could not detect.
func TestEBNFVectorPreservesInputOrder(t *testing.T) {
	g := examples.EBNFVector()
	p := buildParser(t, g, table.Options{Lookahead: table.LALR1, Precedence: table.PrecedenceEnabled})

	toks := []glrforge.Token{
		tok(examples.TokNUM, 1.0),
		tok(examples.TokNUM, 2.0),
		tok(examples.TokNUM, 3.0),
		eos(g),
	}
	res, err := p.Parse(Slice(toks))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, ok := res.First()
	if !ok {
		t.Fatal("expected an accepted value")
	}
	vec, ok := v.([]float64)
	if !ok {
		t.Fatalf("synthesized value is %T, want []float64", v)
	}
	want := []float64{1.0, 2.0, 3.0}
	if len(vec) != len(want) {
		t.Fatalf("vector = %v, want %v", vec, want)
	}
	for i := range want {
		if vec[i] != want[i] {
			t.Fatalf("vector[%d] = %v, want %v (input order not preserved)", i, vec[i], want[i])
		}
	}
}

func TestEBNFListAcceptsEmpty(t *testing.T) {
	g := examples.EBNFList()
	p := buildParser(t, g, table.Options{Lookahead: table.LALR1, Precedence: table.PrecedenceEnabled})

	res, err := p.Parse(Slice([]glrforge.Token{eos(g)}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, _ := res.First()
	if v.(float64) != 0.0 {
		t.Fatalf("got %v, want 0 for the empty list", v)
	}
}

// TestErrorRecoveryHandledError covers scenario S5: a malformed
// expression (two PLUS tokens with nothing between them) should trigger
// panic-mode recovery into the ERROR production, and its reducer's
// domain error must surface as HandledError, not abort the parse as an
// internal error.
func TestErrorRecoveryHandledError(t *testing.T) {
	g := examples.ErrorRecoveryCalc()
	p := buildParser(t, g, table.Options{Lookahead: table.LALR1, Precedence: table.PrecedenceEnabled})

	toks := []glrforge.Token{
		tok(examples.TokNUM, 1.0),
		tok(examples.TokPLUS, "+"),
		tok(examples.TokPLUS, "+"), // malformed: two operators in a row
		tok(examples.TokNUM, 2.0),
		eos(g),
	}
	_, err := p.Parse(Slice(toks))
	if err == nil {
		t.Fatal("expected an error for malformed input")
	}
	var he *HandledError
	if !asHandledError(err, &he) {
		t.Fatalf("expected *HandledError, got %T: %v", err, err)
	}
	if !strings.Contains(he.Error(), "malformed expression") {
		t.Fatalf("unexpected HandledError message: %v", he)
	}
}

func asHandledError(err error, out **HandledError) bool {
	he, ok := err.(*HandledError)
	if ok {
		*out = he
	}
	return ok
}

// TestBadTokenRejectsUnknownTerminal covers the BadToken diagnostic:
// a token whose type is not one of the grammar's declared terminals.
func TestBadTokenRejectsUnknownTerminal(t *testing.T) {
	g := examples.InfixCalc()
	p := buildParser(t, g, table.Options{Lookahead: table.LALR1, Precedence: table.PrecedenceEnabled})

	toks := []glrforge.Token{
		tok(glrforge.TokType(9999), "?"),
		eos(g),
	}
	_, err := p.Parse(Slice(toks))
	if _, ok := err.(*BadTokenError); !ok {
		t.Fatalf("expected *BadTokenError, got %T: %v", err, err)
	}
}

// TestNotInLanguageOnUnrecoverableInput covers the NotInLanguage
// diagnostic on a grammar with no ERROR production to fall back on.
func TestNotInLanguageOnUnrecoverableInput(t *testing.T) {
	g := examples.InfixCalc()
	p := buildParser(t, g, table.Options{Lookahead: table.LALR1, Precedence: table.PrecedenceEnabled})

	// Two NUMs back to back is never valid and this grammar has no
	// ERROR production to recover through.
	toks := []glrforge.Token{
		tok(examples.TokNUM, 1.0),
		tok(examples.TokNUM, 2.0),
		eos(g),
	}
	_, err := p.Parse(Slice(toks))
	if _, ok := err.(*NotInLanguageError); !ok {
		t.Fatalf("expected *NotInLanguageError, got %T: %v", err, err)
	}
}
