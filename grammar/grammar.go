// Package grammar implements the symbol/production/grammar model and
// its builder (including EBNF desugaring of the *, + and ? repetition
// operators and precedence/associativity declarations), plus CFG
// analysis: FIRST, FOLLOW, nullability, and reachability diagnostics.
package grammar

import (
	"fmt"

	"github.com/corvid-works/glrforge"
)

// Grammar is a finalized, immutable context-free grammar: productions
// indexed by id and by LHS, the symbol table, and the augmented start
// production inserted during Finalize. Finalized grammars are read-only
// and safe to share across concurrent parses; all mutation happens on a
// Builder before Finalize is called.
type Grammar struct {
	Name      string
	Symbols   *SymbolTable
	Start     Symbol // the user's declared start nonterminal
	EOS       Symbol
	Error     Symbol
	ArrayArgs bool

	prods []*Production // prods[0] is always the augmented S' -> start EOS
	byLHS map[Symbol][]*Production
}

// AugmentedStart is the LHS of the synthetic production Finalize
// inserts: S' -> start EOS.
const AugmentedStart = "S'"

// Productions returns every production, in id order (id 0 first).
func (g *Grammar) Productions() []*Production {
	return g.prods
}

// Production looks up a production by id.
func (g *Grammar) Production(id ProductionID) *Production {
	if int(id) < 0 || int(id) >= len(g.prods) {
		return nil
	}
	return g.prods[id]
}

// ProductionsFor returns every production whose LHS is lhs, in
// definition order.
func (g *Grammar) ProductionsFor(lhs Symbol) []*Production {
	return g.byLHS[lhs]
}

// NumProductions returns the number of productions, including the
// augmented start production.
func (g *Grammar) NumProductions() int {
	return len(g.prods)
}

// EachSymbol calls fn once for every symbol in the grammar, terminals
// first (in declaration order), then nonterminals (in declaration
// order). This fixed, deterministic order is what lets canonical LR(0)
// construction (package automaton) produce reproducible state ids.
func (g *Grammar) EachSymbol(fn func(Symbol)) {
	g.Symbols.EachTerminal(fn)
	g.Symbols.EachNonterminal(fn)
}

// TokType returns the glrforge.TokType a lexer should attach to tokens
// of terminal sym, so the mapping between a grammar's terminals and a
// lexer's token-type values never has to be hand-maintained twice on
// both sides. The encoding is simply sym's own bit pattern;
// SymbolForTokType is its inverse.
func (g *Grammar) TokType(sym Symbol) glrforge.TokType {
	return glrforge.TokType(sym)
}

// SymbolForTokType resolves a lexer-supplied TokType back to the
// terminal Symbol it denotes, reporting false if tt does not correspond
// to a terminal this grammar declared.
func (g *Grammar) SymbolForTokType(tt glrforge.TokType) (Symbol, bool) {
	sym := Symbol(tt)
	if !sym.IsTerminal() {
		return Nil, false
	}
	if sym.Base() >= g.Symbols.NumTerminals() {
		return Nil, false
	}
	return sym, true
}

func (g *Grammar) String() string {
	return fmt.Sprintf("Grammar(%s, %d productions, %d terminals, %d nonterminals)",
		g.Name, len(g.prods), g.Symbols.NumTerminals(), g.Symbols.NumNonterminals())
}

// Dump renders every production, one per line, "id: lhs -> rhs".
func (g *Grammar) Dump() string {
	s := ""
	for _, p := range g.prods {
		s += fmt.Sprintf("%d: %s\n", p.ID, p.String(g.Symbols))
	}
	return s
}
