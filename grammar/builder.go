package grammar

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/corvid-works/glrforge"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("glrforge.grammar")
}

// Builder assembles a Grammar. Clients add rules, declare precedence and
// associativity, then call Finalize to freeze the grammar into its
// immutable, analysis-ready form.
type Builder struct {
	name         string
	st           *SymbolTable
	prods        []*Production // definition order, ids assigned at Finalize
	start        string
	arrayArgs    bool
	precCounter  int
	ebnfObserver EBNFObserver
	errs         []error
}

// NewBuilder creates an empty grammar builder named name (used only for
// diagnostics and Dump output).
func NewBuilder(name string) *Builder {
	return &Builder{name: name, st: NewSymbolTable()}
}

// SetEBNFObserver installs the callback notified of productions
// inserted by EBNF desugaring.
func (b *Builder) SetEBNFObserver(o EBNFObserver) {
	b.ebnfObserver = o
}

// ArrayArgs switches the grammar to array-argument mode, recorded as
// Grammar.ArrayArgs. Reducers have one signature in both modes and
// always receive the right-hand-side values as a single ordered slice;
// the flag does not change how reducers are called.
func (b *Builder) ArrayArgs() {
	b.arrayArgs = true
}

// Start declares the grammar's start nonterminal.
func (b *Builder) Start(nonterminal string) {
	b.start = nonterminal
}

// Terminal interns name as a terminal, optionally pre-declaring it
// before it is first mentioned in a clause (useful to register a
// terminal that never appears in an RHS, or to fix the interning
// order). An optional precedence level may be given directly for
// terminals that need one without an associativity declaration.
func (b *Builder) Terminal(name string, precedence ...int) Symbol {
	s := b.st.Intern(name, true)
	if len(precedence) > 0 {
		b.st.SetPrecedence(s, precedence[0], AssocNone)
		if precedence[0] > b.precCounter {
			b.precCounter = precedence[0]
		}
	}
	return s
}

// Left declares the given terminals left-associative, at a precedence
// level strictly higher than every previous left/right/nonassoc call.
func (b *Builder) Left(terminals ...string) {
	b.declareAssoc(AssocLeft, terminals)
}

// Right declares the given terminals right-associative, at a new,
// strictly higher precedence level.
func (b *Builder) Right(terminals ...string) {
	b.declareAssoc(AssocRight, terminals)
}

// NonAssoc declares the given terminals non-associative, at a new,
// strictly higher precedence level.
func (b *Builder) NonAssoc(terminals ...string) {
	b.declareAssoc(AssocNonAssoc, terminals)
}

func (b *Builder) declareAssoc(assoc Associativity, terminals []string) {
	b.precCounter++
	level := b.precCounter
	for _, name := range terminals {
		sym := b.st.Intern(name, true)
		b.st.SetPrecedence(sym, level, assoc)
	}
}

// RuleBuilder accumulates alternative clauses (right-hand sides) for one
// left-hand-side nonterminal.
type RuleBuilder struct {
	b   *Builder
	lhs string
}

// Rule opens (or re-opens) the rule for nonterminal lhs; call Clause on
// the result to add one alternative right-hand side at a time.
func (b *Builder) Rule(lhs string) *RuleBuilder {
	return &RuleBuilder{b: b, lhs: lhs}
}

// Clause adds one alternative `lhs -> rhsPattern` production.
// rhsPattern is a whitespace-separated symbol list: uppercase first
// rune means terminal, lowercase means nonterminal, each optionally
// suffixed with one of *, +, ?. An empty rhsPattern declares an
// epsilon-production. precedence, if given, overrides the default
// (precedence of the rightmost terminal in rhs).
func (rb *RuleBuilder) Clause(rhsPattern string, reduce Reducer, precedence ...int) *RuleBuilder {
	lhs := rb.b.st.Intern(rb.lhs, false)
	rhs, err := rb.b.parseRHS(rhsPattern)
	if err != nil {
		rb.b.errs = append(rb.b.errs, fmt.Errorf("rule %s: %w", rb.lhs, err))
		return rb
	}
	var prec *int
	if len(precedence) > 0 {
		p := precedence[0]
		prec = &p
	}
	rb.b.addProductionSymbols(lhs, rhs, reduce, false)
	if prec != nil {
		rb.b.prods[len(rb.b.prods)-1].Precedence = prec
	}
	return rb
}

// Epsilon adds an empty production `lhs -> ε`.
func (rb *RuleBuilder) Epsilon(reduce Reducer) *RuleBuilder {
	lhs := rb.b.st.Intern(rb.lhs, false)
	rb.b.addProductionSymbols(lhs, nil, reduce, false)
	return rb
}

// addProductionSymbols appends a production with an already-resolved
// symbol sequence. synthetic marks productions inserted by EBNF
// desugaring. Returns the inserted Production so EBNF desugaring can
// hand it to the observer.
func (b *Builder) addProductionSymbols(lhs Symbol, rhs []Symbol, reduce Reducer, synthetic bool) *Production {
	p := &Production{
		LHS:       lhs,
		RHS:       rhs,
		Reduce:    reduce,
		synthetic: synthetic,
	}
	b.prods = append(b.prods, p)
	return p
}

// parseRHS tokenizes a clause pattern, interning each symbol (uppercase
// first rune means terminal, lowercase nonterminal) and desugaring any
// *, +, ? suffix into a synthesized nonterminal.
func (b *Builder) parseRHS(pattern string) ([]Symbol, error) {
	fields := strings.Fields(pattern)
	rhs := make([]Symbol, 0, len(fields))
	for _, tok := range fields {
		name := tok
		var op *EBNFOp
		if n := len(tok); n > 0 {
			switch tok[n-1] {
			case '*':
				o := EBNFStar
				op = &o
				name = tok[:n-1]
			case '+':
				o := EBNFPlus
				op = &o
				name = tok[:n-1]
			case '?':
				o := EBNFOptional
				op = &o
				name = tok[:n-1]
			}
		}
		if name == "" {
			return nil, fmt.Errorf("empty symbol name in rhs token %q", tok)
		}
		isTerminal := isTerminalName(name)
		base := b.st.Intern(name, isTerminal)
		if op != nil {
			rhs = append(rhs, b.desugarEBNF(base, *op))
		} else {
			rhs = append(rhs, base)
		}
	}
	return rhs, nil
}

// isTerminalName applies the naming convention: uppercase first rune
// denotes a terminal, lowercase a nonterminal. Convention, not enforced
// once interned.
func isTerminalName(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

// Finalize freezes the builder into an immutable Grammar: it interns the
// distinguished EOS and ERROR terminals, validates that every RHS symbol
// is either a declared terminal or the LHS of some production, inserts
// the augmented start production `S' -> start EOS` as production id 0,
// and assigns dense, contiguous ids to every other production in
// definition order.
func (b *Builder) Finalize() (*Grammar, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("grammar %q has %d definition error(s): %v", b.name, len(b.errs), b.errs[0])
	}
	if b.start == "" {
		return nil, fmt.Errorf("grammar %q: no start symbol declared", b.name)
	}
	start, ok := b.st.Lookup(b.start)
	if !ok || start.IsTerminal() {
		return nil, fmt.Errorf("grammar %q: start symbol %q is not a declared nonterminal", b.name, b.start)
	}

	eos := b.st.Intern(glrforge.EOSTokenName, true)
	errSym := b.st.Intern(glrforge.ErrorTokenName, true)

	byLHS := map[Symbol][]*Production{}
	for _, p := range b.prods {
		byLHS[p.LHS] = append(byLHS[p.LHS], p)
	}

	for _, p := range b.prods {
		for _, s := range p.RHS {
			if s.IsTerminal() {
				continue
			}
			if _, defined := byLHS[s]; !defined {
				return nil, fmt.Errorf("grammar %q: nonterminal %q is used but never defined",
					b.name, b.st.Name(s))
			}
		}
	}

	augmented := &Production{ID: 0, LHS: b.st.Intern(AugmentedStart, false), RHS: []Symbol{start, eos}}
	all := make([]*Production, 0, len(b.prods)+1)
	all = append(all, augmented)
	for i, p := range b.prods {
		p.ID = ProductionID(i + 1)
		all = append(all, p)
	}
	byLHS[augmented.LHS] = []*Production{augmented}

	g := &Grammar{
		Name:      b.name,
		Symbols:   b.st,
		Start:     start,
		EOS:       eos,
		Error:     errSym,
		ArrayArgs: b.arrayArgs,
		prods:     all,
		byLHS:     byLHS,
	}
	tracer().Infof("finalized grammar %q: %d productions, %d terminals, %d nonterminals",
		g.Name, len(all), b.st.NumTerminals(), b.st.NumNonterminals())
	return g, nil
}
