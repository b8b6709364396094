/*
Package glrforge implements the core of a parser-generator toolkit: a
context-free-grammar analysis engine, an LALR(1) table builder, and a
generalized LR (GLR) runtime capable of parsing ambiguous grammars by
forking its parse stack.

Building a Grammar

Grammars are assembled with a grammar builder (see package grammar),
analysed (FIRST/FOLLOW, canonical LR(0) item sets, see packages grammar
and automaton), compiled into ACTION/GOTO tables (see package table), and
finally driven against a token stream by a GLR parser (see package
glrparse).

	b := grammar.NewBuilder("expr")
	b.Start("e")
	b.Left("PLUS")
	b.Rule("e").
		Clause("e PLUS e", sumReducer).
		Clause("NUM", numReducer)
	g, err := b.Finalize()

	a := grammar.Analyze(g)
	cfsm := automaton.Build(g)
	tabs := table.Build(g, a, cfsm, table.Options{Lookahead: table.LALR1})

	p := glrparse.New(g, tabs)
	result, err := p.Parse(tokenStream)

The lexer that produces the token stream, the AST node type returned from
reduction callbacks, code-generation bindings, and the sample grammars
under package examples are all external collaborators; this module's core
is the table generator and the GLR runtime, not a full language front
end.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package glrforge

import "fmt"

// TokType identifies the category of a token, i.e. the terminal symbol it
// instantiates. Applications assign their own values; glrforge treats it
// as an opaque, comparable identifier.
type TokType int32

// Position records where a token (or a synthesized nonterminal's span)
// occurred in the input.
type Position struct {
	Offset      int // byte offset from the start of input
	Line        int // 1-based line number
	ColumnStart int // 1-based column of the first rune
	ColumnEnd   int // 1-based column just behind the last rune
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d-%d(@%d)", p.Line, p.ColumnStart, p.ColumnEnd, p.Offset)
}

// Token is the contract a lexer must satisfy to feed a glrparse.Parser.
// The lexer is an external collaborator: glrforge consumes tokens, it
// does not produce them.
type Token interface {
	Type() TokType
	Value() interface{}
	Pos() Position
}

// BasicToken is a minimal Token implementation supplied for convenience
// (tests, small examples, REPLs). Every constructor parameter is assigned
// to its field; a Token type that silently drops its parameters is a
// bug, not a convention.
type BasicToken struct {
	TType  TokType
	TValue interface{}
	TPos   Position
}

// NewBasicToken builds a BasicToken, assigning every parameter to its
// field.
func NewBasicToken(tt TokType, value interface{}, pos Position) BasicToken {
	return BasicToken{TType: tt, TValue: value, TPos: pos}
}

func (t BasicToken) Type() TokType      { return t.TType }
func (t BasicToken) Value() interface{} { return t.TValue }
func (t BasicToken) Pos() Position      { return t.TPos }

// EOSTokenName and ErrorTokenName are the conventional names of the two
// distinguished terminals every grammar carries: EOS marks end of
// stream, ERROR marks the synthetic panic-mode recovery slot.
const (
	EOSTokenName   = "EOS"
	ErrorTokenName = "ERROR"
)
