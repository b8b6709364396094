package grammar

import (
	"strings"

	"github.com/corvid-works/glrforge"
	"github.com/corvid-works/glrforge/env"
)

// Value is the dynamic value domain a reducer synthesizes. glrforge
// does not prescribe an AST node type; callers return whatever values
// make sense to them.
type Value = interface{}

// Reducer synthesizes a single value from the values popped off the
// parse stack for one production's right-hand side. It runs inside the
// caller-supplied environment and receives the source positions spanned
// by each popped value, so it can build position-aware AST nodes or
// report errors with accurate spans.
//
// A Reducer protecting an ERROR production may return a non-nil error;
// the GLR runtime ends the parse and returns it wrapped as a
// glrparse.HandledError. Errors from any other reducer are returned
// unwrapped.
type Reducer func(e *env.Environment, values []Value, positions []glrforge.Position) (Value, error)

// ProductionID is the dense, definition-order identifier of a
// production. ProductionID 0 is always the augmented start production
// inserted by Finalize.
type ProductionID int32

// Production is a single grammar rule `lhs -> rhs`, with optional
// explicit precedence and a reduction callback.
type Production struct {
	ID         ProductionID
	LHS        Symbol
	RHS        []Symbol
	Precedence *int // nil: derive from rightmost terminal in RHS
	Reduce     Reducer

	// synthetic marks productions inserted by EBNF desugaring (so
	// explain dumps and error messages can note their provenance).
	synthetic bool
	ebnfOp    EBNFOp
}

// IsEpsilon reports whether this production's right-hand side is empty.
func (p *Production) IsEpsilon() bool {
	return len(p.RHS) == 0
}

// IsSynthetic reports whether p was synthesized by EBNF desugaring
// rather than declared directly.
func (p *Production) IsSynthetic() bool {
	return p.synthetic
}

func (p *Production) String(st *SymbolTable) string {
	var b strings.Builder
	b.WriteString(st.Name(p.LHS))
	b.WriteString(" ->")
	if len(p.RHS) == 0 {
		b.WriteString(" ε")
	}
	for _, s := range p.RHS {
		b.WriteString(" ")
		b.WriteString(st.Name(s))
	}
	return b.String()
}

// EffectivePrecedence resolves the production's precedence level and
// associativity: an explicit override wins, otherwise the precedence of
// the rightmost terminal in RHS, otherwise "no precedence" (ok == false).
func (p *Production) EffectivePrecedence(st *SymbolTable) (level int, assoc Associativity, ok bool) {
	if p.Precedence != nil {
		return *p.Precedence, AssocNone, true
	}
	for i := len(p.RHS) - 1; i >= 0; i-- {
		if p.RHS[i].IsTerminal() {
			lvl, as := st.Precedence(p.RHS[i])
			if lvl == 0 {
				return 0, AssocNone, false
			}
			return lvl, as, true
		}
	}
	return 0, AssocNone, false
}
