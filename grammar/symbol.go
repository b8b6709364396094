package grammar

import "fmt"

// Symbol is an interned grammar symbol: either a terminal or a
// nonterminal, identified by a dense numeric id packed together with a
// kind bit. Symbols are comparable and hashable, so they may be used
// directly as map keys in item sets and tables.
type Symbol uint32

const (
	symbolNil      = Symbol(0)
	terminalBit    = uint32(1) << 31
	symbolBaseMask = terminalBit - 1
)

// Nil is the zero Symbol, never produced by a SymbolTable.
const Nil = symbolNil

func newTerminal(base uint32) Symbol {
	return Symbol(terminalBit | base)
}

func newNonterminal(base uint32) Symbol {
	return Symbol(base)
}

// IsTerminal reports whether s denotes a terminal symbol.
func (s Symbol) IsTerminal() bool {
	return uint32(s)&terminalBit != 0
}

// IsNonterminal reports whether s denotes a nonterminal symbol.
func (s Symbol) IsNonterminal() bool {
	return s != symbolNil && !s.IsTerminal()
}

// IsNil reports whether s is the zero value (no symbol).
func (s Symbol) IsNil() bool {
	return s == symbolNil
}

// base returns the dense, kind-local ordinal of s (0-based).
func (s Symbol) base() uint32 {
	return uint32(s) & symbolBaseMask
}

// Base returns the dense, kind-local ordinal of s (0-based): terminals
// and nonterminals are numbered in separate, independently-dense
// spaces, which is what lets callers outside this package (e.g. the
// table package's sparse ACTION/GOTO columns) use it directly as a
// column index.
func (s Symbol) Base() int {
	return int(s.base())
}

func (s Symbol) String() string {
	if s.IsNil() {
		return "<nil-symbol>"
	}
	if s.IsTerminal() {
		return fmt.Sprintf("t%d", s.base())
	}
	return fmt.Sprintf("n%d", s.base())
}

// SymbolTable interns symbol names to Symbol values, separately
// numbering terminals and nonterminals.
type SymbolTable struct {
	byName    map[string]Symbol
	termNames []string
	ntNames   []string
	// precedence/associativity, indexed by terminal base id; 0 means
	// "no declared precedence".
	termPrec  []int
	termAssoc []Associativity
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: map[string]Symbol{}}
}

// Intern returns the Symbol for name, creating it as a terminal or
// nonterminal (per isTerminal) if this is the first time name is seen.
// Interning a name that already exists returns the existing Symbol
// whatever isTerminal says; a kind mismatch is not reported.
func (t *SymbolTable) Intern(name string, isTerminal bool) Symbol {
	if s, ok := t.byName[name]; ok {
		return s
	}
	var s Symbol
	if isTerminal {
		s = newTerminal(uint32(len(t.termNames)))
		t.termNames = append(t.termNames, name)
		t.termPrec = append(t.termPrec, 0)
		t.termAssoc = append(t.termAssoc, AssocNone)
	} else {
		s = newNonterminal(uint32(len(t.ntNames)))
		t.ntNames = append(t.ntNames, name)
	}
	t.byName[name] = s
	return s
}

// Lookup returns the Symbol interned for name and whether it exists.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// Name returns the declared name of s.
func (t *SymbolTable) Name(s Symbol) string {
	if s.IsNil() {
		return ""
	}
	if s.IsTerminal() {
		return t.termNames[s.base()]
	}
	return t.ntNames[s.base()]
}

// NumTerminals returns how many distinct terminals have been interned.
func (t *SymbolTable) NumTerminals() int { return len(t.termNames) }

// NumNonterminals returns how many distinct nonterminals have been
// interned.
func (t *SymbolTable) NumNonterminals() int { return len(t.ntNames) }

// EachTerminal calls fn once per interned terminal, in declaration
// order.
func (t *SymbolTable) EachTerminal(fn func(Symbol)) {
	for i := range t.termNames {
		fn(newTerminal(uint32(i)))
	}
}

// EachNonterminal calls fn once per interned nonterminal, in declaration
// order.
func (t *SymbolTable) EachNonterminal(fn func(Symbol)) {
	for i := range t.ntNames {
		fn(newNonterminal(uint32(i)))
	}
}

// Associativity is the tie-breaking discipline within one precedence
// level.
type Associativity uint8

const (
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
	AssocNonAssoc
)

func (a Associativity) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNonAssoc:
		return "nonassoc"
	default:
		return "none"
	}
}

// Precedence returns the declared precedence level of terminal s (0 if
// none was declared) and its associativity.
func (t *SymbolTable) Precedence(s Symbol) (level int, assoc Associativity) {
	if !s.IsTerminal() {
		return 0, AssocNone
	}
	return t.termPrec[s.base()], t.termAssoc[s.base()]
}

// SetPrecedence assigns a precedence level and associativity to a
// terminal. Called by left/right/nonassoc declarations, each of which
// allocates a strictly greater level than the last (see Builder).
func (t *SymbolTable) SetPrecedence(s Symbol, level int, assoc Associativity) {
	if !s.IsTerminal() {
		return
	}
	t.termPrec[s.base()] = level
	t.termAssoc[s.base()] = assoc
}
