package table

import (
	"fmt"

	"github.com/corvid-works/glrforge/automaton"
	"github.com/corvid-works/glrforge/grammar"
	"github.com/corvid-works/glrforge/internal/sparsetab"
)

// LookaheadMode selects how reduce-item lookaheads are computed.
type LookaheadMode int

const (
	// LALR1 runs the full fixed-point lookahead propagation.
	LALR1 LookaheadMode = iota
	// LR0 skips lookahead computation entirely: reductions fire on
	// every terminal, and the GLR runtime forks through the resulting
	// conflicts.
	LR0
)

// PrecedenceMode selects whether declared terminal/production
// precedence and associativity are consulted to resolve shift/reduce
// conflicts before falling back to reporting them as GLR forks.
type PrecedenceMode int

const (
	PrecedenceEnabled PrecedenceMode = iota
	PrecedenceDisabled
)

// ExplainMode selects where a human-readable account of every
// conflict and its resolution is written.
type ExplainMode int

const (
	ExplainOff ExplainMode = iota
	ExplainStdout
	ExplainFile
)

// Options configures table construction.
type Options struct {
	Lookahead  LookaheadMode
	Precedence PrecedenceMode
	Explain    ExplainMode
	ExplainTo  string // path, when Explain == ExplainFile
}

// ActionKind distinguishes the four kinds of parser action.
type ActionKind int

const (
	ActionShift ActionKind = iota
	ActionReduce
	ActionAccept
	ActionError
)

func (k ActionKind) String() string {
	switch k {
	case ActionShift:
		return "shift"
	case ActionReduce:
		return "reduce"
	case ActionAccept:
		return "accept"
	default:
		return "error"
	}
}

// Action is one ACTION table cell. For ActionShift, Target is the next
// state. For ActionReduce, Prod is the production to reduce by.
type Action struct {
	Kind   ActionKind
	Target automaton.StateID
	Prod   *grammar.Production
}

func (a Action) String(st *grammar.SymbolTable) string {
	switch a.Kind {
	case ActionShift:
		return fmt.Sprintf("shift %d", a.Target)
	case ActionReduce:
		return fmt.Sprintf("reduce %s", a.Prod.String(st))
	case ActionAccept:
		return "accept"
	default:
		return "error"
	}
}

// ConflictKind distinguishes shift/reduce from reduce/reduce conflicts.
type ConflictKind int

const (
	ShiftReduce ConflictKind = iota
	ReduceReduce
)

// Conflict records a cell of the ACTION table where more than one
// action applies. Resolved reports whether precedence/associativity
// settled the cell, either by keeping a single winner or by clearing
// the cell on a non-associative tie; when false, every action in
// Actions survives into the table as a GLR fork.
type Conflict struct {
	Kind     ConflictKind
	State    automaton.StateID
	Symbol   grammar.Symbol
	Actions  []Action
	Resolved bool
	Reason   string
}

// Table is the finished ACTION/GOTO table pair plus the automaton and
// grammar it was built from.
type Table struct {
	Grammar   *grammar.Grammar
	Automaton *automaton.CFSM

	action   *sparsetab.Table // rows = states, cols = terminals (by base id)
	goExists *sparsetab.Table // rows = states, cols = nonterminals (by base id)
	actions  map[int32]Action // encoded action id -> Action
	nextID   int32

	Conflicts []Conflict
}

// encode/decode pack an Action into an int32 so it can live in a
// sparsetab cell; the table owns the mapping back to full Action values
// since Action.Prod is a pointer sparsetab cannot store directly.
func (t *Table) encode(a Action) int32 {
	id := t.nextID
	t.nextID++
	t.actions[id] = a
	return id
}

// Action returns the parser action for (state, terminal), and whether
// one exists. If the cell has a conflict (multiple forks), ActionsAt
// returns all of them; Action returns the first.
func (t *Table) Action(s automaton.StateID, terminal grammar.Symbol) (Action, bool) {
	acts := t.ActionsAt(s, terminal)
	if len(acts) == 0 {
		return Action{}, false
	}
	return acts[0], true
}

// ActionsAt returns every action registered for (state, terminal);
// more than one only when the cell is an unresolved GLR fork point.
func (t *Table) ActionsAt(s automaton.StateID, terminal grammar.Symbol) []Action {
	ids := t.action.Values(int(s), termCol(terminal))
	out := make([]Action, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.actions[id])
	}
	return out
}

// Goto returns the GOTO table's target state for (state, nonterminal).
func (t *Table) Goto(s automaton.StateID, nonterminal grammar.Symbol) (automaton.StateID, bool) {
	v := t.goExists.Value(int(s), ntCol(nonterminal))
	if v == t.goExists.NullValue() {
		return 0, false
	}
	return automaton.StateID(v), true
}

// termCol/ntCol map a Symbol to a dense column index for the sparse
// table: Symbol's bit-packed base ordinal is already dense per kind.
func termCol(s grammar.Symbol) int {
	return s.Base()
}

func ntCol(s grammar.Symbol) int {
	return s.Base()
}
