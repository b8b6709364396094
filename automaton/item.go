// Package automaton builds the canonical collection of LR(0) item sets
// (the characteristic finite state machine, or CFSM) for a grammar:
// closure and goto over dotted items, deterministic state numbering,
// and the goto function package table compiles into ACTION/GOTO cells.
package automaton

import (
	"fmt"

	"github.com/corvid-works/glrforge/grammar"
	"golang.org/x/exp/slices"
)

// Item is a dotted production: production p with the dot before
// RHS[Dot]. Dot == len(RHS) marks a reduce item.
type Item struct {
	Prod *grammar.Production
	Dot  int
}

// Key returns a value suitable as a map key / set member for Item,
// identifying it by (production id, dot) rather than by the
// *grammar.Production pointer. In practice Prod is always the same
// pointer taken from Grammar.Productions(), so plain struct equality
// already works; Key exists to make identity by production id explicit
// at call sites building sets keyed by item identity.
func (it Item) Key() [2]int {
	return [2]int{int(it.Prod.ID), it.Dot}
}

// AtEnd reports whether the dot has reached the end of the production's
// RHS (a reduce item).
func (it Item) AtEnd() bool {
	return it.Dot >= len(it.Prod.RHS)
}

// NextSymbol returns the symbol immediately after the dot, and whether
// one exists (false for a reduce item).
func (it Item) NextSymbol() (grammar.Symbol, bool) {
	if it.AtEnd() {
		return grammar.Nil, false
	}
	return it.Prod.RHS[it.Dot], true
}

// Advance returns the item with the dot moved one position to the
// right. Callers must not call Advance on a reduce item.
func (it Item) Advance() Item {
	return Item{Prod: it.Prod, Dot: it.Dot + 1}
}

func (it Item) String(st *grammar.SymbolTable) string {
	lhs := st.Name(it.Prod.LHS)
	parts := "."
	for i, s := range it.Prod.RHS {
		if i == it.Dot {
			parts += " ."
		}
		parts += " " + st.Name(s)
	}
	if it.AtEnd() {
		parts += " ."
	}
	return fmt.Sprintf("%s -> %s", lhs, parts[2:])
}

// ItemSet is an unordered, deduplicated collection of items, keyed by
// (production id, dot position) so closure/goto can test membership in
// constant time.
type ItemSet struct {
	byKey map[[2]int]Item
}

// NewItemSet creates an empty item set.
func NewItemSet() *ItemSet {
	return &ItemSet{byKey: map[[2]int]Item{}}
}

// NewItemSetOf creates an item set containing the given items.
func NewItemSetOf(items ...Item) *ItemSet {
	s := NewItemSet()
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts it if not already present, reporting whether the set
// changed.
func (s *ItemSet) Add(it Item) bool {
	k := it.Key()
	if _, ok := s.byKey[k]; ok {
		return false
	}
	s.byKey[k] = it
	return true
}

// Contains reports whether it is a member.
func (s *ItemSet) Contains(it Item) bool {
	_, ok := s.byKey[it.Key()]
	return ok
}

// Len returns the number of items.
func (s *ItemSet) Len() int {
	return len(s.byKey)
}

// Items returns the members in a stable order: by production id, then
// dot position. This ordering is what makes two structurally identical
// item sets compare equal via Fingerprint regardless of insertion
// order.
func (s *ItemSet) Items() []Item {
	out := make([]Item, 0, len(s.byKey))
	for _, it := range s.byKey {
		out = append(out, it)
	}
	slices.SortFunc(out, func(a, b Item) int {
		if a.Prod.ID != b.Prod.ID {
			return int(a.Prod.ID) - int(b.Prod.ID)
		}
		return a.Dot - b.Dot
	})
	return out
}

// Fingerprint returns a string uniquely determined by the set's
// membership (independent of insertion order), used as the CFSM's
// state-identity key when deciding whether a goto target is a
// previously built state.
func (s *ItemSet) Fingerprint() string {
	fp := ""
	for _, it := range s.Items() {
		fp += fmt.Sprintf("%d.%d|", it.Prod.ID, it.Dot)
	}
	return fp
}
