/*
Package iteratable implements a small destructive-iteration set,
suitable for the kind of set algebra closure/goto algorithms need: build
up a set while iterating over it, without the aliasing hazards of
iterating a map that's being mutated underneath you.

Unusually, set operations tend to be destructive: Union mutates the
receiver rather than returning a new set.
*/
package iteratable

// Set is a set of arbitrary comparable values with a built-in cursor for
// destructive iteration.
type Set struct {
	index  map[interface{}]int
	values []interface{}
	cursor int
}

// New creates an empty set.
func New() *Set {
	return &Set{index: map[interface{}]int{}}
}

// Add inserts v into the set if not already present. Returns the set for
// chaining.
func (s *Set) Add(v interface{}) *Set {
	if _, ok := s.index[v]; ok {
		return s
	}
	s.index[v] = len(s.values)
	s.values = append(s.values, v)
	return s
}

// Contains reports whether v is a member of the set.
func (s *Set) Contains(v interface{}) bool {
	_, ok := s.index[v]
	return ok
}

// Size returns the number of members.
func (s *Set) Size() int {
	return len(s.values)
}

// Empty reports whether the set has no members.
func (s *Set) Empty() bool {
	return len(s.values) == 0
}

// Values returns a snapshot slice of all members, in insertion order.
func (s *Set) Values() []interface{} {
	out := make([]interface{}, len(s.values))
	copy(out, s.values)
	return out
}

// Copy returns a shallow copy of s.
func (s *Set) Copy() *Set {
	c := New()
	for _, v := range s.values {
		c.Add(v)
	}
	return c
}

// Union adds every member of other to s, in place, and returns s.
func (s *Set) Union(other *Set) *Set {
	if other == nil {
		return s
	}
	for _, v := range other.values {
		s.Add(v)
	}
	return s
}

// Difference returns a new set holding the members of other that are not
// already present in s; it does not mutate s.
func (s *Set) Difference(other *Set) *Set {
	d := New()
	if other == nil {
		return d
	}
	for _, v := range other.values {
		if !s.Contains(v) {
			d.Add(v)
		}
	}
	return d
}

// Equals reports whether s and other contain exactly the same members,
// irrespective of insertion order.
func (s *Set) Equals(other *Set) bool {
	if other == nil {
		return s.Empty()
	}
	if len(s.values) != len(other.values) {
		return false
	}
	for _, v := range s.values {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// IterateOnce resets the destructive cursor to the start of the set's
// current member list. Values added to the set *during* iteration (by
// Next callers) are visited too, mirroring the fixed-point idiom closure
// algorithms rely on: keep iterating until Next stops finding new
// members.
func (s *Set) IterateOnce() {
	s.cursor = 0
}

// Next advances the cursor and reports whether a further member is
// available. Members appended to the set after IterateOnce was called
// are visited as the cursor reaches them, so a caller may grow the set
// from within the loop to reach a fixed point.
func (s *Set) Next() bool {
	if s.cursor >= len(s.values) {
		return false
	}
	s.cursor++
	return true
}

// Item returns the member the cursor currently points to. Only valid
// after a Next call that returned true.
func (s *Set) Item() interface{} {
	if s.cursor == 0 || s.cursor > len(s.values) {
		return nil
	}
	return s.values[s.cursor-1]
}
