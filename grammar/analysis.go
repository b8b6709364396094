package grammar

// Warning is a non-fatal diagnostic produced during analysis, e.g. an
// unreachable or unproductive nonterminal. Warnings never fail
// finalization.
type Warning struct {
	Nonterminal Symbol
	Reason      string
}

func (w Warning) String() string {
	return w.Reason
}

// Analysis computes and caches FIRST/FOLLOW/nullable for a finalized
// Grammar by fixed-point iteration, and flags unreachable or
// unproductive nonterminals. Split out from Grammar itself so a Grammar
// stays a plain data model while Analysis holds the (larger) derived
// sets.
type Analysis struct {
	g        *Grammar
	nullable map[Symbol]bool
	first    map[Symbol]*symbolSet
	follow   map[Symbol]*symbolSet
	warnings []Warning
}

// symbolSet is a small set of Symbol values, with an explicit epsilon
// marker so FIRST sets can record nullability.
type symbolSet struct {
	syms    map[Symbol]bool
	epsilon bool
}

func newSymbolSet() *symbolSet {
	return &symbolSet{syms: map[Symbol]bool{}}
}

func (s *symbolSet) add(sym Symbol) bool {
	if s.syms[sym] {
		return false
	}
	s.syms[sym] = true
	return true
}

func (s *symbolSet) addEpsilon() bool {
	if s.epsilon {
		return false
	}
	s.epsilon = true
	return true
}

// union adds every member of other (including its epsilon flag, except
// callers computing FOLLOW sets strip epsilon explicitly) into s,
// reporting whether s changed.
func (s *symbolSet) union(other *symbolSet, includeEpsilon bool) bool {
	changed := false
	for sym := range other.syms {
		if s.add(sym) {
			changed = true
		}
	}
	if includeEpsilon && other.epsilon && !s.epsilon {
		s.epsilon = true
		changed = true
	}
	return changed
}

// Symbols returns the non-epsilon members of the set, order unspecified.
func (s *symbolSet) Symbols() []Symbol {
	out := make([]Symbol, 0, len(s.syms))
	for sym := range s.syms {
		out = append(out, sym)
	}
	return out
}

// Analyze runs FIRST/FOLLOW/nullable computation and reachability
// checks over g, returning the cached results.
func Analyze(g *Grammar) *Analysis {
	a := &Analysis{g: g}
	a.computeNullable()
	a.computeFirst()
	a.computeFollow()
	a.checkReachability()
	return a
}

func (a *Analysis) Grammar() *Grammar { return a.g }

// Warnings returns the non-fatal diagnostics gathered during analysis.
func (a *Analysis) Warnings() []Warning { return a.warnings }

// Nullable reports whether nonterminal n can derive the empty string.
func (a *Analysis) Nullable(n Symbol) bool {
	return a.nullable[n]
}

func (a *Analysis) computeNullable() {
	a.nullable = map[Symbol]bool{}
	changed := true
	for changed {
		changed = false
		for _, p := range a.g.prods {
			if a.nullable[p.LHS] {
				continue
			}
			if p.IsEpsilon() {
				a.nullable[p.LHS] = true
				changed = true
				continue
			}
			allNullable := true
			for _, s := range p.RHS {
				if s.IsTerminal() || !a.nullable[s] {
					allNullable = false
					break
				}
			}
			if allNullable {
				a.nullable[p.LHS] = true
				changed = true
			}
		}
	}
}

// First returns FIRST(α) for a single symbol α.
func (a *Analysis) First(sym Symbol) []Symbol {
	return a.firstOfSymbol(sym).Symbols()
}

func (a *Analysis) firstOfSymbol(sym Symbol) *symbolSet {
	if sym.IsTerminal() {
		s := newSymbolSet()
		s.add(sym)
		return s
	}
	if s, ok := a.first[sym]; ok {
		return s
	}
	return newSymbolSet()
}

func (a *Analysis) computeFirst() {
	a.first = map[Symbol]*symbolSet{}
	a.g.Symbols.EachNonterminal(func(n Symbol) {
		a.first[n] = newSymbolSet()
	})
	changed := true
	for changed {
		changed = false
		for _, p := range a.g.prods {
			s := a.firstOfSequence(p.RHS)
			dst := a.first[p.LHS]
			if dst.union(s, true) {
				changed = true
			}
		}
	}
}

// firstOfSequence computes FIRST(α) for a sentential form α by the
// usual recurrence:
//
//	first(ε) = {ε}
//	first(a α) = {a}
//	first(N α) = (first(N) \ {ε}) ∪ (if ε ∈ first(N) then first(α) else ∅)
func (a *Analysis) firstOfSequence(seq []Symbol) *symbolSet {
	result := newSymbolSet()
	if len(seq) == 0 {
		result.addEpsilon()
		return result
	}
	head, rest := seq[0], seq[1:]
	if head.IsTerminal() {
		result.add(head)
		return result
	}
	headFirst := a.firstOfSymbol(head)
	for sym := range headFirst.syms {
		result.add(sym)
	}
	if headFirst.epsilon {
		tail := a.firstOfSequence(rest)
		result.union(tail, true)
	}
	return result
}

// FirstOfSequence returns FIRST(seq) for an arbitrary sentential form
// seq, exported so the table package's LALR(1) lookahead propagation
// can compute FIRST(β a) for the β following a nonterminal in a dotted
// item. The second return reports whether ε ∈ FIRST(seq), i.e. whether
// seq is nullable.
func (a *Analysis) FirstOfSequence(seq []Symbol) ([]Symbol, bool) {
	s := a.firstOfSequence(seq)
	return s.Symbols(), s.epsilon
}

// Follow returns FOLLOW(N) for nonterminal N.
func (a *Analysis) Follow(n Symbol) []Symbol {
	if s, ok := a.follow[n]; ok {
		return s.Symbols()
	}
	return nil
}

// FollowHasEOS reports whether EOS ∈ FOLLOW(N).
func (a *Analysis) FollowHasEOS(n Symbol) bool {
	s, ok := a.follow[n]
	return ok && s.syms[a.g.EOS]
}

func (a *Analysis) computeFollow() {
	a.follow = map[Symbol]*symbolSet{}
	a.g.Symbols.EachNonterminal(func(n Symbol) {
		a.follow[n] = newSymbolSet()
	})
	a.follow[a.g.Start].add(a.g.EOS) // follow(start) always holds EOS

	changed := true
	for changed {
		changed = false
		for _, p := range a.g.prods {
			for i, sym := range p.RHS {
				if sym.IsTerminal() {
					continue
				}
				rest := p.RHS[i+1:]
				firstRest := a.firstOfSequence(rest)
				dst := a.follow[sym]
				for t := range firstRest.syms {
					if dst.add(t) {
						changed = true
					}
				}
				if firstRest.epsilon || len(rest) == 0 {
					lhsFollow := a.follow[p.LHS]
					for t := range lhsFollow.syms {
						if dst.add(t) {
							changed = true
						}
					}
				}
			}
		}
	}
}

// checkReachability flags nonterminals unreachable from the start
// symbol and nonterminals that can never derive a string of terminals
// (unproductive). Neither is fatal.
func (a *Analysis) checkReachability() {
	reachable := map[Symbol]bool{a.g.Start: true}
	worklist := []Symbol{a.g.Start}
	for len(worklist) > 0 {
		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, p := range a.g.byLHS[n] {
			for _, s := range p.RHS {
				if s.IsNonterminal() && !reachable[s] {
					reachable[s] = true
					worklist = append(worklist, s)
				}
			}
		}
	}
	a.g.Symbols.EachNonterminal(func(n Symbol) {
		if !reachable[n] {
			a.warnings = append(a.warnings, Warning{
				Nonterminal: n,
				Reason:      "nonterminal " + a.g.Symbols.Name(n) + " is unreachable from the start symbol",
			})
		}
	})

	productive := map[Symbol]bool{}
	changed := true
	for changed {
		changed = false
		for _, p := range a.g.prods {
			if productive[p.LHS] {
				continue
			}
			ok := true
			for _, s := range p.RHS {
				if s.IsNonterminal() && !productive[s] {
					ok = false
					break
				}
			}
			if ok {
				productive[p.LHS] = true
				changed = true
			}
		}
	}
	a.g.Symbols.EachNonterminal(func(n Symbol) {
		if !productive[n] {
			a.warnings = append(a.warnings, Warning{
				Nonterminal: n,
				Reason:      "nonterminal " + a.g.Symbols.Name(n) + " is unproductive (cannot derive a terminal string)",
			})
		}
	})
}
