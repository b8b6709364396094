/*
Package tableio persists finalized ACTION/GOTO tables to disk and loads
them back, guarded by a fingerprint freshness check.

github.com/cnf/structhash hashes an ordered, exported snapshot of the
grammar's productions, symbol names, precedence declarations, and
builder options into a stable fingerprint string. The binary encoding
is encoding/gob over exported snapshot structs (table.ActionEntry,
table.GotoEntry), versioned with a leading format-version byte. No
compatibility is promised across format versions, so a version mismatch
is treated the same as a missing file: regenerate and overwrite.
*/
package tableio

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/cnf/structhash"

	"github.com/corvid-works/glrforge/automaton"
	"github.com/corvid-works/glrforge/grammar"
	"github.com/corvid-works/glrforge/table"
)

// formatVersion is bumped whenever the persisted layout changes
// incompatibly; Load refuses to decode a file stamped with a different
// version rather than guess at backward compatibility.
const formatVersion byte = 1

type fingerprintSnapshot struct {
	Terminals    []string
	Nonterminals []string
	Productions  []prodSnapshot
	Precedence   []precSnapshot
	Lookahead    int
	Precedences  int
}

type prodSnapshot struct {
	ID  int32
	LHS string
	RHS []string
}

type precSnapshot struct {
	Terminal string
	Level    int
	Assoc    uint8
}

// Fingerprint computes a stable hash over g's ordered productions,
// symbol names, and precedence declarations, plus the table options
// that affect construction, but never the original clause text, so
// reformatting a clause without changing its meaning leaves the
// fingerprint untouched.
func Fingerprint(g *grammar.Grammar, opts table.Options) (string, error) {
	snap := fingerprintSnapshot{
		Lookahead:   int(opts.Lookahead),
		Precedences: int(opts.Precedence),
	}
	g.Symbols.EachTerminal(func(s grammar.Symbol) {
		snap.Terminals = append(snap.Terminals, g.Symbols.Name(s))
	})
	g.Symbols.EachNonterminal(func(s grammar.Symbol) {
		snap.Nonterminals = append(snap.Nonterminals, g.Symbols.Name(s))
	})
	for _, p := range g.Productions() {
		rhs := make([]string, len(p.RHS))
		for i, s := range p.RHS {
			rhs[i] = g.Symbols.Name(s)
		}
		snap.Productions = append(snap.Productions, prodSnapshot{
			ID: int32(p.ID), LHS: g.Symbols.Name(p.LHS), RHS: rhs,
		})
	}
	g.Symbols.EachTerminal(func(s grammar.Symbol) {
		level, assoc := g.Symbols.Precedence(s)
		if level != 0 {
			snap.Precedence = append(snap.Precedence, precSnapshot{
				Terminal: g.Symbols.Name(s), Level: level, Assoc: uint8(assoc),
			})
		}
	})
	h, err := structhash.Hash(snap, 1)
	if err != nil {
		return "", fmt.Errorf("tableio: fingerprint: %w", err)
	}
	return h, nil
}

type persisted struct {
	Fingerprint string
	Actions     []table.ActionEntry
	Gotos       []table.GotoEntry
}

// Write persists t's ACTION/GOTO tables to path, tagged with g's
// fingerprint under opts.
func Write(path string, g *grammar.Grammar, t *table.Table, opts table.Options) error {
	fp, err := Fingerprint(g, opts)
	if err != nil {
		return err
	}
	actions, gotos := t.Snapshot()
	p := persisted{Fingerprint: fp, Actions: actions, Gotos: gotos}

	var buf bytes.Buffer
	buf.WriteByte(formatVersion)
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("tableio: write %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("tableio: write %s: %w", path, err)
	}
	return nil
}

// Load reads path and installs its persisted tables if, and only if,
// the file exists, was written under the current format version, and
// its fingerprint matches g under opts; otherwise it reports a cache
// miss (no error) so the caller regenerates the table and overwrites
// the file.
func Load(path string, g *grammar.Grammar, opts table.Options) (*table.Table, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("tableio: load %s: %w", path, err)
	}
	if len(data) == 0 || data[0] != formatVersion {
		return nil, false, nil
	}

	var p persisted
	if err := gob.NewDecoder(bytes.NewReader(data[1:])).Decode(&p); err != nil {
		return nil, false, fmt.Errorf("tableio: load %s: %w", path, err)
	}

	fp, err := Fingerprint(g, opts)
	if err != nil {
		return nil, false, err
	}
	if fp != p.Fingerprint {
		return nil, false, nil
	}

	cfsm := automaton.Build(g)
	t := table.FromSnapshot(g, cfsm, p.Actions, p.Gotos)
	return t, true, nil
}

// BuildWithCache is the one-call form of the cache protocol: load the
// table from path on a fingerprint match, otherwise build it from g and
// overwrite path with the fresh result. An empty path disables caching
// and just builds.
func BuildWithCache(path string, g *grammar.Grammar, opts table.Options) (*table.Table, error) {
	if path != "" {
		t, hit, err := Load(path, g, opts)
		if err != nil {
			return nil, err
		}
		if hit {
			return t, nil
		}
	}
	a := grammar.Analyze(g)
	c := automaton.Build(g)
	t := table.Build(g, a, c, opts)
	if path != "" {
		if err := Write(path, g, t, opts); err != nil {
			return nil, err
		}
	}
	return t, nil
}
