package glrparse

import "github.com/corvid-works/glrforge/env"

// AcceptMode selects how many accepted derivations Parse returns.
type AcceptMode int

const (
	// AcceptFirst returns as soon as any spine reaches Accept.
	AcceptFirst AcceptMode = iota
	// AcceptAll runs every spine to EOS and returns every accepted
	// derivation's value.
	AcceptAll
)

// TreeMode selects where an accepted derivation's parse tree is written
// as Graphviz DOT.
type TreeMode int

const (
	TreeOff TreeMode = iota
	TreeStdout
	TreeFile
)

// TraceMode selects where the verbose trace is written. The trace holds
// one line per input token the parser acts on (type, value, position);
// shift, reduce and accept actions are not written to it, only to the
// package tracer.
type TraceMode int

const (
	TraceOff TraceMode = iota
	TraceStdout
	TraceFile
)

// Options configures one Parse call.
type Options struct {
	Accept      AcceptMode
	Env         *env.Environment
	ParseTree   TreeMode
	ParseTreeTo string
	Verbose     TraceMode
	VerboseTo   string
}

// Option configures an Options value via the functional-option
// pattern, mirroring table.Option.
type Option func(*Options)

// WithAccept selects accept=first (default) or accept=all.
func WithAccept(m AcceptMode) Option {
	return func(o *Options) { o.Accept = m }
}

// WithEnv supplies a caller-owned environment threaded through every
// reducer call, letting state survive across multiple Parse calls; the
// caller then owns synchronizing access to it.
func WithEnv(e *env.Environment) Option {
	return func(o *Options) { o.Env = e }
}

// WithParseTree selects where the accepted derivation(s)' parse trees
// are written as DOT.
func WithParseTree(m TreeMode, path string) Option {
	return func(o *Options) { o.ParseTree = m; o.ParseTreeTo = path }
}

// WithVerbose selects where the per-token verbose trace is written (see
// TraceMode).
func WithVerbose(m TraceMode, path string) Option {
	return func(o *Options) { o.Verbose = m; o.VerboseTo = path }
}

// NewOptions applies opts over the zero Options value (accept=first, no
// parse tree, no trace, a fresh environment allocated lazily by Parse).
func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
