package table

// Option configures an Options value via the functional-option
// pattern.
type Option func(*Options)

// WithLookahead selects LALR(1) (the default) or LR0 lookaheads.
func WithLookahead(m LookaheadMode) Option {
	return func(o *Options) { o.Lookahead = m }
}

// WithPrecedence enables or disables precedence-based conflict
// resolution.
func WithPrecedence(m PrecedenceMode) Option {
	return func(o *Options) { o.Precedence = m }
}

// WithExplain selects where Table.Explain writes its human-readable
// conflict report. The report lists conflicts and their resolution
// only; per-state items, actions and gotos are not written.
func WithExplain(m ExplainMode, path string) Option {
	return func(o *Options) { o.Explain = m; o.ExplainTo = path }
}

// NewOptions applies opts over the zero Options value (LALR1,
// PrecedenceEnabled, ExplainOff).
func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
