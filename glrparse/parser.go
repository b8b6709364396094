/*
Package glrparse drives a GLR (generalized LR) pushdown automaton over a
finalized grammar's ACTION/GOTO tables. The driving loop consumes one
token at a time, forking the parse stack across conflict cells and
pruning/merging forks back together; stack forking itself is package
spine. It also implements panic-mode error recovery through the
synthetic ERROR terminal.
*/
package glrparse

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/corvid-works/glrforge"
	"github.com/corvid-works/glrforge/automaton"
	"github.com/corvid-works/glrforge/env"
	"github.com/corvid-works/glrforge/forest"
	"github.com/corvid-works/glrforge/grammar"
	"github.com/corvid-works/glrforge/spine"
	"github.com/corvid-works/glrforge/table"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("glrforge.glrparse")
}

// defaultSpineLimit caps how many live spines the frontier may hold
// before Parse aborts with InternalParserError, guarding against
// pathological fork blowup on a heavily ambiguous grammar.
const defaultSpineLimit = 10000

// maxEOSRounds bounds how many internal shift/accept rounds Parse will
// run against a single trailing EOS token before giving up as an
// internal error. Never expected to bind on a correctly built table:
// an EOS-triggered accept converges in at most two rounds (shift into
// the state holding the completed augmented item, then accept).
const maxEOSRounds = 64

// Parser drives g's finalized table over a token stream.
type Parser struct {
	g          *grammar.Grammar
	t          *table.Table
	spineLimit int
}

// New creates a Parser for grammar g driven by table t (built from g via
// package table).
func New(g *grammar.Grammar, t *table.Table) *Parser {
	return &Parser{g: g, t: t, spineLimit: defaultSpineLimit}
}

// SetSpineLimit overrides the default frontier-size ceiling.
func (p *Parser) SetSpineLimit(n int) {
	p.spineLimit = n
}

// Result holds every value a Parse call accepted: exactly one under
// accept=first, possibly several under accept=all for a genuinely
// ambiguous grammar.
type Result struct {
	Values []interface{}
	Trees  []*forest.Node
}

// First returns the first accepted value, convenient when the caller
// knows accept=first was used.
func (r *Result) First() (interface{}, bool) {
	if len(r.Values) == 0 {
		return nil, false
	}
	return r.Values[0], true
}

// liveSpine pairs a parse-stack spine with an optional parallel spine of
// *forest.Node values, built only when the caller asked for a parse
// tree; tracking it unconditionally would cost an allocation per
// reduction for no benefit on the (common) case nobody inspects it.
type liveSpine struct {
	sp   *spine.Spine
	tree *spine.Spine
}

func newRootLive(captureTree bool) *liveSpine {
	ls := &liveSpine{sp: spine.Root(automaton.StateID(0))}
	if captureTree {
		ls.tree = spine.Root(automaton.StateID(0))
	}
	return ls
}

// Parse drives ts against p's table to completion. ts must yield an
// EOS-terminated stream; the EOS token triggers the accept handshake
// rather than being consumed as ordinary input.
func (p *Parser) Parse(ts TokenSource, opts ...Option) (*Result, error) {
	o := NewOptions(opts...)
	e := o.Env
	if e == nil {
		e = env.New()
	}
	captureTree := o.ParseTree != TreeOff

	tok, err := ts.Next()
	if err != nil {
		return nil, err
	}

	frontier := []*liveSpine{newRootLive(captureTree)}
	var accepted []*liveSpine

	for {
		sym, ok := p.g.SymbolForTokType(tok.Type())
		if !ok {
			return nil, &BadTokenError{Token: tok}
		}
		p.traceToken(o, tok)

		if sym == p.g.EOS {
			newAccepts, err := p.runToAccept(frontier, tok, e, o)
			if err != nil {
				return nil, err
			}
			accepted = append(accepted, newAccepts...)
			break
		}

		shiftReady, newAccepts, err := p.settle(frontier, tok, sym, e, o)
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, newAccepts...)
		if o.Accept == AcceptFirst && len(accepted) > 0 {
			return p.finish(accepted[:1], o), nil
		}

		if len(shiftReady) == 0 && len(newAccepts) == 0 {
			recovered, nextTok, rerr := p.recover(frontier, tok, ts, e, o)
			if rerr != nil {
				return nil, rerr
			}
			frontier = recovered
			tok = nextTok
			continue
		}

		frontier = p.mergeSpines(shiftReady, o)
		if len(frontier) > p.spineLimit {
			return nil, &InternalParserError{Reason: fmt.Sprintf("spine frontier exceeded limit of %d", p.spineLimit)}
		}

		tok, err = ts.Next()
		if err != nil {
			return nil, err
		}
	}

	if len(accepted) == 0 {
		return nil, &NotInLanguageError{Pos: tok.Pos()}
	}
	return p.finish(accepted, o), nil
}

// runToAccept repeatedly settles the frontier against the trailing EOS
// token: the first round typically shifts into the state holding the
// completed augmented item `S' -> start EOS .`, and the next round's
// settle finds the Accept action table.Build registered there. Shifting
// EOS never advances to a fresh input token: the lexer provides
// exactly one EOS, which the runtime treats as standing for "no more
// input" for as many internal rounds as it takes to resolve.
func (p *Parser) runToAccept(frontier []*liveSpine, tok glrforge.Token, e *env.Environment, o Options) ([]*liveSpine, error) {
	cur := frontier
	var accepted []*liveSpine
	for round := 0; len(cur) > 0; round++ {
		if round >= maxEOSRounds {
			return nil, &InternalParserError{Reason: "exceeded maximum EOS-handshake rounds; table likely has a cycle through EOS"}
		}
		shiftReady, newAccepts, err := p.settle(cur, tok, p.g.EOS, e, o)
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, newAccepts...)
		if o.Accept == AcceptFirst && len(accepted) > 0 {
			return accepted[:1], nil
		}
		if len(shiftReady) == 0 {
			break
		}
		cur = p.mergeSpines(shiftReady, o)
	}
	return accepted, nil
}

// settle drives every live spine's reaction to tok (of terminal class
// sym) to the point where each either shifted, accepted, or died;
// reduces fire in place and re-enter the worklist under the same token,
// since a reduce never consumes input.
func (p *Parser) settle(frontier []*liveSpine, tok glrforge.Token, sym grammar.Symbol, e *env.Environment, o Options) (shiftReady, accepted []*liveSpine, err error) {
	work := append([]*liveSpine{}, frontier...)
	for len(work) > 0 {
		cur := work[0]
		work = work[1:]

		tracer().Debugf("state = %d, symbol = %s", cur.sp.State(), p.g.Symbols.Name(sym))
		acts := p.t.ActionsAt(cur.sp.State(), sym)
		if len(acts) == 0 {
			tracer().Infof("no entry in ACTION table found, spine dies")
			continue
		}
		if len(acts) > 1 {
			tracer().Infof("conflict, forking spine into %d heads", len(acts))
		}
		for _, a := range acts {
			switch a.Kind {
			case table.ActionShift:
				shiftReady = append(shiftReady, p.applyShift(cur, a.Target, tok))
			case table.ActionReduce:
				reduced, rerr := p.applyReduce(cur, a.Prod, e, o)
				if rerr != nil {
					return nil, nil, rerr
				}
				work = append(work, reduced)
			case table.ActionAccept:
				tracer().Infof("spine accepts in state %d", cur.sp.State())
				accepted = append(accepted, cur)
			}
		}
	}
	tracer().Debugf("%d shifted spine(s), %d accepted", len(shiftReady), len(accepted))
	return shiftReady, accepted, nil
}

func (p *Parser) applyShift(ls *liveSpine, target automaton.StateID, tok glrforge.Token) *liveSpine {
	tracer().Infof("shifting %v to state %d", tok.Value(), target)
	next := &liveSpine{sp: ls.sp.Push(target, tok.Value(), tok.Pos())}
	if ls.tree != nil {
		sym, _ := p.g.SymbolForTokType(tok.Type())
		leaf := forest.Leaf(sym, tok)
		next.tree = ls.tree.Push(target, leaf, tok.Pos())
	}
	return next
}

// applyReduce pops |rhs(prod)| frames, runs prod's reducer inside e,
// and pushes the synthesized value at the GOTO-resolved state. A
// reducer error occurring on a production whose rhs contains the ERROR
// terminal is wrapped as HandledError; any other reducer error
// propagates untouched.
func (p *Parser) applyReduce(ls *liveSpine, prod *grammar.Production, e *env.Environment, o Options) (*liveSpine, error) {
	tracer().Infof("reduce %s", prod.String(p.g.Symbols))
	n := len(prod.RHS)
	restSp, values, positions := ls.sp.Pop(n)

	var restTree *spine.Spine
	var children []*forest.Node
	if ls.tree != nil {
		var treeValues []interface{}
		restTree, treeValues, _ = ls.tree.Pop(n)
		children = make([]*forest.Node, len(treeValues))
		for i, v := range treeValues {
			children[i], _ = v.(*forest.Node)
		}
	}

	var value interface{}
	var err error
	if prod.Reduce != nil {
		value, err = prod.Reduce(e, values, positions)
		if err != nil {
			if containsErrorSymbol(p.g, prod) {
				pos := tailPosition(positions)
				return nil, &HandledError{Err: err, Pos: pos, Partial: value}
			}
			return nil, err
		}
	}

	target, ok := p.t.Goto(restSp.State(), prod.LHS)
	if !ok {
		return nil, &InternalParserError{Reason: fmt.Sprintf(
			"no GOTO for state %d on nonterminal %s (production %d)",
			restSp.State(), p.g.Symbols.Name(prod.LHS), prod.ID)}
	}
	tracer().Debugf("goto(%d, %s) = %d", restSp.State(), p.g.Symbols.Name(prod.LHS), target)

	pos := spanPositions(positions)
	next := &liveSpine{sp: restSp.Push(target, value, pos)}
	if ls.tree != nil {
		node := forest.Reduce(prod.LHS, prod, children, value, pos)
		next.tree = restTree.Push(target, node, pos)
	}
	return next, nil
}

// recover implements panic-mode error recovery over the frontier alive
// just before the token that emptied it. It tries each such spine in
// turn (GLR may have had more than one live at extinction), taking the
// first that can pop to a state with an ERROR shift.
func (p *Parser) recover(frontier []*liveSpine, tok glrforge.Token, ts TokenSource, e *env.Environment, o Options) ([]*liveSpine, glrforge.Token, error) {
	tracer().Infof("frontier died on %v at %s, entering error recovery", tok.Value(), tok.Pos())
	for _, ls := range frontier {
		recovered, handled, err := p.recoverSpine(ls, tok, e, o)
		if err != nil {
			return nil, nil, err
		}
		if !handled {
			continue
		}
		nextTok, err := p.discardUntilAcceptable(recovered, tok, ts)
		if err != nil {
			return nil, nil, err
		}
		return []*liveSpine{recovered}, nextTok, nil
	}
	return nil, nil, &NotInLanguageError{Pos: tok.Pos()}
}

// recoverSpine pops ls's stack entries until a state s* has
// action[s*, ERROR] = Shift(s'), pushes the ERROR pseudo-token
// inheriting tok's position, and fires an immediately-available reduce
// over the error slot if one exists. It reports handled=false (not an
// error) when no state on the popped path carries an ERROR shift,
// letting the caller try the next spine or give up as not in language.
func (p *Parser) recoverSpine(ls *liveSpine, tok glrforge.Token, e *env.Environment, o Options) (recovered *liveSpine, handled bool, err error) {
	cur := ls
	for {
		if a, ok := p.t.Action(cur.sp.State(), p.g.Error); ok && a.Kind == table.ActionShift {
			tracer().Infof("shifting ERROR to state %d", a.Target)
			shifted := p.applyErrorShift(cur, a.Target, tok)
			if prod, ok := p.singleCompletedItemAt(shifted.sp.State()); ok && containsErrorSymbol(p.g, prod) {
				tracer().Debugf("reduce over the error slot is immediately available")
				reduced, rerr := p.applyReduce(shifted, prod, e, o)
				if rerr != nil {
					return nil, false, rerr
				}
				return reduced, true, nil
			}
			return shifted, true, nil
		}
		if cur.sp.Depth() == 0 {
			tracer().Debugf("no state on the popped path shifts ERROR")
			return nil, false, nil
		}
		tracer().Debugf("popping state %d looking for an ERROR shift", cur.sp.State())
		rest, _, _ := cur.sp.Pop(1)
		var restTree *spine.Spine
		if cur.tree != nil {
			restTree, _, _ = cur.tree.Pop(1)
		}
		cur = &liveSpine{sp: rest, tree: restTree}
	}
}

func (p *Parser) applyErrorShift(ls *liveSpine, target automaton.StateID, tok glrforge.Token) *liveSpine {
	next := &liveSpine{sp: ls.sp.Push(target, nil, tok.Pos())}
	if ls.tree != nil {
		errTok := glrforge.NewBasicToken(p.g.TokType(p.g.Error), nil, tok.Pos())
		leaf := forest.Leaf(p.g.Error, errTok)
		next.tree = ls.tree.Push(target, leaf, tok.Pos())
	}
	return next
}

// singleCompletedItemAt reports the lone production every item of state
// s is a completed instance of, used by recoverSpine to detect that a
// reduce covering the error slot is immediately available without
// needing a lookahead token to consult the ACTION table.
func (p *Parser) singleCompletedItemAt(s automaton.StateID) (*grammar.Production, bool) {
	st := p.t.Automaton.State(s)
	if st == nil {
		return nil, false
	}
	items := st.Items.Items()
	if len(items) == 0 {
		return nil, false
	}
	var prod *grammar.Production
	for _, it := range items {
		if !it.AtEnd() {
			return nil, false
		}
		if prod == nil {
			prod = it.Prod
		} else if prod.ID != it.Prod.ID {
			return nil, false
		}
	}
	return prod, true
}

// discardUntilAcceptable resynchronizes the input after an ERROR shift:
// tok itself is tried first (an immediate reduce may have already
// consumed the error without needing to skip anything), then further
// tokens are pulled from ts and discarded until one has an action in
// ls's state or EOS is reached, which aborts the parse as not in
// language.
func (p *Parser) discardUntilAcceptable(ls *liveSpine, tok glrforge.Token, ts TokenSource) (glrforge.Token, error) {
	cur := tok
	for {
		sym, ok := p.g.SymbolForTokType(cur.Type())
		if ok {
			if sym == p.g.EOS {
				return nil, &NotInLanguageError{Pos: cur.Pos()}
			}
			if len(p.t.ActionsAt(ls.sp.State(), sym)) > 0 {
				return cur, nil
			}
		}
		tracer().Debugf("discarding %v at %s", cur.Value(), cur.Pos())
		next, err := ts.Next()
		if err != nil {
			return nil, err
		}
		cur = next
	}
}

func containsErrorSymbol(g *grammar.Grammar, prod *grammar.Production) bool {
	for _, s := range prod.RHS {
		if s == g.Error {
			return true
		}
	}
	return false
}

func tailPosition(positions []glrforge.Position) glrforge.Position {
	if len(positions) == 0 {
		return glrforge.Position{}
	}
	return positions[len(positions)-1]
}

func spanPositions(positions []glrforge.Position) glrforge.Position {
	if len(positions) == 0 {
		return glrforge.Position{}
	}
	first, last := positions[0], positions[len(positions)-1]
	return glrforge.Position{
		Offset:      first.Offset,
		Line:        first.Line,
		ColumnStart: first.ColumnStart,
		ColumnEnd:   last.ColumnEnd,
	}
}

// mergeSpines collapses, under accept=first, spines that have converged
// on an identical (state, value-stack) to one representative, bounding
// frontier growth since only one of them can ever matter to which value
// is returned first. Under accept=all every distinct derivation is kept
// alive all the way to acceptance, since collapsing them would silently
// discard one of the very ambiguous parses the caller asked for.
func (p *Parser) mergeSpines(in []*liveSpine, o Options) []*liveSpine {
	if o.Accept == AcceptAll {
		return in
	}
	seen := map[string]bool{}
	out := make([]*liveSpine, 0, len(in))
	for _, ls := range in {
		key := ls.sp.StructuralKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ls)
	}
	return out
}

// finish extracts each accepted spine's result. An accepting spine's
// top frame is the shifted EOS token, so the synthesized start-symbol
// value (and the derivation root, when a tree was captured) sits one
// frame below it.
func (p *Parser) finish(accepted []*liveSpine, o Options) *Result {
	r := &Result{}
	for _, ls := range accepted {
		sp := ls.sp
		if sp.Depth() >= 2 {
			sp, _, _ = sp.Pop(1)
		}
		r.Values = append(r.Values, sp.Value())
		if ls.tree != nil {
			tr := ls.tree
			if tr.Depth() >= 2 {
				tr, _, _ = tr.Pop(1)
			}
			if node, ok := tr.Value().(*forest.Node); ok {
				r.Trees = append(r.Trees, node)
			}
		}
	}
	p.emitParseTree(r, o)
	return r
}

func (p *Parser) traceToken(o Options, tok glrforge.Token) {
	if o.Verbose == TraceOff {
		return
	}
	line := fmt.Sprintf("token %v %v at %s", tok.Type(), tok.Value(), tok.Pos())
	tracer().Debugf("%s", line)
	switch o.Verbose {
	case TraceStdout:
		pterm.Debug.Println(line)
	case TraceFile:
		appendLine(o.VerboseTo, line)
	}
}

func (p *Parser) emitParseTree(r *Result, o Options) {
	if o.ParseTree == TreeOff || len(r.Trees) == 0 {
		return
	}
	switch o.ParseTree {
	case TreeStdout:
		for _, tr := range r.Trees {
			_ = forest.WriteDOT(os.Stdout, tr, p.g.Symbols)
		}
	case TreeFile:
		f, err := os.Create(o.ParseTreeTo)
		if err != nil {
			return
		}
		defer f.Close()
		for _, tr := range r.Trees {
			_ = forest.WriteDOT(f, tr, p.g.Symbols)
		}
	}
}

func appendLine(path, line string) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintln(f, line)
}
