/*
Package forest captures, for an accepted GLR spine, the sequence of
shift/reduce steps as a derivation tree, and exports it as Graphviz DOT
or lets a caller walk it via a Listener.

Each surviving derivation keeps its own tree node chain as it is built;
there is no node sharing across forks, since the trees are a
per-accepted-derivation product rather than a packed forest.
*/
package forest

import (
	"fmt"
	"io"

	"github.com/corvid-works/glrforge"
	"github.com/corvid-works/glrforge/grammar"
)

// Node is one node of a derivation tree: a leaf wraps a shifted token, an
// interior node wraps a reduced production and its (already-built)
// children.
type Node struct {
	Symbol   grammar.Symbol
	Terminal bool
	Token    glrforge.Token      // set iff Terminal
	Prod     *grammar.Production // set iff !Terminal
	Children []*Node
	Span     glrforge.Position
	Value    interface{}
}

// Leaf builds a terminal node from a shifted token.
func Leaf(sym grammar.Symbol, tok glrforge.Token) *Node {
	return &Node{Symbol: sym, Terminal: true, Token: tok, Span: tok.Pos(), Value: tok.Value()}
}

// Reduce builds an interior node for a reduction of prod over children,
// spanning from the first child's start to the last child's end (an
// epsilon production has no children and spans the empty position at
// pos).
func Reduce(sym grammar.Symbol, prod *grammar.Production, children []*Node, value interface{}, pos glrforge.Position) *Node {
	span := pos
	if len(children) > 0 {
		span = mergeSpan(children[0].Span, children[len(children)-1].Span)
	}
	return &Node{Symbol: sym, Prod: prod, Children: children, Span: span, Value: value}
}

func mergeSpan(first, last glrforge.Position) glrforge.Position {
	return glrforge.Position{
		Offset:      first.Offset,
		Line:        first.Line,
		ColumnStart: first.ColumnStart,
		ColumnEnd:   last.ColumnEnd,
	}
}

// Listener is notified, bottom-up, of every node in a derivation tree
// walked via Walk. level is the node's depth from the root (0 at the
// root).
type Listener interface {
	Terminal(n *Node, level int)
	Reduce(n *Node, level int)
}

// Walk visits every node of the tree rooted at n, post-order (children
// before their parent, matching the runtime's own reduction order).
func Walk(n *Node, l Listener) {
	walk(n, l, 0)
}

func walk(n *Node, l Listener, level int) {
	if n == nil {
		return
	}
	if n.Terminal {
		l.Terminal(n, level)
		return
	}
	for _, c := range n.Children {
		walk(c, l, level+1)
	}
	l.Reduce(n, level)
}

// WriteDOT renders the tree rooted at root as a Graphviz DOT digraph,
// labeling terminal nodes with their symbol and interior nodes with the
// reducing production.
func WriteDOT(w io.Writer, root *Node, st *grammar.SymbolTable) error {
	if _, err := fmt.Fprintln(w, "digraph parsetree {"); err != nil {
		return err
	}
	id := 0
	var emit func(n *Node) int
	emit = func(n *Node) int {
		my := id
		id++
		label := st.Name(n.Symbol)
		if n.Terminal {
			fmt.Fprintf(w, "  n%d [label=%q shape=box];\n", my, label)
		} else {
			fmt.Fprintf(w, "  n%d [label=%q];\n", my, label)
			for _, c := range n.Children {
				cid := emit(c)
				fmt.Fprintf(w, "  n%d -> n%d;\n", my, cid)
			}
		}
		return my
	}
	emit(root)
	_, err := fmt.Fprintln(w, "}")
	return err
}
