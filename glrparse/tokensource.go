package glrparse

import (
	"fmt"

	"github.com/corvid-works/glrforge"
)

// TokenSource supplies tokens to Parse one at a time, pulled
// synchronously. The lexer is an external collaborator; TokenSource is
// the narrow contract glrparse needs from it.
type TokenSource interface {
	// Next returns the next token, or an error if the stream ends
	// without ever producing an EOS token.
	Next() (glrforge.Token, error)
}

// sliceSource adapts a pre-built token slice (already EOS-terminated) to
// TokenSource, convenient for tests and small embedded grammars.
type sliceSource struct {
	toks []glrforge.Token
	i    int
}

// Slice wraps an already EOS-terminated token slice as a TokenSource.
func Slice(toks []glrforge.Token) TokenSource {
	return &sliceSource{toks: toks}
}

func (s *sliceSource) Next() (glrforge.Token, error) {
	if s.i >= len(s.toks) {
		return nil, fmt.Errorf("glrparse: token source exhausted without an EOS token")
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}
