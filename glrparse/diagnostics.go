package glrparse

import (
	"fmt"

	"github.com/corvid-works/glrforge"
)

// BadTokenError is returned when a token's type is not a terminal this
// grammar declared.
type BadTokenError struct {
	Token glrforge.Token
}

func (e *BadTokenError) Error() string {
	return fmt.Sprintf("glrparse: token type %v at %s is not a terminal of this grammar", e.Token.Type(), e.Token.Pos())
}

// NotInLanguageError is returned when every spine dies on some token
// and no recoverable ERROR state exists on any popped path.
type NotInLanguageError struct {
	Pos glrforge.Position
}

func (e *NotInLanguageError) Error() string {
	return fmt.Sprintf("glrparse: input not in language (at %s)", e.Pos)
}

// HandledError is surfaced when an ERROR-containing production's
// reducer signals a domain error during panic-mode recovery. Err is the
// error the reducer returned; Partial is whatever value the reducer
// returned alongside it (often nil).
type HandledError struct {
	Err     error
	Pos     glrforge.Position
	Partial interface{}
}

func (e *HandledError) Error() string {
	return fmt.Sprintf("glrparse: handled error at %s: %v", e.Pos, e.Err)
}

// Unwrap exposes the wrapped domain error to errors.Is/errors.As.
func (e *HandledError) Unwrap() error { return e.Err }

// InternalParserError reports an invariant violation: a GOTO target
// that doesn't exist, or the spine frontier exceeding its configured
// ceiling. Never expected in a correctly-built table.
type InternalParserError struct {
	Reason string
}

func (e *InternalParserError) Error() string {
	return fmt.Sprintf("glrparse: internal error: %s", e.Reason)
}
