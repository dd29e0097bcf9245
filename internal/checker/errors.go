package checker

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/funvibe/flowtype/internal/token"
)

// InvariantError is a hard failure: the walk reached a state the engine
// never produces for a well-formed tree. The unit is abandoned.
type InvariantError struct {
	Token   token.Token
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: internal invariant violated: %s", e.Token.Pos(), e.Message)
}

func invariantf(tok token.Token, format string, args ...interface{}) error {
	return errors.WithStack(&InvariantError{Token: tok, Message: fmt.Sprintf(format, args...)})
}
