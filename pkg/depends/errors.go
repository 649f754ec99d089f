package depends

import (
	"errors"
	"fmt"
)

// ErrMissingScope marks an "fn:" condition evaluated without a form context.
// Callers see it through errors.Is on the EvalError chain in tests; the
// evaluator itself degrades the outcome to false.
var ErrMissingScope = errors.New("depends: fn condition without form scope")

// EvalError wraps a failed "eval:" expression. The layout engine reports it
// as a generic invalid-condition notice and keeps the field's previous
// outcome, so a single bad expression cannot break the rest of the form.
type EvalError struct {
	Expr string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("depends: invalid condition %q: %v", e.Expr, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
