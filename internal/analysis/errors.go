package analysis

import (
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// ErrInvalidInput marks input-shape errors: missing dataset, unknown columns,
// malformed configuration.
var ErrInvalidInput = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ComputationError reports an unexpected fault inside an engine computation.
// It is returned, never raised.
type ComputationError struct {
	Op    string
	Cause string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Cause)
}

// Guard runs fn and turns a panic inside it into a *ComputationError for op.
// Errors returned by fn pass through unchanged.
func Guard(op string, fn func() error) error {
	var err error
	if r := panics.Try(func() { err = fn() }); r != nil {
		return &ComputationError{Op: op, Cause: fmt.Sprint(r.Value)}
	}
	return err
}
