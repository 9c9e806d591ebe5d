package board

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// FormatError reports malformed position or move text.
type FormatError struct {
	Input  string
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
}

// formatErrorf builds a FormatError with a stack trace attached.
func formatErrorf(input, field, format string, args ...interface{}) error {
	return errors.WithStack(&FormatError{
		Input:  input,
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	})
}

// IsFormatError reports whether err is, or wraps, a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// InvariantViolation reports an internally inconsistent Position. It always
// indicates a defect in move generation or application.
type InvariantViolation struct {
	Errors *multierror.Error
}

func (e *InvariantViolation) Error() string {
	return "position invariant violated: " + e.Errors.Error()
}

func (e *InvariantViolation) Unwrap() error {
	return e.Errors
}
