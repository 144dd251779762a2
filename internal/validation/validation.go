package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Error reports a rejected entity write together with the offending field
// names. Writes that produce an Error must not have applied any state change.
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// NewError builds a validation error for the given field names.
func NewError(fields ...string) *Error {
	return &Error{Fields: fields}
}

// AsError extracts a *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var v *Error
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
