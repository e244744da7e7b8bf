package movie

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when no record has the requested title or id.
	ErrNotFound = errors.New("movie not found")

	// ErrDuplicateTitle is returned when an insert collides with the
	// UNIQUE constraint on title.
	ErrDuplicateTitle = errors.New("movie title already exists")
)

// ValidationError reports form fields that failed validation. Fields maps a
// form field name to the rule it broke.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Fields[name])
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
