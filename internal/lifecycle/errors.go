package lifecycle

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound means no job exists for the given identifier.
	ErrNotFound = errors.New("job not found")

	// ErrForbidden means the caller does not own the job. Ownership
	// mismatches are programming or security errors, never transient.
	ErrForbidden = errors.New("job belongs to another user")

	// ErrMissingData means a required identifier or document field was
	// absent from a create request.
	ErrMissingData = errors.New("missing required job data")
)

// ValidationError carries the per-field failures of a settings payload.
// A job is never persisted when settings fail validation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid print settings: " + strings.Join(e.Errors, "; ")
}
