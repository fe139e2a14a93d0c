package request

import (
	"fmt"
	"strings"
)

// LookupError reports a selected table or column with no counterpart in the
// catalogue. It means the selection was made against a different catalogue
// snapshot; the caller should re-fetch the catalogue and rebuild.
type LookupError struct {
	Table  string
	Column string
}

func (e *LookupError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("table %q not found in catalogue", e.Table)
	}
	return fmt.Sprintf("column %q of table %q not found in catalogue", e.Column, e.Table)
}

// ValidationError aggregates every precondition a submission or lifecycle
// transition is missing, so the user can be shown all of them at once.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// validationError returns nil when no problems were collected.
func validationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}
