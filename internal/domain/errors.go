package domain

import (
	"fmt"
	"strings"
)

// AmbiguousLookupError reports a guard lookup that matched more than one
// live resource. The stack never picks one: the operator has to delete
// or retag the extras before the next run.
type AmbiguousLookupError struct {
	Kind string
	Name string
	IDs  []string
}

func (e *AmbiguousLookupError) Error() string {
	return fmt.Sprintf("%s lookup for %q matched %d resources (%s), expected at most one",
		e.Kind, e.Name, len(e.IDs), strings.Join(e.IDs, ", "))
}

type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}
