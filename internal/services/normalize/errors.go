package normalize

import (
	"fmt"
	"strings"
)

// StructuralError aborts a whole pass before any row is processed: the input
// cannot be read as the expected table at all.
type StructuralError struct {
	Source  string
	Missing []string
	Detail  string
}

func (e *StructuralError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", e.Source)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "required columns not found: %s", strings.Join(e.Missing, ", "))
		if e.Detail != "" {
			b.WriteString("; ")
		}
	}
	b.WriteString(e.Detail)
	return b.String()
}
