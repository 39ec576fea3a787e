package transform

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// UnknownOptionError is returned when a block lists an option that has no
// registered transform.
type UnknownOptionError struct {
	Option string
	Line   int
	Known  []string

	// Subject is filled in by the assembler, which knows the document.
	Subject *hcl.Range
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("line %d: unknown option %q", e.Line, e.Option)
}

// Diagnostics renders the error as HCL diagnostics.
func (e *UnknownOptionError) Diagnostics() hcl.Diagnostics {
	detail := fmt.Sprintf("No transform is registered under the name %q.", e.Option)
	if len(e.Known) > 0 {
		detail += " Known options: " + strings.Join(e.Known, ", ") + "."
	}
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Unknown option",
		Detail:   detail,
		Subject:  e.Subject,
	}}
}
