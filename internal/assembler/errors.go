package assembler

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// CompileError reports a signature, body or import that is not valid.
type CompileError struct {
	Path  string
	Line  int
	Text  string
	Msg   string
	Diags hcl.Diagnostics

	Subject *hcl.Range
}

func (e *CompileError) Error() string {
	msg := e.Msg
	if msg == "" && len(e.Diags) > 0 {
		msg = e.Diags[0].Summary
		if e.Diags[0].Detail != "" {
			msg += ": " + e.Diags[0].Detail
		}
	}
	return fmt.Sprintf("%s:%d: compile error: %s (in %q)", e.Path, e.Line, msg, e.Text)
}

// Diagnostics returns the underlying HCL diagnostics, or a single diagnostic
// built from the message.
func (e *CompileError) Diagnostics() hcl.Diagnostics {
	if len(e.Diags) > 0 {
		return e.Diags
	}
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Compile error",
		Detail:   e.Msg,
		Subject:  e.Subject,
	}}
}
