package parser

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// ErrNoDefinitions is wrapped by the SyntaxError returned for documents that
// declare no definition block.
var ErrNoDefinitions = errors.New("document defines no template units")

// SyntaxError reports a malformed document. It is never recovered from
// internally.
type SyntaxError struct {
	Path string
	Line int
	Msg  string
	Err  error

	subject *hcl.Range
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: syntax error: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("%s:%d: syntax error: %s", e.Path, e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Diagnostics renders the error as HCL diagnostics so that it can be printed
// with a source snippet.
func (e *SyntaxError) Diagnostics() hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Template syntax error",
		Detail:   e.Msg,
		Subject:  e.subject,
	}}
}
