package runtime

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// ErrUnknownUnit is returned by Module.Render for a name that is not a
// definition of the module.
var ErrUnknownUnit = errors.New("unknown unit")

// ErrCallDepth is wrapped by the RenderError returned when units call each
// other more than MaxCallDepth levels deep.
var ErrCallDepth = errors.New("maximum call depth exceeded")

// ArgumentError reports a call whose arguments do not match the unit's
// parameters.
type ArgumentError struct {
	Unit string
	Msg  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Unit, e.Msg)
}

// RenderError reports a placeholder that failed to evaluate. Line is the
// control line of the unit; the diagnostics point at the placeholder.
type RenderError struct {
	Unit  string
	Path  string
	Line  int
	Diags hcl.Diagnostics

	// Err is the cause when it is not a placeholder diagnostic.
	Err error
}

func (e *RenderError) Error() string {
	msg := "render failed"
	if len(e.Diags) > 0 {
		msg = e.Diags[0].Summary
		if e.Diags[0].Detail != "" {
			msg += ": " + e.Diags[0].Detail
		}
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, e.Unit, msg)
}

// Diagnostics returns the evaluation diagnostics.
func (e *RenderError) Diagnostics() hcl.Diagnostics {
	return e.Diags
}

func (e *RenderError) Unwrap() error { return e.Err }

// ObserverError wraps an error returned by the observer of an instrumented
// unit.
type ObserverError struct {
	Unit string
	Err  error
}

func (e *ObserverError) Error() string {
	return fmt.Sprintf("%s: observer: %v", e.Unit, e.Err)
}

func (e *ObserverError) Unwrap() error { return e.Err }
