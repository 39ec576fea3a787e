// Package observer holds the debug observer that instrumented template
// units notify on every call, together with ready-made observer backends.
//
// The slot is read when a definition is assembled. A unit assembled while
// the slot is empty is never instrumented, and a unit assembled while it is
// set keeps calling the observer it captured, even after the slot is
// changed or cleared.
package observer

import (
	"errors"
)

// Func is notified with the unit name, the rendered string and the bound
// arguments each time an instrumented unit is called. A non-nil error is
// returned to the caller of the unit.
type Func func(name, rendered string, args map[string]any) error

// Slot holds at most one observer. It is not synchronized.
type Slot struct {
	fn Func
}

// Set replaces the observer. Passing nil clears the slot.
func (s *Slot) Set(fn Func) {
	s.fn = fn
}

// Get returns the current observer, or nil.
func (s *Slot) Get() Func {
	if s == nil {
		return nil
	}
	return s.fn
}

// Fanout returns an observer that notifies every non-nil observer in order.
// All observers are called; their errors are joined.
func Fanout(fns ...Func) Func {
	var active []Func
	for _, fn := range fns {
		if fn != nil {
			active = append(active, fn)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return func(name, rendered string, args map[string]any) error {
		var errs []error
		for _, fn := range active {
			if err := fn(name, rendered, args); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
