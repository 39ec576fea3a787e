package transform

import (
	"fmt"
	"sort"
)

// Func rewrites a block's body and doc text.
type Func func(body, doc string) (string, string)

// Registry maps option names to transforms. It is not safe for concurrent
// mutation; register everything before compiling.
type Registry struct {
	transforms map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{transforms: make(map[string]Func)}
}

// NewDefaultRegistry creates a registry holding the built-in transforms and
// their legacy aliases.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for name, fn := range builtins {
		r.transforms[name] = fn
	}
	for alias, target := range aliases {
		r.transforms[alias] = builtins[target]
	}
	return r
}

// Register inserts fn under name, replacing any transform already
// registered with that name.
func (r *Registry) Register(name string, fn Func) {
	if fn == nil {
		panic(fmt.Sprintf("transform %q registered with a nil function", name))
	}
	r.transforms[name] = fn
}

// Lookup returns the transform registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.transforms[name]
	return fn, ok
}

// Names returns the registered option names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	for name, fn := range r.transforms {
		c.transforms[name] = fn
	}
	return c
}

// Apply folds the listed options over (body, doc) from left to right. line
// is the control line of the block and is reported when an option is
// unknown. Nothing is applied if any option is unknown.
func (r *Registry) Apply(options []string, line int, body, doc string) (string, string, error) {
	steps := make([]Func, 0, len(options))
	for _, opt := range options {
		fn, ok := r.transforms[opt]
		if !ok {
			return "", "", &UnknownOptionError{Option: opt, Line: line, Known: r.Names()}
		}
		steps = append(steps, fn)
	}
	for _, fn := range steps {
		body, doc = fn(body, doc)
	}
	return body, doc, nil
}
