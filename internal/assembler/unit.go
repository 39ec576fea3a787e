package assembler

import (
	"github.com/vk/ftmpl/internal/interp"
	"github.com/vk/ftmpl/internal/observer"
	"github.com/vk/ftmpl/internal/parser"
)

// Unit is the compiled form of one block.
type Unit struct {
	Kind parser.Kind
	// Line is the source line of the control line. Diagnostics raised while
	// the unit runs refer to it.
	Line int

	// Import is the verbatim import statement of an import unit.
	Import string

	Name      string
	Signature *interp.Signature
	Doc       string
	Body      string
	BodyLine  int
	Template  *interp.Template

	Instrumented bool
	observer     observer.Func
}

// Observer returns the observer captured when the unit was assembled, or nil
// when the unit is not instrumented.
func (u *Unit) Observer() observer.Func {
	return u.observer
}

// Module is the ordered result of assembling one document. Import units
// precede definition units.
type Module struct {
	Path  string
	Units []*Unit
}

// Imports returns the import units in source order.
func (m *Module) Imports() []*Unit {
	return m.filter(parser.KindImport)
}

// Definitions returns the definition units in source order.
func (m *Module) Definitions() []*Unit {
	return m.filter(parser.KindDefinition)
}

// Lookup returns the definition unit called name.
func (m *Module) Lookup(name string) (*Unit, bool) {
	for _, u := range m.Units {
		if u.Kind == parser.KindDefinition && u.Name == name {
			return u, true
		}
	}
	return nil, false
}

func (m *Module) filter(kind parser.Kind) []*Unit {
	var out []*Unit
	for _, u := range m.Units {
		if u.Kind == kind {
			out = append(out, u)
		}
	}
	return out
}
