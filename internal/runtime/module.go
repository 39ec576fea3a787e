package runtime

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/ftmpl/internal/assembler"
	"github.com/vk/ftmpl/internal/ctxlog"
	"github.com/vk/ftmpl/internal/library"
	"github.com/zclconf/go-cty/cty/function"
)

// Importer resolves a module name that is not a function library to a
// linked template module. ok is false when the name is unknown.
type Importer interface {
	Import(ctx context.Context, name string) (mod *Module, ok bool, err error)
}

// ImporterFunc adapts a function to the Importer interface.
type ImporterFunc func(ctx context.Context, name string) (*Module, bool, error)

// Import calls f.
func (f ImporterFunc) Import(ctx context.Context, name string) (*Module, bool, error) {
	return f(ctx, name)
}

// Options configures linking.
type Options struct {
	// Core is in scope of every placeholder. A nil map means library.Core.
	Core library.Library
	// Libraries are the importable function libraries. A nil map means
	// library.Builtin.
	Libraries map[string]library.Library
	// Importer resolves imports that name no library. It may be nil.
	Importer Importer
}

// Module is a linked, callable template module. It is read-only after Link.
type Module struct {
	source *assembler.Module
	units  []*Unit
	byName map[string]*Unit
	funcs  map[string]function.Function

	// scope is the parent of every render's evaluation context.
	scope *hcl.EvalContext
}

// Link resolves the imports of mod and returns its callable form.
func Link(ctx context.Context, mod *assembler.Module, opts Options) (*Module, error) {
	logger := ctxlog.FromContext(ctx)
	if opts.Core == nil {
		opts.Core = library.Core()
	}
	if opts.Libraries == nil {
		opts.Libraries = library.Builtin()
	}

	m := &Module{
		source: mod,
		byName: make(map[string]*Unit),
		funcs:  make(map[string]function.Function),
	}
	for name, fn := range opts.Core {
		m.funcs[name] = fn
	}

	imported := make(map[string]int)
	for _, imp := range mod.Imports() {
		bound, err := m.resolveImport(ctx, imp, opts)
		if err != nil {
			return nil, err
		}
		for _, name := range bound {
			imported[name] = imp.Line
		}
	}

	for _, desc := range mod.Definitions() {
		if line, clash := imported[desc.Name]; clash {
			return nil, &assembler.CompileError{
				Path: mod.Path,
				Line: desc.Line,
				Text: desc.Signature.Text,
				Msg:  fmt.Sprintf("%q is already imported on line %d", desc.Name, line),
			}
		}
		u := &Unit{desc: desc, module: m}
		m.units = append(m.units, u)
		m.byName[desc.Name] = u
		m.funcs[desc.Name] = u.Function()
	}

	if err := m.checkCalls(); err != nil {
		return nil, err
	}
	m.scope = &hcl.EvalContext{Functions: m.funcs}

	logger.Debug("Linked template module.", "path", mod.Path, "units", len(m.units), "functions", len(m.funcs))
	return m, nil
}

// resolveImport binds the functions named by one import unit and returns
// the names it bound.
func (m *Module) resolveImport(ctx context.Context, imp *assembler.Unit, opts Options) ([]string, error) {
	fail := func(format string, args ...any) error {
		return &assembler.CompileError{
			Path: m.source.Path,
			Line: imp.Line,
			Text: imp.Import,
			Msg:  fmt.Sprintf(format, args...),
		}
	}

	specs, err := parseImport(imp.Import)
	if err != nil {
		return nil, fail("%v", err)
	}

	var bound []string
	for _, spec := range specs {
		exports, err := m.exportsOf(ctx, spec.Module, opts)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: importing %s: %w", m.source.Path, imp.Line, spec.Module, err)
		}
		if exports == nil {
			return nil, fail("unknown module %q", spec.Module)
		}

		switch {
		case !spec.From:
			for name, fn := range exports {
				m.funcs[spec.Namespace+"::"+name] = fn
			}
		case spec.All:
			for name, fn := range exports {
				m.funcs[name] = fn
				bound = append(bound, name)
			}
		default:
			for _, n := range spec.Names {
				fn, ok := exports[n.Name]
				if !ok {
					return nil, fail("module %q has no function %q", spec.Module, n.Name)
				}
				m.funcs[n.As] = fn
				bound = append(bound, n.As)
			}
		}
		ctxlog.FromContext(ctx).Debug("Resolved import.", "module", spec.Module, "line", imp.Line, "functions", len(exports))
	}
	return bound, nil
}

// exportsOf returns the functions of a library or template module, or nil
// if name is unknown.
func (m *Module) exportsOf(ctx context.Context, name string, opts Options) (map[string]function.Function, error) {
	if lib, ok := opts.Libraries[name]; ok {
		return lib, nil
	}
	if opts.Importer == nil {
		return nil, nil
	}
	mod, ok, err := opts.Importer.Import(ctx, name)
	if err != nil || !ok {
		return nil, err
	}
	return mod.Functions(), nil
}

// checkCalls reports calls to functions that are not in scope.
func (m *Module) checkCalls() error {
	for _, u := range m.units {
		var diags hcl.Diagnostics
		for _, call := range u.desc.Template.FunctionCalls() {
			if _, ok := m.funcs[call.Name]; ok {
				continue
			}
			rng := call.Range
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Call to unknown function",
				Detail:   fmt.Sprintf("There is no function named %q in scope of %s.", call.Name, u.Name()),
				Subject:  &rng,
			})
		}
		if diags.HasErrors() {
			return &assembler.CompileError{
				Path:  m.source.Path,
				Line:  u.desc.Line,
				Text:  u.desc.Body,
				Diags: diags,
			}
		}
	}
	return nil
}

// functionsAt returns the module's units as functions rendering at depth.
// They shadow the depth-zero entries of m.funcs.
func (m *Module) functionsAt(depth int) map[string]function.Function {
	out := make(map[string]function.Function, len(m.units))
	for _, u := range m.units {
		out[u.Name()] = u.functionAt(depth)
	}
	return out
}

// Path returns the document path the module was compiled from.
func (m *Module) Path() string {
	return m.source.Path
}

// Source returns the assembled module.
func (m *Module) Source() *assembler.Module {
	return m.source
}

// Unit returns the definition called name.
func (m *Module) Unit(name string) (*Unit, bool) {
	u, ok := m.byName[name]
	return u, ok
}

// Units returns the definitions in source order.
func (m *Module) Units() []*Unit {
	return m.units
}

// Names returns the definition names in source order.
func (m *Module) Names() []string {
	names := make([]string, len(m.units))
	for i, u := range m.units {
		names[i] = u.Name()
	}
	return names
}

// Functions returns the definitions as cty functions keyed by unit name.
// Importing modules bind these.
func (m *Module) Functions() map[string]function.Function {
	out := make(map[string]function.Function, len(m.units))
	for _, u := range m.units {
		out[u.Name()] = m.funcs[u.Name()]
	}
	return out
}

// Scope returns the sorted names of every function placeholders of this
// module may call.
func (m *Module) Scope() []string {
	names := make([]string, 0, len(m.funcs))
	for name := range m.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render calls the unit called name with positional arguments.
func (m *Module) Render(name string, args ...any) (string, error) {
	u, ok := m.Unit(name)
	if !ok {
		return "", fmt.Errorf("%s: %w %q", m.Path(), ErrUnknownUnit, name)
	}
	return u.Call(args...)
}
