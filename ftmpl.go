// Package ftmpl compiles line-oriented template documents into named,
// callable template units.
//
// A document is split into blocks by control lines in brackets. Imports
// bring function libraries or other template modules into scope, and each
// definition becomes a unit whose body renders {expression} placeholders
// against its parameters:
//
//	[import strings]
//	[greet(name, greeting = "Hello")]
//	{greeting}, {strings::upper(name)}!
//
// The package-level functions use a process-wide compiler context holding
// the built-in transforms.
package ftmpl

import (
	"context"
	"fmt"

	"github.com/vk/ftmpl/internal/compiler"
	"github.com/vk/ftmpl/internal/loader"
	"github.com/vk/ftmpl/internal/observer"
	"github.com/vk/ftmpl/internal/runtime"
	"github.com/vk/ftmpl/internal/source"
	"github.com/vk/ftmpl/internal/transform"
)

// DefaultSuffix is the file suffix of template modules.
const DefaultSuffix = loader.DefaultSuffix

type (
	// Module is a compiled and linked template document.
	Module = runtime.Module
	// Unit is one callable definition of a Module.
	Unit = runtime.Unit
	// Observer is called after every render of an instrumented unit.
	Observer = observer.Func
	// TransformFunc rewrites a definition's body and doc text.
	TransformFunc = transform.Func
	// Resolver finds modules by dotted name.
	Resolver = loader.Resolver
)

// Register adds or replaces a named transform. Later compilations use it.
func Register(name string, fn TransformFunc) {
	compiler.Default().Register(name, fn)
}

// SetObserver installs the observer captured by units assembled from now
// on. A nil fn disables instrumentation for later compilations only.
func SetObserver(fn Observer) {
	compiler.Default().SetObserver(fn)
}

// Compile compiles and links template text. path is used in error
// messages and to name the module.
func Compile(ctx context.Context, path, text string) (*Module, error) {
	return compiler.Default().Load(ctx, source.New(path, text))
}

// MustCompile is like Compile but panics if the text does not compile.
// It simplifies safe initialization of package-level modules such as
// the ones in generated code.
func MustCompile(path, text string) *Module {
	mod, err := Compile(context.Background(), path, text)
	if err != nil {
		panic(fmt.Sprintf("ftmpl: Compile(%q): %v", path, err))
	}
	return mod
}

// LoadFile compiles and links the template file at path.
func LoadFile(ctx context.Context, path string) (*Module, error) {
	return compiler.Default().LoadFile(ctx, path)
}

// NewResolver returns a resolver that compiles modules from template files
// on every lookup.
func NewResolver() Resolver {
	return loader.NewFileLoader(compiler.Default())
}

// Resolve finds the module with the dotted name under searchPath. It
// returns false with a nil error when no such file exists.
func Resolve(ctx context.Context, name, searchPath string) (*Module, bool, error) {
	return NewResolver().Resolve(ctx, name, searchPath)
}
