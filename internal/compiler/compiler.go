// Package compiler holds the state a template compilation depends on: the
// transform registry, the observer slot, and the function libraries.
//
// Independent compilations use independent contexts. Default returns a
// process-wide context for hosts that want a single shared one. A Context
// is not safe for concurrent registration or compilation.
package compiler

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/ftmpl/internal/assembler"
	"github.com/vk/ftmpl/internal/ctxlog"
	"github.com/vk/ftmpl/internal/library"
	"github.com/vk/ftmpl/internal/observer"
	"github.com/vk/ftmpl/internal/parser"
	"github.com/vk/ftmpl/internal/runtime"
	"github.com/vk/ftmpl/internal/source"
	"github.com/vk/ftmpl/internal/transform"
)

// Context is an explicit compiler context.
type Context struct {
	registry  *transform.Registry
	slot      observer.Slot
	core      library.Library
	libraries map[string]library.Library
	importer  runtime.Importer
}

// Option configures a Context.
type Option func(*Context)

// WithTransform registers a transform under name.
func WithTransform(name string, fn transform.Func) Option {
	return func(c *Context) {
		c.registry.Register(name, fn)
	}
}

// WithRegistry replaces the transform registry. Options applied after it
// register into reg.
func WithRegistry(reg *transform.Registry) Option {
	return func(c *Context) {
		c.registry = reg
	}
}

// WithObserver sets the observer that units assembled by the context
// capture.
func WithObserver(fn observer.Func) Option {
	return func(c *Context) {
		c.slot.Set(fn)
	}
}

// WithLibrary adds or replaces an importable function library.
func WithLibrary(name string, lib library.Library) Option {
	return func(c *Context) {
		c.libraries[name] = lib
	}
}

// WithImporter sets the importer used for imports that name no library.
func WithImporter(imp runtime.Importer) Option {
	return func(c *Context) {
		c.importer = imp
	}
}

// New returns a context with the built-in transforms and libraries, then
// applies opts in order.
func New(opts ...Option) *Context {
	c := &Context{
		registry:  transform.NewDefaultRegistry(),
		core:      library.Core(),
		libraries: library.Builtin(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	defaultOnce sync.Once
	defaultCtx  *Context
)

// Default returns the process-wide context.
func Default() *Context {
	defaultOnce.Do(func() {
		defaultCtx = New()
	})
	return defaultCtx
}

// Register adds or replaces a transform.
func (c *Context) Register(name string, fn transform.Func) {
	c.registry.Register(name, fn)
}

// Registry returns the transform registry.
func (c *Context) Registry() *transform.Registry {
	return c.registry
}

// SetObserver replaces the observer. Only units assembled afterwards see
// the change. A nil fn clears the slot.
func (c *Context) SetObserver(fn observer.Func) {
	c.slot.Set(fn)
}

// Observer returns the current observer.
func (c *Context) Observer() observer.Func {
	return c.slot.Get()
}

// SetImporter replaces the importer.
func (c *Context) SetImporter(imp runtime.Importer) {
	c.importer = imp
}

// Libraries returns the importable library names and their functions.
func (c *Context) Libraries() map[string]library.Library {
	return c.libraries
}

// Parse splits doc into blocks.
func (c *Context) Parse(doc *source.Document) ([]parser.Block, error) {
	return parser.Parse(doc)
}

// Assemble converts blocks into a module using the context's registry and
// observer.
func (c *Context) Assemble(ctx context.Context, doc *source.Document, blocks []parser.Block) (*assembler.Module, error) {
	return assembler.Assemble(ctx, doc, blocks, assembler.Options{
		Registry: c.registry,
		Observer: &c.slot,
	})
}

// Compile parses and assembles doc.
func (c *Context) Compile(ctx context.Context, doc *source.Document) (*assembler.Module, error) {
	ctxlog.FromContext(ctx).Debug("Compiling template document.", "path", doc.Path)
	blocks, err := c.Parse(doc)
	if err != nil {
		return nil, err
	}
	return c.Assemble(ctx, doc, blocks)
}

// Link makes mod callable using the context's importer.
func (c *Context) Link(ctx context.Context, mod *assembler.Module) (*runtime.Module, error) {
	return c.LinkWith(ctx, mod, c.importer)
}

// LinkWith makes mod callable, resolving template imports through imp.
func (c *Context) LinkWith(ctx context.Context, mod *assembler.Module, imp runtime.Importer) (*runtime.Module, error) {
	return runtime.Link(ctx, mod, runtime.Options{
		Core:      c.core,
		Libraries: c.libraries,
		Importer:  imp,
	})
}

// Load compiles and links doc.
func (c *Context) Load(ctx context.Context, doc *source.Document) (*runtime.Module, error) {
	mod, err := c.Compile(ctx, doc)
	if err != nil {
		return nil, err
	}
	return c.Link(ctx, mod)
}

// LoadFile reads, compiles and links the document at path.
func (c *Context) LoadFile(ctx context.Context, path string) (*runtime.Module, error) {
	doc, err := source.Read(path)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	return c.Load(ctx, doc)
}
