package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/vk/ftmpl/internal/compiler"
	"github.com/vk/ftmpl/internal/ctxlog"
	"github.com/vk/ftmpl/internal/fsutil"
	"github.com/vk/ftmpl/internal/parser"
	"github.com/vk/ftmpl/internal/runtime"
	"github.com/vk/ftmpl/internal/source"
)

// DefaultSuffix is the file suffix of template documents.
const DefaultSuffix = ".ftmpl"

// ErrImportCycle is returned when a module imports itself, directly or
// through other modules.
var ErrImportCycle = errors.New("import cycle")

// Resolver finds a module by name in a search location.
type Resolver interface {
	Resolve(ctx context.Context, name, searchPath string) (mod *runtime.Module, ok bool, err error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, name, searchPath string) (*runtime.Module, bool, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, name, searchPath string) (*runtime.Module, bool, error) {
	return f(ctx, name, searchPath)
}

// FileLoader compiles name from searchPath/name.suffix, where the dots of
// a dotted name separate directories.
type FileLoader struct {
	Suffix   string
	Compiler *compiler.Context

	// Imports resolves the imports of loaded documents. A nil value
	// resolves them with the loader itself.
	Imports Resolver
}

// NewFileLoader returns a loader for DefaultSuffix files.
func NewFileLoader(c *compiler.Context) *FileLoader {
	return &FileLoader{Suffix: DefaultSuffix, Compiler: c}
}

// Resolve implements Resolver. Nothing is cached; every call reads and
// compiles the file again.
func (l *FileLoader) Resolve(ctx context.Context, name, searchPath string) (*runtime.Module, bool, error) {
	logger := ctxlog.FromContext(ctx)
	if !validName(name) {
		return nil, false, nil
	}

	path := fsutil.ModulePath(searchPath, name, l.suffix())
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("No template module at path.", "module", name, "path", path)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("resolving %s: %w", name, err)
	}
	if info.IsDir() {
		return nil, false, nil
	}

	ctx, err = enter(ctx, path)
	if err != nil {
		return nil, false, err
	}

	doc, err := source.Read(path)
	if err != nil {
		return nil, false, err
	}
	c := l.compiler()
	mod, err := c.Compile(ctx, doc)
	if err != nil {
		return nil, false, err
	}

	var imports Resolver = l
	if l.Imports != nil {
		imports = l.Imports
	}
	linked, err := c.LinkWith(ctx, mod, Importer(imports, searchPath))
	if err != nil {
		return nil, false, err
	}

	logger.Debug("Loaded template module.", "module", name, "path", path, "units", len(linked.Units()))
	return linked, true, nil
}

func (l *FileLoader) suffix() string {
	if l.Suffix == "" {
		return DefaultSuffix
	}
	return l.Suffix
}

func (l *FileLoader) compiler() *compiler.Context {
	if l.Compiler == nil {
		return compiler.Default()
	}
	return l.Compiler
}

// Find lists the module names FileLoader can resolve from searchPath.
func (l *FileLoader) Find(searchPath string) ([]string, error) {
	return Find(searchPath, l.suffix())
}

// Find lists module names for the suffix files under searchPath.
func Find(searchPath, suffix string) ([]string, error) {
	names, err := fsutil.ModuleNames(searchPath, suffix)
	if err != nil {
		return nil, fmt.Errorf("listing modules in %s: %w", searchPath, err)
	}
	out := names[:0]
	for _, name := range names {
		if validName(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Chain tries each resolver in order. The first match wins and the first
// error stops the chain.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(ctx context.Context, name, searchPath string) (*runtime.Module, bool, error) {
	for _, r := range c {
		mod, ok, err := r.Resolve(ctx, name, searchPath)
		if err != nil || ok {
			return mod, ok, err
		}
	}
	return nil, false, nil
}

// Static serves modules registered by name. It ignores the search path.
type Static map[string]*runtime.Module

// Resolve implements Resolver.
func (s Static) Resolve(_ context.Context, name, _ string) (*runtime.Module, bool, error) {
	mod, ok := s[name]
	return mod, ok, nil
}

// ResolveIn tries searchPaths in order and returns the first match.
func ResolveIn(ctx context.Context, r Resolver, name string, searchPaths []string) (*runtime.Module, bool, error) {
	for _, dir := range searchPaths {
		mod, ok, err := r.Resolve(ctx, name, dir)
		if err != nil || ok {
			return mod, ok, err
		}
	}
	return nil, false, nil
}

// Importer adapts r to the runtime importer used while linking, resolving
// every import in searchPath.
func Importer(r Resolver, searchPath string) runtime.Importer {
	return runtime.ImporterFunc(func(ctx context.Context, name string) (*runtime.Module, bool, error) {
		return r.Resolve(ctx, name, searchPath)
	})
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if !parser.IsIdentifier(part) {
			return false
		}
	}
	return true
}

type loadingKey struct{}

// enter records path as being loaded and fails if it already is.
func enter(ctx context.Context, path string) (context.Context, error) {
	loading, _ := ctx.Value(loadingKey{}).([]string)
	for i, p := range loading {
		if p == path {
			cycle := append(append([]string{}, loading[i:]...), path)
			return ctx, fmt.Errorf("%w: %s", ErrImportCycle, strings.Join(cycle, " -> "))
		}
	}
	next := append(append([]string{}, loading...), path)
	return context.WithValue(ctx, loadingKey{}, next), nil
}
