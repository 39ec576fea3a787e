package app

import (
	"context"
	"path/filepath"
	goruntime "runtime"

	"github.com/vk/ftmpl/internal/loader"
	"github.com/vk/ftmpl/internal/runtime"
	"github.com/vk/ftmpl/internal/source"
	"golang.org/x/sync/errgroup"
)

// CheckResult is the outcome of compiling one file.
type CheckResult struct {
	Path   string
	Module *runtime.Module
	Err    error
}

// Check compiles and links every file. Imports resolve next to the file
// first and then in the configured paths. Files are checked in parallel;
// the results keep the order of paths.
func (a *App) Check(ctx context.Context, paths []string) []CheckResult {
	ctx = a.Context(ctx)
	results := make([]CheckResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	// Each goroutine owns results[i].
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(goruntime.GOMAXPROCS(0), len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			res := CheckResult{Path: path}
			if err := gctx.Err(); err != nil {
				res.Err = err
			} else {
				res.Module, res.Err = a.checkFile(gctx, path)
			}
			if res.Err != nil {
				a.logger.Debug("Template check failed.", "path", path, "error", res.Err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *App) checkFile(ctx context.Context, path string) (*runtime.Module, error) {
	doc, err := source.Read(path)
	if err != nil {
		return nil, err
	}
	mod, err := a.compiler.Compile(ctx, doc)
	if err != nil {
		return nil, err
	}

	searchPaths := append([]string{filepath.Dir(path)}, a.config.Paths...)
	imports := loader.ResolverFunc(func(ctx context.Context, name, _ string) (*runtime.Module, bool, error) {
		return loader.ResolveIn(ctx, a.loader, name, searchPaths)
	})
	return a.compiler.LinkWith(ctx, mod, loader.Importer(imports, ""))
}

// ModuleInfo describes a module found in the search paths.
type ModuleInfo struct {
	Name  string     `json:"name" yaml:"name"`
	Dir   string     `json:"dir" yaml:"dir"`
	Units []UnitInfo `json:"units,omitempty" yaml:"units,omitempty"`
	Error string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// UnitInfo describes one unit of a module.
type UnitInfo struct {
	Name      string `json:"name" yaml:"name"`
	Signature string `json:"signature" yaml:"signature"`
	Doc       string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// List returns every module in the search paths. A module that fails to
// compile is listed with its error. A name found in several paths is
// listed once, from the first.
func (a *App) List(ctx context.Context) ([]ModuleInfo, error) {
	ctx = a.Context(ctx)
	seen := make(map[string]bool)
	var out []ModuleInfo
	for _, dir := range a.config.Paths {
		names, err := a.loader.Find(dir)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true

			info := ModuleInfo{Name: name, Dir: dir}
			mod, _, err := a.loader.Resolve(ctx, name, dir)
			if err != nil {
				info.Error = err.Error()
				out = append(out, info)
				continue
			}
			for _, u := range mod.Units() {
				info.Units = append(info.Units, UnitInfo{Name: u.Name(), Signature: u.Signature(), Doc: u.Doc()})
			}
			out = append(out, info)
		}
	}
	return out, nil
}
