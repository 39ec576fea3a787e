// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths in lexical order.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// ModuleNames lists the files under rootPath ending with extension as dotted
// module names, so that rootPath/a/b.ext becomes "a.b". Names are sorted.
func ModuleNames(rootPath string, extension string) ([]string, error) {
	files, err := FindFilesByExtension(rootPath, extension)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		rel, err := filepath.Rel(rootPath, file)
		if err != nil {
			return nil, err
		}
		rel = strings.TrimSuffix(filepath.ToSlash(rel), extension)
		names = append(names, strings.ReplaceAll(rel, "/", "."))
	}
	sort.Strings(names)
	return names, nil
}

// ModulePath is the inverse of ModuleNames: it maps a dotted module name to
// the file it would be read from.
func ModulePath(rootPath, name, extension string) string {
	return filepath.Join(rootPath, filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))+extension)
}
