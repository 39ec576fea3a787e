package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/vk/ftmpl/internal/assembler"
)

// DefaultImportPath is the import path of the package generated code
// compiles templates with.
const DefaultImportPath = "github.com/vk/ftmpl"

// GoOptions configures Go output.
type GoOptions struct {
	// Package is the generated package name. It defaults to a name derived
	// from the module path.
	Package string
	// ImportPath is the import path of the ftmpl package.
	ImportPath string
}

type goFunc struct {
	Name      string
	Unit      string
	Doc       []string
	Line      int
	ParamList string
	Args      string
}

type goFile struct {
	Package    string
	ImportPath string
	File       string
	Source     string
	Funcs      []goFunc
}

var goTemplate = template.Must(template.New("go").Parse(`// Code generated by ftmpl convert from {{.File}}. DO NOT EDIT.

package {{.Package}}

import ftmpl "{{.ImportPath}}"

const templateSource = {{.Source}}

var module = ftmpl.MustCompile({{printf "%q" .File}}, templateSource)
{{range .Funcs}}
{{range .Doc}}//{{if .}} {{.}}{{end}}
{{end}}//line {{$.File}}:{{.Line}}
func {{.Name}}({{.ParamList}}) (string, error) {
	return module.Render({{printf "%q" .Unit}}{{.Args}})
}
{{end}}`))

// Go renders mod as a Go file holding the canonical template text and one
// wrapper function per definition. Each wrapper carries a //line directive
// pointing at its control line. The output is gofmt-formatted.
func Go(mod *assembler.Module, opts GoOptions) ([]byte, error) {
	file := filepath.Base(mod.Path)
	data := goFile{
		Package:    opts.Package,
		ImportPath: opts.ImportPath,
		File:       file,
		Source:     goString(Template(mod)),
	}
	if data.Package == "" {
		data.Package = packageName(file)
	}
	if data.ImportPath == "" {
		data.ImportPath = DefaultImportPath
	}

	seen := make(map[string]string)
	for _, u := range mod.Definitions() {
		name := exportedName(u.Name)
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("units %q and %q both map to Go function %s", prev, u.Name, name)
		}
		seen[name] = u.Name

		fn := goFunc{Name: name, Unit: u.Name, Line: u.Line, Doc: docLines(name, u)}
		fn.ParamList, fn.Args = goParams(u)
		data.Funcs = append(data.Funcs, fn)
	}

	var buf bytes.Buffer
	if err := goTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.Bytes(), fmt.Errorf("formatting code: %w", err)
	}
	return formatted, nil
}

// goParams returns the parameter list and the trailing Render arguments of
// a wrapper. Required parameters become positional; parameters with a
// default are passed through a variadic tail.
func goParams(u *assembler.Unit) (string, string) {
	var required []string
	variadic := false
	for _, p := range u.Signature.Params {
		if !p.Required() {
			variadic = true
			break
		}
		required = append(required, goIdent(p.Name))
	}
	names := strings.Join(required, ", ")

	switch {
	case len(required) == 0 && !variadic:
		return "", ""
	case len(required) == 0:
		return "optional ...any", ", optional..."
	case !variadic:
		return names + " any", ", " + names
	}
	return names + " any, optional ...any", ", append([]any{" + names + "}, optional...)..."
}

func docLines(name string, u *assembler.Unit) []string {
	lines := []string{fmt.Sprintf("%s renders %s.", name, u.Signature.Text)}
	if u.Doc != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(u.Doc, "\n")...)
	}
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return lines
}

// goString quotes s as a raw string when it can be one.
func goString(s string) string {
	if !strings.Contains(s, "`") && !strings.Contains(s, "\r") {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}

// exportedName turns snake_case into an exported CamelCase identifier.
func exportedName(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "X" + s
	}
	return b.String()
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
	// Names the generated file declares itself.
	"module": true, "templateSource": true, "ftmpl": true, "optional": true,
}

func goIdent(name string) string {
	if goKeywords[name] {
		return name + "_"
	}
	return name
}

func packageName(file string) string {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if unicode.IsLetter(r) || (unicode.IsDigit(r) && b.Len() > 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || goKeywords[b.String()] {
		return "templates"
	}
	return b.String()
}
