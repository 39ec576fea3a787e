package codegen

import (
	"strings"

	"github.com/vk/ftmpl/internal/assembler"
	"github.com/vk/ftmpl/internal/parser"
)

// Template renders mod as ftmpl text with every transform already applied,
// so that compiling the result without options yields the same units.
// Doc texts spanning several lines cannot be written as a doc line and are
// left out; they do not affect rendering.
func Template(mod *assembler.Module) string {
	var b strings.Builder
	for _, u := range mod.Units {
		if u.Kind == parser.KindImport {
			b.WriteString("[" + u.Import + "]\n")
			continue
		}
		b.WriteString("[" + u.Signature.Text + "]\n")
		if u.Doc != "" && !strings.Contains(u.Doc, "\n") {
			b.WriteString(`["` + u.Doc + `"]` + "\n")
		}
		if u.Body == "" {
			continue
		}
		for _, line := range strings.Split(u.Body, "\n") {
			b.WriteString(escapeLine(line) + "\n")
		}
	}
	return b.String()
}

// escapeLine keeps a body line from being read as a control line by
// writing its leading bracket as a placeholder.
func escapeLine(line string) string {
	if strings.HasPrefix(line, "[") {
		return `{"["}` + line[1:]
	}
	return line
}
