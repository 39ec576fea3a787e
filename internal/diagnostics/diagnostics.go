// Package diagnostics prints compile and render errors with source
// snippets, using the HCL diagnostic text writer.
package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/hcl/v2"
)

// Diagnoser is implemented by errors that carry source diagnostics.
type Diagnoser interface {
	Diagnostics() hcl.Diagnostics
}

// From returns the diagnostics of the first error in err's chain that has
// any.
func From(err error) (hcl.Diagnostics, bool) {
	var d Diagnoser
	if !errors.As(err, &d) {
		return nil, false
	}
	diags := d.Diagnostics()
	return diags, len(diags) > 0
}

// Printer writes errors to a terminal or log.
type Printer struct {
	Width uint
	Color bool

	// Sources maps file names to their text. Files missing from the map
	// are read from disk when a diagnostic refers to them.
	Sources map[string][]byte
}

// Print writes err to w. Errors with diagnostics are printed with source
// snippets; the rest are printed as plain messages.
func (p *Printer) Print(w io.Writer, err error) error {
	diags, ok := From(err)
	if !ok {
		_, werr := fmt.Fprintf(w, "Error: %v\n", err)
		return werr
	}

	files := make(map[string]*hcl.File)
	for _, diag := range diags {
		for _, rng := range []*hcl.Range{diag.Subject, diag.Context} {
			if rng == nil || rng.Filename == "" {
				continue
			}
			if _, seen := files[rng.Filename]; seen {
				continue
			}
			if src := p.source(rng.Filename); src != nil {
				files[rng.Filename] = &hcl.File{Bytes: src}
			}
		}
	}

	width := p.Width
	if width == 0 {
		width = 78
	}
	return hcl.NewDiagnosticTextWriter(w, files, width, p.Color).WriteDiagnostics(diags)
}

func (p *Printer) source(name string) []byte {
	if src, ok := p.Sources[name]; ok {
		return src
	}
	src, err := os.ReadFile(name)
	if err != nil {
		return nil
	}
	return src
}
