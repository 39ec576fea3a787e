package assembler

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/ftmpl/internal/ctxlog"
	"github.com/vk/ftmpl/internal/interp"
	"github.com/vk/ftmpl/internal/observer"
	"github.com/vk/ftmpl/internal/parser"
	"github.com/vk/ftmpl/internal/source"
	"github.com/vk/ftmpl/internal/transform"
)

// Options configures an assembly run.
type Options struct {
	// Registry resolves the options listed by definition blocks. A nil
	// registry means the built-in transforms.
	Registry *transform.Registry
	// Observer is read once per definition block. It may be nil.
	Observer *observer.Slot
}

// Assemble converts blocks into a Module. The first error aborts the whole
// document; no partial module is returned.
func Assemble(ctx context.Context, doc *source.Document, blocks []parser.Block, opts Options) (*Module, error) {
	logger := ctxlog.FromContext(ctx)
	if opts.Registry == nil {
		opts.Registry = transform.NewDefaultRegistry()
	}

	a := &assembler{doc: doc, opts: opts, offsets: lineOffsets(doc.Text)}
	mod := &Module{Path: doc.Path}
	seen := make(map[string]int)

	for _, block := range blocks {
		switch block.Kind {
		case parser.KindImport:
			mod.Units = append(mod.Units, &Unit{
				Kind:   parser.KindImport,
				Line:   block.Signature.Number,
				Import: block.Signature.Text,
			})
		case parser.KindDefinition:
			unit, err := a.definition(block)
			if err != nil {
				return nil, err
			}
			if prev, dup := seen[unit.Name]; dup {
				return nil, &CompileError{
					Path:    doc.Path,
					Line:    unit.Line,
					Text:    block.Signature.Text,
					Msg:     fmt.Sprintf("unit %q is already defined on line %d", unit.Name, prev),
					Subject: a.lineRange(unit.Line).Ptr(),
				}
			}
			seen[unit.Name] = unit.Line
			mod.Units = append(mod.Units, unit)
			logger.Debug("Assembled template unit.", "unit", unit.Name, "line", unit.Line, "instrumented", unit.Instrumented)
		default:
			return nil, fmt.Errorf("%s:%d: unexpected block kind %s", doc.Path, block.Signature.Number, block.Kind)
		}
	}

	logger.Debug("Assembled template module.", "path", doc.Path, "units", len(mod.Units))
	return mod, nil
}

type assembler struct {
	doc     *source.Document
	opts    Options
	offsets []int
}

func (a *assembler) definition(block parser.Block) (*Unit, error) {
	sigLine := block.Signature.Number

	body, doc, err := a.opts.Registry.Apply(block.Options, sigLine, block.Body.Text, block.Doc.Text)
	if err != nil {
		var unknown *transform.UnknownOptionError
		if errors.As(err, &unknown) {
			unknown.Subject = a.lineRange(sigLine).Ptr()
		}
		return nil, fmt.Errorf("%s: %w", a.doc.Path, err)
	}

	// The signature starts after the opening '['.
	sig, diags := interp.ParseSignature(block.Signature.Text, a.doc.Path, a.pos(sigLine, 1))
	if diags.HasErrors() {
		return nil, &CompileError{Path: a.doc.Path, Line: sigLine, Text: block.Signature.Text, Diags: diags}
	}

	bodyLine := block.Body.Number
	if bodyLine == 0 {
		bodyLine = sigLine
	}
	tmpl, diags := interp.Compile(body, a.doc.Path, a.pos(bodyLine, 0))
	if diags.HasErrors() {
		return nil, &CompileError{Path: a.doc.Path, Line: sigLine, Text: body, Diags: diags}
	}

	if diags := checkVariables(sig, tmpl); diags.HasErrors() {
		return nil, &CompileError{Path: a.doc.Path, Line: sigLine, Text: body, Diags: diags}
	}

	unit := &Unit{
		Kind:      parser.KindDefinition,
		Line:      sigLine,
		Name:      sig.Name,
		Signature: sig,
		Body:      body,
		BodyLine:  block.Body.Number,
		Template:  tmpl,
	}
	if doc != "" {
		unit.Doc = doc
	}
	if fn := a.opts.Observer.Get(); fn != nil {
		unit.Instrumented = true
		unit.observer = fn
	}
	return unit, nil
}

// checkVariables rejects placeholders that refer to names that are not
// parameters of the unit.
func checkVariables(sig *interp.Signature, tmpl *interp.Template) hcl.Diagnostics {
	params := make(map[string]bool, len(sig.Params))
	for _, p := range sig.Params {
		params[p.Name] = true
	}
	var diags hcl.Diagnostics
	ranges := tmpl.VariableRanges()
	for _, name := range tmpl.Variables() {
		if params[name] {
			continue
		}
		rng := ranges[name]
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown name",
			Detail:   fmt.Sprintf("%q is not a parameter of %s.", name, sig.Name),
			Subject:  &rng,
		})
	}
	return diags
}

// pos returns the document position of the given column (0-based byte
// offset) on a 1-based line.
func (a *assembler) pos(line, col int) hcl.Pos {
	byteOffset := 0
	if line > 0 && line <= len(a.offsets) {
		byteOffset = a.offsets[line-1]
	}
	return hcl.Pos{Line: line, Column: col + 1, Byte: byteOffset + col}
}

func (a *assembler) lineRange(line int) hcl.Range {
	start := a.pos(line, 0)
	end := start
	if line > 0 && line < len(a.offsets) {
		end = hcl.Pos{Line: line, Column: a.offsets[line] - a.offsets[line-1], Byte: a.offsets[line] - 1}
	}
	return hcl.Range{Filename: a.doc.Path, Start: start, End: end}
}

func lineOffsets(text string) []int {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}
