package codegen

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/vk/ftmpl/internal/assembler"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// IR is the serializable form of an assembled module.
type IR struct {
	Path  string   `yaml:"path" json:"path" msgpack:"path"`
	Units []UnitIR `yaml:"units" json:"units" msgpack:"units"`
}

// UnitIR describes one unit.
type UnitIR struct {
	Kind         string      `yaml:"kind" json:"kind" msgpack:"kind"`
	Line         int         `yaml:"line" json:"line" msgpack:"line"`
	Import       string      `yaml:"import,omitempty" json:"import,omitempty" msgpack:"import,omitempty"`
	Name         string      `yaml:"name,omitempty" json:"name,omitempty" msgpack:"name,omitempty"`
	Signature    string      `yaml:"signature,omitempty" json:"signature,omitempty" msgpack:"signature,omitempty"`
	Params       []ParamIR   `yaml:"params,omitempty" json:"params,omitempty" msgpack:"params,omitempty"`
	Doc          string      `yaml:"doc,omitempty" json:"doc,omitempty" msgpack:"doc,omitempty"`
	Instrumented bool        `yaml:"instrumented,omitempty" json:"instrumented,omitempty" msgpack:"instrumented,omitempty"`
	Segments     []SegmentIR `yaml:"segments,omitempty" json:"segments,omitempty" msgpack:"segments,omitempty"`
}

// ParamIR is a parameter and the source text of its default.
type ParamIR struct {
	Name    string `yaml:"name" json:"name" msgpack:"name"`
	Default string `yaml:"default,omitempty" json:"default,omitempty" msgpack:"default,omitempty"`
}

// SegmentIR is literal text or the source of a placeholder.
type SegmentIR struct {
	Literal string `yaml:"literal,omitempty" json:"literal,omitempty" msgpack:"literal,omitempty"`
	Expr    string `yaml:"expr,omitempty" json:"expr,omitempty" msgpack:"expr,omitempty"`
	Line    int    `yaml:"line,omitempty" json:"line,omitempty" msgpack:"line,omitempty"`
}

// NewIR converts mod.
func NewIR(mod *assembler.Module) *IR {
	ir := &IR{Path: mod.Path}
	for _, u := range mod.Units {
		unit := UnitIR{Kind: u.Kind.String(), Line: u.Line, Import: u.Import}
		if u.Signature != nil {
			unit.Name = u.Name
			unit.Signature = u.Signature.Text
			unit.Doc = u.Doc
			unit.Instrumented = u.Instrumented
			for _, p := range u.Signature.Params {
				unit.Params = append(unit.Params, ParamIR{Name: p.Name, Default: p.DefaultText})
			}
		}
		if u.Template != nil {
			for _, seg := range u.Template.Segments {
				if seg.IsExpr() {
					unit.Segments = append(unit.Segments, SegmentIR{Expr: seg.Source, Line: seg.Range.Start.Line})
				} else {
					unit.Segments = append(unit.Segments, SegmentIR{Literal: seg.Literal})
				}
			}
		}
		ir.Units = append(ir.Units, unit)
	}
	return ir
}

// Format selects the output of Write.
type Format string

const (
	FormatGo       Format = "go"
	FormatTemplate Format = "template"
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatMsgpack  Format = "msgpack"
	FormatDump     Format = "dump"
)

// Formats lists every supported format.
var Formats = []Format{FormatGo, FormatTemplate, FormatYAML, FormatJSON, FormatMsgpack, FormatDump}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format %q: must be one of %s", s, strings.Join(names, ", "))
}

// Write renders mod to w in the given format.
func Write(w io.Writer, mod *assembler.Module, format Format, opts GoOptions) error {
	switch format {
	case FormatGo:
		src, err := Go(mod, opts)
		if err != nil {
			return err
		}
		_, err = w.Write(src)
		return err
	case FormatTemplate:
		_, err := io.WriteString(w, Template(mod))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewIR(mod)); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewIR(mod))
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(NewIR(mod))
	case FormatDump:
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
		cfg.Fdump(w, NewIR(mod))
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}
