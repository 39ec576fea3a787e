package interp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/ftmpl/internal/ctyconv"
)

// Segment is either literal text or a placeholder expression.
type Segment struct {
	Literal string
	Expr    hclsyntax.Expression
	Source  string
	Range   hcl.Range
}

// IsExpr reports whether the segment is a placeholder.
func (s Segment) IsExpr() bool {
	return s.Expr != nil
}

// Template is a compiled body.
type Template struct {
	Segments []Segment
}

// Compile splits text into literal and placeholder segments and parses every
// placeholder. start is the document position of the first byte of text.
func Compile(text, filename string, start hcl.Pos) (*Template, hcl.Diagnostics) {
	c := newCursor(text, start)
	tmpl := &Template{}
	var lit strings.Builder
	var diags hcl.Diagnostics

	flush := func() {
		if lit.Len() > 0 {
			tmpl.Segments = append(tmpl.Segments, Segment{Literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end, ok := matchClose(text, i)
			if !ok {
				diags = append(diags, bodyError(c.rng(filename, i, len(text)), "Unterminated placeholder",
					"A '{' opens a placeholder that is never closed. Write '{{' for a literal brace.")...)
				return nil, diags
			}
			src := text[i+1 : end]
			openPos := c.pos(i)
			exprPos := c.pos(i + 1)
			rng := hcl.Range{Filename: filename, Start: openPos, End: c.pos(end + 1)}
			if strings.TrimSpace(src) == "" {
				diags = append(diags, bodyError(rng, "Empty placeholder", "A placeholder must contain an expression.")...)
				i = end
				continue
			}
			expr, exprDiags := hclsyntax.ParseExpression([]byte(src), filename, exprPos)
			diags = append(diags, exprDiags...)
			if !exprDiags.HasErrors() {
				flush()
				tmpl.Segments = append(tmpl.Segments, Segment{Expr: expr, Source: src, Range: rng})
			}
			i = end
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			diags = append(diags, bodyError(c.rng(filename, i, i+1), "Single '}' is not allowed",
				"Write '}}' for a literal closing brace.")...)
		default:
			lit.WriteByte(text[i])
		}
	}
	flush()

	if diags.HasErrors() {
		return nil, diags
	}
	return tmpl, nil
}

// Render evaluates every placeholder against ctx and concatenates the
// results.
func (t *Template) Render(ctx *hcl.EvalContext) (string, hcl.Diagnostics) {
	var b strings.Builder
	for _, seg := range t.Segments {
		if !seg.IsExpr() {
			b.WriteString(seg.Literal)
			continue
		}
		val, diags := seg.Expr.Value(ctx)
		if diags.HasErrors() {
			return "", diags
		}
		s, err := ctyconv.String(val)
		if err != nil {
			return "", bodyError(seg.Range, "Cannot render placeholder", fmt.Sprintf("The value of {%s} cannot be rendered: %s.", seg.Source, err))
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// Variables returns the root names of all variables the placeholders refer
// to, sorted and without duplicates.
func (t *Template) Variables() []string {
	set := make(map[string]struct{})
	for _, seg := range t.Segments {
		if !seg.IsExpr() {
			continue
		}
		for _, traversal := range hclsyntax.Variables(seg.Expr) {
			set[traversal.RootName()] = struct{}{}
		}
	}
	return sortedSet(set)
}

// FunctionCall is one function call site inside a placeholder.
type FunctionCall struct {
	Name  string
	Range hcl.Range
}

// FunctionCalls returns every function call made by the placeholders, in
// source order.
func (t *Template) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, seg := range t.Segments {
		if !seg.IsExpr() {
			continue
		}
		hclsyntax.VisitAll(seg.Expr, func(n hclsyntax.Node) hcl.Diagnostics {
			if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
				calls = append(calls, FunctionCall{Name: call.Name, Range: call.NameRange})
			}
			return nil
		})
	}
	return calls
}

// VariableRanges returns, for each referenced root name, the range of its
// first reference.
func (t *Template) VariableRanges() map[string]hcl.Range {
	out := make(map[string]hcl.Range)
	for _, seg := range t.Segments {
		if !seg.IsExpr() {
			continue
		}
		for _, traversal := range hclsyntax.Variables(seg.Expr) {
			if _, ok := out[traversal.RootName()]; !ok {
				out[traversal.RootName()] = traversal.SourceRange()
			}
		}
	}
	return out
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func bodyError(rng hcl.Range, summary, detail string) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng.Ptr(),
	}}
}
