package interp

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Param is one declared parameter of a template unit.
type Param struct {
	Name string
	// DefaultText is the source text of the default value, empty when the
	// parameter is required.
	DefaultText string
	Default     cty.Value
}

// Required reports whether callers must supply the parameter.
func (p Param) Required() bool {
	return p.DefaultText == ""
}

// Signature is a parsed unit signature.
type Signature struct {
	Name   string
	Params []Param
	Text   string
}

// ParamNames returns the parameter names in declaration order.
func (s *Signature) ParamNames() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// Required returns the number of leading required parameters.
func (s *Signature) Required() int {
	n := 0
	for _, p := range s.Params {
		if !p.Required() {
			break
		}
		n++
	}
	return n
}

// ParseSignature parses text of the form name(p1, p2 = default). start is
// the document position of the first byte of text.
func ParseSignature(text, filename string, start hcl.Pos) (*Signature, hcl.Diagnostics) {
	c := newCursor(text, start)
	whole := c.rng(filename, 0, len(text))

	open := strings.IndexByte(text, '(')
	if open < 0 {
		return nil, sigError(whole, "A signature must have the form name(parameters), e.g. greet(who).")
	}
	name := strings.TrimSpace(text[:open])
	if !hclsyntax.ValidIdentifier(name) || strings.Contains(name, "-") {
		return nil, sigError(c.rng(filename, 0, open), fmt.Sprintf("%q is not a valid unit name.", name))
	}

	closeAt, ok := matchClose(text, open)
	if !ok {
		return nil, sigError(whole, "The parameter list is not closed.")
	}
	if rest := strings.TrimSpace(text[closeAt+1:]); rest != "" {
		return nil, sigError(c.rng(filename, closeAt+1, len(text)), fmt.Sprintf("Unexpected %q after the parameter list.", rest))
	}

	sig := &Signature{Name: name, Text: text}
	inner := text[open+1 : closeAt]
	if strings.TrimSpace(inner) == "" {
		return sig, nil
	}

	parts, ok := splitTopLevel(inner)
	if !ok {
		return nil, sigError(whole, "The parameter list is malformed.")
	}
	// A single trailing comma is allowed.
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	var diags hcl.Diagnostics
	seen := make(map[string]bool, len(parts))
	offset := open + 1
	sawDefault := false
	for _, part := range parts {
		partStart := offset
		offset += len(part) + 1
		partRange := c.rng(filename, partStart, partStart+len(part))

		paramName, defaultText, hasDefault := strings.Cut(part, "=")
		paramName = strings.TrimSpace(paramName)
		if !hclsyntax.ValidIdentifier(paramName) || strings.Contains(paramName, "-") {
			diags = append(diags, sigError(partRange, fmt.Sprintf("%q is not a valid parameter name.", paramName))...)
			continue
		}
		if seen[paramName] {
			diags = append(diags, sigError(partRange, fmt.Sprintf("Duplicate parameter %q.", paramName))...)
			continue
		}
		seen[paramName] = true

		param := Param{Name: paramName}
		if hasDefault {
			defaultText = strings.TrimSpace(defaultText)
			if defaultText == "" {
				diags = append(diags, sigError(partRange, fmt.Sprintf("Parameter %q has an empty default.", paramName))...)
				continue
			}
			exprStart := partStart + strings.Index(part, "=") + 1
			val, valDiags := evalDefault(defaultText, filename, c.pos(exprStart))
			if valDiags.HasErrors() {
				diags = append(diags, valDiags...)
				continue
			}
			param.DefaultText = defaultText
			param.Default = val
			sawDefault = true
		} else if sawDefault {
			diags = append(diags, sigError(partRange, fmt.Sprintf("Required parameter %q follows a parameter with a default.", paramName))...)
			continue
		}
		sig.Params = append(sig.Params, param)
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return sig, nil
}

// evalDefault evaluates a default value. Defaults are constants: they may
// not refer to variables or call functions.
func evalDefault(text, filename string, start hcl.Pos) (cty.Value, hcl.Diagnostics) {
	expr, diags := hclsyntax.ParseExpression([]byte(text), filename, start)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	return expr.Value(nil)
}

func sigError(rng hcl.Range, detail string) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Invalid signature",
		Detail:   detail,
		Subject:  rng.Ptr(),
	}}
}
