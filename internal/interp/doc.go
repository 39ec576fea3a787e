// Package interp compiles the two pieces of text a definition block turns
// into code: its signature and its body.
//
// A signature has the form name(p1, p2 = default). Defaults are HCL native
// syntax constant expressions and are evaluated once, when the signature is
// parsed.
//
// A body is literal text with {expr} placeholders. Every placeholder is an
// HCL native syntax expression, parsed when the body is compiled and
// evaluated each time the template is rendered, against whatever variables
// and functions the caller puts into the hcl.EvalContext. Literal braces
// are written {{ and }}.
package interp
