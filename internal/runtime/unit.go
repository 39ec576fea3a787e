package runtime

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/ftmpl/internal/assembler"
	"github.com/vk/ftmpl/internal/ctyconv"
	"github.com/vk/ftmpl/internal/interp"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// MaxCallDepth bounds how deeply units may call units of the same module.
const MaxCallDepth = 1000

// Unit is a callable template definition.
type Unit struct {
	desc   *assembler.Unit
	module *Module
}

// Name returns the unit name.
func (u *Unit) Name() string { return u.desc.Name }

// Doc returns the doc text, or "" if the unit has none.
func (u *Unit) Doc() string { return u.desc.Doc }

// Line returns the control line of the unit in its document.
func (u *Unit) Line() int { return u.desc.Line }

// Params returns the declared parameters.
func (u *Unit) Params() []interp.Param { return u.desc.Signature.Params }

// Signature returns the signature text.
func (u *Unit) Signature() string { return u.desc.Signature.Text }

// Instrumented reports whether the unit calls an observer.
func (u *Unit) Instrumented() bool { return u.desc.Instrumented }

// Call renders the unit with positional arguments. Go values are converted
// to cty values first.
func (u *Unit) Call(args ...any) (string, error) {
	vals := make([]cty.Value, len(args))
	for i, arg := range args {
		v, err := ctyconv.FromGo(arg)
		if err != nil {
			return "", &ArgumentError{Unit: u.Name(), Msg: fmt.Sprintf("argument %d: %v", i+1, err)}
		}
		vals[i] = v
	}
	return u.CallValues(vals)
}

// CallNamed renders the unit with arguments bound by parameter name.
func (u *Unit) CallNamed(args map[string]any) (string, error) {
	vals := make(map[string]cty.Value, len(args))
	for name, arg := range args {
		v, err := ctyconv.FromGo(arg)
		if err != nil {
			return "", &ArgumentError{Unit: u.Name(), Msg: fmt.Sprintf("argument %q: %v", name, err)}
		}
		vals[name] = v
	}
	return u.CallValueMap(vals)
}

// CallValues renders the unit with positional cty arguments.
func (u *Unit) CallValues(args []cty.Value) (string, error) {
	return u.callValues(args, 0)
}

func (u *Unit) callValues(args []cty.Value, depth int) (string, error) {
	params := u.Params()
	if len(args) > len(params) {
		return "", &ArgumentError{Unit: u.Name(), Msg: fmt.Sprintf("takes %d arguments, got %d", len(params), len(args))}
	}
	named := make(map[string]cty.Value, len(args))
	for i, v := range args {
		named[params[i].Name] = v
	}
	return u.call(named, depth)
}

// CallValueMap renders the unit with cty arguments bound by parameter name.
// Parameters without an argument take their default.
func (u *Unit) CallValueMap(args map[string]cty.Value) (string, error) {
	return u.call(args, 0)
}

// call renders the unit at the given depth of unit-to-unit calls.
func (u *Unit) call(args map[string]cty.Value, depth int) (string, error) {
	if depth > MaxCallDepth {
		return "", u.depthError()
	}
	bound, err := u.bind(args)
	if err != nil {
		return "", err
	}
	return u.render(bound, depth)
}

func (u *Unit) bind(args map[string]cty.Value) (map[string]cty.Value, error) {
	params := u.Params()
	declared := make(map[string]bool, len(params))
	bound := make(map[string]cty.Value, len(params))
	var missing []string

	for _, p := range params {
		declared[p.Name] = true
		if v, ok := args[p.Name]; ok {
			bound[p.Name] = v
			continue
		}
		if p.Required() {
			missing = append(missing, p.Name)
			continue
		}
		bound[p.Name] = p.Default
	}

	var unknown []string
	for name := range args {
		if !declared[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &ArgumentError{Unit: u.Name(), Msg: "unexpected argument " + quoteList(unknown)}
	}
	if len(missing) > 0 {
		return nil, &ArgumentError{Unit: u.Name(), Msg: "missing argument " + quoteList(missing)}
	}
	return bound, nil
}

// render evaluates the body and, for instrumented units, reports the
// result to the captured observer. The rendered string is returned even
// when the observer fails.
func (u *Unit) render(bound map[string]cty.Value, depth int) (string, error) {
	evalCtx := u.module.scope.NewChild()
	evalCtx.Variables = bound
	evalCtx.Functions = u.module.functionsAt(depth + 1)

	out, diags := u.desc.Template.Render(evalCtx)
	if diags.HasErrors() {
		if err := depthExceeded(diags); err != nil {
			return "", err
		}
		return "", &RenderError{Unit: u.Name(), Path: u.module.Path(), Line: u.desc.Line, Diags: diags}
	}

	if fn := u.desc.Observer(); fn != nil {
		if err := fn(u.Name(), out, ctyconv.ToGoMap(bound)); err != nil {
			return out, &ObserverError{Unit: u.Name(), Err: err}
		}
	}
	return out, nil
}

// Function returns the unit as a cty function. Required parameters are
// positional; parameters with defaults are taken from the variadic tail.
func (u *Unit) Function() function.Function {
	return u.functionAt(0)
}

// functionAt returns the unit as a function whose calls render at depth.
func (u *Unit) functionAt(depth int) function.Function {
	sig := u.desc.Signature
	spec := &function.Spec{
		Description: u.Doc(),
		Type:        function.StaticReturnType(cty.String),
	}
	for _, p := range sig.Params {
		if !p.Required() {
			spec.VarParam = &function.Parameter{
				Name:      "optional",
				Type:      cty.DynamicPseudoType,
				AllowNull: true,
			}
			break
		}
		spec.Params = append(spec.Params, function.Parameter{
			Name:      p.Name,
			Type:      cty.DynamicPseudoType,
			AllowNull: true,
		})
	}
	spec.Impl = func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		out, err := u.callValues(args, depth)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(out), nil
	}
	return function.New(spec)
}

func (u *Unit) depthError() *RenderError {
	return &RenderError{
		Unit: u.Name(),
		Path: u.module.Path(),
		Line: u.desc.Line,
		Err:  ErrCallDepth,
		Diags: hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Call depth exceeded",
			Detail:   fmt.Sprintf("Units called each other more than %d levels deep, starting from %s.", MaxCallDepth, u.Name()),
		}},
	}
}

// depthExceeded returns the call depth error behind diags, if any, so that
// it reaches the outermost caller unwrapped.
func depthExceeded(diags hcl.Diagnostics) error {
	for _, diag := range diags {
		extra, ok := hcl.DiagnosticExtra[hclsyntax.FunctionCallDiagExtra](diag)
		if !ok {
			continue
		}
		var rerr *RenderError
		if errors.As(extra.FunctionCallError(), &rerr) && errors.Is(rerr, ErrCallDepth) {
			return rerr
		}
	}
	return nil
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
