package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/ftmpl/internal/runtime"
	"github.com/zclconf/go-cty/cty"
)

// Args are the arguments of a render request.
type Args struct {
	Positional []cty.Value
	Named      map[string]cty.Value
}

// ParseArgs reads command-line arguments. "name=value" binds a parameter
// by name and anything else is positional. Values are HCL expressions
// without variables; a value that does not evaluate is taken as a literal
// string, so that both name="Ada" and name=Ada work.
func ParseArgs(items []string) (Args, error) {
	args := Args{Named: make(map[string]cty.Value)}
	for _, item := range items {
		name, value, named := strings.Cut(item, "=")
		if named && hclsyntax.ValidIdentifier(name) {
			if _, dup := args.Named[name]; dup {
				return Args{}, fmt.Errorf("argument %q given twice", name)
			}
			args.Named[name] = parseValue(value)
			continue
		}
		if len(args.Named) > 0 {
			return Args{}, fmt.Errorf("positional argument %q follows a named argument", item)
		}
		args.Positional = append(args.Positional, parseValue(item))
	}
	return args, nil
}

func parseValue(text string) cty.Value {
	expr, diags := hclsyntax.ParseExpression([]byte(text), "<arg>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.StringVal(text)
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() || !v.IsWhollyKnown() {
		return cty.StringVal(text)
	}
	return v
}

// Render resolves moduleName and renders one of its units.
func (a *App) Render(ctx context.Context, moduleName, unitName string, args Args) (string, error) {
	mod, err := a.Resolve(ctx, moduleName)
	if err != nil {
		return "", err
	}
	unit, ok := mod.Unit(unitName)
	if !ok {
		return "", fmt.Errorf("%s: %w %q (has %s)", moduleName, runtime.ErrUnknownUnit, unitName, strings.Join(mod.Names(), ", "))
	}

	bound, err := bindArgs(unit, args)
	if err != nil {
		return "", err
	}
	a.logger.Debug("Rendering template unit.", "module", moduleName, "unit", unitName, "args", len(bound))
	return unit.CallValueMap(bound)
}

func bindArgs(unit *runtime.Unit, args Args) (map[string]cty.Value, error) {
	params := unit.Params()
	if len(args.Positional) > len(params) {
		return nil, &runtime.ArgumentError{Unit: unit.Name(), Msg: fmt.Sprintf("takes %d arguments, got %d", len(params), len(args.Positional))}
	}
	bound := make(map[string]cty.Value, len(params))
	for i, v := range args.Positional {
		bound[params[i].Name] = v
	}
	for name, v := range args.Named {
		if _, dup := bound[name]; dup {
			return nil, &runtime.ArgumentError{Unit: unit.Name(), Msg: fmt.Sprintf("argument %q given twice", name)}
		}
		bound[name] = v
	}
	return bound, nil
}
