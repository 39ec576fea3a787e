// Package ctyconv converts between native Go values and cty values, and
// renders cty values as template output.
package ctyconv

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// FromGo converts a native Go value into a cty.Value. Maps with string keys
// become objects and slices become tuples, so heterogeneous values are
// accepted. Structs are converted through gocty.
func FromGo(v any) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return tv, nil
	case string:
		return cty.StringVal(tv), nil
	case bool:
		return cty.BoolVal(tv), nil
	case *big.Float:
		return cty.NumberVal(tv), nil
	case *big.Int:
		return cty.NumberVal(new(big.Float).SetInt(tv)), nil
	case fmt.Stringer:
		if reflect.ValueOf(v).Kind() != reflect.Ptr {
			return cty.StringVal(tv.String()), nil
		}
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) (cty.Value, error) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return FromGo(rv.Elem().Interface())
	case reflect.String:
		return cty.StringVal(rv.String()), nil
	case reflect.Bool:
		return cty.BoolVal(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cty.NumberIntVal(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cty.NumberUIntVal(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return cty.NilVal, errors.New("NaN is not a number value")
		}
		return cty.NumberFloatVal(f), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return cty.EmptyTupleVal, nil
		}
		if rv.Len() == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, rv.Len())
		for i := range elems {
			ev, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return cty.NilVal, fmt.Errorf("unsupported map key type %s; only string keys are allowed", rv.Type().Key())
		}
		if rv.Len() == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			av, err := FromGo(iter.Value().Interface())
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", key, err)
			}
			attrs[key] = av
		}
		return cty.ObjectVal(attrs), nil
	case reflect.Struct:
		return structValue(rv.Interface())
	case reflect.Invalid:
		return cty.NullVal(cty.DynamicPseudoType), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value of type %s", rv.Type())
	}
}

func structValue(v any) (val cty.Value, err error) {
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type for %T: %w", v, err)
	}
	// gocty panics on NaN float fields.
	defer func() {
		if r := recover(); r != nil {
			val, err = cty.NilVal, fmt.Errorf("converting %T: %v", v, r)
		}
	}()
	return gocty.ToCtyValue(v, ty)
}

// ToGo converts a cty.Value into plain Go values: string, int64 or float64,
// bool, []any and map[string]any. Null becomes nil.
func ToGo(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
		f, _ := bf.Float64()
		return f
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ToGo(ev))
		}
		return out
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = ToGo(ev)
		}
		return out
	default:
		return v.GoString()
	}
}

// ToGoMap converts every value of a name/value mapping with ToGo.
func ToGoMap(vals map[string]cty.Value) map[string]any {
	out := make(map[string]any, len(vals))
	for k, v := range vals {
		out[k] = ToGo(v)
	}
	return out
}

// String renders a value the way it appears in template output. Strings are
// verbatim, numbers and bools use their canonical text, null renders as
// nothing and collections are rendered as JSON.
func String(v cty.Value) (string, error) {
	if !v.IsKnown() {
		return "", fmt.Errorf("value is not known")
	}
	if v.IsNull() {
		return "", nil
	}
	ty := v.Type()
	if ty.IsPrimitiveType() {
		sv, err := convert.Convert(v, cty.String)
		if err != nil {
			return "", err
		}
		return sv.AsString(), nil
	}
	data, err := ctyjson.Marshal(v, ty)
	if err != nil {
		return "", fmt.Errorf("cannot render %s value: %w", ty.FriendlyName(), err)
	}
	return string(data), nil
}

// SortedKeys returns the keys of a value mapping in sorted order.
func SortedKeys(vals map[string]cty.Value) []string {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
