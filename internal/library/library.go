// Package library provides the function libraries that template imports
// resolve against.
//
// The core library is always in scope. Every other library is brought in
// by an import block:
//
//	[import strings]                  strings::upper(x), strings::title(x), ...
//	[import strings as s]             s::upper(x)
//	[from strings import upper]       upper(x)
//	[from strings import upper as up] up(x)
package library

import (
	"sort"

	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Library is a set of named functions.
type Library map[string]function.Function

// Names returns the function names in sorted order.
func (l Library) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Core returns the functions available to every placeholder without an
// import.
func Core() Library {
	return Library{
		"format":    stdlib.FormatFunc,
		"join":      stdlib.JoinFunc,
		"length":    stdlib.LengthFunc,
		"lower":     stdlib.LowerFunc,
		"upper":     stdlib.UpperFunc,
		"trimspace": stdlib.TrimSpaceFunc,
		"coalesce":  stdlib.CoalesceFunc,
	}
}

// Builtin returns the importable libraries by name.
func Builtin() map[string]Library {
	return map[string]Library{
		"strings": {
			"chomp":         stdlib.ChompFunc,
			"format":        stdlib.FormatFunc,
			"formatlist":    stdlib.FormatListFunc,
			"indent":        stdlib.IndentFunc,
			"join":          stdlib.JoinFunc,
			"lower":         stdlib.LowerFunc,
			"regex_replace": stdlib.RegexReplaceFunc,
			"replace":       stdlib.ReplaceFunc,
			"reverse":       stdlib.ReverseFunc,
			"split":         stdlib.SplitFunc,
			"strlen":        stdlib.StrlenFunc,
			"substr":        stdlib.SubstrFunc,
			"title":         stdlib.TitleFunc,
			"trim":          stdlib.TrimFunc,
			"trimprefix":    stdlib.TrimPrefixFunc,
			"trimspace":     stdlib.TrimSpaceFunc,
			"trimsuffix":    stdlib.TrimSuffixFunc,
			"upper":         stdlib.UpperFunc,
		},
		"math": {
			"abs":      stdlib.AbsoluteFunc,
			"ceil":     stdlib.CeilFunc,
			"floor":    stdlib.FloorFunc,
			"int":      stdlib.IntFunc,
			"log":      stdlib.LogFunc,
			"max":      stdlib.MaxFunc,
			"min":      stdlib.MinFunc,
			"parseint": stdlib.ParseIntFunc,
			"pow":      stdlib.PowFunc,
			"signum":   stdlib.SignumFunc,
		},
		"collections": {
			"coalesce": stdlib.CoalesceFunc,
			"compact":  stdlib.CompactFunc,
			"concat":   stdlib.ConcatFunc,
			"contains": stdlib.ContainsFunc,
			"distinct": stdlib.DistinctFunc,
			"element":  stdlib.ElementFunc,
			"flatten":  stdlib.FlattenFunc,
			"join":     stdlib.JoinFunc,
			"keys":     stdlib.KeysFunc,
			"length":   stdlib.LengthFunc,
			"lookup":   stdlib.LookupFunc,
			"merge":    stdlib.MergeFunc,
			"range":    stdlib.RangeFunc,
			"reverse":  stdlib.ReverseListFunc,
			"slice":    stdlib.SliceFunc,
			"sort":     stdlib.SortFunc,
			"values":   stdlib.ValuesFunc,
			"zipmap":   stdlib.ZipmapFunc,
		},
		"encoding": {
			"csvdecode":  stdlib.CSVDecodeFunc,
			"jsondecode": stdlib.JSONDecodeFunc,
			"jsonencode": stdlib.JSONEncodeFunc,
		},
	}
}
