package library

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestCore(t *testing.T) {
	// --- Arrange ---
	core := Core()

	// --- Act ---
	out, err := core["upper"].Call([]cty.Value{cty.StringVal("ada")})

	// --- Assert ---
	require.Contains(t, core.Names(), "upper")
	require.NoError(t, err)
	require.Equal(t, "ADA", out.AsString())
}

func TestBuiltin(t *testing.T) {
	// --- Arrange ---
	libs := Builtin()

	// --- Act ---
	title, titleErr := libs["strings"]["title"].Call([]cty.Value{cty.StringVal("hello world")})
	maxVal, maxErr := libs["math"]["max"].Call([]cty.Value{cty.NumberIntVal(3), cty.NumberIntVal(9)})

	// --- Assert ---
	for _, name := range []string{"strings", "math", "collections", "encoding"} {
		require.NotEmpty(t, libs[name], name)
	}
	require.NoError(t, titleErr)
	require.Equal(t, "Hello World", title.AsString())
	require.NoError(t, maxErr)
	require.True(t, maxVal.RawEquals(cty.NumberIntVal(9)))
}

func TestNamesSorted(t *testing.T) {
	// --- Arrange ---
	upper := Core()["upper"]
	lib := Library{"c": upper, "a": upper, "b": upper}

	// --- Act ---
	names := lib.Names()

	// --- Assert ---
	require.Equal(t, []string{"a", "b", "c"}, names)
}
