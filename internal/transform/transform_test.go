package transform

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, name, body, doc string) (string, string) {
	t.Helper()
	fn, ok := NewDefaultRegistry().Lookup(name)
	require.True(t, ok, "transform %q should be registered", name)
	return fn(body, doc)
}

func TestUnwrapLines(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: "a\nb", want: "a b"},
		{in: "a\n\nb", want: "a\nb"},
		{in: "a\n\n\nb", want: "a\n\nb"},
		{in: "one\ntwo\nthree\n\nfour", want: "one two three\nfour"},
		{in: "no breaks", want: "no breaks"},
		{in: "trailing\n", want: "trailing "},
	}
	for _, tc := range testCases {
		// --- Act ---
		body, doc := apply(t, UnwrapLines, tc.in, "doc")

		// --- Assert ---
		assert.Equal(t, tc.want, body, "input %q", tc.in)
		assert.Equal(t, "doc", doc)
	}
}

func TestLatexTmpl(t *testing.T) {
	// --- Act ---
	body, doc := apply(t, LatexTmpl, "{x} <val>", "d")
	fracBody, _ := apply(t, LatexTmpl, `\frac{<a>}{<b>}`, "")

	// --- Assert ---
	require.Equal(t, "{{x}} {val}", body)
	require.Equal(t, "d", doc)
	require.Equal(t, `\frac{{{a}}}{{{b}}}`, fracBody)
}

func TestAppendDoc(t *testing.T) {
	// --- Act ---
	body, doc := apply(t, AppendDoc, "body text", "Doc: ")

	// --- Assert ---
	require.Equal(t, "body text", body)
	require.Equal(t, "Doc: body text", doc)
}

func TestCommentRemoval(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: RemoveCppComments, in: "a // note\nb /* block\nstill */c", want: "a \nb c"},
		{name: RemovePythonComments, in: "a # note\n# whole line\nb", want: "a \n\nb"},
		{name: RemoveHTMLComments, in: "<p>hi<!-- one -->there<!--\ntwo\n--></p>", want: "<p>hithere</p>"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			body, doc := apply(t, tc.name, tc.in, "keep")

			// --- Assert ---
			require.Equal(t, tc.want, body)
			require.Equal(t, "keep", doc)
		})
	}
}

func TestCommentRemoval_Idempotent(t *testing.T) {
	// --- Arrange ---
	inputs := []string{
		"x // y\nz",
		"/* a */ b /* c",
		"/*/ nested */ */",
		"#a#b\n#",
		"<!-- a --> <!-- b <!-- c --> -->",
		"<!<!-- x -->-- y -->",
		"/</* x */* y */",
		"plain",
	}
	for _, name := range []string{RemoveCppComments, RemovePythonComments, RemoveHTMLComments} {
		for _, in := range inputs {
			// --- Act ---
			once, _ := apply(t, name, in, "")
			twice, _ := apply(t, name, once, "")

			// --- Assert ---
			assert.Equal(t, once, twice, "%s is not idempotent for %q", name, in)
		}
	}
}

func TestAliases(t *testing.T) {
	// --- Arrange ---
	reg := NewDefaultRegistry()
	in := "x // c\ny\n\nz"

	for alias, target := range map[string]string{
		"cstylecomments": RemoveCppComments,
		"unwraplines":    UnwrapLines,
		"appendtodoc":    AppendDoc,
	} {
		a, ok := reg.Lookup(alias)
		require.True(t, ok, alias)
		b, _ := reg.Lookup(target)

		// --- Act ---
		gotBody, gotDoc := a(in, "d")
		wantBody, wantDoc := b(in, "d")

		// --- Assert ---
		assert.Equal(t, wantBody, gotBody, alias)
		assert.Equal(t, wantDoc, gotDoc, alias)
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	// --- Arrange ---
	reg := NewRegistry()
	reg.Register("shout", func(body, doc string) (string, string) { return body + "!", doc })
	reg.Register("shout", func(body, doc string) (string, string) { return strings.ToUpper(body), doc })

	// --- Act ---
	body, _, err := reg.Apply([]string{"shout"}, 1, "hey", "")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "HEY", body)
	require.Equal(t, []string{"shout"}, reg.Names())
}

func TestRegistry_RegisterNilPanics(t *testing.T) {
	// --- Arrange ---
	reg := NewRegistry()

	// --- Assert ---
	require.Panics(t, func() { reg.Register("nil", nil) })
}

func TestRegistry_ApplyInListedOrder(t *testing.T) {
	// --- Arrange ---
	reg := NewDefaultRegistry()

	// --- Act ---
	body, doc, err := reg.Apply([]string{UnwrapLines, AppendDoc}, 3, "a\nb", "Doc: ")
	revBody, revDoc, revErr := reg.Apply([]string{AppendDoc, UnwrapLines}, 3, "a\nb", "Doc: ")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "a b", body)
	require.Equal(t, "Doc: a b", doc)

	require.NoError(t, revErr)
	require.Equal(t, "a b", revBody)
	require.Equal(t, "Doc: a\nb", revDoc)
}

func TestRegistry_ApplyUnknownOption(t *testing.T) {
	// --- Arrange ---
	calls := 0
	reg := NewRegistry()
	reg.Register("count", func(body, doc string) (string, string) {
		calls++
		return body, doc
	})

	// --- Act ---
	_, _, err := reg.Apply([]string{"count", "nope"}, 7, "b", "d")

	// --- Assert ---
	require.Error(t, err)
	var unknown *UnknownOptionError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "nope", unknown.Option)
	require.Equal(t, 7, unknown.Line)
	require.Equal(t, 0, calls, "no transform may run when an option is unknown")
	require.Contains(t, unknown.Diagnostics()[0].Detail, "count")
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	// --- Arrange ---
	reg := NewDefaultRegistry()
	clone := reg.Clone()

	// --- Act ---
	clone.Register("extra", appendDoc)

	// --- Assert ---
	_, ok := reg.Lookup("extra")
	require.False(t, ok)
	_, ok = clone.Lookup("extra")
	require.True(t, ok)
}

func TestRegistry_RegisterDoesNotLog(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	reg := NewRegistry()

	// --- Act ---
	reg.Register("shout", func(body, doc string) (string, string) { return strings.ToUpper(body), doc })
	reg.Register("shout", appendDoc)

	// --- Assert ---
	require.Empty(t, buf.String())
}
