package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "single newline", text: "\n", want: []string{""}},
		{name: "trailing newline", text: "a\nb\n", want: []string{"a", "b"}},
		{name: "no trailing newline", text: "a\n\nb", want: []string{"a", "", "b"}},
		{name: "crlf", text: "a\r\nb\r\n", want: []string{"a", "b"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			lines := New("t", tc.text).Lines()

			// --- Assert ---
			require.Equal(t, tc.want, lines)
		})
	}
}

func TestRead(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "doc.ftmpl")
	require.NoError(t, os.WriteFile(path, []byte("[a()]\nbody\n"), 0o600))

	// --- Act ---
	doc, err := Read(path)
	_, missingErr := Read(filepath.Join(t.TempDir(), "missing.ftmpl"))

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, path, doc.Path)
	require.Equal(t, "[a()]\nbody\n", doc.Text)
	require.Error(t, missingErr)
}
