package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("[f()]\nx\n"), 0o644))
	}
}

func TestFindFilesByExtension(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	writeFiles(t, root, "a.ftmpl", "sub/b.ftmpl", "notes.txt")

	// --- Act ---
	files, err := FindFilesByExtension(root, ".ftmpl")

	// --- Assert ---
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.ftmpl"),
		filepath.Join(root, "sub", "b.ftmpl"),
	}, files)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()

	// --- Assert ---
	assert.Panics(t, func() {
		_, _ = FindFilesByExtension(root, "")
	})
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	// --- Act ---
	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".ftmpl")

	// --- Assert ---
	require.Error(t, err)
}

func TestModuleNames(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	writeFiles(t, root, "zeta.ftmpl", "mail/welcome.ftmpl", "mail/en/bye.ftmpl", "skip.md")

	// --- Act ---
	names, err := ModuleNames(root, ".ftmpl")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"mail.en.bye", "mail.welcome", "zeta"}, names)
	assert.Equal(t, filepath.Join(root, "mail", "en", "bye.ftmpl"), ModulePath(root, "mail.en.bye", ".ftmpl"))
}
