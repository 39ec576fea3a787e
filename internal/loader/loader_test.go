package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ftmpl/internal/compiler"
	"github.com/vk/ftmpl/internal/parser"
	"github.com/vk/ftmpl/internal/runtime"
	"github.com/vk/ftmpl/internal/source"
)

func write(t *testing.T, root, rel, text string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestFileLoader_Resolve(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	write(t, root, "mail/welcome.ftmpl", "[welcome(name)]\nWelcome, {name}!\n")
	l := NewFileLoader(compiler.New())

	// --- Act ---
	mod, ok, err := l.Resolve(context.Background(), "mail.welcome", root)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, ok)
	out, err := mod.Render("welcome", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Welcome, Ada!", out)
}

func TestFileLoader_NoMatch(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	write(t, root, "dir/inner.ftmpl", "[f()]\nx\n")
	l := NewFileLoader(compiler.New())

	for _, name := range []string{"missing", "dir", "not-valid", "", "a..b"} {
		// --- Act ---
		mod, ok, err := l.Resolve(context.Background(), name, root)

		// --- Assert ---
		require.NoError(t, err, name)
		assert.False(t, ok, name)
		assert.Nil(t, mod, name)
	}
}

func TestFileLoader_CompilesFreshEveryTime(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	write(t, root, "t.ftmpl", "[f()]\none\n")
	l := NewFileLoader(compiler.New())

	// --- Act ---
	first, ok, err := l.Resolve(context.Background(), "t", root)
	require.NoError(t, err)
	require.True(t, ok)
	write(t, root, "t.ftmpl", "[f()]\ntwo\n")
	second, _, err := l.Resolve(context.Background(), "t", root)

	// --- Assert ---
	require.NoError(t, err)
	out, _ := first.Render("f")
	assert.Equal(t, "one", out)
	out, _ = second.Render("f")
	assert.Equal(t, "two", out)
}

func TestFileLoader_CompileErrorsSurface(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	write(t, root, "bad.ftmpl", "no control line\n")
	l := NewFileLoader(compiler.New())

	// --- Act ---
	_, ok, err := l.Resolve(context.Background(), "bad", root)

	// --- Assert ---
	assert.False(t, ok)
	var syntaxErr *parser.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 1, syntaxErr.Line)
}

func TestFileLoader_TemplateImports(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	write(t, root, "parts/names.ftmpl", "[full(first, last)]\n{first} {last}\n")
	write(t, root, "letter.ftmpl", "[from parts.names import full]\n[letter(first, last)]\nDear {full(first, last)},\n")

	// --- Act ---
	mod, ok, err := NewFileLoader(compiler.New()).Resolve(context.Background(), "letter", root)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, ok)
	out, err := mod.Render("letter", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "Dear Ada Lovelace,", out)
}

func TestFileLoader_ImportCycle(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	write(t, root, "a.ftmpl", "[import b]\n[f()]\na\n")
	write(t, root, "b.ftmpl", "[import a]\n[g()]\nb\n")

	// --- Act ---
	_, _, err := NewFileLoader(compiler.New()).Resolve(context.Background(), "a", root)

	// --- Assert ---
	require.ErrorIs(t, err, ErrImportCycle)
}

func TestChain_FallsThroughOnNoMatch(t *testing.T) {
	// --- Arrange ---
	static, err := compiler.New().Load(context.Background(), source.New("static.ftmpl", "[f()]\nstatic\n"))
	require.NoError(t, err)

	var calls []string
	declining := ResolverFunc(func(_ context.Context, name, _ string) (*runtime.Module, bool, error) {
		calls = append(calls, name)
		return nil, false, nil
	})
	chain := Chain{declining, Static{"greet": static}}

	// --- Act ---
	mod, ok, err := chain.Resolve(context.Background(), "greet", "")

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, static, mod)
	assert.Equal(t, []string{"greet"}, calls)

	// --- Act ---
	_, ok, err = chain.Resolve(context.Background(), "other", "")

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChain_StopsOnError(t *testing.T) {
	// --- Arrange ---
	boom := errors.New("boom")
	failing := ResolverFunc(func(context.Context, string, string) (*runtime.Module, bool, error) {
		return nil, false, boom
	})
	reached := false
	after := ResolverFunc(func(context.Context, string, string) (*runtime.Module, bool, error) {
		reached = true
		return nil, false, nil
	})

	// --- Act ---
	_, _, err := Chain{failing, after}.Resolve(context.Background(), "x", "")

	// --- Assert ---
	require.ErrorIs(t, err, boom)
	assert.False(t, reached)
}

func TestResolveIn(t *testing.T) {
	// --- Arrange ---
	first, second := t.TempDir(), t.TempDir()
	write(t, second, "only.ftmpl", "[f()]\nsecond\n")

	// --- Act ---
	mod, ok, err := ResolveIn(context.Background(), NewFileLoader(compiler.New()), "only", []string{first, second})

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(second, "only.ftmpl"), mod.Path())
}

func TestFind(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	write(t, root, "a.ftmpl", "[f()]\nx\n")
	write(t, root, "b/c.ftmpl", "[f()]\nx\n")
	write(t, root, "bad-name.ftmpl", "[f()]\nx\n")
	write(t, root, "readme.md", "x")

	// --- Act ---
	names, err := NewFileLoader(nil).Find(root)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b.c"}, names)
}
