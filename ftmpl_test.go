package ftmpl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	// --- Arrange ---
	text := "[import strings]\n[greet(name, greeting = \"Hello\")]\n{greeting}, {strings::upper(name)}!\n"

	// --- Act ---
	mod, err := Compile(context.Background(), "greet.ftmpl", text)

	// --- Assert ---
	require.NoError(t, err)
	out, err := mod.Render("greet", "ada")
	require.NoError(t, err)
	assert.Equal(t, "Hello, ADA!", out)
}

func TestMustCompile_PanicsOnError(t *testing.T) {
	// --- Act ---
	var recovered any
	func() {
		defer func() { recovered = recover() }()
		MustCompile("bad.ftmpl", "[f(x)]\n{y}\n")
	}()

	// --- Assert ---
	msg, ok := recovered.(string)
	require.True(t, ok, "expected a string panic, got %T", recovered)
	assert.Contains(t, msg, `ftmpl: Compile("bad.ftmpl")`)
	assert.Contains(t, msg, "Unknown name")
	assert.NotPanics(t, func() { MustCompile("ok.ftmpl", "[f()]\nok\n") })
}

func TestRegister(t *testing.T) {
	// --- Arrange ---
	Register("facade_shout", func(body, doc string) (string, string) {
		return strings.ToUpper(body), doc
	})

	// --- Act ---
	mod, err := Compile(context.Background(), "shout.ftmpl", "[f(); facade_shout]\nhey\n")

	// --- Assert ---
	require.NoError(t, err)
	out, err := mod.Render("f")
	require.NoError(t, err)
	assert.Equal(t, "HEY", out)
}

func TestSetObserver(t *testing.T) {
	// --- Arrange ---
	var seen []string
	SetObserver(func(name, rendered string, _ map[string]any) error {
		seen = append(seen, name+"="+rendered)
		return nil
	})
	observed := MustCompile("a.ftmpl", "[a(x)]\n<{x}>\n")
	SetObserver(nil)
	plain := MustCompile("b.ftmpl", "[b()]\nB\n")

	// --- Act ---
	_, errA := observed.Render("a", 1)
	_, errB := plain.Render("b")

	// --- Assert ---
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, []string{"a=<1>"}, seen)
}

func TestResolve(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mail"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mail", "welcome"+DefaultSuffix), []byte("[welcome(name)]\nHi {name}\n"), 0o600))

	// --- Act ---
	mod, ok, err := Resolve(context.Background(), "mail.welcome", dir)
	_, missing, missingErr := Resolve(context.Background(), "mail.absent", dir)

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, ok)
	out, err := mod.Render("welcome", "Grace")
	require.NoError(t, err)
	assert.Equal(t, "Hi Grace", out)

	require.NoError(t, missingErr)
	assert.False(t, missing)
}
