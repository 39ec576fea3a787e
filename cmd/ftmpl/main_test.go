package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/ftmpl/internal/cli"
)

func TestRun_Help(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"--help"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error for --help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_UsageErrorExitCode(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"render", "only-module"})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr), "expected an *cli.ExitError, got %T", err)
	require.Equal(t, 2, exitErr.Code)
}

func TestRun_Render(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	text := "[greet(name)]\nHello, {name}!\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.ftmpl"), []byte(text), 0o600))
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"--path", dir, "render", "hello", "greet", "World"})

	// --- Assert ---
	require.NoError(t, err, "stderr: %s", errOut.String())
	require.Equal(t, "Hello, World!\n", out.String())
}
