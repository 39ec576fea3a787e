package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext_ReturnsEmbeddedLogger(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)

	// --- Act ---
	FromContext(ctx).Info("hello")

	// --- Assert ---
	require.Contains(t, buf.String(), "msg=hello")
}

func TestFromContext_MissingLoggerDiscards(t *testing.T) {
	// --- Act ---
	logger := FromContext(context.Background())

	// --- Assert ---
	require.NotNil(t, logger)
	require.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestWith_AddsAttributes(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	// --- Act ---
	ctx = With(ctx, "path", "prompts.ftmpl")
	FromContext(ctx).Info("compiling")

	// --- Assert ---
	require.Contains(t, buf.String(), "path=prompts.ftmpl")
}
