package observer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Log returns an observer that records every call as one structured log
// record at Info level.
func Log(logger *slog.Logger) Func {
	return func(name, rendered string, args map[string]any) error {
		logger.Info("template",
			slog.String("name", name),
			slog.String("result", rendered),
			slog.Any("args", args),
		)
		return nil
	}
}

// OpenLog appends JSON records for every call to the file at path. The
// returned closer closes the file.
func OpenLog(path string) (Func, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open template use log %s: %w", path, err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return Log(logger), f, nil
}
