// Package logging configures the run logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
)

// Setup initializes a logger writing to stderr and a daily file in directory.
// Every record carries the run_id of this process.
func Setup(level, directory string) (*slog.Logger, string, error) {
	if directory == "" {
		directory = config.ExpandHome("~/.dfmeta/logs/")
	} else {
		directory = config.ExpandHome(directory)
	}

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, "", fmt.Errorf("creating log directory: %w", err)
	}

	filename := fmt.Sprintf("dfmeta-%s.log", time.Now().Format("2006-01-02"))
	logPath := filepath.Join(directory, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("opening log file: %w", err)
	}

	runID := uuid.NewString()
	return New(io.MultiWriter(os.Stderr, file), level).With("run_id", runID), runID, nil
}

// New returns a text logger on w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// ParseLevel maps a configured level name to a slog level, info by default.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
