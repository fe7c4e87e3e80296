package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a structured text logger writing to stdout. Field deployments
// collect stdout, so there is no file/rotation handling here.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything; used by tests and CLI
// subcommands that only print their own output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
