package logger

import (
	"os"

	"log/slog"
)

// New returns a JSON slog.Logger tagged with the emitting service name.
// Every log line carries the service attribute so api and migrate output
// can be told apart when aggregated.
func New(service string, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", service)
}
