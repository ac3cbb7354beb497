// Package logging builds the application logger on log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates the application logger. Format is "text" or "json";
// anything else falls back to text. Output goes to stderr so the
// chat REPL and graph output own stdout. The "error" attribute key
// is normalized to "err".
func New(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
}

// NewNop returns a logger that discards everything. Tests use it to
// keep output quiet.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
