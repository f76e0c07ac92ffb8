package observability

import (
	"io"
	"log/slog"
	"os"
)

// Options selects the log format and level.
type Options struct {
	Debug  bool // include debug events
	Quiet  bool // warnings and errors only; wins over Debug
	JSON   bool // JSON lines instead of key=value text
	Output io.Writer
}

// NewLogger builds the process logger. Output defaults to stderr so stdout stays
// free for command results.
func NewLogger(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := slog.LevelInfo
	switch {
	case opts.Quiet:
		level = slog.LevelWarn
	case opts.Debug:
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}
