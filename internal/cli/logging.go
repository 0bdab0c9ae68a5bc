package cli

import (
	"io"
	"log/slog"
)

// newLogger writes text logs to w. Warnings and errors are shown by default;
// --verbose adds info and --debug adds debug.
func newLogger(w io.Writer, verbose, debug bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
