package ggdraw

import (
	"log/slog"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/internal/logging"
)

// SetLogger configures the logger for ggdraw, its sub-packages and gg.
// By default nothing is logged. Pass nil to restore silence.
//
// SetLogger is safe for concurrent use.
//
// Log levels used by ggdraw:
//   - [slog.LevelDebug]: compilation, buffer and pool bookkeeping
//   - [slog.LevelInfo]: system setup and teardown
//   - [slog.LevelWarn]: styles or shaders drawn with the fallback color
//
// Example:
//
//	ggdraw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
	gg.SetLogger(l)
}

// Logger returns the current logger. It is never nil.
func Logger() *slog.Logger {
	return logging.Get()
}
