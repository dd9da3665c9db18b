package ggdraw

import (
	"log/slog"

	"github.com/gogpu/ggdraw/canvas"
)

// Option configures a System during creation.
//
// Example:
//
//	cfg, _ := ggdraw.LoadConfig("ggdraw.toml")
//	sys, _ := ggdraw.New(ggdraw.WithConfig(cfg), ggdraw.WithLogger(logger))
type Option func(*options)

type options struct {
	config   Config
	logger   *slog.Logger
	registry *canvas.Registry
}

func defaultOptions() options {
	return options{
		config:   DefaultConfig(),
		registry: canvas.Default(),
	}
}

// WithConfig replaces DefaultConfig.
func WithConfig(c Config) Option {
	return func(o *options) {
		o.config = c
	}
}

// WithLogger sets the logger of the system and everything it creates.
// Without it the package logger (see SetLogger) is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithCanvasRegistry selects backends from r instead of the default
// registry. Tests use it to inject fake canvases.
func WithCanvasRegistry(r *canvas.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}
