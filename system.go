package ggdraw

import (
	"errors"
	"log/slog"

	"github.com/gogpu/ggdraw/canvas"
	_ "github.com/gogpu/ggdraw/canvas/raster" // register the "raster" backend
	_ "github.com/gogpu/ggdraw/canvas/vector" // register the "vector" backend
	"github.com/gogpu/ggdraw/internal/logging"
	"github.com/gogpu/ggdraw/pool"
	"github.com/gogpu/ggdraw/render"
	"github.com/gogpu/ggdraw/render/canvasctx"
	"github.com/gogpu/ggdraw/surface"
)

// ErrClosed is returned by a System after Close.
var ErrClosed = errors.New("ggdraw: system closed")

// System owns the registries and pools a drawing pipeline shares.
// Independent systems share nothing, so tests and embedders can run several
// side by side. A System is not safe for concurrent use.
type System struct {
	cfg     Config
	logger  *slog.Logger
	backend string

	pool     *pool.Pool
	handlers *surface.Handlers
	shaders  *render.ShaderRegistry

	contexts []*canvasctx.Context
	closed   bool
}

// New initializes a System: it picks the canvas backend, creates the
// target pool and registers the built-in style, shader and shader
// implementation handlers.
func New(opts ...Option) (*System, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	logger := logging.Or(o.logger)

	name := o.config.Backend
	var factory canvas.Factory
	var err error
	if name == "" {
		name, factory, err = o.registry.Best()
	} else {
		factory, err = o.registry.Factory(name)
	}
	if err != nil {
		return nil, err
	}

	handlers := surface.DefaultHandlers(logger)
	handlers.SetFallbackColor(o.config.FallbackRGBA())
	shaders := render.NewShaderRegistry()
	canvasctx.RegisterShaders(shaders)

	s := &System{
		cfg:      o.config,
		logger:   logger,
		backend:  name,
		pool:     pool.New(factory, pool.WithMaxPerBucket(o.config.Pool.MaxPerBucket), pool.WithLogger(logger)),
		handlers: handlers,
		shaders:  shaders,
	}
	logger.Info("ggdraw: system initialized", "backend", name)
	return s, nil
}

// Config returns the configuration the system was created with.
func (s *System) Config() Config { return s.cfg }

// Backend returns the name of the canvas backend in use.
func (s *System) Backend() string { return s.backend }

// Logger returns the system logger.
func (s *System) Logger() *slog.Logger { return s.logger }

// Pool returns the backing-target pool.
func (s *System) Pool() *pool.Pool { return s.pool }

// Handlers returns the style and shader handler registry.
func (s *System) Handlers() *surface.Handlers { return s.handlers }

// Shaders returns the shader implementation registry.
func (s *System) Shaders() *render.ShaderRegistry { return s.shaders }

// Env returns the environment surfaces of this system are created in.
func (s *System) Env() surface.Env {
	return surface.Env{Pool: s.pool, Handlers: s.handlers, Logger: s.logger}
}

// NewSurface creates a surface drawing on a target from the system pool.
func (s *System) NewSurface(width, height int) (*surface.Surface, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return surface.New(s.Env(), width, height)
}

// NewRenderContext creates a canvas render context. It is destroyed by
// Close unless the caller destroys it first.
func (s *System) NewRenderContext(width, height int) (*canvasctx.Context, error) {
	if s.closed {
		return nil, ErrClosed
	}
	c, err := canvasctx.New(s.Env(), s.shaders, width, height,
		canvasctx.WithLogger(s.logger),
		canvasctx.WithBackground(s.cfg.BackgroundRGBA()),
	)
	if err != nil {
		return nil, err
	}
	s.contexts = append(s.contexts, c)
	return c, nil
}

// Close destroys the render contexts created by NewRenderContext, empties
// the pool and clears every registry. Surfaces created by NewSurface must
// be destroyed by their owner. Calling Close again has no effect.
func (s *System) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	for _, c := range s.contexts {
		c.Destroy()
	}
	s.contexts = nil
	s.pool.Reset()
	s.handlers.Reset()
	s.shaders.Reset()
	s.logger.Info("ggdraw: system closed")
	return nil
}
