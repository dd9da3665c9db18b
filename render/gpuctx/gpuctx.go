// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package gpuctx provides a render context whose buffers are drawn through
// the gg GPU accelerator.
//
// Importing the package registers the gg accelerator and the "gpu" canvas
// backend. When no GPU is usable the accelerator is not registered, the
// backend reports itself unavailable, and contexts created here still work
// on the CPU path.
//
// Shader implementations are matched on the exact context type, so the
// implementations registered for canvasctx do not apply here; call
// RegisterShaders for this package as well.
//
// Build with -tags nogpu to exclude the package and its GPU dependencies.
package gpuctx

import (
	"log/slog"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/gpu"
	"github.com/gogpu/ggdraw/canvas"
	"github.com/gogpu/ggdraw/canvas/raster"
	"github.com/gogpu/ggdraw/internal/logging"
	"github.com/gogpu/ggdraw/pool"
	"github.com/gogpu/ggdraw/render"
	"github.com/gogpu/ggdraw/render/canvasctx"
	"github.com/gogpu/ggdraw/surface"
	"github.com/gogpu/gpucontext"
)

// Name is the registry name of the GPU canvas backend.
const Name = "gpu"

func init() {
	canvas.Register(Name, 20, Factory, Available)
}

// Available reports whether a GPU accelerator is registered with gg.
func Available() bool { return gg.Accelerator() != nil }

// Factory creates canvases that route fills and strokes through the
// accelerator.
func Factory(width, height int) (canvas.Canvas, error) {
	return raster.New(width, height, raster.Accelerated()), nil
}

// Option configures a Context.
type Option func(*options)

type options struct {
	provider     gpucontext.DeviceProvider
	logger       *slog.Logger
	background   gg.RGBA
	maxPerBucket int
}

// WithDeviceProvider shares the GPU device of a host application, such as a
// gogpu window, with the accelerator.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) { o.provider = p }
}

// WithLogger sets the logger of the context.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBackground sets the color Clear resets buffers to.
func WithBackground(c gg.RGBA) Option {
	return func(o *options) { o.background = c }
}

// WithMaxPerBucket bounds the canvases the context's pool keeps per size.
func WithMaxPerBucket(n int) Option {
	return func(o *options) { o.maxPerBucket = n }
}

// Context is a canvasctx.Context drawing on accelerated canvases from its
// own pool.
type Context struct {
	*canvasctx.Context
	pool *pool.Pool
}

var _ render.RenderContext = (*Context)(nil)

// New creates a GPU-backed context with a primary buffer of the given size.
func New(handlers *surface.Handlers, shaders *render.ShaderRegistry, width, height int, opts ...Option) (*Context, error) {
	o := options{background: gg.Transparent, maxPerBucket: pool.DefaultMaxPerBucket}
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.Or(o.logger)

	if o.provider != nil {
		// Device sharing is optional; the accelerator falls back to its
		// own device.
		if err := gpu.SetDeviceProvider(o.provider); err != nil {
			logger.Warn("gpuctx: device provider not used", "err", err)
		}
	}
	if !Available() {
		logger.Debug("gpuctx: no accelerator, drawing on the CPU")
	}

	p := pool.New(Factory, pool.WithMaxPerBucket(o.maxPerBucket), pool.WithLogger(logger))
	env := surface.Env{Pool: p, Handlers: handlers, Logger: logger}
	cc, err := canvasctx.New(env, shaders, width, height,
		canvasctx.WithLogger(logger),
		canvasctx.WithBackground(o.background),
	)
	if err != nil {
		p.Reset()
		return nil, err
	}
	return &Context{Context: cc, pool: p}, nil
}

// Pool returns the pool the context's buffers draw on.
func (c *Context) Pool() *pool.Pool { return c.pool }

// Destroy tears the context down and closes every pooled canvas.
func (c *Context) Destroy() {
	c.Context.Destroy()
	c.pool.Reset()
}

// RegisterShaders adds the implementations of the render shaders for
// *Context to reg.
func RegisterShaders(reg *render.ShaderRegistry) {
	render.Register(reg, func(s *render.ColorTransformShader, _ *Context) (any, error) {
		return canvasctx.ColorTransformImpl{Transform: s.Transform}, nil
	})
	render.Register(reg, func(s *render.MaskShader, _ *Context) (any, error) {
		return canvasctx.MaskImpl{Mask: s.Mask}, nil
	})
}
