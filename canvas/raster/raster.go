// Package raster implements canvas.Canvas on top of gg.Context.
//
// Pixels live in a gg.Pixmap that is shared with an *image.RGBA view, so
// compositing and readback never copy. Both hold premultiplied alpha. The
// canvas registers itself as the "raster" backend:
//
//	import _ "github.com/gogpu/ggdraw/canvas/raster"
//
//	c, _ := canvas.New("raster", 320, 240)
package raster

import (
	"errors"
	"image"
	"image/draw"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/gogpu/ggdraw/canvas"
)

// Name is the registry name of the backend.
const Name = "raster"

func init() {
	canvas.Register(Name, 10, func(w, h int) (canvas.Canvas, error) {
		return New(w, h), nil
	}, nil)
}

// Option configures a Canvas.
type Option func(*Canvas)

// Accelerated lets gg route fills and strokes through a registered GPU
// accelerator. Pending GPU work is flushed before any direct pixel access.
func Accelerated() Option {
	return func(c *Canvas) { c.accelerated = true }
}

// Canvas is a gg-backed canvas.Canvas.
type Canvas struct {
	pm   *gg.Pixmap
	ctx  *gg.Context
	view *image.RGBA

	fill        gg.RGBA
	stroke      gg.RGBA
	lineWidth   float64
	face        text.Face
	font        canvas.Font
	accelerated bool

	// flushGPU is ctx.FlushGPU. syncErr is the first failure of a flush
	// made before a direct pixel access, reported by the next Flush.
	flushGPU func() error
	syncErr  error
}

var _ canvas.Canvas = (*Canvas)(nil)

// New creates a transparent canvas of the given size.
func New(width, height int, opts ...Option) *Canvas {
	pm := gg.NewPixmap(width, height)
	c := &Canvas{
		pm:  pm,
		ctx: gg.NewContext(width, height, gg.WithPixmap(pm)),
		view: &image.RGBA{
			Pix:    pm.Data(),
			Stride: width * 4,
			Rect:   image.Rect(0, 0, width, height),
		},
		fill:      gg.Black,
		stroke:    gg.Black,
		lineWidth: 1,
	}
	c.flushGPU = c.ctx.FlushGPU
	for _, opt := range opts {
		opt(c)
	}
	if !c.accelerated {
		// Keep the software path deterministic regardless of any
		// accelerator registered in the process.
		c.ctx.SetRasterizerMode(gg.RasterizerAnalytic)
	}
	return c
}

// Context exposes the underlying gg context.
func (c *Canvas) Context() *gg.Context { return c.ctx }

// Pixmap exposes the pixel storage.
func (c *Canvas) Pixmap() *gg.Pixmap { return c.pm }

func (c *Canvas) Width() int  { return c.pm.Width() }
func (c *Canvas) Height() int { return c.pm.Height() }

func (c *Canvas) SetTransform(m gg.Matrix) { c.ctx.SetTransform(m) }
func (c *Canvas) Transform() gg.Matrix     { return c.ctx.GetTransform() }

func (c *Canvas) BeginPath()          { c.ctx.ClearPath() }
func (c *Canvas) MoveTo(x, y float64) { c.ctx.MoveTo(x, y) }
func (c *Canvas) LineTo(x, y float64) { c.ctx.LineTo(x, y) }

func (c *Canvas) QuadraticCurveTo(cx, cy, x, y float64) {
	c.ctx.QuadraticTo(cx, cy, x, y)
}

func (c *Canvas) SetFillColor(col gg.RGBA)   { c.fill = col }
func (c *Canvas) SetStrokeColor(col gg.RGBA) { c.stroke = col }
func (c *Canvas) SetLineWidth(w float64)     { c.lineWidth = w }

// Fill paints the current path with the fill color and keeps the path.
func (c *Canvas) Fill() error {
	c.ctx.SetFillBrush(gg.Solid(c.fill))
	return c.ctx.FillPreserve()
}

// Stroke outlines the current path with the stroke color and keeps the path.
func (c *Canvas) Stroke() error {
	c.ctx.SetStrokeBrush(gg.Solid(c.stroke))
	c.ctx.SetLineWidth(c.lineWidth)
	return c.ctx.StrokePreserve()
}

func (c *Canvas) DrawImage(img image.Image, x, y float64) {
	c.sync()
	canvas.Composite(c.view, c.ctx.GetTransform(), img, x, y)
}

// SetFont selects one of the Go fonts; see canvas.FontData.
func (c *Canvas) SetFont(f canvas.Font) error {
	if c.face != nil && c.font == f {
		return nil
	}
	src, err := source(f)
	if err != nil {
		return err
	}
	c.font = f
	c.face = src.Face(f.Size)
	c.ctx.SetFont(c.face)
	return nil
}

func (c *Canvas) MeasureText(s string) float64 {
	if c.face == nil {
		return 0
	}
	return c.face.Advance(s)
}

func (c *Canvas) FillText(s string, x, y float64, align canvas.Align) {
	if c.face == nil || s == "" {
		return
	}
	// gg renders under the full transform: bitmap glyphs for translations
	// and uniform scales, outlines otherwise.
	c.ctx.SetColor(c.fill.Color())
	c.ctx.DrawString(s, x-align.Offset(c.face.Advance(s)), y+c.face.Metrics().Ascent)
}

func (c *Canvas) ClearRect(r image.Rectangle) {
	c.sync()
	canvas.ClearRect(c.view, r)
}

func (c *Canvas) FillRect(r image.Rectangle) {
	c.sync()
	canvas.FillRect(c.view, r, c.fill)
}

func (c *Canvas) Image() draw.Image {
	c.sync()
	return c.view
}

// Flush pushes pending accelerator work into the pixmap. It also reports a
// failed flush from an earlier direct pixel access.
func (c *Canvas) Flush() error {
	if !c.accelerated {
		return nil
	}
	err := errors.Join(c.syncErr, c.flushGPU())
	c.syncErr = nil
	return err
}

// Close releases the gg context.
func (c *Canvas) Close() error {
	return c.ctx.Close()
}

func (c *Canvas) sync() {
	if !c.accelerated {
		return
	}
	if err := c.flushGPU(); err != nil && c.syncErr == nil {
		c.syncErr = err
	}
}

// Font sources are immutable and safe for concurrent use, so every canvas in
// the process shares one per font file.
var (
	sourcesMu sync.Mutex
	sources   = map[*byte]*text.FontSource{}
)

func source(f canvas.Font) (*text.FontSource, error) {
	data := canvas.FontData(f)
	key := &data[0]

	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	if src, ok := sources[key]; ok {
		return src, nil
	}
	src, err := text.NewFontSource(data)
	if err != nil {
		return nil, err
	}
	sources[key] = src
	return src, nil
}
