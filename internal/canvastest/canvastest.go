// Package canvastest provides a call-logging canvas for tests.
package canvastest

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/canvas"
)

// Canvas records every call as a short string and keeps real pixels for
// ClearRect, FillRect and DrawImage so compositing code can be exercised.
// Path filling is not rasterized.
type Canvas struct {
	Calls []string

	// CharWidth is the advance of every rune except U+3000.
	CharWidth float64
	// IdeographicWidth is the advance of U+3000.
	IdeographicWidth float64

	img       *image.NRGBA
	matrix    gg.Matrix
	fill      gg.RGBA
	closed    bool
	FlushErr  error
	FillErr   error
	lineWidth float64
}

// New returns a canvas with 10-pixel glyphs and 20-pixel ideographic spaces.
func New(width, height int) *Canvas {
	return &Canvas{
		CharWidth:        10,
		IdeographicWidth: 20,
		img:              image.NewNRGBA(image.Rect(0, 0, width, height)),
		matrix:           gg.Identity(),
		lineWidth:        1,
	}
}

// Factory adapts New to canvas.Factory.
func Factory(width, height int) (canvas.Canvas, error) {
	return New(width, height), nil
}

func (c *Canvas) log(format string, args ...any) {
	c.Calls = append(c.Calls, fmt.Sprintf(format, args...))
}

// Reset forgets the recorded calls.
func (c *Canvas) Reset() { c.Calls = nil }

// Log returns the recorded calls joined by newlines.
func (c *Canvas) Log() string { return strings.Join(c.Calls, "\n") }

// Closed reports whether Close was called.
func (c *Canvas) Closed() bool { return c.closed }

// Close marks the canvas closed.
func (c *Canvas) Close() error {
	c.closed = true
	return nil
}

func (c *Canvas) Width() int  { return c.img.Rect.Dx() }
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

func (c *Canvas) SetTransform(m gg.Matrix) {
	c.matrix = m
	c.log("SetTransform(%g %g %g %g %g %g)", m.A, m.B, m.C, m.D, m.E, m.F)
}

func (c *Canvas) Transform() gg.Matrix { return c.matrix }

func (c *Canvas) BeginPath()          { c.log("BeginPath") }
func (c *Canvas) MoveTo(x, y float64) { c.log("MoveTo(%g,%g)", x, y) }
func (c *Canvas) LineTo(x, y float64) { c.log("LineTo(%g,%g)", x, y) }

func (c *Canvas) QuadraticCurveTo(cx, cy, x, y float64) {
	c.log("QuadraticCurveTo(%g,%g,%g,%g)", cx, cy, x, y)
}

func (c *Canvas) SetFillColor(col gg.RGBA) {
	c.fill = col
	c.log("SetFillColor(%s)", colorString(col))
}

func (c *Canvas) SetStrokeColor(col gg.RGBA) { c.log("SetStrokeColor(%s)", colorString(col)) }

func (c *Canvas) SetLineWidth(w float64) {
	c.lineWidth = w
	c.log("SetLineWidth(%g)", w)
}

func (c *Canvas) Fill() error {
	c.log("Fill")
	return c.FillErr
}

func (c *Canvas) Stroke() error {
	c.log("Stroke")
	return nil
}

func (c *Canvas) DrawImage(img image.Image, x, y float64) {
	c.log("DrawImage(%dx%d,%g,%g)", img.Bounds().Dx(), img.Bounds().Dy(), x, y)
	canvas.Composite(c.img, c.matrix, img, x, y)
}

func (c *Canvas) SetFont(f canvas.Font) error {
	c.log("SetFont(%s)", f)
	return nil
}

func (c *Canvas) MeasureText(s string) float64 {
	w := 0.0
	for _, r := range s {
		if r == '\u3000' {
			w += c.IdeographicWidth
		} else {
			w += c.CharWidth
		}
	}
	return w
}

func (c *Canvas) FillText(s string, x, y float64, align canvas.Align) {
	c.log("FillText(%q,%g,%g,%s)", s, x, y, align)
}

func (c *Canvas) ClearRect(r image.Rectangle) {
	c.log("ClearRect(%v)", r)
	canvas.ClearRect(c.img, r)
}

func (c *Canvas) FillRect(r image.Rectangle) {
	c.log("FillRect(%v)", r)
	canvas.FillRect(c.img, r, c.fill)
}

func (c *Canvas) Image() draw.Image { return c.img }

func (c *Canvas) Flush() error { return c.FlushErr }

func colorString(c gg.RGBA) string {
	n := color.NRGBAModel.Convert(c.Color()).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}
