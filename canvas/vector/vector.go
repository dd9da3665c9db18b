// Package vector implements canvas.Canvas with the rasterx scanline
// rasterizer and x/image font drawing. It registers itself as the "vector"
// backend and is useful as an independent reference for the gg rasterizer.
package vector

import (
	"image"
	"image/draw"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/canvas"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Name is the registry name of the backend.
const Name = "vector"

func init() {
	canvas.Register(Name, 5, func(w, h int) (canvas.Canvas, error) {
		return New(w, h), nil
	}, nil)
}

type segKind uint8

const (
	segMove segKind = iota
	segLine
	segQuad
)

// segment holds device-space points; the transform is applied when the
// segment is added.
type segment struct {
	kind segKind
	p    [2]fixed.Point26_6
}

// Canvas rasterizes into an *image.RGBA.
type Canvas struct {
	img     *image.RGBA
	scanner *rasterx.ScannerGV
	filler  *rasterx.Filler
	dasher  *rasterx.Dasher

	matrix    gg.Matrix
	path      []segment
	fill      gg.RGBA
	stroke    gg.RGBA
	lineWidth float64

	face font.Face
	font canvas.Font
}

var _ canvas.Canvas = (*Canvas)(nil)

// New creates a transparent canvas of the given size.
func New(width, height int) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	return &Canvas{
		img:       img,
		scanner:   scanner,
		filler:    rasterx.NewFiller(width, height, scanner),
		dasher:    rasterx.NewDasher(width, height, scanner),
		matrix:    gg.Identity(),
		fill:      gg.Black,
		stroke:    gg.Black,
		lineWidth: 1,
	}
}

func (c *Canvas) Width() int  { return c.img.Rect.Dx() }
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

func (c *Canvas) SetTransform(m gg.Matrix) { c.matrix = m }
func (c *Canvas) Transform() gg.Matrix     { return c.matrix }

func (c *Canvas) BeginPath() { c.path = c.path[:0] }

func (c *Canvas) MoveTo(x, y float64) {
	c.path = append(c.path, segment{kind: segMove, p: [2]fixed.Point26_6{c.fixed(x, y)}})
}

func (c *Canvas) LineTo(x, y float64) {
	c.path = append(c.path, segment{kind: segLine, p: [2]fixed.Point26_6{c.fixed(x, y)}})
}

func (c *Canvas) QuadraticCurveTo(cx, cy, x, y float64) {
	c.path = append(c.path, segment{kind: segQuad, p: [2]fixed.Point26_6{c.fixed(cx, cy), c.fixed(x, y)}})
}

func (c *Canvas) fixed(x, y float64) fixed.Point26_6 {
	p := c.matrix.TransformPoint(gg.Pt(x, y))
	return fixed.Point26_6{X: fixed.Int26_6(p.X * 64), Y: fixed.Int26_6(p.Y * 64)}
}

func (c *Canvas) SetFillColor(col gg.RGBA)   { c.fill = col }
func (c *Canvas) SetStrokeColor(col gg.RGBA) { c.stroke = col }
func (c *Canvas) SetLineWidth(w float64)     { c.lineWidth = w }

type adder interface {
	Start(a fixed.Point26_6)
	Line(b fixed.Point26_6)
	QuadBezier(b, c fixed.Point26_6)
	Stop(closeLoop bool)
}

func (c *Canvas) replay(a adder, closeLoop bool) {
	open := false
	for _, s := range c.path {
		switch s.kind {
		case segMove:
			if open {
				a.Stop(closeLoop)
			}
			a.Start(s.p[0])
			open = true
		case segLine:
			if !open {
				a.Start(s.p[0])
				open = true
				continue
			}
			a.Line(s.p[0])
		case segQuad:
			if !open {
				a.Start(s.p[0])
				open = true
			}
			a.QuadBezier(s.p[0], s.p[1])
		}
	}
	if open {
		a.Stop(closeLoop)
	}
}

// Fill paints the current path with the non-zero rule and keeps the path.
func (c *Canvas) Fill() error {
	c.filler.Clear()
	c.filler.SetWinding(true)
	c.replay(c.filler, true)
	c.scanner.SetColor(c.fill.Color())
	c.filler.Draw()
	return nil
}

// Stroke outlines the current path with butt caps and miter joins.
func (c *Canvas) Stroke() error {
	c.dasher.Clear()
	c.dasher.SetStroke(fixed.Int26_6(c.lineWidth*64), 4<<6,
		rasterx.ButtCap, rasterx.ButtCap, rasterx.FlatGap, rasterx.Miter, nil, 0)
	c.replay(c.dasher, false)
	c.scanner.SetColor(c.stroke.Color())
	c.dasher.Draw()
	return nil
}

func (c *Canvas) DrawImage(img image.Image, x, y float64) {
	canvas.Composite(c.img, c.matrix, img, x, y)
}

// SetFont selects one of the Go fonts; see canvas.FontData.
func (c *Canvas) SetFont(f canvas.Font) error {
	if c.face != nil && c.font == f {
		return nil
	}
	face, err := newFace(f)
	if err != nil {
		return err
	}
	c.font = f
	c.face = face
	return nil
}

func (c *Canvas) MeasureText(s string) float64 {
	if c.face == nil {
		return 0
	}
	return float64(font.MeasureString(c.face, s)) / 64
}

func (c *Canvas) FillText(s string, x, y float64, align canvas.Align) {
	if c.face == nil || s == "" {
		return
	}
	ascent := float64(c.face.Metrics().Ascent) / 64
	p := c.matrix.TransformPoint(gg.Pt(x-align.Offset(c.MeasureText(s)), y+ascent))
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(c.fill.Color()),
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(p.X * 64), Y: fixed.Int26_6(p.Y * 64)},
	}
	d.DrawString(s)
}

func (c *Canvas) ClearRect(r image.Rectangle) { canvas.ClearRect(c.img, r) }
func (c *Canvas) FillRect(r image.Rectangle)  { canvas.FillRect(c.img, r, c.fill) }
func (c *Canvas) Image() draw.Image           { return c.img }
func (c *Canvas) Flush() error                { return nil }

// Parsed fonts are shared; faces are not safe for concurrent use and are
// created per canvas.
var (
	parsedMu sync.Mutex
	parsed   = map[*byte]*opentype.Font{}
)

func newFace(f canvas.Font) (font.Face, error) {
	data := canvas.FontData(f)
	key := &data[0]

	parsedMu.Lock()
	otf, ok := parsed[key]
	if !ok {
		var err error
		otf, err = opentype.Parse(data)
		if err != nil {
			parsedMu.Unlock()
			return nil, err
		}
		parsed[key] = otf
	}
	parsedMu.Unlock()

	return opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
