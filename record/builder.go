package record

import (
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/geom"
)

// Builder accumulates records with a drawing-style API.
//
//	b := record.NewBuilder()
//	b.Clear(gg.White)
//	b.Rect(geom.R(10, 10, 80, 40))
//	b.Fill(record.Solid(gg.Red))
//	s.AddRecords(b.Records()...)
type Builder struct {
	records []Record
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends arbitrary records.
func (b *Builder) Add(r ...Record) { b.records = append(b.records, r...) }

// Len returns the number of records so far.
func (b *Builder) Len() int { return len(b.records) }

// Records returns a copy of the recorded list.
func (b *Builder) Records() []Record {
	return append([]Record(nil), b.records...)
}

// Reset discards every record.
func (b *Builder) Reset() { b.records = b.records[:0] }

func (b *Builder) Transform(m gg.Matrix)               { b.Add(Transform(m)) }
func (b *Builder) BeginPath()                          { b.Add(BeginPath()) }
func (b *Builder) MoveTo(x, y float64)                 { b.Add(Move(x, y)) }
func (b *Builder) LineTo(x, y float64)                 { b.Add(Line(x, y)) }
func (b *Builder) QuadraticTo(cx, cy, x, y float64)    { b.Add(Curve(cx, cy, x, y)) }
func (b *Builder) Fill(s Style)                        { b.Add(Fill(s)) }
func (b *Builder) Stroke(s Style)                      { b.Add(Stroke(s)) }
func (b *Builder) DrawText(s string, style *TextStyle) { b.Add(Text(s, style)) }
func (b *Builder) Clear(c gg.RGBA)                     { b.Add(ClearColor(c)) }
func (b *Builder) PushLayer()                          { b.Add(Layer()) }
func (b *Builder) PopLayer()                           { b.Add(EndLayer()) }

// DrawBitmap draws img with its top-left corner at (x, y).
func (b *Builder) DrawBitmap(img image.Image, x, y float64, s Style) {
	b.Add(Bitmap(img, x, y, s))
}

// Rect starts a new path holding the outline of r.
func (b *Builder) Rect(r geom.Rect) {
	b.Polygon(geom.Polygon{Vertices: r.Vertices()})
}

// Polygon starts a new path holding the closed outline of p.
func (b *Builder) Polygon(p geom.Polygon) {
	b.BeginPath()
	if len(p.Vertices) == 0 {
		return
	}
	b.MoveTo(p.Vertices[0].X, p.Vertices[0].Y)
	for _, v := range p.Vertices[1:] {
		b.LineTo(v.X, v.Y)
	}
	b.LineTo(p.Vertices[0].X, p.Vertices[0].Y)
}
