// Package record defines the draw-command records accepted by a surface.
//
// Records are immutable values describing one drawing operation each. A
// record list is recorded once and flushed many times; records whose
// arguments are literal values can be compiled ahead of time, while records
// holding a Ref are re-read on every flush.
//
//	size := record.NewRef(gg.Pt(10, 10))
//	records := []record.Record{
//	    record.BeginPath(),
//	    record.Move(0, 0),
//	    record.LineAt(record.Dyn(size)),
//	    record.Stroke(&record.SolidStyle{Fill: gg.Black, LineWidth: 2}),
//	}
//	record.HasDynamic(records) // true: the surface interprets this list
package record

import (
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/geom"
)

// Type identifies the kind of a record.
type Type uint8

const (
	TypeTransform      Type = iota // Replace the current matrix
	TypeMove                       // Start a subpath
	TypeLine                       // Add a line segment
	TypeQuadraticCurve             // Add a quadratic Bezier segment
	TypeBeginPath                  // Discard the current path
	TypeFill                       // Fill the current path
	TypeStroke                     // Stroke the current path
	TypeBitmap                     // Draw an image at a point
	TypeBitmapRect                 // Draw a sub-rectangle of an image into a rectangle
	TypeText                       // Draw laid-out text
	TypeClearColor                 // Clear the target to a color
	TypeLayer                      // Redirect drawing into an offscreen layer
	TypeEndLayer                   // Composite and discard the innermost layer
)

var typeNames = [...]string{
	TypeTransform:      "Transform",
	TypeMove:           "Move",
	TypeLine:           "Line",
	TypeQuadraticCurve: "QuadraticCurve",
	TypeBeginPath:      "BeginPath",
	TypeFill:           "Fill",
	TypeStroke:         "Stroke",
	TypeBitmap:         "Bitmap",
	TypeBitmapRect:     "BitmapRect",
	TypeText:           "Text",
	TypeClearColor:     "ClearColor",
	TypeLayer:          "Layer",
	TypeEndLayer:       "EndLayer",
}

// String returns the record type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Record is implemented by every draw-command record.
type Record interface {
	// Type returns the record kind.
	Type() Type
	// Dynamic reports whether any argument is read through a Ref at
	// flush time.
	Dynamic() bool
}

// HasDynamic reports whether any record in list is dynamic.
func HasDynamic(list []Record) bool {
	for _, r := range list {
		if r.Dynamic() {
			return true
		}
	}
	return false
}

// TransformRecord replaces the current matrix.
type TransformRecord struct {
	Matrix Value[gg.Matrix]
}

func (TransformRecord) Type() Type      { return TypeTransform }
func (r TransformRecord) Dynamic() bool { return r.Matrix.IsDynamic() }

// Transform returns a TransformRecord for a literal matrix.
func Transform(m gg.Matrix) TransformRecord {
	return TransformRecord{Matrix: Lit(m)}
}

// MoveRecord starts a new subpath at Point.
type MoveRecord struct {
	Point Value[gg.Point]
}

func (MoveRecord) Type() Type      { return TypeMove }
func (r MoveRecord) Dynamic() bool { return r.Point.IsDynamic() }

// Move returns a MoveRecord for a literal point.
func Move(x, y float64) MoveRecord {
	return MoveRecord{Point: Lit(gg.Pt(x, y))}
}

// MoveAt returns a MoveRecord for p.
func MoveAt(p Value[gg.Point]) MoveRecord {
	return MoveRecord{Point: p}
}

// LineRecord adds a line from the current point to Point.
type LineRecord struct {
	Point Value[gg.Point]
}

func (LineRecord) Type() Type      { return TypeLine }
func (r LineRecord) Dynamic() bool { return r.Point.IsDynamic() }

// Line returns a LineRecord for a literal point.
func Line(x, y float64) LineRecord {
	return LineRecord{Point: Lit(gg.Pt(x, y))}
}

// LineAt returns a LineRecord for p.
func LineAt(p Value[gg.Point]) LineRecord {
	return LineRecord{Point: p}
}

// QuadraticCurveRecord adds a quadratic Bezier segment.
type QuadraticCurveRecord struct {
	Control Value[gg.Point]
	Point   Value[gg.Point]
}

func (QuadraticCurveRecord) Type() Type { return TypeQuadraticCurve }
func (r QuadraticCurveRecord) Dynamic() bool {
	return r.Control.IsDynamic() || r.Point.IsDynamic()
}

// Curve returns a QuadraticCurveRecord for literal points.
func Curve(cx, cy, x, y float64) QuadraticCurveRecord {
	return QuadraticCurveRecord{Control: Lit(gg.Pt(cx, cy)), Point: Lit(gg.Pt(x, y))}
}

// BeginPathRecord discards the current path.
type BeginPathRecord struct{}

func (BeginPathRecord) Type() Type    { return TypeBeginPath }
func (BeginPathRecord) Dynamic() bool { return false }

// BeginPath returns a BeginPathRecord.
func BeginPath() BeginPathRecord { return BeginPathRecord{} }

// FillRecord fills the current path with Style.
type FillRecord struct {
	Style Style
}

func (FillRecord) Type() Type    { return TypeFill }
func (FillRecord) Dynamic() bool { return false }

// Fill returns a FillRecord.
func Fill(s Style) FillRecord { return FillRecord{Style: s} }

// StrokeRecord strokes the current path with Style.
type StrokeRecord struct {
	Style Style
}

func (StrokeRecord) Type() Type    { return TypeStroke }
func (StrokeRecord) Dynamic() bool { return false }

// Stroke returns a StrokeRecord.
func Stroke(s Style) StrokeRecord { return StrokeRecord{Style: s} }

// BitmapRecord draws Bitmap with its top-left corner at Point.
// Style may be nil; its shader, if any, applies to the image.
type BitmapRecord struct {
	Bitmap Value[image.Image]
	Point  Value[gg.Point]
	Style  Style
}

func (BitmapRecord) Type() Type { return TypeBitmap }
func (r BitmapRecord) Dynamic() bool {
	return r.Bitmap.IsDynamic() || r.Point.IsDynamic()
}

// Bitmap returns a BitmapRecord for a literal image and position.
func Bitmap(img image.Image, x, y float64, s Style) BitmapRecord {
	return BitmapRecord{Bitmap: Lit(img), Point: Lit(gg.Pt(x, y)), Style: s}
}

// BitmapRectRecord draws the Src rectangle of Bitmap into Dst.
// Surfaces do not implement it and report an unsupported-record error.
type BitmapRectRecord struct {
	Bitmap image.Image
	Src    geom.Rect
	Dst    geom.Rect
	Style  Style
}

func (BitmapRectRecord) Type() Type    { return TypeBitmapRect }
func (BitmapRectRecord) Dynamic() bool { return false }

// TextRecord draws Text laid out according to Style.
type TextRecord struct {
	Text  Value[string]
	Style *TextStyle
}

func (TextRecord) Type() Type      { return TypeText }
func (r TextRecord) Dynamic() bool { return r.Text.IsDynamic() }

// Text returns a TextRecord for a literal string.
func Text(s string, style *TextStyle) TextRecord {
	return TextRecord{Text: Lit(s), Style: style}
}

// ClearColorRecord clears the whole target to Color.
type ClearColorRecord struct {
	Color Value[gg.RGBA]
}

func (ClearColorRecord) Type() Type      { return TypeClearColor }
func (r ClearColorRecord) Dynamic() bool { return r.Color.IsDynamic() }

// ClearColor returns a ClearColorRecord for a literal color.
func ClearColor(c gg.RGBA) ClearColorRecord {
	return ClearColorRecord{Color: Lit(c)}
}

// LayerRecord redirects subsequent drawing into a fresh transparent layer.
type LayerRecord struct{}

func (LayerRecord) Type() Type    { return TypeLayer }
func (LayerRecord) Dynamic() bool { return false }

// Layer returns a LayerRecord.
func Layer() LayerRecord { return LayerRecord{} }

// EndLayerRecord composites the innermost layer onto the target beneath it.
type EndLayerRecord struct{}

func (EndLayerRecord) Type() Type    { return TypeEndLayer }
func (EndLayerRecord) Dynamic() bool { return false }

// EndLayer returns an EndLayerRecord.
func EndLayer() EndLayerRecord { return EndLayerRecord{} }
