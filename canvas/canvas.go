// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import (
	"image"
	"image/draw"

	"github.com/gogpu/gg"
)

// Canvas is the primitive drawing surface of a backend.
//
// Path coordinates are transformed by the current matrix when they are
// added, as in gg. Fill and Stroke consume the current path only through
// BeginPath: the path survives both calls so a record list can fill and then
// stroke the same outline.
type Canvas interface {
	// Width and Height report the storage size in pixels.
	Width() int
	Height() int

	SetTransform(m gg.Matrix)
	Transform() gg.Matrix

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticCurveTo(cx, cy, x, y float64)

	SetFillColor(c gg.RGBA)
	SetStrokeColor(c gg.RGBA)
	SetLineWidth(w float64)
	Fill() error
	Stroke() error

	// DrawImage composites img with its top-left corner at (x, y) in user
	// space, honoring the full current transform.
	DrawImage(img image.Image, x, y float64)

	SetFont(f Font) error
	MeasureText(s string) float64
	// FillText draws s with the fill color under the transform. y is the
	// top of the line box and x is interpreted according to align. A
	// backend that cannot transform glyphs moves only the line origin.
	FillText(s string, x, y float64, align Align)

	// ClearRect and FillRect work in device space and ignore the transform.
	ClearRect(r image.Rectangle)
	FillRect(r image.Rectangle)

	// Image returns the live pixels. Writes through the returned image are
	// visible to subsequent drawing.
	Image() draw.Image

	// Flush completes any pending work so Image reflects every draw call.
	Flush() error
}

// Factory creates a canvas with the given storage size.
type Factory func(width, height int) (Canvas, error)

// Align selects how FillText positions a line relative to x.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

var alignNames = [...]string{"left", "center", "right"}

func (a Align) String() string {
	if int(a) < len(alignNames) {
		return alignNames[a]
	}
	return "Align(?)"
}

// Offset returns how far left of x a line of the given width starts.
func (a Align) Offset(width float64) float64 {
	switch a {
	case AlignCenter:
		return width / 2
	case AlignRight:
		return width
	default:
		return 0
	}
}
