// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Composite draws img onto dst with its top-left corner at (x, y) in the
// user space of m, using source-over.
//
// Integer translations take the exact draw.Draw path. Any other transform is
// resampled bilinearly.
func Composite(dst draw.Image, m gg.Matrix, img image.Image, x, y float64) {
	sb := img.Bounds()
	if sb.Empty() {
		return
	}
	if m.IsTranslation() {
		dx, dy := m.C+x, m.F+y
		if dx == math.Trunc(dx) && dy == math.Trunc(dy) {
			r := sb.Sub(sb.Min).Add(image.Pt(int(dx), int(dy)))
			draw.Draw(dst, r, img, sb.Min, draw.Over)
			return
		}
	}
	s2d := m.Multiply(gg.Translate(x-float64(sb.Min.X), y-float64(sb.Min.Y)))
	xdraw.BiLinear.Transform(dst, f64.Aff3{s2d.A, s2d.B, s2d.C, s2d.D, s2d.E, s2d.F}, img, sb, xdraw.Over, nil)
}

// ClearRect sets every pixel of r to transparent.
func ClearRect(dst draw.Image, r image.Rectangle) {
	draw.Draw(dst, r, image.Transparent, image.Point{}, draw.Src)
}

// FillRect composites c over every pixel of r.
func FillRect(dst draw.Image, r image.Rectangle, c gg.RGBA) {
	draw.Draw(dst, r, image.NewUniform(Premultiplied(c)), image.Point{}, draw.Over)
}

// Premultiplied converts c to the premultiplied color.RGBA that canvas
// images store.
func Premultiplied(c gg.RGBA) color.RGBA {
	return color.RGBAModel.Convert(c.Color()).(color.RGBA)
}
