package record

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/canvas"
)

// Style describes how a fill, stroke or bitmap record paints.
//
// Surfaces dispatch on the concrete type of a Style through their handler
// registry; a Style without a registered handler paints with the fallback
// color.
type Style interface {
	Color() gg.RGBA
	// Shader returns the draw-level effect applied to the operation, or nil.
	Shader() Shader
}

// SolidStyle paints with a single color.
type SolidStyle struct {
	Fill      gg.RGBA
	LineWidth float64
	Effect    Shader
}

func (s *SolidStyle) Color() gg.RGBA { return s.Fill }
func (s *SolidStyle) Shader() Shader { return s.Effect }

// Solid returns a SolidStyle with a one-pixel line width.
func Solid(c gg.RGBA) *SolidStyle {
	return &SolidStyle{Fill: c, LineWidth: 1}
}

// Font names a typeface for text records.
type Font struct {
	Name   string
	Bold   bool
	Italic bool
	// Leading is the extra space between lines in 1/1024 of the font
	// height.
	Leading float64
}

// TextStyle lays out and paints text records.
//
// Text is wrapped to MaxWidth and each line is positioned at LeftMargin plus
// the alignment offset within MaxWidth.
type TextStyle struct {
	Font       Font
	FontHeight float64
	Align      canvas.Align
	LeftMargin float64
	MaxWidth   float64
	Fill       gg.RGBA
	Effect     Shader
}

func (s *TextStyle) Color() gg.RGBA { return s.Fill }
func (s *TextStyle) Shader() Shader { return s.Effect }

// CanvasFont returns the backend font for s.
func (s *TextStyle) CanvasFont() canvas.Font {
	return canvas.Font{
		Name:   s.Font.Name,
		Size:   s.FontHeight,
		Bold:   s.Font.Bold,
		Italic: s.Font.Italic,
	}
}

// LineAdvance returns the vertical distance between consecutive lines.
func (s *TextStyle) LineAdvance() float64 {
	return s.FontHeight + s.Font.Leading*s.FontHeight/1024
}

// Shader is a draw-level effect attached to a Style.
type Shader interface {
	ShaderName() string
}

// ColorTransform multiplies each channel and then adds an offset. Channels
// and offsets use the 0..1 range of gg.RGBA; alpha is not premultiplied.
type ColorTransform struct {
	RedMultiplier, GreenMultiplier, BlueMultiplier, AlphaMultiplier float64
	RedOffset, GreenOffset, BlueOffset, AlphaOffset                 float64
}

// IdentityTransform leaves colors unchanged.
func IdentityTransform() ColorTransform {
	return ColorTransform{RedMultiplier: 1, GreenMultiplier: 1, BlueMultiplier: 1, AlphaMultiplier: 1}
}

// IsIdentity reports whether ct leaves every color unchanged.
func (ct ColorTransform) IsIdentity() bool {
	return ct == IdentityTransform()
}

// Apply transforms c, clamping every channel to [0, 1].
func (ct ColorTransform) Apply(c gg.RGBA) gg.RGBA {
	return gg.RGBA{
		R: clamp01(c.R*ct.RedMultiplier + ct.RedOffset),
		G: clamp01(c.G*ct.GreenMultiplier + ct.GreenOffset),
		B: clamp01(c.B*ct.BlueMultiplier + ct.BlueOffset),
		A: clamp01(c.A*ct.AlphaMultiplier + ct.AlphaOffset),
	}
}

// ApplyImage returns a transformed copy of img. The transform applies to
// straight-alpha colors; the result is premultiplied.
func (ct ColorTransform) ApplyImage(img image.Image) *image.RGBA {
	return adjust.Apply(img, func(px color.RGBA) color.RGBA {
		c := ct.Apply(gg.FromColor(px))
		return color.RGBAModel.Convert(c.Color()).(color.RGBA)
	})
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ColorTransformShader applies a ColorTransform to whatever it paints.
type ColorTransformShader struct {
	ColorTransform
}

func (*ColorTransformShader) ShaderName() string { return "ColorTransform" }

// MaskShader limits drawing to the opaque parts of Mask. The mask is
// aligned with the target's origin.
type MaskShader struct {
	Mask image.Image
}

func (*MaskShader) ShaderName() string { return "Mask" }
