package surface

import (
	"image"
	"image/draw"
	"log/slog"
	"reflect"

	"github.com/anthonynsimon/bild/clone"
	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/canvas"
	"github.com/gogpu/ggdraw/internal/logging"
	"github.com/gogpu/ggdraw/record"
)

// Mode selects the primitive a DrawCall performs.
type Mode uint8

const (
	ModeFill Mode = iota
	ModeStroke
	ModeBitmap
	ModeText
)

var modeNames = [...]string{"fill", "stroke", "bitmap", "text"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Line is one laid-out line of a text draw call.
type Line struct {
	Text string
	X, Y float64
}

// DrawCall is a fully resolved drawing primitive. Style handlers fill in its
// paint; shader handlers may rewrite it before it reaches the canvas.
type DrawCall struct {
	Mode      Mode
	Color     gg.RGBA
	LineWidth float64

	// Bitmap mode.
	Bitmap image.Image
	At     gg.Point

	// Text mode. Lines wider than a positive MaxWidth are squeezed
	// horizontally to fit.
	Font     canvas.Font
	Align    canvas.Align
	MaxWidth float64
	Lines    []Line
}

// DrawFunc performs a draw call on the current target.
type DrawFunc func(x *Exec, call DrawCall) error

// StyleHandler resolves the paint of call from a style.
type StyleHandler func(style record.Style, call *DrawCall)

// ShaderHandler wraps next so that shader applies to call. It runs once per
// compiled record; the returned Op runs on every flush.
type ShaderHandler func(shader record.Shader, call DrawCall, next DrawFunc) Op

type styleEntry struct {
	typ reflect.Type
	fn  StyleHandler
}

type shaderEntry struct {
	typ reflect.Type
	fn  ShaderHandler
}

// Handlers maps style and shader types to their handlers.
//
// Lookup is a linear scan for the exact dynamic type: a handler registered
// for one type never serves another, even if it embeds the first.
type Handlers struct {
	styles   []styleEntry
	shaders  []shaderEntry
	fallback gg.RGBA
	logger   *slog.Logger
}

// NewHandlers returns an empty registry whose fallback color is red.
func NewHandlers(logger *slog.Logger) *Handlers {
	return &Handlers{fallback: gg.Red, logger: logging.Or(logger)}
}

// DefaultHandlers returns a registry with the built-in handlers registered.
func DefaultHandlers(logger *slog.Logger) *Handlers {
	h := NewHandlers(logger)
	RegisterDefaults(h)
	return h
}

// RegisterDefaults adds the handlers for the styles and shaders defined in
// package record.
func RegisterDefaults(h *Handlers) {
	h.AddStyleHandler((*record.SolidStyle)(nil), solidStyle)
	h.AddStyleHandler((*record.TextStyle)(nil), textStyle)
	h.AddShaderHandler((*record.ColorTransformShader)(nil), colorTransformShader)
	h.AddShaderHandler((*record.MaskShader)(nil), maskShader)
}

// AddStyleHandler registers fn for the dynamic type of proto.
func (h *Handlers) AddStyleHandler(proto record.Style, fn StyleHandler) {
	h.styles = append(h.styles, styleEntry{typ: reflect.TypeOf(proto), fn: fn})
}

// RemoveStyleHandler removes the first handler registered for the type of
// proto and reports whether one was found.
func (h *Handlers) RemoveStyleHandler(proto record.Style) bool {
	typ := reflect.TypeOf(proto)
	for i, e := range h.styles {
		if e.typ == typ {
			h.styles = append(h.styles[:i:i], h.styles[i+1:]...)
			return true
		}
	}
	return false
}

// AddShaderHandler registers fn for the dynamic type of proto.
func (h *Handlers) AddShaderHandler(proto record.Shader, fn ShaderHandler) {
	h.shaders = append(h.shaders, shaderEntry{typ: reflect.TypeOf(proto), fn: fn})
}

// RemoveShaderHandler removes the first handler registered for the type of
// proto and reports whether one was found.
func (h *Handlers) RemoveShaderHandler(proto record.Shader) bool {
	typ := reflect.TypeOf(proto)
	for i, e := range h.shaders {
		if e.typ == typ {
			h.shaders = append(h.shaders[:i:i], h.shaders[i+1:]...)
			return true
		}
	}
	return false
}

// FallbackColor is painted when a style or shader has no handler.
func (h *Handlers) FallbackColor() gg.RGBA { return h.fallback }

// SetFallbackColor changes the fallback color.
func (h *Handlers) SetFallbackColor(c gg.RGBA) { h.fallback = c }

// Reset removes every handler.
func (h *Handlers) Reset() {
	h.styles = nil
	h.shaders = nil
}

func (h *Handlers) styleHandler(s record.Style) (StyleHandler, bool) {
	typ := reflect.TypeOf(s)
	for _, e := range h.styles {
		if e.typ == typ {
			return e.fn, true
		}
	}
	return nil, false
}

func (h *Handlers) shaderHandler(s record.Shader) (ShaderHandler, bool) {
	typ := reflect.TypeOf(s)
	for _, e := range h.shaders {
		if e.typ == typ {
			return e.fn, true
		}
	}
	return nil, false
}

// op resolves style and its shader for call and returns the Op to run.
func (h *Handlers) op(style record.Style, call DrawCall) Op {
	if style != nil {
		if fn, ok := h.styleHandler(style); ok {
			fn(style, &call)
		} else {
			h.logger.Warn("surface: no handler for style", "style", reflect.TypeOf(style).String(), "mode", call.Mode)
			call.Color = h.fallback
		}
		if sh := style.Shader(); sh != nil {
			if fn, ok := h.shaderHandler(sh); ok {
				return fn(sh, call, Draw)
			}
			h.logger.Warn("surface: no handler for shader", "shader", reflect.TypeOf(sh).String(), "mode", call.Mode)
			call.Color = h.fallback
		}
	}
	return func(x *Exec) error { return Draw(x, call) }
}

// Draw performs call on the current target without any shader.
func Draw(x *Exec, call DrawCall) error {
	cv := x.Canvas()
	switch call.Mode {
	case ModeFill:
		cv.SetFillColor(call.Color)
		return cv.Fill()
	case ModeStroke:
		cv.SetStrokeColor(call.Color)
		cv.SetLineWidth(call.LineWidth)
		return cv.Stroke()
	case ModeBitmap:
		if call.Bitmap != nil {
			cv.DrawImage(call.Bitmap, call.At.X, call.At.Y)
		}
	case ModeText:
		if err := cv.SetFont(call.Font); err != nil {
			return err
		}
		cv.SetFillColor(call.Color)
		for _, l := range call.Lines {
			fillLine(cv, l, call.Align, call.MaxWidth)
		}
	}
	return nil
}

// fillLine draws l, scaled horizontally about its anchor when it is wider
// than maxWidth.
func fillLine(cv canvas.Canvas, l Line, align canvas.Align, maxWidth float64) {
	w := cv.MeasureText(l.Text)
	if maxWidth <= 0 || w <= maxWidth {
		cv.FillText(l.Text, l.X, l.Y, align)
		return
	}
	m := cv.Transform()
	cv.SetTransform(m.Multiply(gg.Translate(l.X, l.Y)).Multiply(gg.Scale(maxWidth/w, 1)))
	cv.FillText(l.Text, 0, 0, align)
	cv.SetTransform(m)
}

func solidStyle(s record.Style, call *DrawCall) {
	st := s.(*record.SolidStyle)
	call.Color = st.Fill
	if st.LineWidth > 0 {
		call.LineWidth = st.LineWidth
	}
}

func textStyle(s record.Style, call *DrawCall) {
	call.Color = s.(*record.TextStyle).Fill
}

func colorTransformShader(s record.Shader, call DrawCall, next DrawFunc) Op {
	ct := s.(*record.ColorTransformShader).ColorTransform
	if call.Mode == ModeBitmap {
		if call.Bitmap != nil && !ct.IsIdentity() {
			call.Bitmap = ct.ApplyImage(call.Bitmap)
		}
	} else {
		call.Color = ct.Apply(call.Color)
	}
	return func(x *Exec) error { return next(x, call) }
}

// maskShader draws call, then blends the result with the previous pixels
// through the mask's alpha: fully masked pixels keep their old value.
func maskShader(s record.Shader, call DrawCall, next DrawFunc) Op {
	mask := s.(*record.MaskShader).Mask
	return func(x *Exec) error {
		if mask == nil {
			return next(x, call)
		}
		cv := x.Canvas()
		if err := cv.Flush(); err != nil {
			return err
		}
		r := x.Bounds()
		before := clone.AsRGBA(cv.Image())
		if err := next(x, call); err != nil {
			return err
		}
		if err := cv.Flush(); err != nil {
			return err
		}
		img := cv.Image()
		blendMask(before, clone.AsRGBA(img), mask, r)
		draw.Draw(img, r, before, r.Min, draw.Src)
		return nil
	}
}

// blendMask interpolates dst toward src by the mask alpha over r. The mask
// is aligned with r.Min; pixels outside it keep dst.
func blendMask(dst, src *image.RGBA, mask image.Image, r image.Rectangle) {
	mp := mask.Bounds().Min
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			_, _, _, ma := mask.At(mp.X+x-r.Min.X, mp.Y+y-r.Min.Y).RGBA()
			if ma == 0 {
				continue
			}
			i, j := dst.PixOffset(x, y), src.PixOffset(x, y)
			for k := 0; k < 4; k++ {
				d, s := uint32(dst.Pix[i+k]), uint32(src.Pix[j+k])
				dst.Pix[i+k] = uint8((s*ma + d*(0xffff-ma)) / 0xffff)
			}
		}
	}
}
