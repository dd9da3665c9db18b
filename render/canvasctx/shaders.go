package canvasctx

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/record"
	"github.com/gogpu/ggdraw/render"
)

// RegisterShaders adds the implementations of the render shaders for
// *Context to reg.
func RegisterShaders(reg *render.ShaderRegistry) {
	render.Register(reg, func(s *render.ColorTransformShader, _ *Context) (any, error) {
		return ColorTransformImpl{Transform: s.Transform}, nil
	})
	render.Register(reg, func(s *render.MaskShader, _ *Context) (any, error) {
		return MaskImpl{Mask: s.Mask}, nil
	})
}

// ColorTransformImpl draws through a record.ColorTransformShader.
type ColorTransformImpl struct {
	Transform record.ColorTransform
}

func (i ColorTransformImpl) Style() record.Style {
	return &record.SolidStyle{
		Fill:      gg.White,
		LineWidth: 1,
		Effect:    &record.ColorTransformShader{ColorTransform: i.Transform},
	}
}

// MaskImpl draws through a record.MaskShader over the current pixels of
// the mask texture. An empty mask texture masks nothing.
type MaskImpl struct {
	Mask *render.Texture
}

func (i MaskImpl) Style() record.Style {
	st := &record.SolidStyle{Fill: gg.White, LineWidth: 1}
	if i.Mask != nil && i.Mask.Bitmap != nil {
		st.Effect = &record.MaskShader{Mask: i.Mask.Bitmap}
	}
	return st
}
