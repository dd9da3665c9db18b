package render

import (
	"errors"
	"testing"

	"github.com/gogpu/ggdraw/record"
)

type ctImpl struct {
	ct  record.ColorTransform
	ctx string
}

func (i ctImpl) Style() record.Style {
	return &record.SolidStyle{Effect: &record.ColorTransformShader{ColorTransform: i.ct}}
}

func TestShaderRegistryExactMatch(t *testing.T) {
	reg := NewShaderRegistry()
	Register(reg, func(s *ColorTransformShader, c *stubContext) (any, error) {
		return ctImpl{ct: s.Transform, ctx: "stub"}, nil
	})

	stub := newStub(reg)
	other := &otherContext{newStub(reg)}

	ct := record.IdentityTransform()
	ct.RedOffset = 0.5
	s, err := NewColorTransformShader(stub, ct)
	if err != nil {
		t.Fatalf("NewColorTransformShader: %v", err)
	}
	impl, ok := s.Impl().(ctImpl)
	if !ok || impl.ct != ct || impl.ctx != "stub" {
		t.Errorf("Impl = %#v", s.Impl())
	}
	if s.Context() != RenderContext(stub) {
		t.Error("Context does not return the creating context")
	}
	if _, ok := s.Impl().(StyleImpl); !ok {
		t.Error("implementation is not a StyleImpl")
	}

	if _, err := NewColorTransformShader(other, ct); !errors.Is(err, ErrNoImplementation) {
		t.Errorf("embedding context type error = %v, want ErrNoImplementation", err)
	}
	mask, _ := stub.CreateEmptyTexture(2, 2, WrapNone, WrapNone)
	if _, err := NewMaskShader(stub, mask); !errors.Is(err, ErrNoImplementation) {
		t.Errorf("unregistered shader type error = %v, want ErrNoImplementation", err)
	}
}

func TestShaderRegistryExtendAndRemove(t *testing.T) {
	reg := NewShaderRegistry()
	stub := newStub(reg)
	other := &otherContext{newStub(reg)}

	Register(reg, func(*MaskShader, *stubContext) (any, error) { return "stub", nil })
	Register(reg, func(*MaskShader, *otherContext) (any, error) { return "other", nil })
	if len(reg.entries) != 1 || len(reg.entries[0].impls) != 2 {
		t.Fatalf("entries = %+v, want one entry with two impls", reg.entries)
	}

	mask, _ := stub.CreateEmptyTexture(1, 1, WrapNone, WrapNone)
	for _, tt := range []struct {
		ctx  RenderContext
		want string
	}{{stub, "stub"}, {other, "other"}} {
		s, err := NewMaskShader(tt.ctx, mask)
		if err != nil {
			t.Fatal(err)
		}
		if s.Impl() != tt.want {
			t.Errorf("Impl = %v, want %s", s.Impl(), tt.want)
		}
	}

	if !reg.Has((*MaskShader)(nil), stub) {
		t.Error("Has = false for a registered pair")
	}
	if !reg.RemoveImplementation((*MaskShader)(nil), (*stubContext)(nil)) {
		t.Fatal("RemoveImplementation returned false")
	}
	if reg.Has((*MaskShader)(nil), stub) || !reg.Has((*MaskShader)(nil), other) {
		t.Error("RemoveImplementation removed the wrong pair")
	}
	if reg.RemoveImplementation((*MaskShader)(nil), (*stubContext)(nil)) {
		t.Error("second RemoveImplementation returned true")
	}

	reg.AddImplementation((*ColorTransformShader)(nil), (*stubContext)(nil), func(Shader, RenderContext) (any, error) {
		return 1, nil
	})
	reg.Reset()
	if reg.Has((*ColorTransformShader)(nil), stub) || reg.Has((*MaskShader)(nil), other) {
		t.Error("Reset kept implementations")
	}
}

func TestShaderFactoryError(t *testing.T) {
	reg := NewShaderRegistry()
	boom := errors.New("boom")
	Register(reg, func(*ColorTransformShader, *stubContext) (any, error) { return nil, boom })
	if _, err := NewColorTransformShader(newStub(reg), record.IdentityTransform()); !errors.Is(err, boom) {
		t.Errorf("error = %v, want the factory error", err)
	}
}

func TestMaskShaderNeedsTexture(t *testing.T) {
	stub := newStub(nil)
	if _, err := NewMaskShader(stub, nil); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("nil mask error = %v", err)
	}
	tex, _ := stub.CreateEmptyTexture(1, 1, WrapNone, WrapNone)
	stub.DestroyTexture(tex)
	if _, err := NewMaskShader(stub, tex); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("destroyed mask error = %v", err)
	}
}
