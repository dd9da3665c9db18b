package render

import (
	"fmt"
	"reflect"

	"github.com/gogpu/ggdraw/record"
)

// Shader is a fragment shader bound to the context it was created for.
type Shader interface {
	Context() RenderContext
	Impl() any
}

// StyleImpl is a shader implementation that draws through a record style.
// The canvas-backed contexts expect their implementations to provide it.
type StyleImpl interface {
	Style() record.Style
}

// ImplFactory builds the backend implementation of shader for ctx.
type ImplFactory func(shader Shader, ctx RenderContext) (any, error)

type implEntry struct {
	ctx     reflect.Type
	factory ImplFactory
}

type shaderEntry struct {
	shader reflect.Type
	impls  []implEntry
}

// ShaderRegistry maps (shader type, context type) pairs to implementation
// factories. Matching is exact on both types.
type ShaderRegistry struct {
	entries []shaderEntry
}

// NewShaderRegistry returns an empty registry.
func NewShaderRegistry() *ShaderRegistry {
	return &ShaderRegistry{}
}

// AddImplementation registers f for the dynamic types of shader and ctx.
// Both arguments are only used for their type and may be typed nils.
func (r *ShaderRegistry) AddImplementation(shader Shader, ctx RenderContext, f ImplFactory) {
	r.add(reflect.TypeOf(shader), reflect.TypeOf(ctx), f)
}

// Register adds an implementation for shader type S on context type C.
func Register[S Shader, C RenderContext](r *ShaderRegistry, f func(S, C) (any, error)) {
	r.add(reflect.TypeFor[S](), reflect.TypeFor[C](), func(s Shader, ctx RenderContext) (any, error) {
		return f(s.(S), ctx.(C))
	})
}

func (r *ShaderRegistry) add(st, ct reflect.Type, f ImplFactory) {
	for i := range r.entries {
		if r.entries[i].shader == st {
			r.entries[i].impls = append(r.entries[i].impls, implEntry{ctx: ct, factory: f})
			return
		}
	}
	r.entries = append(r.entries, shaderEntry{shader: st, impls: []implEntry{{ctx: ct, factory: f}}})
}

// RemoveImplementation removes the first implementation for the types of
// shader and ctx and reports whether one was found.
func (r *ShaderRegistry) RemoveImplementation(shader Shader, ctx RenderContext) bool {
	st, ct := reflect.TypeOf(shader), reflect.TypeOf(ctx)
	for i := range r.entries {
		e := &r.entries[i]
		if e.shader != st {
			continue
		}
		for j, impl := range e.impls {
			if impl.ctx == ct {
				e.impls = append(e.impls[:j:j], e.impls[j+1:]...)
				if len(e.impls) == 0 {
					r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
				}
				return true
			}
		}
		return false
	}
	return false
}

// Lookup returns the factory registered for the types of shader and ctx.
func (r *ShaderRegistry) Lookup(shader Shader, ctx RenderContext) (ImplFactory, bool) {
	st, ct := reflect.TypeOf(shader), reflect.TypeOf(ctx)
	for _, e := range r.entries {
		if e.shader != st {
			continue
		}
		for _, impl := range e.impls {
			if impl.ctx == ct {
				return impl.factory, true
			}
		}
		return nil, false
	}
	return nil, false
}

// Has reports whether Lookup would succeed.
func (r *ShaderRegistry) Has(shader Shader, ctx RenderContext) bool {
	_, ok := r.Lookup(shader, ctx)
	return ok
}

// Reset removes every implementation.
func (r *ShaderRegistry) Reset() { r.entries = nil }

// FragmentShader holds the context and resolved implementation of a shader.
// Concrete shaders embed it and call bind from their constructor.
type FragmentShader struct {
	ctx  RenderContext
	impl any
}

// Context returns the context the shader was created for.
func (f *FragmentShader) Context() RenderContext { return f.ctx }

// Impl returns the backend implementation.
func (f *FragmentShader) Impl() any { return f.impl }

func (f *FragmentShader) bind(self Shader, ctx RenderContext) error {
	factory, ok := ctx.Shaders().Lookup(self, ctx)
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrNoImplementation, reflect.TypeOf(self), reflect.TypeOf(ctx))
	}
	f.ctx = ctx
	impl, err := factory(self, ctx)
	if err != nil {
		return fmt.Errorf("render: %s: %w", reflect.TypeOf(self), err)
	}
	f.impl = impl
	return nil
}

// ColorTransformShader multiplies and offsets the color channels of what
// it draws.
type ColorTransformShader struct {
	FragmentShader
	Transform record.ColorTransform
}

// NewColorTransformShader creates a color transform shader for ctx.
func NewColorTransformShader(ctx RenderContext, ct record.ColorTransform) (*ColorTransformShader, error) {
	s := &ColorTransformShader{Transform: ct}
	if err := s.bind(s, ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// MaskShader keeps what it draws only where the mask texture is opaque.
type MaskShader struct {
	FragmentShader
	Mask *Texture
}

// NewMaskShader creates a mask shader for ctx.
func NewMaskShader(ctx RenderContext, mask *Texture) (*MaskShader, error) {
	if mask == nil || !mask.Valid() {
		return nil, ErrInvalidTexture
	}
	s := &MaskShader{Mask: mask}
	if err := s.bind(s, ctx); err != nil {
		return nil, err
	}
	return s, nil
}
