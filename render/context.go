package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/geom"
)

var (
	// ErrDestroyed is returned by operations on a destroyed context.
	ErrDestroyed = errors.New("render: context destroyed")

	// ErrStackUnderflow is returned by Restore without a matching Save.
	ErrStackUnderflow = errors.New("render: restore without save")

	// ErrUnknownBuffer is returned for ids that do not name a live buffer.
	ErrUnknownBuffer = errors.New("render: unknown buffer")

	// ErrPrimaryBuffer is returned when destroying buffer 0.
	ErrPrimaryBuffer = errors.New("render: primary buffer cannot be destroyed")

	// ErrInvalidTexture is returned for nil, destroyed or zero-sized
	// textures.
	ErrInvalidTexture = errors.New("render: invalid texture")

	// ErrNoImplementation is returned when a shader has no implementation
	// for a context type.
	ErrNoImplementation = errors.New("render: no shader implementation")
)

// RenderContext is a drawing backend with buffers, textures and a transform
// stack.
type RenderContext interface {
	Width() int
	Height() int
	Shaders() *ShaderRegistry

	Matrix() gg.Matrix
	SetMatrix(m gg.Matrix)
	Transform(m gg.Matrix)
	Translate(x, y float64)
	Scale(sx, sy float64)
	Rotate(angle float64)
	Save()
	Restore() error

	BackgroundColor() gg.RGBA
	SetBackgroundColor(c gg.RGBA)

	CreateBuffer(width, height int) (int, error)
	DestroyBuffer(id int) error
	SetActiveBuffer(id int)
	ActiveBuffer() int
	RenderBuffer(id int, shader Shader) error

	CreateTexture(img image.Image, wrapS, wrapT Wrap) (*Texture, error)
	CreateEmptyTexture(width, height int, wrapS, wrapT Wrap) (*Texture, error)
	UpdateTexture(tex *Texture, img image.Image) error
	DestroyTexture(tex *Texture)
	Textures() []*Texture
	RenderTexture(tex *Texture, src, dst *geom.Rect, shader Shader) error
	RenderToTexture(tex *Texture, shader Shader) (*Texture, error)

	Clear() error
	Flush() error
	Destroy()
}

// Buffer is one render target of a context. Data holds the backend payload.
type Buffer struct {
	ID     int
	Width  int
	Height int
	Data   any
}

// Base implements the state every RenderContext shares: the matrix stack,
// buffer slots, textures and the background color. Backends embed it.
type Base struct {
	width, height int
	shaders       *ShaderRegistry

	matrix gg.Matrix
	stack  []gg.Matrix

	background gg.RGBA

	buffers []*Buffer
	active  int

	textures    []*Texture
	nextTexture int

	destroyed bool
}

// NewBase returns the shared state for a context of the given size. The
// caller creates buffer 0 with AddBuffer.
func NewBase(width, height int, shaders *ShaderRegistry) *Base {
	if shaders == nil {
		shaders = NewShaderRegistry()
	}
	return &Base{
		width:      width,
		height:     height,
		shaders:    shaders,
		matrix:     gg.Identity(),
		background: gg.Transparent,
	}
}

func (b *Base) Width() int  { return b.width }
func (b *Base) Height() int { return b.height }

// Shaders returns the registry shader implementations are resolved in.
func (b *Base) Shaders() *ShaderRegistry { return b.shaders }

// Matrix returns the current transform.
func (b *Base) Matrix() gg.Matrix { return b.matrix }

// SetMatrix replaces the current transform.
func (b *Base) SetMatrix(m gg.Matrix) { b.matrix = m }

// Transform multiplies the current transform by m; m applies first.
func (b *Base) Transform(m gg.Matrix) { b.matrix = b.matrix.Multiply(m) }

func (b *Base) Translate(x, y float64) { b.Transform(gg.Translate(x, y)) }
func (b *Base) Scale(sx, sy float64)   { b.Transform(gg.Scale(sx, sy)) }
func (b *Base) Rotate(angle float64)   { b.Transform(gg.Rotate(angle)) }

// Save pushes the current transform. Nothing else is saved.
func (b *Base) Save() { b.stack = append(b.stack, b.matrix) }

// Restore pops the transform pushed by the matching Save.
func (b *Base) Restore() error {
	n := len(b.stack)
	if n == 0 {
		return ErrStackUnderflow
	}
	b.matrix = b.stack[n-1]
	b.stack = b.stack[:n-1]
	return nil
}

// SaveDepth returns the number of pending Saves.
func (b *Base) SaveDepth() int { return len(b.stack) }

func (b *Base) BackgroundColor() gg.RGBA     { return b.background }
func (b *Base) SetBackgroundColor(c gg.RGBA) { b.background = c }

// AddBuffer registers a buffer under the first unused non-negative id.
func (b *Base) AddBuffer(width, height int, data any) *Buffer {
	id := 0
	for id < len(b.buffers) && b.buffers[id] != nil {
		id++
	}
	buf := &Buffer{ID: id, Width: width, Height: height, Data: data}
	if id == len(b.buffers) {
		b.buffers = append(b.buffers, buf)
	} else {
		b.buffers[id] = buf
	}
	return buf
}

// Buffer returns the live buffer with the given id.
func (b *Base) Buffer(id int) (*Buffer, error) {
	if id < 0 || id >= len(b.buffers) || b.buffers[id] == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBuffer, id)
	}
	return b.buffers[id], nil
}

// RemoveBuffer frees the slot of id. The active buffer falls back to 0 when
// it was id.
func (b *Base) RemoveBuffer(id int) {
	if id < 0 || id >= len(b.buffers) {
		return
	}
	b.buffers[id] = nil
	for n := len(b.buffers); n > 0 && b.buffers[n-1] == nil; n-- {
		b.buffers = b.buffers[:n-1]
	}
	if b.active == id {
		b.active = 0
	}
}

// Buffers returns the live buffers in id order.
func (b *Base) Buffers() []*Buffer {
	out := make([]*Buffer, 0, len(b.buffers))
	for _, buf := range b.buffers {
		if buf != nil {
			out = append(out, buf)
		}
	}
	return out
}

// SetActiveBuffer selects the target of later render calls. Ids that do not
// name a live buffer are ignored.
func (b *Base) SetActiveBuffer(id int) {
	if _, err := b.Buffer(id); err == nil {
		b.active = id
	}
}

// ActiveBuffer returns the id of the current target.
func (b *Base) ActiveBuffer() int { return b.active }

// CreateTexture registers a texture over img.
func (b *Base) CreateTexture(img image.Image, wrapS, wrapT Wrap) (*Texture, error) {
	if err := b.Check(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty bitmap", ErrInvalidTexture)
	}
	r := img.Bounds()
	return b.addTexture(img, r.Dx(), r.Dy(), wrapS, wrapT), nil
}

// CreateEmptyTexture registers a texture without pixels, to be filled by
// UpdateTexture or a render-to-texture call.
func (b *Base) CreateEmptyTexture(width, height int, wrapS, wrapT Wrap) (*Texture, error) {
	if err := b.Check(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidTexture, width, height)
	}
	return b.addTexture(nil, width, height, wrapS, wrapT), nil
}

func (b *Base) addTexture(img image.Image, w, h int, wrapS, wrapT Wrap) *Texture {
	t := &Texture{
		id:     b.nextTexture,
		Bitmap: img,
		WrapS:  wrapS,
		WrapT:  wrapT,
		width:  w,
		height: h,
	}
	b.nextTexture++
	b.textures = append(b.textures, t)
	return t
}

// UpdateTexture replaces the pixels of tex; its size follows img.
func (b *Base) UpdateTexture(tex *Texture, img image.Image) error {
	if !b.owns(tex) {
		return ErrInvalidTexture
	}
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("%w: empty bitmap", ErrInvalidTexture)
	}
	tex.Bitmap = img
	tex.width, tex.height = img.Bounds().Dx(), img.Bounds().Dy()
	return nil
}

// DestroyTexture unregisters tex and drops its bitmap. Its id becomes
// InvalidTextureID. Textures owned by another context are left alone.
func (b *Base) DestroyTexture(tex *Texture) {
	for i, t := range b.textures {
		if t == tex {
			b.textures = append(b.textures[:i:i], b.textures[i+1:]...)
			tex.Bitmap = nil
			tex.id = InvalidTextureID
			return
		}
	}
}

// Textures returns the live textures in creation order.
func (b *Base) Textures() []*Texture {
	return append([]*Texture(nil), b.textures...)
}

func (b *Base) owns(tex *Texture) bool {
	if tex == nil || !tex.Valid() {
		return false
	}
	for _, t := range b.textures {
		if t == tex {
			return true
		}
	}
	return false
}

// ValidTexture returns ErrInvalidTexture unless tex is live in b.
func (b *Base) ValidTexture(tex *Texture) error {
	if !b.owns(tex) {
		return ErrInvalidTexture
	}
	return nil
}

// Invalidate destroys every texture and marks the context destroyed.
// Backends tear down their buffers first.
func (b *Base) Invalidate() {
	for _, t := range b.Textures() {
		b.DestroyTexture(t)
	}
	b.buffers = nil
	b.stack = nil
	b.active = 0
	b.destroyed = true
}

// Destroyed reports whether Invalidate was called.
func (b *Base) Destroyed() bool { return b.destroyed }

// Check returns ErrDestroyed after Invalidate.
func (b *Base) Check() error {
	if b.destroyed {
		return ErrDestroyed
	}
	return nil
}
