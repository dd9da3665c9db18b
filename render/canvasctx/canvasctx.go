// Package canvasctx implements render.RenderContext on surfaces drawn by a
// canvas backend.
//
// Every buffer owns a surface.Surface. Render calls append records to the
// active buffer's surface; Flush draws them and starts a new batch.
// Buffers are reference counted: a buffer destroyed while another buffer's
// render call is reading it is torn down when that read finishes.
package canvasctx

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/geom"
	"github.com/gogpu/ggdraw/internal/logging"
	"github.com/gogpu/ggdraw/record"
	"github.com/gogpu/ggdraw/render"
	"github.com/gogpu/ggdraw/surface"
)

// Option configures a Context.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	background gg.RGBA
}

// WithLogger sets the logger of the context.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBackground sets the color Clear resets buffers to.
func WithBackground(c gg.RGBA) Option {
	return func(o *options) { o.background = c }
}

// Context is a render context whose buffers are surfaces.
type Context struct {
	*render.Base
	env    surface.Env
	logger *slog.Logger
}

var _ render.RenderContext = (*Context)(nil)

type bufferData struct {
	surface  *surface.Surface
	refs     int
	released bool
}

// New creates a context with a primary buffer of the given size. Surfaces
// are created in env; shader implementations are resolved in shaders.
func New(env surface.Env, shaders *render.ShaderRegistry, width, height int, opts ...Option) (*Context, error) {
	o := options{logger: env.Logger, background: gg.Transparent}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Context{
		Base:   render.NewBase(width, height, shaders),
		env:    env,
		logger: logging.Or(o.logger),
	}
	c.SetBackgroundColor(o.background)
	if _, err := c.CreateBuffer(width, height); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateBuffer adds a buffer backed by a new surface.
func (c *Context) CreateBuffer(width, height int) (int, error) {
	if err := c.Check(); err != nil {
		return 0, err
	}
	s, err := surface.New(c.env, width, height)
	if err != nil {
		return 0, err
	}
	b := c.AddBuffer(width, height, &bufferData{surface: s})
	c.logger.Debug("canvasctx: buffer created", "id", b.ID, "width", width, "height", height)
	return b.ID, nil
}

func (c *Context) data(id int) (*bufferData, error) {
	b, err := c.Buffer(id)
	if err != nil {
		return nil, err
	}
	return b.Data.(*bufferData), nil
}

// DestroyBuffer destroys buffer id. While the buffer is being read the
// teardown is deferred to the end of the read. Buffer 0 cannot be destroyed.
func (c *Context) DestroyBuffer(id int) error {
	if err := c.Check(); err != nil {
		return err
	}
	if id == 0 {
		return render.ErrPrimaryBuffer
	}
	d, err := c.data(id)
	if err != nil {
		return err
	}
	if d.released {
		return fmt.Errorf("%w: %d already destroyed", render.ErrUnknownBuffer, id)
	}
	d.released = true
	if c.ActiveBuffer() == id {
		c.Base.SetActiveBuffer(0)
	}
	if d.refs == 0 {
		c.teardown(id, d)
	} else {
		c.logger.Debug("canvasctx: buffer teardown deferred", "id", id, "refs", d.refs)
	}
	return nil
}

func (c *Context) teardown(id int, d *bufferData) {
	d.surface.Destroy()
	c.RemoveBuffer(id)
	c.logger.Debug("canvasctx: buffer destroyed", "id", id)
}

// SetActiveBuffer selects the buffer later render calls draw on. Unknown and
// destroyed buffers are ignored.
func (c *Context) SetActiveBuffer(id int) {
	if d, err := c.data(id); err == nil && !d.released {
		c.Base.SetActiveBuffer(id)
	}
}

// BufferSurface returns the surface of buffer id for direct recording.
func (c *Context) BufferSurface(id int) (*surface.Surface, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	d, err := c.data(id)
	if err != nil {
		return nil, err
	}
	if d.released {
		return nil, fmt.Errorf("%w: %d destroyed", render.ErrUnknownBuffer, id)
	}
	return d.surface, nil
}

// AcquireBuffer takes a reference on buffer id and returns its surface with
// the function that drops the reference. Calling release more than once has
// no effect. A buffer destroyed while referenced is torn down by the last
// release.
func (c *Context) AcquireBuffer(id int) (s *surface.Surface, release func(), err error) {
	if err := c.Check(); err != nil {
		return nil, nil, err
	}
	d, err := c.data(id)
	if err != nil {
		return nil, nil, err
	}
	d.refs++
	done := false
	release = func() {
		if done {
			return
		}
		done = true
		d.refs--
		if d.refs == 0 && d.released {
			c.teardown(id, d)
		}
	}
	return d.surface, release, nil
}

func (c *Context) active() *surface.Surface {
	d, err := c.data(c.ActiveBuffer())
	if err != nil {
		panic("canvasctx: active buffer is not live")
	}
	return d.surface
}

// realize draws the pending records of s and clears them.
func realize(s *surface.Surface) (image.Image, error) {
	img, err := s.Bitmap()
	if err != nil {
		return nil, err
	}
	s.ClearRecords()
	return img, nil
}

func (c *Context) style(shader render.Shader) (record.Style, error) {
	if shader == nil {
		return nil, nil
	}
	impl, ok := shader.Impl().(render.StyleImpl)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not provide a style", render.ErrNoImplementation, shader.Impl())
	}
	return impl.Style(), nil
}

// draw appends img at (x, y) under the current matrix to the active buffer.
func (c *Context) draw(img image.Image, x, y float64, style record.Style) {
	c.active().AddRecords(
		record.Transform(c.Matrix()),
		record.Bitmap(img, x, y, style),
	)
}

// RenderBuffer draws the content of buffer id onto the active buffer. The
// source buffer is referenced until its pixels have been copied.
func (c *Context) RenderBuffer(id int, shader render.Shader) error {
	if err := c.Check(); err != nil {
		return err
	}
	style, err := c.style(shader)
	if err != nil {
		return err
	}
	src, release, err := c.AcquireBuffer(id)
	if err != nil {
		return err
	}
	defer release()

	img, err := realize(src)
	if err != nil {
		return err
	}
	c.draw(clone.AsRGBA(img), 0, 0, style)
	return nil
}

// RenderTexture draws tex onto the active buffer. src selects the texture
// area, the whole texture when nil; wrap modes apply outside the texture.
// dst places and scales the result, at the origin and unscaled when nil.
func (c *Context) RenderTexture(tex *render.Texture, src, dst *geom.Rect, shader render.Shader) error {
	if err := c.Check(); err != nil {
		return err
	}
	if err := c.ValidTexture(tex); err != nil {
		return err
	}
	style, err := c.style(shader)
	if err != nil {
		return err
	}
	sr := tex.Bounds()
	if src != nil {
		sr = src.Image()
	}
	w, h := sr.Dx(), sr.Dy()
	var x, y float64
	if dst != nil {
		x, y = dst.X, dst.Y
		w, h = int(math.Round(dst.W)), int(math.Round(dst.H))
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	c.draw(tex.Scaled(sr, w, h), x, y, style)
	return nil
}

// RenderToTexture copies the active buffer through shader into tex. A nil
// tex allocates a texture of the buffer size.
func (c *Context) RenderToTexture(tex *render.Texture, shader render.Shader) (*render.Texture, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	style, err := c.style(shader)
	if err != nil {
		return nil, err
	}
	s := c.active()
	img, err := realize(s)
	if err != nil {
		return nil, err
	}
	if tex == nil {
		tex, err = c.CreateEmptyTexture(s.Width(), s.Height(), render.WrapNone, render.WrapNone)
		if err != nil {
			return nil, err
		}
	} else if err := c.ValidTexture(tex); err != nil {
		return nil, err
	}

	tmp, err := surface.New(c.env, tex.Width(), tex.Height())
	if err != nil {
		return nil, err
	}
	defer tmp.Destroy()
	tmp.AddRecords(record.Bitmap(img, 0, 0, style))
	out, err := tmp.Bitmap()
	if err != nil {
		return nil, err
	}
	if err := c.UpdateTexture(tex, clone.AsRGBA(out)); err != nil {
		return nil, err
	}
	return tex, nil
}

// Clear resets the active buffer to the background color.
func (c *Context) Clear() error {
	if err := c.Check(); err != nil {
		return err
	}
	c.active().AddRecords(record.ClearColor(c.BackgroundColor()))
	return nil
}

// Flush draws the pending operations of the active buffer.
func (c *Context) Flush() error {
	if err := c.Check(); err != nil {
		return err
	}
	_, err := realize(c.active())
	return err
}

// Bitmap flushes the active buffer and returns its pixels. The image is
// valid until the next flush.
func (c *Context) Bitmap() (image.Image, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	return realize(c.active())
}

// Destroy tears down every buffer and texture. Later calls fail with
// render.ErrDestroyed.
func (c *Context) Destroy() {
	if c.Destroyed() {
		return
	}
	for _, b := range c.Buffers() {
		b.Data.(*bufferData).surface.Destroy()
	}
	c.Invalidate()
	c.logger.Debug("canvasctx: destroyed")
}
