package canvasctx

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/canvas"
	"github.com/gogpu/ggdraw/canvas/raster"
	"github.com/gogpu/ggdraw/geom"
	"github.com/gogpu/ggdraw/pool"
	"github.com/gogpu/ggdraw/record"
	"github.com/gogpu/ggdraw/render"
	"github.com/gogpu/ggdraw/surface"
)

var (
	opaqueRed   = color.NRGBA{R: 255, A: 255}
	opaqueBlue  = color.NRGBA{B: 255, A: 255}
	opaqueWhite = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	opaqueCyan  = color.NRGBA{G: 255, B: 255, A: 255}
)

func newEnv() surface.Env {
	return surface.Env{
		Pool: pool.New(func(w, h int) (canvas.Canvas, error) {
			return raster.New(w, h), nil
		}),
		Handlers: surface.DefaultHandlers(nil),
	}
}

func newContext(t *testing.T, w, h int) *Context {
	t.Helper()
	reg := render.NewShaderRegistry()
	RegisterShaders(reg)
	c, err := New(newEnv(), reg, w, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Destroy)
	return c
}

func at(t *testing.T, c *Context, x, y int) color.NRGBA {
	t.Helper()
	img, err := c.Bitmap()
	if err != nil {
		t.Fatalf("Bitmap: %v", err)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestClear(t *testing.T) {
	c := newContext(t, 6, 6)
	c.SetBackgroundColor(gg.Blue)
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []image.Point{{0, 0}, {5, 5}, {2, 4}} {
		if got := at(t, c, p.X, p.Y); got != opaqueBlue {
			t.Errorf("pixel %v = %v, want blue", p, got)
		}
	}
}

func TestFlushRealizesOnce(t *testing.T) {
	c := newContext(t, 4, 4)
	s, err := c.BufferSurface(0)
	if err != nil {
		t.Fatal(err)
	}
	s.AddRecords(record.ClearColor(gg.Red))
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(s.Records()) != 0 {
		t.Error("Flush kept the drawn records")
	}
	if got := at(t, c, 1, 1); got != opaqueRed {
		t.Errorf("pixel = %v, want red", got)
	}
}

func TestRenderBuffer(t *testing.T) {
	c := newContext(t, 16, 16)
	id, err := c.CreateBuffer(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Fatalf("buffer id = %d, want 1", id)
	}
	src, _ := c.BufferSurface(id)
	src.AddRecords(record.ClearColor(gg.Red))

	c.Translate(4, 4)
	if err := c.RenderBuffer(id, nil); err != nil {
		t.Fatal(err)
	}
	for _, tt := range []struct {
		x, y int
		want color.NRGBA
	}{
		{5, 5, opaqueRed},
		{11, 11, opaqueRed},
		{2, 2, color.NRGBA{}},
		{12, 12, color.NRGBA{}},
	} {
		if got := at(t, c, tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if d, _ := c.data(id); d.refs != 0 {
		t.Errorf("refs after RenderBuffer = %d, want 0", d.refs)
	}
}

func TestDeferredDestroy(t *testing.T) {
	c := newContext(t, 8, 8)
	id, _ := c.CreateBuffer(4, 4)
	s, release, err := c.AcquireBuffer(id)
	if err != nil {
		t.Fatal(err)
	}
	s.AddRecords(record.ClearColor(gg.Red))

	if err := c.DestroyBuffer(id); err != nil {
		t.Fatal(err)
	}
	if s.Destroyed() {
		t.Fatal("buffer torn down while referenced")
	}
	if _, err := c.BufferSurface(id); !errors.Is(err, render.ErrUnknownBuffer) {
		t.Errorf("BufferSurface of a pending buffer = %v", err)
	}

	// A render call on the pending buffer still reads it.
	if err := c.RenderBuffer(id, nil); err != nil {
		t.Fatalf("RenderBuffer on pending buffer: %v", err)
	}
	if s.Destroyed() {
		t.Fatal("RenderBuffer released the outer reference")
	}
	if got := at(t, c, 1, 1); got != opaqueRed {
		t.Errorf("composited pixel = %v, want red", got)
	}

	release()
	if !s.Destroyed() {
		t.Error("last release did not tear the buffer down")
	}
	if _, err := c.Buffer(id); !errors.Is(err, render.ErrUnknownBuffer) {
		t.Errorf("buffer slot still live: %v", err)
	}
	release()
	if next, _ := c.CreateBuffer(2, 2); next != id {
		t.Errorf("freed id not reused: got %d, want %d", next, id)
	}
}

func TestDestroyBuffer(t *testing.T) {
	c := newContext(t, 8, 8)
	id, _ := c.CreateBuffer(4, 4)
	s, _ := c.BufferSurface(id)
	c.SetActiveBuffer(id)
	if c.ActiveBuffer() != id {
		t.Fatal("SetActiveBuffer ignored a live buffer")
	}
	if err := c.DestroyBuffer(id); err != nil {
		t.Fatal(err)
	}
	if !s.Destroyed() {
		t.Error("unreferenced buffer not torn down immediately")
	}
	if c.ActiveBuffer() != 0 {
		t.Errorf("active buffer = %d, want 0", c.ActiveBuffer())
	}
	if err := c.DestroyBuffer(id); !errors.Is(err, render.ErrUnknownBuffer) {
		t.Errorf("second DestroyBuffer = %v", err)
	}
	if err := c.DestroyBuffer(0); !errors.Is(err, render.ErrPrimaryBuffer) {
		t.Errorf("DestroyBuffer(0) = %v", err)
	}
	if err := c.RenderBuffer(id, nil); !errors.Is(err, render.ErrUnknownBuffer) {
		t.Errorf("RenderBuffer of destroyed buffer = %v", err)
	}
}

func TestPendingBufferCannotBecomeActive(t *testing.T) {
	c := newContext(t, 8, 8)
	id, _ := c.CreateBuffer(4, 4)
	_, release, _ := c.AcquireBuffer(id)
	defer release()
	_ = c.DestroyBuffer(id)
	c.SetActiveBuffer(id)
	if c.ActiveBuffer() != 0 {
		t.Error("pending buffer became active")
	}
}

func TestRenderTextureWrap(t *testing.T) {
	c := newContext(t, 8, 8)
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, opaqueRed)
	img.SetNRGBA(1, 0, opaqueBlue)
	tex, err := c.CreateTexture(img, render.WrapRepeat, render.WrapRepeat)
	if err != nil {
		t.Fatal(err)
	}
	src := geom.R(0, 0, 4, 1)
	dst := geom.R(2, 3, 4, 1)
	if err := c.RenderTexture(tex, &src, &dst, nil); err != nil {
		t.Fatal(err)
	}
	want := []color.NRGBA{opaqueRed, opaqueBlue, opaqueRed, opaqueBlue}
	for i, w := range want {
		if got := at(t, c, 2+i, 3); got != w {
			t.Errorf("pixel (%d,3) = %v, want %v", 2+i, got, w)
		}
	}
	if got := at(t, c, 6, 3); got.A != 0 {
		t.Errorf("pixel past dst = %v", got)
	}
}

func TestRenderTextureScaled(t *testing.T) {
	c := newContext(t, 8, 8)
	tex, _ := c.CreateTexture(solid(1, 1, opaqueWhite), render.WrapNone, render.WrapNone)
	dst := geom.R(1, 1, 4, 4)
	if err := c.RenderTexture(tex, nil, &dst, nil); err != nil {
		t.Fatal(err)
	}
	if got := at(t, c, 4, 4); got != opaqueWhite {
		t.Errorf("inside = %v", got)
	}
	if got := at(t, c, 5, 5); got.A != 0 {
		t.Errorf("outside = %v", got)
	}
}

func TestColorTransformShader(t *testing.T) {
	c := newContext(t, 4, 4)
	tex, _ := c.CreateTexture(solid(4, 4, opaqueRed), render.WrapNone, render.WrapNone)
	invert := record.ColorTransform{
		RedMultiplier: -1, GreenMultiplier: -1, BlueMultiplier: -1, AlphaMultiplier: 1,
		RedOffset: 1, GreenOffset: 1, BlueOffset: 1,
	}
	sh, err := render.NewColorTransformShader(c, invert)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.RenderTexture(tex, nil, nil, sh); err != nil {
		t.Fatal(err)
	}
	if got := at(t, c, 2, 2); got != opaqueCyan {
		t.Errorf("pixel = %v, want cyan", got)
	}
}

func TestMaskShader(t *testing.T) {
	c := newContext(t, 8, 8)
	c.SetBackgroundColor(gg.White)
	_ = c.Clear()

	maskImg := image.NewAlpha(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			maskImg.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	mask, _ := c.CreateTexture(maskImg, render.WrapNone, render.WrapNone)
	sh, err := render.NewMaskShader(c, mask)
	if err != nil {
		t.Fatal(err)
	}
	tex, _ := c.CreateTexture(solid(8, 8, opaqueRed), render.WrapNone, render.WrapNone)
	if err := c.RenderTexture(tex, nil, nil, sh); err != nil {
		t.Fatal(err)
	}
	if got := at(t, c, 1, 4); got != opaqueRed {
		t.Errorf("masked-in pixel = %v, want red", got)
	}
	if got := at(t, c, 6, 4); got != opaqueWhite {
		t.Errorf("masked-out pixel = %v, want white", got)
	}
}

type opaqueImpl struct{}

func TestShaderWithoutStyle(t *testing.T) {
	reg := render.NewShaderRegistry()
	render.Register(reg, func(*render.ColorTransformShader, *Context) (any, error) { return opaqueImpl{}, nil })
	c, err := New(newEnv(), reg, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Destroy()
	sh, err := render.NewColorTransformShader(c, record.IdentityTransform())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.RenderBuffer(0, sh); !errors.Is(err, render.ErrNoImplementation) {
		t.Errorf("RenderBuffer error = %v, want ErrNoImplementation", err)
	}
}

func TestRenderToTexture(t *testing.T) {
	c := newContext(t, 6, 4)
	c.SetBackgroundColor(gg.Red)
	_ = c.Clear()

	tex, err := c.RenderToTexture(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != 6 || tex.Height() != 4 {
		t.Fatalf("texture size = %dx%d", tex.Width(), tex.Height())
	}
	if got := color.NRGBAModel.Convert(tex.Bitmap.At(3, 2)); got != opaqueRed {
		t.Errorf("texture pixel = %v, want red", got)
	}

	invert := record.ColorTransform{RedMultiplier: -1, GreenMultiplier: -1, BlueMultiplier: -1, AlphaMultiplier: 1, RedOffset: 1, GreenOffset: 1, BlueOffset: 1}
	sh, _ := render.NewColorTransformShader(c, invert)
	same, err := c.RenderToTexture(tex, sh)
	if err != nil {
		t.Fatal(err)
	}
	if same != tex {
		t.Error("RenderToTexture allocated a new texture")
	}
	if got := color.NRGBAModel.Convert(tex.Bitmap.At(0, 0)); got != opaqueCyan {
		t.Errorf("shaded texture pixel = %v, want cyan", got)
	}
}

func TestDestroy(t *testing.T) {
	env := newEnv()
	c, err := New(env, render.NewShaderRegistry(), 5, 5)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = c.CreateBuffer(3, 3)
	tex, _ := c.CreateEmptyTexture(1, 1, render.WrapNone, render.WrapNone)
	c.Destroy()
	c.Destroy()

	if tex.Valid() {
		t.Error("texture survived Destroy")
	}
	if env.Pool.Cached(5, 5) != 1 || env.Pool.Cached(3, 3) != 1 {
		t.Error("buffer targets were not returned to the pool")
	}
	for name, err := range map[string]error{
		"Clear":        c.Clear(),
		"Flush":        c.Flush(),
		"RenderBuffer": c.RenderBuffer(0, nil),
	} {
		if !errors.Is(err, render.ErrDestroyed) {
			t.Errorf("%s after Destroy = %v", name, err)
		}
	}
	if _, err := c.CreateBuffer(1, 1); !errors.Is(err, render.ErrDestroyed) {
		t.Errorf("CreateBuffer after Destroy = %v", err)
	}
}
