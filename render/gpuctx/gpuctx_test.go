//go:build !nogpu

package gpuctx

import (
	"errors"
	"image"
	"image/color"
	"slices"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/canvas"
	"github.com/gogpu/ggdraw/canvas/raster"
	"github.com/gogpu/ggdraw/record"
	"github.com/gogpu/ggdraw/render"
	"github.com/gogpu/ggdraw/render/canvasctx"
	"github.com/gogpu/ggdraw/surface"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// nullProvider is a DeviceProvider without a device.
type nullProvider struct{}

func (nullProvider) Device() gpucontext.Device             { return nil }
func (nullProvider) Queue() gpucontext.Queue               { return nil }
func (nullProvider) Adapter() gpucontext.Adapter           { return nil }
func (nullProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }
func (nullProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }

var _ gpucontext.DeviceProvider = nullProvider{}

func TestBackendRegistered(t *testing.T) {
	if !slices.Contains(canvas.List(), Name) {
		t.Fatalf("backend %q not registered: %v", Name, canvas.List())
	}
	avail := slices.Contains(canvas.Default().Available(), Name)
	if avail != Available() {
		t.Errorf("registry availability %v, Available() %v", avail, Available())
	}
}

func TestFactory(t *testing.T) {
	cv, err := Factory(4, 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cv.(*raster.Canvas); !ok {
		t.Fatalf("Factory returned %T", cv)
	}
	if cv.Width() != 4 || cv.Height() != 3 {
		t.Errorf("size = %dx%d", cv.Width(), cv.Height())
	}
}

func newContext(t *testing.T, reg *render.ShaderRegistry) *Context {
	t.Helper()
	c, err := New(surface.DefaultHandlers(nil), reg, 8, 8, WithDeviceProvider(nullProvider{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestShadersMatchExactContextType(t *testing.T) {
	reg := render.NewShaderRegistry()
	canvasctx.RegisterShaders(reg)
	c := newContext(t, reg)
	defer c.Destroy()

	if _, err := render.NewColorTransformShader(c, record.IdentityTransform()); !errors.Is(err, render.ErrNoImplementation) {
		t.Fatalf("canvas implementation used for gpu context: %v", err)
	}
	RegisterShaders(reg)
	invert := record.ColorTransform{
		RedMultiplier: -1, GreenMultiplier: -1, BlueMultiplier: -1, AlphaMultiplier: 1,
		RedOffset: 1, GreenOffset: 1, BlueOffset: 1,
	}
	sh, err := render.NewColorTransformShader(c, invert)
	if err != nil {
		t.Fatal(err)
	}

	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+3] = 255, 255
	}
	tex, _ := c.CreateTexture(src, render.WrapNone, render.WrapNone)
	if err := c.RenderTexture(tex, nil, nil, sh); err != nil {
		t.Fatal(err)
	}
	img, err := c.Bitmap()
	if err != nil {
		t.Fatal(err)
	}
	if got := color.NRGBAModel.Convert(img.At(4, 4)); got != (color.NRGBA{G: 255, B: 255, A: 255}) {
		t.Errorf("pixel = %v, want cyan", got)
	}
}

func TestClearAndDestroy(t *testing.T) {
	c := newContext(t, nil)
	c.SetBackgroundColor(gg.Blue)
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	img, err := c.Bitmap()
	if err != nil {
		t.Fatal(err)
	}
	if got := color.NRGBAModel.Convert(img.At(7, 0)); got != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("pixel = %v, want blue", got)
	}

	c.Destroy()
	if n := c.Pool().Cached(8, 8); n != 0 {
		t.Errorf("pool kept %d canvases after Destroy", n)
	}
	if err := c.Flush(); !errors.Is(err, render.ErrDestroyed) {
		t.Errorf("Flush after Destroy = %v", err)
	}
}
