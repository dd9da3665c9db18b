package render

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/gogpu/gputypes"
)

// InvalidTextureID is the id of a destroyed texture.
const InvalidTextureID = -1

// Wrap selects how a texture is sampled outside its bounds.
type Wrap uint8

const (
	// WrapNone leaves samples outside the texture transparent.
	WrapNone Wrap = iota
	// WrapRepeat tiles the texture.
	WrapRepeat
	// WrapMirror tiles the texture, flipping every other copy.
	WrapMirror
	// WrapClamp extends the edge pixels.
	WrapClamp
)

var wrapNames = [...]string{"none", "repeat", "mirror", "clamp"}

func (w Wrap) String() string {
	if int(w) < len(wrapNames) {
		return wrapNames[w]
	}
	return "Wrap(?)"
}

// index maps coordinate i onto [0, n), or returns -1 when the sample is
// transparent.
func (w Wrap) index(i, n int) int {
	switch w {
	case WrapRepeat:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	case WrapMirror:
		p := 2 * n
		i %= p
		if i < 0 {
			i += p
		}
		if i >= n {
			i = p - 1 - i
		}
		return i
	case WrapClamp:
		return min(max(i, 0), n-1)
	default:
		if i < 0 || i >= n {
			return -1
		}
		return i
	}
}

// Texture is a bitmap registered with a context. An empty texture has a
// size but no Bitmap until it is rendered to or updated.
type Texture struct {
	id     int
	Bitmap image.Image
	WrapS  Wrap
	WrapT  Wrap
	width  int
	height int
}

// ID returns the texture id, or InvalidTextureID once destroyed.
func (t *Texture) ID() int { return t.id }

// Valid reports whether the texture has not been destroyed.
func (t *Texture) Valid() bool { return t.id != InvalidTextureID }

func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

// Bounds returns the texture area in texture space.
func (t *Texture) Bounds() image.Rectangle { return image.Rect(0, 0, t.width, t.height) }

// Format returns the pixel format of the texture storage.
func (t *Texture) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

// Sample returns the pixels of src, given in texture space, as an image
// with its origin at zero. Coordinates outside the texture follow WrapS
// horizontally and WrapT vertically.
func (t *Texture) Sample(src image.Rectangle) *image.RGBA {
	if t.Bitmap == nil || src.Empty() {
		return image.NewRGBA(image.Rect(0, 0, max(src.Dx(), 0), max(src.Dy(), 0)))
	}
	b := t.Bitmap.Bounds()
	if src.In(t.Bounds()) {
		out := transform.Crop(t.Bitmap, src.Add(b.Min))
		out.Rect = out.Rect.Sub(out.Rect.Min)
		return out
	}
	out := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	for y := 0; y < src.Dy(); y++ {
		sy := t.WrapT.index(src.Min.Y+y, t.height)
		if sy < 0 {
			continue
		}
		for x := 0; x < src.Dx(); x++ {
			sx := t.WrapS.index(src.Min.X+x, t.width)
			if sx < 0 {
				continue
			}
			out.Set(x, y, t.Bitmap.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return out
}

// Scaled returns Sample(src) resized to w by h.
func (t *Texture) Scaled(src image.Rectangle, w, h int) *image.RGBA {
	img := t.Sample(src)
	if w == img.Rect.Dx() && h == img.Rect.Dy() {
		return img
	}
	return transform.Resize(img, w, h, transform.Linear)
}
