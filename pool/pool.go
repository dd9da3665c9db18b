// Package pool recycles canvases used as drawing targets.
//
// Surfaces draw into primary targets, which are keyed by their exact size.
// Offscreen layers draw into auxiliary targets, which are bucketed by the
// number of bits of their larger side so that many slightly different sizes
// share a few power-of-two square canvases.
//
// Buckets are stacks: the most recently released canvas is handed out first,
// so a request followed by a release leaves the pool exactly as it was.
package pool

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"
	"math/bits"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/canvas"
	"github.com/gogpu/ggdraw/internal/logging"
)

// ErrInvalidSize is returned for non-positive target dimensions.
var ErrInvalidSize = errors.New("pool: invalid target size")

// DefaultMaxPerBucket is the bucket capacity used when none is configured.
const DefaultMaxPerBucket = 8

// Option configures a Pool.
type Option func(*Pool)

// WithMaxPerBucket limits how many idle canvases each bucket retains.
// Zero means unlimited.
func WithMaxPerBucket(n int) Option {
	return func(p *Pool) { p.maxSize = n }
}

// WithLogger sets the logger for allocation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// Pool hands out primary and auxiliary targets.
//
// Thread safety: all methods are safe for concurrent use, although targets
// themselves are not.
type Pool struct {
	mu      sync.Mutex
	factory canvas.Factory
	primary map[string][]canvas.Canvas
	aux     map[int][]canvas.Canvas
	maxSize int
	logger  *slog.Logger
}

// New creates a pool that allocates canvases with factory.
func New(factory canvas.Factory, opts ...Option) *Pool {
	p := &Pool{
		factory: factory,
		primary: make(map[string][]canvas.Canvas),
		aux:     make(map[int][]canvas.Canvas),
		maxSize: DefaultMaxPerBucket,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.Or(p.logger)
	return p
}

// SizeKey returns the primary bucket key for a size, e.g. "640x480".
func SizeKey(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}

// Bits returns ceil(log2(max(width, height))), the auxiliary bucket of a
// size. Auxiliary storage for the bucket is a 1<<bits square.
func Bits(width, height int) int {
	n := max(width, height)
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// RequestPrimary returns a target whose storage is exactly width x height.
func (p *Pool) RequestPrimary(width, height int) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	key := SizeKey(width, height)

	p.mu.Lock()
	c := pop(p.primary, key)
	p.mu.Unlock()

	if c == nil {
		var err error
		if c, err = p.factory(width, height); err != nil {
			return nil, err
		}
		p.logger.Debug("pool: allocated primary canvas", "size", key)
	}
	t := &Target{pool: p, canvas: c, width: width, height: height, key: key, primary: true}
	t.reset()
	return t, nil
}

// Request returns an auxiliary target with a logical size of width x height
// backed by a power-of-two square canvas.
func (p *Pool) Request(width, height int) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	b := Bits(width, height)

	p.mu.Lock()
	c := pop(p.aux, b)
	p.mu.Unlock()

	if c == nil {
		side := 1 << b
		var err error
		if c, err = p.factory(side, side); err != nil {
			return nil, err
		}
		p.logger.Debug("pool: allocated auxiliary canvas", "bits", b, "side", side)
	}
	t := &Target{pool: p, canvas: c, width: width, height: height, bits: b}
	t.reset()
	return t, nil
}

// Cached returns the number of idle primary canvases of a size.
func (p *Pool) Cached(width, height int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.primary[SizeKey(width, height)])
}

// CachedBits returns the number of idle auxiliary canvases in a bucket.
func (p *Pool) CachedBits(b int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.aux[b])
}

// Reset drops every idle canvas, closing those that implement io.Closer.
// Targets still checked out are unaffected and may be released later.
func (p *Pool) Reset() {
	p.mu.Lock()
	primary, aux := p.primary, p.aux
	p.primary = make(map[string][]canvas.Canvas)
	p.aux = make(map[int][]canvas.Canvas)
	p.mu.Unlock()

	for _, list := range primary {
		closeAll(list)
	}
	for _, list := range aux {
		closeAll(list)
	}
}

func (p *Pool) put(t *Target) {
	p.mu.Lock()
	var discard bool
	if t.primary {
		discard = push(p.primary, t.key, t.canvas, p.maxSize)
	} else {
		discard = push(p.aux, t.bits, t.canvas, p.maxSize)
	}
	p.mu.Unlock()

	if discard {
		closeAll([]canvas.Canvas{t.canvas})
	}
}

func pop[K comparable](m map[K][]canvas.Canvas, key K) canvas.Canvas {
	list := m[key]
	if len(list) == 0 {
		return nil
	}
	c := list[len(list)-1]
	m[key] = list[:len(list)-1]
	return c
}

// push reports whether the bucket was full and c must be discarded.
func push[K comparable](m map[K][]canvas.Canvas, key K, c canvas.Canvas, limit int) bool {
	list := m[key]
	if limit > 0 && len(list) >= limit {
		return true
	}
	m[key] = append(list, c)
	return false
}

func closeAll(list []canvas.Canvas) {
	for _, c := range list {
		if cl, ok := c.(io.Closer); ok {
			_ = cl.Close()
		}
	}
}

// Target is a canvas checked out of a Pool.
type Target struct {
	pool    *Pool
	canvas  canvas.Canvas
	width   int
	height  int
	key     string
	bits    int
	primary bool
}

// Canvas returns the canvas to draw on, or nil after Release.
func (t *Target) Canvas() canvas.Canvas { return t.canvas }

// Width returns the logical width.
func (t *Target) Width() int { return t.width }

// Height returns the logical height.
func (t *Target) Height() int { return t.height }

// Bounds returns the logical area of the target.
func (t *Target) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.width, t.height)
}

// Primary reports whether the target came from a primary bucket.
func (t *Target) Primary() bool { return t.primary }

// Released reports whether Release was called.
func (t *Target) Released() bool { return t.canvas == nil }

// Bitmap returns the logical area of the target's pixels. The image shares
// storage with the canvas.
func (t *Target) Bitmap() image.Image {
	img := t.canvas.Image()
	if img.Bounds() == t.Bounds() {
		return img
	}
	if s, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(t.Bounds())
	}
	dst := image.NewRGBA(t.Bounds())
	draw.Draw(dst, dst.Rect, img, image.Point{}, draw.Src)
	return dst
}

// DrawTo composites the logical area of t over the same area of dst.
func (t *Target) DrawTo(dst *Target) error {
	if err := t.canvas.Flush(); err != nil {
		return err
	}
	draw.Draw(dst.canvas.Image(), t.Bounds(), t.canvas.Image(), image.Point{}, draw.Over)
	return nil
}

// Clear makes the logical area transparent.
func (t *Target) Clear() {
	t.canvas.ClearRect(t.Bounds())
}

// Release returns the canvas to its bucket. The target must not be used
// afterwards; releasing twice is a no-op.
func (t *Target) Release() {
	if t.canvas == nil {
		return
	}
	t.pool.put(t)
	t.canvas = nil
}

func (t *Target) reset() {
	t.canvas.SetTransform(gg.Identity())
	t.canvas.BeginPath()
	t.canvas.ClearRect(t.Bounds())
}
