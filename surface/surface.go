// Package surface records draw commands and replays them onto a pooled
// canvas.
//
// A Surface keeps a list of records. On Flush, a list without dynamic
// references is compiled once into a Program, a slice of closures with every
// literal argument bound, and the Program is re-run on later flushes. A list
// holding any dynamic reference is interpreted record by record so each
// flush sees the current values. Both paths share the same per-record code
// and produce identical pixels.
//
//	s, _ := surface.New(env, 320, 240)
//	s.AddRecords(
//	    record.ClearColor(gg.White),
//	    record.BeginPath(),
//	    record.Move(10, 10), record.Line(100, 10), record.Line(10, 100),
//	    record.Fill(record.Solid(gg.Red)),
//	)
//	img, _ := s.Bitmap()
package surface

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/ggdraw/canvas"
	"github.com/gogpu/ggdraw/cue"
	"github.com/gogpu/ggdraw/internal/logging"
	"github.com/gogpu/ggdraw/pool"
	"github.com/gogpu/ggdraw/record"
)

// CueDirty is cued whenever the record list changes.
const CueDirty = "dirty"

var (
	// ErrDestroyed is returned by operations on a destroyed surface.
	ErrDestroyed = errors.New("surface: destroyed")

	// ErrUnsupported is returned for records the surface cannot draw.
	ErrUnsupported = errors.New("surface: unsupported record")

	// ErrInvalidRecord is returned for records with missing arguments.
	ErrInvalidRecord = errors.New("surface: invalid record")

	// ErrLayerUnderflow is returned when an end-layer record has no
	// matching layer.
	ErrLayerUnderflow = errors.New("surface: end layer without layer")

	// ErrInvalidEnv is returned when an Env lacks a pool or handlers.
	ErrInvalidEnv = errors.New("surface: env requires a pool and handlers")
)

// Env bundles the shared state surfaces draw against.
type Env struct {
	Pool     *pool.Pool
	Handlers *Handlers
	Logger   *slog.Logger
}

// Surface is a retained list of draw records bound to a primary target.
type Surface struct {
	env    Env
	logger *slog.Logger
	width  int
	height int

	target *pool.Target
	layers []*pool.Target

	records []record.Record
	program *Program
	dynamic bool
	dirty   bool

	cues      *cue.Listener
	destroyed bool
}

// New creates a surface of the given size.
func New(env Env, width, height int) (*Surface, error) {
	if env.Pool == nil || env.Handlers == nil {
		return nil, ErrInvalidEnv
	}
	t, err := env.Pool.RequestPrimary(width, height)
	if err != nil {
		return nil, err
	}
	s := &Surface{
		env:    env,
		logger: logging.Or(env.Logger),
		width:  width,
		height: height,
		target: t,
	}
	s.cues = cue.New(s)
	return s, nil
}

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

// Cues returns the listener on which the surface announces CueDirty.
func (s *Surface) Cues() *cue.Listener { return s.cues }

// Dirty reports whether records changed since the last flush.
func (s *Surface) Dirty() bool { return s.dirty }

// Dynamic reports whether the record list is interpreted on flush.
func (s *Surface) Dynamic() bool { return s.dynamic }

// Compiled reports whether a compiled program is cached.
func (s *Surface) Compiled() bool { return s.program != nil }

// Records returns a copy of the record list.
func (s *Surface) Records() []record.Record {
	return append([]record.Record(nil), s.records...)
}

// AddRecords appends records. The cached program is dropped and the list is
// marked dynamic once any record appended since the last ClearRecords is.
func (s *Surface) AddRecords(records ...record.Record) {
	s.records = append(s.records, records...)
	s.program = nil
	s.dynamic = s.dynamic || record.HasDynamic(records)
	s.markDirty()
}

// ClearRecords empties the record list and releases layers left open by it.
// A flush afterwards leaves the target untouched.
func (s *Surface) ClearRecords() {
	s.records = nil
	s.program = nil
	s.dynamic = false
	s.dropLayers()
	s.markDirty()
}

func (s *Surface) markDirty() {
	s.dirty = true
	s.cues.Cue(CueDirty, s)
}

// Flush draws the record list onto the target. It does not clear first.
func (s *Surface) Flush() error {
	if s.destroyed {
		return ErrDestroyed
	}
	x := &Exec{s: s}
	var err error
	if s.dynamic {
		err = s.interpret(x)
	} else {
		if s.program == nil {
			p, cerr := s.compile(s.records)
			if cerr != nil {
				return cerr
			}
			s.program = p
			s.logger.Debug("surface: compiled records", "records", len(s.records), "ops", p.Len())
		}
		err = s.program.Run(x)
	}
	if err != nil {
		return err
	}
	s.dirty = false
	return s.target.Canvas().Flush()
}

// Bitmap flushes and returns the pixels of the surface's own target, even
// when the records leave a layer open. The image shares storage with the
// surface and is only valid until the next draw or Destroy.
func (s *Surface) Bitmap() (image.Image, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	base := s.base()
	if base != s.target {
		if err := base.Canvas().Flush(); err != nil {
			return nil, err
		}
	}
	return base.Bitmap(), nil
}

// Canvas returns the primary canvas, or nil after Destroy.
func (s *Surface) Canvas() canvas.Canvas {
	if s.destroyed {
		return nil
	}
	return s.base().Canvas()
}

// Resize replaces the target with a blank one of the new size.
func (s *Surface) Resize(width, height int) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if width == s.width && height == s.height {
		return nil
	}
	t, err := s.env.Pool.RequestPrimary(width, height)
	if err != nil {
		return err
	}
	s.dropLayers()
	s.target.Release()
	s.target = t
	s.width, s.height = width, height
	s.program = nil
	s.markDirty()
	return nil
}

// Destroy returns the targets to the pool. Later calls fail with
// ErrDestroyed; destroying twice is a no-op.
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.dropLayers()
	s.target.Release()
	s.records = nil
	s.program = nil
	s.destroyed = true
}

// Destroyed reports whether Destroy was called.
func (s *Surface) Destroyed() bool { return s.destroyed }

func (s *Surface) base() *pool.Target {
	if len(s.layers) > 0 {
		return s.layers[0]
	}
	return s.target
}

// dropLayers discards open layers without compositing them.
func (s *Surface) dropLayers() {
	if len(s.layers) == 0 {
		return
	}
	s.target.Release()
	s.target = s.layers[0]
	for _, t := range s.layers[1:] {
		t.Release()
	}
	s.layers = nil
}

func (s *Surface) pushLayer() error {
	t, err := s.env.Pool.Request(s.width, s.height)
	if err != nil {
		return err
	}
	t.Canvas().SetTransform(s.target.Canvas().Transform())
	s.layers = append(s.layers, s.target)
	s.target = t
	return nil
}

func (s *Surface) popLayer() error {
	n := len(s.layers)
	if n == 0 {
		return ErrLayerUnderflow
	}
	layer := s.target
	s.target = s.layers[n-1]
	s.layers = s.layers[:n-1]
	err := layer.DrawTo(s.target)
	layer.Release()
	return err
}

func (s *Surface) interpret(x *Exec) error {
	c := compiler{s: s}
	for i, r := range s.records {
		c.ops = c.ops[:0]
		if err := c.add(r); err != nil {
			return fmt.Errorf("record %d (%v): %w", i, r.Type(), err)
		}
		for _, op := range c.ops {
			if err := op(x); err != nil {
				return fmt.Errorf("record %d (%v): %w", i, r.Type(), err)
			}
		}
	}
	return nil
}
