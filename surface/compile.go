package surface

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/canvas"
	"github.com/gogpu/ggdraw/record"
)

// Op is one pre-bound step of a compiled record list.
type Op func(x *Exec) error

// Program is a compiled record list.
type Program struct {
	ops []Op
}

// Len returns the number of ops.
func (p *Program) Len() int { return len(p.ops) }

// Run executes every op in order and stops at the first error.
func (p *Program) Run(x *Exec) error {
	for _, op := range p.ops {
		if err := op(x); err != nil {
			return err
		}
	}
	return nil
}

// Exec is the state an Op runs against.
type Exec struct {
	s *Surface
}

// Canvas returns the canvas currently drawn on: the innermost layer, or
// the surface target.
func (x *Exec) Canvas() canvas.Canvas { return x.s.target.Canvas() }

// Bounds returns the logical area of the current target.
func (x *Exec) Bounds() image.Rectangle { return x.s.target.Bounds() }

type compiler struct {
	s   *Surface
	ops []Op
}

func (s *Surface) compile(list []record.Record) (*Program, error) {
	c := compiler{s: s, ops: make([]Op, 0, len(list))}
	for i, r := range list {
		if err := c.add(r); err != nil {
			return nil, fmt.Errorf("record %d (%v): %w", i, r.Type(), err)
		}
	}
	return &Program{ops: c.ops}, nil
}

func (c *compiler) emit(op Op) { c.ops = append(c.ops, op) }

// add emits the ops for r. Dynamic arguments are read here, so the
// interpreter calls add right before running a record.
func (c *compiler) add(r record.Record) error {
	switch r := r.(type) {
	case record.TransformRecord:
		m := r.Matrix.Get()
		c.emit(func(x *Exec) error {
			x.Canvas().SetTransform(m)
			return nil
		})
	case record.MoveRecord:
		p := r.Point.Get()
		c.emit(func(x *Exec) error {
			x.Canvas().MoveTo(p.X, p.Y)
			return nil
		})
	case record.LineRecord:
		p := r.Point.Get()
		c.emit(func(x *Exec) error {
			x.Canvas().LineTo(p.X, p.Y)
			return nil
		})
	case record.QuadraticCurveRecord:
		cp, p := r.Control.Get(), r.Point.Get()
		c.emit(func(x *Exec) error {
			x.Canvas().QuadraticCurveTo(cp.X, cp.Y, p.X, p.Y)
			return nil
		})
	case record.BeginPathRecord:
		c.emit(func(x *Exec) error {
			x.Canvas().BeginPath()
			return nil
		})
	case record.FillRecord:
		c.emit(c.s.env.Handlers.op(r.Style, DrawCall{Mode: ModeFill, LineWidth: 1}))
	case record.StrokeRecord:
		c.emit(c.s.env.Handlers.op(r.Style, DrawCall{Mode: ModeStroke, LineWidth: 1}))
	case record.BitmapRecord:
		call := DrawCall{Mode: ModeBitmap, LineWidth: 1, Bitmap: r.Bitmap.Get(), At: r.Point.Get()}
		c.emit(c.s.env.Handlers.op(r.Style, call))
	case record.TextRecord:
		return c.text(r)
	case record.ClearColorRecord:
		col := r.Color.Get()
		c.emit(func(x *Exec) error {
			cv, b := x.Canvas(), x.Bounds()
			cv.ClearRect(b)
			cv.SetFillColor(col)
			cv.FillRect(b)
			return nil
		})
	case record.LayerRecord:
		c.emit(func(x *Exec) error { return x.s.pushLayer() })
	case record.EndLayerRecord:
		c.emit(func(x *Exec) error { return x.s.popLayer() })
	default:
		return fmt.Errorf("%w: %v", ErrUnsupported, r.Type())
	}
	return nil
}

func (c *compiler) text(r record.TextRecord) error {
	st := r.Style
	if st == nil {
		return fmt.Errorf("%w: text without style", ErrInvalidRecord)
	}
	f := st.CanvasFont()
	cv := c.s.target.Canvas()
	if err := cv.SetFont(f); err != nil {
		return err
	}

	x0 := st.LeftMargin + st.Align.Offset(st.MaxWidth)
	step := st.LineAdvance()
	texts := LayoutText(r.Text.Get(), st.MaxWidth, cv)
	lines := make([]Line, len(texts))
	for i, s := range texts {
		lines[i] = Line{Text: s, X: x0, Y: float64(i) * step}
	}

	call := DrawCall{
		Mode:      ModeText,
		LineWidth: 1,
		Color:     gg.Black,
		Font:      f,
		Align:     st.Align,
		MaxWidth:  st.MaxWidth,
		Lines:     lines,
	}
	c.emit(c.s.env.Handlers.op(st, call))
	return nil
}
