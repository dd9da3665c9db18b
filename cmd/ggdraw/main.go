// Command ggdraw renders a demo scene through the deferred draw pipeline
// and writes it as a PNG.
package main

import (
	"flag"
	"image"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw"
	"github.com/gogpu/ggdraw/canvas"
	"github.com/gogpu/ggdraw/geom"
	"github.com/gogpu/ggdraw/record"
	"github.com/gogpu/ggdraw/render"
	"github.com/gogpu/ggdraw/render/gpuctx"
	"github.com/gogpu/ggdraw/surface"
)

// sceneContext is a render context whose buffers are surfaces.
type sceneContext interface {
	render.RenderContext
	BufferSurface(id int) (*surface.Surface, error)
	Bitmap() (image.Image, error)
}

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		width      = flag.Int("width", 640, "image width")
		height     = flag.Int("height", 400, "image height")
		backend    = flag.String("backend", "", "canvas backend (raster, vector, gpu)")
		useGPU     = flag.Bool("gpu", false, "render through the GPU context")
		output     = flag.String("output", "ggdraw.png", "output file")
		verbose    = flag.Bool("v", false, "log pipeline events")
	)
	flag.Parse()

	if *verbose {
		ggdraw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := ggdraw.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = ggdraw.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *backend != "" {
		cfg.Backend = *backend
	}

	sys, err := ggdraw.New(ggdraw.WithConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() { _ = sys.Close() }()

	var ctx sceneContext
	if *useGPU {
		gpuctx.RegisterShaders(sys.Shaders())
		gc, err := gpuctx.New(sys.Handlers(), sys.Shaders(), *width, *height,
			gpuctx.WithBackground(cfg.BackgroundRGBA()),
			gpuctx.WithMaxPerBucket(cfg.Pool.MaxPerBucket),
		)
		if err != nil {
			log.Fatalf("Failed to create GPU context: %v", err)
		}
		defer gc.Destroy()
		ctx = gc
	} else {
		cc, err := sys.NewRenderContext(*width, *height)
		if err != nil {
			log.Fatalf("Failed to create render context: %v", err)
		}
		ctx = cc
	}

	if err := drawScene(ctx); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	img, err := ctx.Bitmap()
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if err := imgio.Save(*output, img, imgio.PNGEncoder()); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Scene saved to %s (%dx%d, backend %s)\n", *output, *width, *height, sys.Backend())
}

func drawScene(ctx sceneContext) error {
	w, h := float64(ctx.Width()), float64(ctx.Height())

	if err := ctx.Clear(); err != nil {
		return err
	}
	primary, err := ctx.BufferSurface(ctx.ActiveBuffer())
	if err != nil {
		return err
	}
	b := record.NewBuilder()
	drawBackground(b, w, h)
	drawShapes(b)
	drawLayer(b)
	primary.AddRecords(b.Records()...)

	badge, err := drawBadge(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = ctx.DestroyBuffer(badge) }()

	// The badge is drawn twice: as recorded, then tinted through a color
	// transform shader.
	ctx.Save()
	ctx.Translate(w-260, 40)
	if err := ctx.RenderBuffer(badge, nil); err != nil {
		return err
	}
	sepia, err := render.NewColorTransformShader(ctx, record.ColorTransform{
		RedMultiplier:   0.9,
		GreenMultiplier: 0.7,
		BlueMultiplier:  0.4,
		AlphaMultiplier: 1,
		RedOffset:       0.1,
	})
	if err != nil {
		return err
	}
	ctx.Translate(0, 120)
	if err := ctx.RenderBuffer(badge, sepia); err != nil {
		return err
	}
	if err := ctx.Restore(); err != nil {
		return err
	}
	return ctx.Flush()
}

func drawBackground(b *record.Builder, w, h float64) {
	const steps = 40
	for i := range steps {
		t := float64(i) / steps
		b.Rect(geom.R(0, h*t, w, h/steps+1))
		b.Fill(record.Solid(gg.RGB(0.1+t*0.3, 0.15+t*0.2, 0.3+t*0.2)))
	}
}

func drawShapes(b *record.Builder) {
	b.Rect(geom.R(40, 40, 160, 100))
	b.Fill(record.Solid(gg.RGBA2(1, 0.8, 0, 1)))
	b.Rect(geom.R(40, 40, 160, 100))
	b.Stroke(&record.SolidStyle{Fill: gg.White, LineWidth: 4})

	b.BeginPath()
	b.MoveTo(60, 300)
	b.QuadraticTo(140, 160, 220, 300)
	b.LineTo(60, 300)
	b.Fill(record.Solid(gg.RGBA2(0.3, 0.8, 0.4, 0.9)))

	// Hexagon, rotated about its centre.
	hex := geom.Polygon{}
	for i := range 6 {
		a := float64(i) * math.Pi / 3
		hex.Vertices = append(hex.Vertices, gg.Point{X: 40 * math.Cos(a), Y: 40 * math.Sin(a)})
	}
	b.Transform(gg.Translate(320, 100).Multiply(gg.Rotate(math.Pi / 12)))
	b.Polygon(hex)
	b.Fill(record.Solid(gg.RGBA2(0.9, 0.3, 0.3, 0.9)))
	b.Transform(gg.Identity())
}

// drawLayer paints overlapping translucent circles in a layer so the
// overlap is composited once.
func drawLayer(b *record.Builder) {
	b.PushLayer()
	for i, c := range []gg.RGBA{gg.RGBA2(0.3, 0.5, 1, 0.6), gg.RGBA2(1, 0.4, 0.8, 0.6)} {
		b.Polygon(circle(300+float64(i)*50, 260, 50))
		b.Fill(record.Solid(c))
	}
	b.PopLayer()
}

func circle(cx, cy, r float64) geom.Polygon {
	const n = 48
	p := geom.Polygon{Vertices: make([]gg.Point, 0, n)}
	for i := range n {
		a := 2 * math.Pi * float64(i) / n
		p.Vertices = append(p.Vertices, gg.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)})
	}
	return p
}

// drawBadge records a captioned card on its own buffer. The caption is
// separated by ideographic spaces and wraps to the card width.
func drawBadge(ctx sceneContext) (int, error) {
	id, err := ctx.CreateBuffer(220, 100)
	if err != nil {
		return 0, err
	}
	s, err := ctx.BufferSurface(id)
	if err != nil {
		return 0, err
	}
	b := record.NewBuilder()
	b.Clear(gg.RGBA2(0, 0, 0, 0))
	b.Rect(geom.R(0, 0, 220, 100))
	b.Fill(record.Solid(gg.RGBA2(0.95, 0.95, 0.98, 1)))
	b.DrawText("ggdraw　deferred　pipeline", &record.TextStyle{
		Font:       record.Font{Name: "sans", Bold: true},
		FontHeight: 18,
		Align:      canvas.AlignCenter,
		LeftMargin: 10,
		MaxWidth:   200,
		Fill:       gg.RGBA2(0.1, 0.1, 0.2, 1),
	})
	s.AddRecords(b.Records()...)
	return id, nil
}
