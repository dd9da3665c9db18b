// Package ggdraw is a deferred 2D drawing pipeline on top of gogpu/gg.
//
// Callers describe shapes, text and bitmaps once as draw records and render
// them through interchangeable canvas backends without knowing which one is
// active. A System owns everything the pipeline shares: the backing-target
// pool, the style and shader handler registries of package surface, and the
// shader implementation registry of package render.
//
// # Quick Start
//
//	sys, err := ggdraw.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sys.Close()
//
//	s, _ := sys.NewSurface(200, 200)
//	s.AddRecords(
//	    record.ClearColor(gg.White),
//	    record.BeginPath(),
//	    record.Move(20, 20), record.Line(180, 20), record.Line(100, 180),
//	    record.Fill(record.Solid(gg.Red)),
//	)
//	img, _ := s.Bitmap()
//
// A surface whose records hold no record.Ref is compiled once into a list
// of pre-bound closures; one holding references is interpreted on every
// flush so the current values are drawn.
//
// # Backends
//
// Canvas backends register themselves with package canvas. This package
// links the "raster" (gg) and "vector" (rasterx) backends; importing
// render/gpuctx adds "gpu". Config.Backend selects one by name, otherwise
// the best available backend is used.
//
// # Render Contexts
//
// For buffer and texture management use a render context:
//
//	ctx, _ := sys.NewRenderContext(320, 240)
//	tex, _ := ctx.CreateTexture(img, render.WrapRepeat, render.WrapRepeat)
//	sh, _ := render.NewColorTransformShader(ctx, ct)
//	_ = ctx.RenderTexture(tex, nil, nil, sh)
//	_ = ctx.Flush()
//
// # Logging
//
// ggdraw is silent by default. SetLogger routes its diagnostics, and those
// of gg, to a slog.Logger.
package ggdraw
