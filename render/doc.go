// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render defines the render-context resource model shared by every
// drawing backend.
//
// A RenderContext owns a transform stack, a sparse set of buffers (render
// targets addressed by integer id, id 0 being the primary buffer), a list of
// textures and a background color. Base implements the backend-agnostic half
// of that contract; backends such as render/canvasctx and render/gpuctx
// embed it and attach their own buffer payloads.
//
// # Shaders
//
// Fragment shaders are described once (ColorTransformShader, MaskShader) and
// resolved against a concrete context through a ShaderRegistry. The lookup
// is an exact match on both the shader type and the context type:
//
//	reg := render.NewShaderRegistry()
//	render.Register(reg, func(s *render.ColorTransformShader, c *canvasctx.Context) (any, error) {
//	    return newColorTransformImpl(s), nil
//	})
//	sh, err := render.NewColorTransformShader(ctx, ct) // fails with ErrNoImplementation
//	                                                   // on any other context type
//
// # Lifetime
//
// Buffers, textures and contexts are released explicitly. Nothing here is
// safe for concurrent use; a context and everything it owns belong to one
// goroutine.
package render
