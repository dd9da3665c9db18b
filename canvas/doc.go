// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package canvas defines the immediate-mode drawing surface that ggdraw
// records are replayed onto, together with a registry of concrete backends.
//
// A Canvas mirrors the small subset of an HTML canvas 2D context that the
// record pipeline needs: a current affine transform, a single path, fill and
// stroke colors, text, image compositing and device-space rectangle clears.
// Every Canvas exposes its pixels as a draw.Image so pools and layers can
// composite targets onto each other with a single image copy.
//
// Backends register themselves from init functions:
//
//	func init() {
//	    canvas.Register("raster", 10, New, nil)
//	}
//
// and are created by name or by priority:
//
//	c, err := canvas.New("raster", 640, 480)
//	c, err := canvas.NewBest(640, 480)
package canvas
