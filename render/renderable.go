package render

import (
	"github.com/anthonynsimon/bild/clone"
	"github.com/gogpu/ggdraw/cue"
	"github.com/gogpu/ggdraw/geom"
	"github.com/gogpu/ggdraw/surface"
)

// Renderable is drawn onto a context in two steps: Prepare uploads
// whatever resources the object needs, Render draws it.
type Renderable interface {
	Prepare(ctx RenderContext) error
	Render(ctx RenderContext) error
}

// SurfaceRenderable draws a surface through a texture that is kept in sync
// with it. The texture is re-snapshotted after the surface cues CueDirty, or
// on every Prepare for surfaces with dynamic records.
type SurfaceRenderable struct {
	Surface *surface.Surface

	// Src and Dst are passed to RenderTexture.
	Src, Dst *geom.Rect
	Shader   Shader

	ctx   RenderContext
	tex   *Texture
	stale bool
	cueID cue.ID
}

// NewSurfaceRenderable returns a renderable for s.
func NewSurfaceRenderable(s *surface.Surface) *SurfaceRenderable {
	r := &SurfaceRenderable{Surface: s, stale: true}
	r.cueID = s.Cues().On(surface.CueDirty, func(cue.Event) { r.stale = true })
	return r
}

// Texture returns the synchronized texture, or nil before Prepare.
func (r *SurfaceRenderable) Texture() *Texture { return r.tex }

// Prepare snapshots the surface into a texture owned by ctx.
func (r *SurfaceRenderable) Prepare(ctx RenderContext) error {
	if r.ctx != ctx {
		r.Release()
		r.ctx = ctx
	}
	if r.tex != nil && r.tex.Valid() && !r.stale && !r.Surface.Dynamic() {
		return nil
	}
	img, err := r.Surface.Bitmap()
	if err != nil {
		return err
	}
	r.stale = false
	snapshot := clone.AsRGBA(img)
	if r.tex == nil || !r.tex.Valid() {
		r.tex, err = ctx.CreateTexture(snapshot, WrapNone, WrapNone)
		return err
	}
	return ctx.UpdateTexture(r.tex, snapshot)
}

// Render prepares the texture and draws it on the active buffer of ctx.
func (r *SurfaceRenderable) Render(ctx RenderContext) error {
	if err := r.Prepare(ctx); err != nil {
		return err
	}
	return ctx.RenderTexture(r.tex, r.Src, r.Dst, r.Shader)
}

// Release destroys the texture. The renderable can be prepared again.
func (r *SurfaceRenderable) Release() {
	if r.tex != nil && r.ctx != nil {
		r.ctx.DestroyTexture(r.tex)
	}
	r.tex = nil
	r.stale = true
}

// Close releases the texture and stops listening to the surface.
func (r *SurfaceRenderable) Close() {
	r.Release()
	r.Surface.Cues().Ignore(surface.CueDirty, r.cueID)
}
