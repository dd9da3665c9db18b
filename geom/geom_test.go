package geom

import (
	"image"
	"testing"

	"github.com/gogpu/gg"
)

func TestRectContains(t *testing.T) {
	r := R(10, 10, 20, 10)
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"origin", 10, 10, true},
		{"inside", 25, 15, true},
		{"right edge", 30, 15, false},
		{"bottom edge", 15, 20, false},
		{"left of", 9.9, 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestRectImage(t *testing.T) {
	got := R(0.5, 1.2, 2, 2).Image()
	want := image.Rect(0, 1, 3, 4)
	if got != want {
		t.Errorf("Image() = %v, want %v", got, want)
	}
	if back := FromImage(want); back != R(0, 1, 3, 3) {
		t.Errorf("FromImage() = %+v", back)
	}
}

func TestRectIntersect(t *testing.T) {
	if got := R(0, 0, 10, 10).Intersect(R(5, 5, 10, 10)); got != R(5, 5, 5, 5) {
		t.Errorf("Intersect = %+v", got)
	}
	if got := R(0, 0, 1, 1).Intersect(R(2, 2, 1, 1)); !got.Empty() {
		t.Errorf("disjoint Intersect = %+v, want empty", got)
	}
}

func TestRectTransform(t *testing.T) {
	p := R(0, 0, 2, 1).Transform(gg.Translate(3, 4))
	b := p.Bounds()
	if b != R(3, 4, 2, 1) {
		t.Errorf("translated bounds = %+v", b)
	}

	rotated := R(0, 0, 2, 2).Transform(gg.Rotate(0.5))
	if len(rotated.Vertices) != 4 {
		t.Fatalf("rotated vertices = %d, want 4", len(rotated.Vertices))
	}
	if rotated.Bounds().W <= 2 {
		t.Errorf("rotated bounds width = %v, want > 2", rotated.Bounds().W)
	}
}

func TestPolygonContains(t *testing.T) {
	tri := Polygon{Vertices: []gg.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}}
	if !tri.Contains(2, 2) {
		t.Error("triangle should contain (2,2)")
	}
	if tri.Contains(8, 8) {
		t.Error("triangle should not contain (8,8)")
	}
	if (Polygon{}).Contains(0, 0) {
		t.Error("empty polygon contains nothing")
	}
}

func TestPolygonClone(t *testing.T) {
	p := Polygon{Vertices: []gg.Point{{X: 1, Y: 1}}}
	c := p.Clone()
	c.Vertices[0].X = 5
	if p.Vertices[0].X != 1 {
		t.Error("Clone shares vertex storage")
	}
}
