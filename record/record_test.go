package record

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/geom"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeTransform, "Transform"},
		{TypeQuadraticCurve, "QuadraticCurve"},
		{TypeBitmapRect, "BitmapRect"},
		{TypeEndLayer, "EndLayer"},
		{Type(200), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("Type(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestRecordTypes(t *testing.T) {
	tests := []struct {
		rec  Record
		want Type
	}{
		{Transform(gg.Identity()), TypeTransform},
		{Move(1, 2), TypeMove},
		{Line(1, 2), TypeLine},
		{Curve(1, 2, 3, 4), TypeQuadraticCurve},
		{BeginPath(), TypeBeginPath},
		{Fill(Solid(gg.Red)), TypeFill},
		{Stroke(Solid(gg.Red)), TypeStroke},
		{Bitmap(image.NewRGBA(image.Rect(0, 0, 1, 1)), 0, 0, nil), TypeBitmap},
		{BitmapRectRecord{}, TypeBitmapRect},
		{Text("x", &TextStyle{}), TypeText},
		{ClearColor(gg.Blue), TypeClearColor},
		{Layer(), TypeLayer},
		{EndLayer(), TypeEndLayer},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := tt.rec.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
			if tt.rec.Dynamic() {
				t.Error("literal record reports Dynamic")
			}
		})
	}
}

func TestDynamicRecords(t *testing.T) {
	pt := NewRef(gg.Pt(1, 1))
	tests := []struct {
		name string
		rec  Record
	}{
		{"transform", TransformRecord{Matrix: Dyn(NewRef(gg.Identity()))}},
		{"move", MoveAt(Dyn(pt))},
		{"line", LineAt(Dyn(pt))},
		{"curve control", QuadraticCurveRecord{Control: Dyn(pt), Point: Lit(gg.Pt(0, 0))}},
		{"curve point", QuadraticCurveRecord{Control: Lit(gg.Pt(0, 0)), Point: Dyn(pt)}},
		{"bitmap image", BitmapRecord{Bitmap: Dyn(NewRef[image.Image](nil))}},
		{"bitmap point", BitmapRecord{Point: Dyn(pt)}},
		{"text", TextRecord{Text: Dyn(NewRef("hi"))}},
		{"clear", ClearColorRecord{Color: Dyn(NewRef(gg.Red))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.rec.Dynamic() {
				t.Error("Dynamic() = false, want true")
			}
			if !HasDynamic([]Record{BeginPath(), tt.rec}) {
				t.Error("HasDynamic() = false, want true")
			}
		})
	}
	if HasDynamic([]Record{BeginPath(), Move(0, 0)}) {
		t.Error("HasDynamic() of literal records = true")
	}
	if HasDynamic(nil) {
		t.Error("HasDynamic(nil) = true")
	}
}

func TestValue(t *testing.T) {
	lit := Lit(3)
	if lit.Get() != 3 || lit.IsDynamic() {
		t.Errorf("Lit(3) = %v dynamic=%v", lit.Get(), lit.IsDynamic())
	}

	ref := NewRef(1)
	dyn := Dyn(ref)
	if !dyn.IsDynamic() || dyn.Get() != 1 {
		t.Fatalf("Dyn = %v dynamic=%v", dyn.Get(), dyn.IsDynamic())
	}
	ref.Set(7)
	if dyn.Get() != 7 {
		t.Errorf("Dyn after Set = %v, want 7", dyn.Get())
	}

	var zero Value[string]
	if zero.Get() != "" || zero.IsDynamic() {
		t.Error("zero Value should be the literal zero")
	}
}

func TestColorTransformApply(t *testing.T) {
	ct := IdentityTransform()
	if !ct.IsIdentity() {
		t.Fatal("IdentityTransform is not identity")
	}
	c := gg.RGBA{R: 0.2, G: 0.4, B: 0.6, A: 0.8}
	if got := ct.Apply(c); got != c {
		t.Errorf("identity Apply = %+v", got)
	}

	invert := ColorTransform{
		RedMultiplier: -1, GreenMultiplier: -1, BlueMultiplier: -1, AlphaMultiplier: 1,
		RedOffset: 1, GreenOffset: 1, BlueOffset: 1,
	}
	got := invert.Apply(gg.RGB(1, 0, 0.25))
	if got.R != 0 || got.G != 1 || math.Abs(got.B-0.75) > 1e-9 || got.A != 1 {
		t.Errorf("invert Apply = %+v", got)
	}

	over := ColorTransform{RedMultiplier: 4, AlphaMultiplier: 1, AlphaOffset: -2}
	if got := over.Apply(gg.RGB(0.5, 0, 0)); got.R != 1 || got.A != 0 {
		t.Errorf("clamped Apply = %+v", got)
	}
}

func TestColorTransformApplyImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})

	swap := ColorTransform{GreenMultiplier: 0, AlphaMultiplier: 1, BlueOffset: 1}
	out := swap.ApplyImage(src)
	if got := out.RGBAAt(0, 0); got != (color.RGBA{R: 0, G: 0, B: 255, A: 255}) {
		t.Errorf("pixel 0 = %v, want blue", got)
	}
	if got := out.RGBAAt(1, 0); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("pixel 1 = %v, want blue", got)
	}
}

func TestColorTransformApplyImageTranslucent(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 50, B: 20, A: 128})

	tests := []struct {
		name string
		ct   ColorTransform
		want color.NRGBA
	}{
		{"identity", IdentityTransform(), color.NRGBA{R: 100, G: 50, B: 20, A: 128}},
		{"half red", ColorTransform{RedMultiplier: 0.5, GreenMultiplier: 1, BlueMultiplier: 1, AlphaMultiplier: 1}, color.NRGBA{R: 50, G: 50, B: 20, A: 128}},
		{"half alpha", ColorTransform{RedMultiplier: 1, GreenMultiplier: 1, BlueMultiplier: 1, AlphaMultiplier: 0.5}, color.NRGBA{R: 100, G: 50, B: 20, A: 64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.ct.ApplyImage(src)
			got := color.NRGBAModel.Convert(out.At(0, 0)).(color.NRGBA)
			if !closeNRGBA(got, tt.want, 6) {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func closeNRGBA(a, b color.NRGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v >= -tol && v <= tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestTextStyle(t *testing.T) {
	s := &TextStyle{
		Font:       Font{Name: "sans", Bold: true, Leading: 512},
		FontHeight: 20,
		Fill:       gg.Black,
	}
	if got := s.LineAdvance(); got != 30 {
		t.Errorf("LineAdvance() = %v, want 30", got)
	}
	f := s.CanvasFont()
	if f.Size != 20 || !f.Bold || f.Italic || f.Name != "sans" {
		t.Errorf("CanvasFont() = %+v", f)
	}
	if s.Color() != gg.Black || s.Shader() != nil {
		t.Error("TextStyle accessors")
	}
}

func TestShaderNames(t *testing.T) {
	if (&ColorTransformShader{}).ShaderName() != "ColorTransform" {
		t.Error("ColorTransformShader name")
	}
	if (&MaskShader{}).ShaderName() != "Mask" {
		t.Error("MaskShader name")
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	b.Clear(gg.White)
	b.Rect(geom.R(1, 2, 3, 4))
	b.Fill(Solid(gg.Red))
	b.PushLayer()
	b.QuadraticTo(0, 0, 1, 1)
	b.PopLayer()

	recs := b.Records()
	want := []Type{
		TypeClearColor,
		TypeBeginPath, TypeMove, TypeLine, TypeLine, TypeLine, TypeLine,
		TypeFill, TypeLayer, TypeQuadraticCurve, TypeEndLayer,
	}
	if len(recs) != len(want) {
		t.Fatalf("len(Records()) = %d, want %d", len(recs), len(want))
	}
	for i, r := range recs {
		if r.Type() != want[i] {
			t.Errorf("record %d = %v, want %v", i, r.Type(), want[i])
		}
	}
	if m := recs[1+1].(MoveRecord); m.Point.Get() != gg.Pt(1, 2) {
		t.Errorf("first vertex = %v", m.Point.Get())
	}
	if l := recs[6].(LineRecord); l.Point.Get() != gg.Pt(1, 2) {
		t.Errorf("closing vertex = %v, want the first vertex", l.Point.Get())
	}

	recs[0] = Layer()
	if b.Records()[0].Type() != TypeClearColor {
		t.Error("Records() returned shared storage")
	}
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len after Reset = %d", b.Len())
	}
}
