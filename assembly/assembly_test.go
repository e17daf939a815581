package assembly

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/soypat/partgen/config"
	"github.com/soypat/partgen/internal/d3"
	"github.com/soypat/partgen/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSplitPrimitive(t *testing.T) {
	straddle := Box("a", 2, 2, 10, r3.Vec{})
	lo, hi, ok := straddle.SplitZ(4)
	if !ok {
		t.Fatal("box crossing z=4 not split")
	}
	if lo.Bottom() != 0 || lo.Top() != 4 || hi.Bottom() != 4 || hi.Top() != 10 {
		t.Errorf("split into [%g,%g] and [%g,%g]", lo.Bottom(), lo.Top(), hi.Bottom(), hi.Top())
	}
	for _, z := range []float64{0, 10, -1, 12} {
		if _, _, ok := straddle.SplitZ(z); ok {
			t.Errorf("split at z=%g should not cut the box", z)
		}
	}
}

func TestLayoutSplit(t *testing.T) {
	pinned := Box("pin", 1, 1, 6, r3.Vec{Z: 3})
	pinned.Pin = Lower
	floating := Cylinder("float", 1, 1, r3.Vec{Z: 1}, 8)
	floating.Pin = Upper
	l := Layout{
		Box("below", 1, 1, 5, r3.Vec{}),
		Box("above", 1, 1, 3, r3.Vec{Z: 5}),
		Ring("cross", 2, 1, 10, r3.Vec{X: 3}, 8),
		pinned,
		floating,
	}
	lower, upper := l.Split(5)
	if len(lower) != 3 || len(upper) != 3 {
		t.Fatalf("want 3 lower and 3 upper primitives, got %d and %d", len(lower), len(upper))
	}
	check := func(p Primitive, group string, bottom, top float64) {
		t.Helper()
		if p.Group != group || p.Bottom() != bottom || p.Top() != top {
			t.Errorf("want %s in [%g,%g], got %s in [%g,%g]", group, bottom, top, p.Group, p.Bottom(), p.Top())
		}
	}
	check(lower[0], "below", 0, 5)
	check(lower[1], "cross", 0, 5)
	check(lower[2], "pin", 3, 9)
	check(upper[0], "above", 0, 3)
	check(upper[1], "cross", 0, 5)
	check(upper[2], "float", -4, -3)
	if upper[1].Base.X != 3 || upper[1].Inner != 1 {
		t.Errorf("split ring lost its placement: %+v", upper[1])
	}
}

func TestPrimitivesClosed(t *testing.T) {
	for _, rev := range []Revision{Rev1, Rev2} {
		l, err := CoolingStand(DefaultDimensions(), rev)
		if err != nil {
			t.Fatal(err)
		}
		for i, p := range l {
			if r := p.Mesh().Edges(); !r.Oriented() {
				t.Errorf("%v primitive %d (%s %s): %v", rev, i, p.Kind, p.Group, r)
			}
		}
	}
}

func TestCoolingStandRev1(t *testing.T) {
	d := DefaultDimensions()
	if got := d.LegX(); math.Abs(got-94.2) > 1e-9 {
		t.Errorf("leg x: want 94.2, got %g", got)
	}
	if got := d.SlotWidth(); math.Abs(got-46.7) > 1e-9 {
		t.Errorf("slot width: want 46.7, got %g", got)
	}
	parts, err := BuildParts(d, Rev1)
	if err != nil {
		t.Fatal(err)
	}
	// 23 boxes and 8 bosses of 16 segments.
	if n := len(parts.Full); n != 23*12+8*4*16 {
		t.Errorf("full model: got %d triangles", n)
	}
	if n := len(parts.Lower); n != 10*12 {
		t.Errorf("lower part: got %d triangles", n)
	}
	if n := len(parts.Upper); n != 17*12+8*4*16 {
		t.Errorf("upper part: got %d triangles", n)
	}
	if bb := parts.Full.Bounds(); bb.Min.Z != 0 || math.Abs(bb.Max.Z-290) > 1e-9 {
		t.Errorf("full model spans z [%g,%g], want [0,290]", bb.Min.Z, bb.Max.Z)
	}
	if bb := parts.Lower.Bounds(); bb.Min.Z != 0 || bb.Max.Z != 91 {
		t.Errorf("lower part spans z [%g,%g], want [0,91]", bb.Min.Z, bb.Max.Z)
	}
	if parts.UpperHeight != 215 {
		t.Errorf("upper height: want 215, got %g", parts.UpperHeight)
	}
	if parts.LowerHeight != 91 {
		t.Errorf("lower height: want 91, got %g", parts.LowerHeight)
	}
	if h := parts.Layout.Height(); math.Abs(h-290) > 1e-9 {
		t.Errorf("layout height: want 290, got %g", h)
	}

	l, _ := CoolingStand(d, Rev1)
	_, upper := l.Split(d.SplitZ)
	var legs, braces int
	for _, p := range upper {
		switch {
		case p.Group == GroupLegs:
			legs++
			if p.Bottom() != 0 || p.Top() != 80 {
				t.Errorf("upper leg spans [%g,%g], want [0,80]", p.Bottom(), p.Top())
			}
		case p.Group == GroupShelf && p.Size.Y == 2*d.RailOffset:
			braces++
			if p.Bottom() != 82.5 {
				t.Errorf("brace at %g, want 82.5", p.Bottom())
			}
		}
	}
	if legs != 4 || braces != 2 {
		t.Errorf("upper part has %d legs and %d braces", legs, braces)
	}
}

func TestCoolingStandRev2(t *testing.T) {
	d := DefaultDimensions()
	l, err := CoolingStand(d, Rev2)
	if err != nil {
		t.Fatal(err)
	}
	rings := 0
	for _, p := range l {
		if p.Kind == KindRing {
			rings++
			if p.Radius != 42 || p.Inner != 38 || p.Bottom() != 160 {
				t.Errorf("fan ring %+v", p)
			}
		}
		if p.Kind == KindCylinder && math.Abs(p.Radius-5.15) > 1e-12 {
			t.Errorf("boss radius %g, want 5.15", p.Radius)
		}
	}
	if rings != 2 {
		t.Errorf("want 2 fan rings, got %d", rings)
	}

	parts, err := BuildParts(d, Rev2)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(parts.Full); n != 23*12+8*4*16+2*8*48 {
		t.Errorf("full model: got %d triangles", n)
	}
	if parts.UpperHeight != 210 {
		t.Fatalf("upper height: want 210, got %g", parts.UpperHeight)
	}
	bb := parts.Upper.Bounds()
	if bb.Min.Z != 0 || bb.Max.Z != 210 {
		t.Errorf("flipped upper spans z [%g,%g], want [0,210]", bb.Min.Z, bb.Max.Z)
	}

	_, upper := l.Split(d.SplitZ)
	assembled := upper.Mesh()
	if !equalMesh(parts.Upper.MirrorZ(parts.UpperHeight), assembled) {
		t.Error("flipping the printed upper part back does not restore the assembly orientation")
	}
	if v, want := parts.Upper.Volume(), assembled.Volume(); v <= 0 || math.Abs(v-want) > 1e-6*want {
		t.Errorf("flipped volume %g, assembled %g", v, want)
	}
	for _, p := range upper {
		if p.Group == GroupLip && p.Bottom() != 140 {
			t.Errorf("lip at local z %g, want 140", p.Bottom())
		}
	}
}

func equalMesh(a, b mesh.Mesh) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		for j := range a[i] {
			if !d3.EqualWithin(a[i][j], b[i][j], 1e-9) {
				return false
			}
		}
	}
	return true
}

func TestBadDimensions(t *testing.T) {
	d := DefaultDimensions()
	d.SplitZ = 150
	d.LegWidth = 0
	_, err := CoolingStand(d, Rev2)
	if err == nil {
		t.Fatal("invalid dimensions accepted")
	}
	for _, want := range []string{"split_z", "leg_width"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
	if _, err := CoolingStand(DefaultDimensions(), 3); !errors.Is(err, ErrRevision) {
		t.Errorf("want ErrRevision, got %v", err)
	}
}

func TestConfigOverlay(t *testing.T) {
	c := DefaultConfig()
	err := config.Decode("revision = 1\n\n[dimensions]\nsplit_z = 70\nring_segments = 64\n", &c)
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultDimensions()
	want.SplitZ = 70
	want.RingSegments = 64
	if c.Revision != Rev1 || c.Dimensions != want {
		t.Errorf("decoded %+v", c)
	}
	c = DefaultConfig()
	if err := config.Decode("[dimensions]\nsplit = 70\n", &c); !errors.Is(err, config.ErrUnknownKeys) {
		t.Errorf("want ErrUnknownKeys, got %v", err)
	}
}
