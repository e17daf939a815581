package kernel_test

import (
	"errors"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	"github.com/soypat/partgen/internal/d3"
	"github.com/soypat/partgen/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func box(t *testing.T, corner, size r3.Vec) kernel.Solid {
	t.Helper()
	s, err := kernel.Box(corner, size)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// sdfxBox returns the deadsy/sdfx equivalent of kernel.Box.
func sdfxBox(t *testing.T, corner, size r3.Vec) sdf.SDF3 {
	t.Helper()
	b, err := sdf.Box3D(sdf.V3{X: size.X, Y: size.Y, Z: size.Z}, 0)
	if err != nil {
		t.Fatal(err)
	}
	c := r3.Add(corner, r3.Scale(0.5, size))
	return sdf.Transform3D(b, sdf.Translate3d(sdf.V3{X: c.X, Y: c.Y, Z: c.Z}))
}

func TestBoxVolume(t *testing.T) {
	s := box(t, r3.Vec{X: -21, Y: -6}, r3.Vec{X: 42, Y: 12, Z: 0.8})
	if got, want := s.Volume(), 42*12*0.8; math.Abs(got-want) > tol {
		t.Errorf("volume: want %g, got %g", want, got)
	}
	if rep := s.Mesh().Edges(); !rep.Oriented() {
		t.Errorf("box mesh: %s", rep)
	}
	if _, err := kernel.Box(r3.Vec{}, r3.Vec{X: 1, Y: 0, Z: 1}); err == nil {
		t.Error("expected error for zero size box")
	}
}

func TestBooleans(t *testing.T) {
	flangeCorner, flangeSize := r3.Vec{X: -21, Y: -6}, r3.Vec{X: 42, Y: 12, Z: 0.8}
	insertCorner, insertSize := r3.Vec{X: -19.9, Y: -4.9, Z: 0.8}, r3.Vec{X: 39.8, Y: 9.8, Z: 2}
	flange := box(t, flangeCorner, flangeSize)
	insert := box(t, insertCorner, insertSize)
	for _, test := range []struct {
		name   string
		op     func(a, b kernel.Solid) (kernel.Solid, error)
		a, b   kernel.Solid
		volume float64
		bounds d3.Box
	}{
		{
			name:   "union stacked",
			op:     kernel.Union,
			a:      flange,
			b:      insert,
			volume: 42*12*0.8 + 39.8*9.8*2,
			bounds: d3.Box{Min: r3.Vec{X: -21, Y: -6}, Max: r3.Vec{X: 21, Y: 6, Z: 2.8}},
		},
		{
			name:   "union overlapping",
			op:     kernel.Union,
			a:      box(t, r3.Vec{}, r3.Vec{X: 2, Y: 2, Z: 2}),
			b:      box(t, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 2, Y: 2, Z: 2}),
			volume: 16 - 1,
			bounds: d3.Box{Max: r3.Vec{X: 3, Y: 3, Z: 3}},
		},
		{
			name:   "difference slot",
			op:     kernel.Difference,
			a:      box(t, r3.Vec{X: -30}, r3.Vec{X: 60, Y: 50, Z: 20}),
			b:      box(t, r3.Vec{X: -20, Y: 37.5, Z: -5}, r3.Vec{X: 40, Y: 10, Z: 15}),
			volume: 60*50*20 - 40*10*10,
			bounds: d3.Box{Min: r3.Vec{X: -30}, Max: r3.Vec{X: 30, Y: 50, Z: 20}},
		},
		{
			name:   "difference through",
			op:     kernel.Difference,
			a:      box(t, r3.Vec{}, r3.Vec{X: 10, Y: 10, Z: 10}),
			b:      box(t, r3.Vec{X: 4, Y: -1, Z: -1}, r3.Vec{X: 2, Y: 12, Z: 12}),
			volume: 1000 - 200,
			bounds: d3.Box{Max: r3.Vec{X: 10, Y: 10, Z: 10}},
		},
		{
			name:   "intersection",
			op:     kernel.Intersect,
			a:      box(t, r3.Vec{}, r3.Vec{X: 2, Y: 2, Z: 2}),
			b:      box(t, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 2, Y: 2, Z: 2}),
			volume: 1,
			bounds: d3.Box{Min: r3.Vec{X: 1, Y: 1, Z: 1}, Max: r3.Vec{X: 2, Y: 2, Z: 2}},
		},
	} {
		got, err := test.op(test.a, test.b)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if v := got.Volume(); math.Abs(v-test.volume) > 1e-6 {
			t.Errorf("%s: volume want %g, got %g", test.name, test.volume, v)
		}
		if bb := got.Bounds(); !bb.Equals(test.bounds, 1e-9) {
			t.Errorf("%s: bounds want %+v, got %+v", test.name, test.bounds, bb)
		}
	}
	// Operands are not modified.
	if v := flange.Volume(); math.Abs(v-42*12*0.8) > tol {
		t.Errorf("operand modified, volume %g", v)
	}
}

func TestBooleanErrors(t *testing.T) {
	a := box(t, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	_, err := kernel.Union(a, kernel.Solid{})
	var opErr *kernel.OpError
	if !errors.As(err, &opErr) || !errors.Is(err, kernel.ErrEmptyOperand) {
		t.Fatalf("want empty operand OpError, got %v", err)
	}
	if opErr.Op != "union" || opErr.Error() != "boolean union operation failed: empty operand" {
		t.Errorf("unexpected message %q", opErr.Error())
	}
	far := box(t, r3.Vec{X: 5}, r3.Vec{X: 1, Y: 1, Z: 1})
	if _, err := kernel.Intersect(a, far); !errors.Is(err, kernel.ErrEmptyResult) {
		t.Errorf("disjoint intersection: want ErrEmptyResult, got %v", err)
	}
	big := box(t, r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 3, Y: 3, Z: 3})
	if _, err := kernel.Difference(a, big); !errors.Is(err, kernel.ErrEmptyResult) {
		t.Errorf("swallowed difference: want ErrEmptyResult, got %v", err)
	}
}

func TestFromFacesConcave(t *testing.T) {
	// L shaped prism: 2x2 square minus the 1x1 corner, extruded 1 along Z.
	l := []r3.Vec{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}
	var faces [][]r3.Vec
	bottom := make([]r3.Vec, len(l))
	top := make([]r3.Vec, len(l))
	for i := range l {
		bottom[len(l)-1-i] = l[i]
		top[i] = r3.Add(l[i], r3.Vec{Z: 1})
	}
	faces = append(faces, bottom, top)
	for i := range l {
		a, b := l[i], l[(i+1)%len(l)]
		faces = append(faces, []r3.Vec{a, b, r3.Add(b, r3.Vec{Z: 1}), r3.Add(a, r3.Vec{Z: 1})})
	}
	s, err := kernel.FromFaces(faces)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Volume(); math.Abs(got-3) > tol {
		t.Errorf("volume: want 3, got %g", got)
	}
	if got := s.Area(); math.Abs(got-(2*3+8)) > tol {
		t.Errorf("area: want 14, got %g", got)
	}
	if s.Contains(r3.Vec{X: 1.5, Y: 1.5, Z: 0.5}) {
		t.Error("notch reported inside")
	}
	if !s.Contains(r3.Vec{X: 0.5, Y: 1.5, Z: 0.5}) {
		t.Error("arm reported outside")
	}
}

func TestTranslateScale(t *testing.T) {
	a := box(t, r3.Vec{}, r3.Vec{X: 1, Y: 2, Z: 3})
	b := a.Translate(r3.Vec{Z: -75})
	if bb := b.Bounds(); bb.Min.Z != -75 || bb.Max.Z != -72 {
		t.Errorf("translated bounds %+v", bb)
	}
	c, err := a.Scale(2)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Volume(); math.Abs(got-48) > tol {
		t.Errorf("scaled volume: want 48, got %g", got)
	}
	if _, err := a.Scale(0); err == nil {
		t.Error("expected error for zero scale")
	}
}

// TestAgainstSDFX compares point membership of boolean results with
// deadsy/sdfx signed distance functions of the same operations.
func TestAgainstSDFX(t *testing.T) {
	type operand struct{ corner, size r3.Vec }
	flange := operand{r3.Vec{X: -21, Y: -6}, r3.Vec{X: 42, Y: 12, Z: 0.8}}
	insert := operand{r3.Vec{X: -19.9, Y: -4.9, Z: 0.8}, r3.Vec{X: 39.8, Y: 9.8, Z: 2}}
	block := operand{r3.Vec{X: -30}, r3.Vec{X: 60, Y: 50, Z: 20}}
	slot := operand{r3.Vec{X: -20, Y: 37.5, Z: -5}, r3.Vec{X: 40, Y: 10, Z: 15}}
	for _, test := range []struct {
		name   string
		a, b   operand
		op     func(a, b kernel.Solid) (kernel.Solid, error)
		ref    func(a, b sdf.SDF3) sdf.SDF3
		bounds d3.Box
	}{
		{"union", flange, insert, kernel.Union, func(a, b sdf.SDF3) sdf.SDF3 { return sdf.Union3D(a, b) },
			d3.Box{Min: r3.Vec{X: -21, Y: -6}, Max: r3.Vec{X: 21, Y: 6, Z: 2.8}}},
		{"difference", block, slot, kernel.Difference, sdf.Difference3D,
			d3.Box{Min: r3.Vec{X: -30}, Max: r3.Vec{X: 30, Y: 50, Z: 20}}},
		{"intersection", block, slot, kernel.Intersect, sdf.Intersect3D,
			d3.Box{Min: r3.Vec{X: -20, Y: 37.5}, Max: r3.Vec{X: 20, Y: 47.5, Z: 10}}},
	} {
		got, err := test.op(box(t, test.a.corner, test.a.size), box(t, test.b.corner, test.b.size))
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		ref := test.ref(sdfxBox(t, test.a.corner, test.a.size), sdfxBox(t, test.b.corner, test.b.size))
		bb := got.Bounds()
		if !bb.Equals(test.bounds, 1e-9) {
			t.Errorf("%s: bounds %+v, want %+v", test.name, bb, test.bounds)
		}
		// sdfx only keeps tight bounding boxes for unions.
		if rb := ref.BoundingBox(); test.name == "union" && !bb.Equals(d3.Box{
			Min: r3.Vec{X: rb.Min.X, Y: rb.Min.Y, Z: rb.Min.Z},
			Max: r3.Vec{X: rb.Max.X, Y: rb.Max.Y, Z: rb.Max.Z},
		}, 1e-9) {
			t.Errorf("%s: bounds %+v, sdfx %+v", test.name, bb, rb)
		}
		const n = 13
		lo, sz := bb.Min, bb.Size()
		mismatches := 0
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				for k := 0; k < n; k++ {
					p := r3.Vec{
						X: lo.X - 1 + (sz.X+2)*(float64(i)+0.37)/n,
						Y: lo.Y - 1 + (sz.Y+2)*(float64(j)+0.41)/n,
						Z: lo.Z - 1 + (sz.Z+2)*(float64(k)+0.43)/n,
					}
					d := ref.Evaluate(sdf.V3{X: p.X, Y: p.Y, Z: p.Z})
					if math.Abs(d) < 1e-6 {
						continue
					}
					if got.Contains(p) != (d < 0) {
						mismatches++
					}
				}
			}
		}
		if mismatches > 0 {
			t.Errorf("%s: %d sample points disagree with sdfx", test.name, mismatches)
		}
	}
}

// TestBooleanMeshClosed checks that boolean results triangulate to
// watertight meshes: clipped faces meeting another face's edge midway
// must share that vertex.
func TestBooleanMeshClosed(t *testing.T) {
	flange := box(t, r3.Vec{X: -21, Y: -6}, r3.Vec{X: 42, Y: 12, Z: 0.8})
	insert := box(t, r3.Vec{X: -19.9, Y: -4.9, Z: 0.8}, r3.Vec{X: 39.8, Y: 9.8, Z: 2})
	block := box(t, r3.Vec{X: -30}, r3.Vec{X: 60, Y: 50, Z: 20})
	slot := box(t, r3.Vec{X: -20, Y: 37.5, Z: -5}, r3.Vec{X: 40, Y: 10, Z: 15})
	hole := box(t, r3.Vec{X: -5, Y: 10, Z: 5}, r3.Vec{X: 10, Y: 10, Z: 30})
	for _, test := range []struct {
		name   string
		op     func(a, b kernel.Solid) (kernel.Solid, error)
		a, b   kernel.Solid
		volume float64
	}{
		{"union", kernel.Union, flange, insert, 42*12*0.8 + 39.8*9.8*2},
		{"difference", kernel.Difference, block, slot, 60*50*20 - 40*10*10},
		{"blind hole", kernel.Difference, block, hole, 60*50*20 - 10*10*15},
		{"intersection", kernel.Intersect, block, slot, 40 * 10 * 10},
	} {
		got, err := test.op(test.a, test.b)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		m := got.Mesh()
		if rep := m.Edges(); !rep.Closed() {
			t.Errorf("%s: mesh not closed: %s", test.name, rep)
		}
		for i, tri := range m {
			if tri.Normal() == (r3.Vec{}) {
				t.Errorf("%s: triangle %d has zero area: %v", test.name, i, tri)
				break
			}
		}
		if v := m.Volume(); math.Abs(v-test.volume) > 1e-6 {
			t.Errorf("%s: mesh volume %g, want %g", test.name, v, test.volume)
		}
	}
}
