// Package kernel implements exact boolean operations on closed
// polyhedral solids with binary space partitioning trees.
package kernel

import (
	"errors"
	"fmt"

	"github.com/soypat/partgen/internal/d3"
	"github.com/soypat/partgen/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Solid is a closed polyhedron stored as planar convex boundary polygons
// wound counter clockwise seen from outside. The zero value is the empty solid.
// Solids are immutable; operations return new values.
type Solid struct {
	polys []polygon
}

// Box returns an axis aligned box with its minimum corner at corner.
func Box(corner, size r3.Vec) (Solid, error) {
	if d3.LTEZero(size) {
		return Solid{}, fmt.Errorf("box size must be positive, got %v", size)
	}
	m := mesh.Box(size, r3.Vec{X: corner.X + size.X/2, Y: corner.Y + size.Y/2, Z: corner.Z})
	return FromMesh(m)
}

// FromMesh builds a solid from a closed, outward wound triangle mesh.
// Degenerate triangles are skipped. Closure is not checked.
func FromMesh(m mesh.Mesh) (Solid, error) {
	var s Solid
	for _, t := range m {
		if p, ok := newPolygon([]r3.Vec{t[0], t[1], t[2]}); ok {
			s.polys = append(s.polys, p)
		}
	}
	if len(s.polys) == 0 {
		return Solid{}, ErrNoFaces
	}
	return s, nil
}

// FromFaces builds a solid from planar face loops wound counter clockwise
// seen from outside. Non-convex faces are triangulated.
func FromFaces(faces [][]r3.Vec) (Solid, error) {
	var s Solid
	for i, f := range faces {
		loop := cleanLoop(f)
		p, ok := newPolygon(loop)
		if !ok {
			continue
		}
		for _, v := range loop {
			if d := r3.Dot(p.p.n, v) - p.p.w; d > 100*epsilon || d < -100*epsilon {
				return Solid{}, fmt.Errorf("face %d is not planar (deviation %g)", i, d)
			}
		}
		if isConvex(loop, p.p.n) {
			s.polys = append(s.polys, p)
			continue
		}
		tris, ok := earClip(loop, p.p.n)
		if !ok {
			return Solid{}, fmt.Errorf("face %d: %w", i, ErrTriangulate)
		}
		for _, tri := range tris {
			tri := tri // per-iteration copy: newPolygon keeps tri[:]
			if tp, ok := newPolygon(tri[:]); ok {
				s.polys = append(s.polys, tp)
			}
		}
	}
	if len(s.polys) == 0 {
		return Solid{}, ErrNoFaces
	}
	return s, nil
}

// IsEmpty reports whether the solid has no faces.
func (s Solid) IsEmpty() bool { return len(s.polys) == 0 }

// NumFaces returns the number of boundary polygons.
func (s Solid) NumFaces() int { return len(s.polys) }

// Faces returns copies of the boundary polygon loops.
func (s Solid) Faces() [][]r3.Vec {
	out := make([][]r3.Vec, len(s.polys))
	for i, p := range s.polys {
		out[i] = append([]r3.Vec(nil), p.v...)
	}
	return out
}

// Mesh triangulates the boundary polygons.
func (s Solid) Mesh() mesh.Mesh {
	var m mesh.Mesh
	for _, p := range s.polys {
		for _, t := range p.triangles() {
			m = append(m, mesh.Triangle(t))
		}
	}
	return m
}

// Bounds returns the axis aligned bounding box of the solid.
func (s Solid) Bounds() d3.Box {
	bb := d3.Empty()
	for _, p := range s.polys {
		for _, v := range p.v {
			bb = bb.Include(v)
		}
	}
	return bb
}

// Volume returns the enclosed volume.
func (s Solid) Volume() float64 {
	var vol float64
	for _, p := range s.polys {
		for i := 1; i+1 < len(p.v); i++ {
			vol += r3.Dot(p.v[0], r3.Cross(p.v[i], p.v[i+1]))
		}
	}
	return vol / 6
}

// Area returns the boundary surface area.
func (s Solid) Area() float64 {
	var a float64
	for _, p := range s.polys {
		a += p.area()
	}
	return a
}

// Translate returns the solid moved by d.
func (s Solid) Translate(d r3.Vec) Solid {
	out := Solid{polys: make([]polygon, len(s.polys))}
	for i, p := range s.polys {
		out.polys[i] = p.translated(d)
	}
	return out
}

// Scale returns the solid scaled uniformly about the origin by k.
func (s Solid) Scale(k float64) (Solid, error) {
	if k <= 0 {
		return Solid{}, errors.New("scale factor must be positive")
	}
	out := Solid{polys: make([]polygon, len(s.polys))}
	for i, p := range s.polys {
		out.polys[i] = p.scaled(k)
	}
	return out, nil
}

// Contains reports whether p lies inside the solid. Points on the
// boundary may be reported either way.
func (s Solid) Contains(p r3.Vec) bool {
	if s.IsEmpty() {
		return false
	}
	n := newNode(s.polys)
	for {
		if r3.Dot(n.plane.n, p)-n.plane.w >= 0 {
			if n.front == nil {
				return false
			}
			n = n.front
		} else {
			if n.back == nil {
				return true
			}
			n = n.back
		}
	}
}

// Union returns the solid occupying the space of a or b.
func Union(a, b Solid) (Solid, error) {
	return boolean("union", a, b, func(a, b *node) {
		a.clipTo(b)
		b.clipTo(a)
		b.invert()
		b.clipTo(a)
		b.invert()
		a.build(b.allPolygons())
	})
}

// Difference returns the solid occupying the space of a outside of b.
func Difference(a, b Solid) (Solid, error) {
	return boolean("difference", a, b, func(a, b *node) {
		a.invert()
		a.clipTo(b)
		b.clipTo(a)
		b.invert()
		b.clipTo(a)
		b.invert()
		a.build(b.allPolygons())
		a.invert()
	})
}

// Intersect returns the solid occupying the space common to a and b.
func Intersect(a, b Solid) (Solid, error) {
	return boolean("intersection", a, b, func(a, b *node) {
		a.invert()
		b.clipTo(a)
		b.invert()
		a.clipTo(b)
		b.clipTo(a)
		a.build(b.allPolygons())
		a.invert()
	})
}

func boolean(op string, a, b Solid, f func(a, b *node)) (result Solid, err error) {
	if a.IsEmpty() || b.IsEmpty() {
		return Solid{}, &OpError{Op: op, Err: ErrEmptyOperand}
	}
	defer guard(op, &err)
	na, nb := newNode(a.polys), newNode(b.polys)
	f(na, nb)
	kept := weld(na.allPolygons())
	if len(kept) == 0 {
		return Solid{}, &OpError{Op: op, Err: ErrEmptyResult}
	}
	return Solid{polys: kept}, nil
}
