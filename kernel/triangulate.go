package kernel

import (
	"math"

	"github.com/soypat/partgen/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// cleanLoop removes consecutive duplicate vertices, including a closing
// vertex equal to the first.
func cleanLoop(v []r3.Vec) []r3.Vec {
	const tol = 1e-9
	out := make([]r3.Vec, 0, len(v))
	for _, p := range v {
		if len(out) > 0 && d3.EqualWithin(out[len(out)-1], p, tol) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && d3.EqualWithin(out[0], out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}
	return out
}

// projector maps points of a plane with normal n to 2D coordinates by
// dropping the dominant axis. sign is positive when counter clockwise
// loops around n stay counter clockwise after projection.
type projector struct {
	axis int
	sign float64
}

func newProjector(n r3.Vec) projector {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		return projector{axis: 0, sign: math.Copysign(1, n.X)}
	case ay >= az:
		return projector{axis: 1, sign: math.Copysign(1, n.Y)}
	default:
		return projector{axis: 2, sign: math.Copysign(1, n.Z)}
	}
}

func (pr projector) project(v r3.Vec) (float64, float64) {
	switch pr.axis {
	case 0:
		return v.Y, v.Z
	case 1:
		return v.Z, v.X
	default:
		return v.X, v.Y
	}
}

// turn returns the signed doubled area of the 2D triangle abc, positive
// for counter clockwise corners in the oriented projection.
func (pr projector) turn(a, b, c r3.Vec) float64 {
	ax, ay := pr.project(a)
	bx, by := pr.project(b)
	cx, cy := pr.project(c)
	return pr.sign * ((bx-ax)*(cy-ay) - (by-ay)*(cx-ax))
}

// touchesTriangle reports whether p lies inside triangle abc or on its
// boundary.
func (pr projector) touchesTriangle(p, a, b, c r3.Vec) bool {
	const tol = 1e-12
	return pr.turn(a, b, p) >= -tol && pr.turn(b, c, p) >= -tol && pr.turn(c, a, p) >= -tol
}

// isConvex reports whether every corner of the loop turns the same way as n.
func isConvex(v []r3.Vec, n r3.Vec) bool {
	pr := newProjector(n)
	for i := range v {
		if pr.turn(v[(i+len(v)-1)%len(v)], v[i], v[(i+1)%len(v)]) < -1e-12 {
			return false
		}
	}
	return true
}

// earClip triangulates a simple planar loop oriented counter clockwise
// around n. A corner is clipped only when no other vertex touches its
// triangle, so reflex vertices on a candidate diagonal block it.
// It returns false when the loop cannot be triangulated without losing area.
func earClip(v []r3.Vec, n r3.Vec) ([][3]r3.Vec, bool) {
	const tol = 1e-12
	pr := newProjector(n)
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	var tris [][3]r3.Vec
	for len(idx) > 3 {
		m := len(idx)
		ear := -1
		for i := 0; i < m && ear < 0; i++ {
			a, b, c := v[idx[(i+m-1)%m]], v[idx[i]], v[idx[(i+1)%m]]
			if pr.turn(a, b, c) <= tol {
				continue
			}
			ok := true
			for j := 0; j < m && ok; j++ {
				if j == i || j == (i+m-1)%m || j == (i+1)%m {
					continue
				}
				p := v[idx[j]]
				if d3.EqualWithin(p, a, 1e-9) || d3.EqualWithin(p, b, 1e-9) || d3.EqualWithin(p, c, 1e-9) {
					continue
				}
				ok = !pr.touchesTriangle(p, a, b, c)
			}
			if ok {
				ear = i
			}
		}
		if ear < 0 {
			// Only a straight corner may be dropped; it encloses no area.
			for i := 0; i < m && ear < 0; i++ {
				if math.Abs(pr.turn(v[idx[(i+m-1)%m]], v[idx[i]], v[idx[(i+1)%m]])) <= tol {
					ear = i
				}
			}
			if ear < 0 {
				return nil, false
			}
			idx = append(idx[:ear], idx[ear+1:]...)
			continue
		}
		tris = append(tris, [3]r3.Vec{v[idx[(ear+m-1)%m]], v[idx[ear]], v[idx[(ear+1)%m]]})
		idx = append(idx[:ear], idx[ear+1:]...)
	}
	if pr.turn(v[idx[0]], v[idx[1]], v[idx[2]]) > tol {
		tris = append(tris, [3]r3.Vec{v[idx[0]], v[idx[1]], v[idx[2]]})
	}
	return tris, true
}

// triangles splits the polygon into triangles. Strictly convex polygons
// are fanned. Polygons with straight corners, such as those left by
// edge splitting, are ear clipped so no zero area triangles appear.
func (poly polygon) triangles() [][3]r3.Vec {
	pr := newProjector(poly.p.n)
	n := len(poly.v)
	strict := true
	for i := range poly.v {
		if pr.turn(poly.v[(i+n-1)%n], poly.v[i], poly.v[(i+1)%n]) <= 1e-12 {
			strict = false
			break
		}
	}
	if !strict {
		if tris, ok := earClip(poly.v, poly.p.n); ok {
			return tris
		}
	}
	tris := make([][3]r3.Vec, 0, n-2)
	for i := 1; i+1 < n; i++ {
		tris = append(tris, [3]r3.Vec{poly.v[0], poly.v[i], poly.v[i+1]})
	}
	return tris
}
