package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// epsilon is the plane thickness used to classify points during splitting.
const epsilon = 1e-5

const (
	coplanar = 0
	front    = 1
	back     = 2
	spanning = front | back
)

type plane struct {
	n r3.Vec  // unit normal
	w float64 // n·p for every point p on the plane
}

func planeFrom(a, b, c r3.Vec) (plane, bool) {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	l := r3.Norm(n)
	if l < 1e-12 {
		return plane{}, false
	}
	n = axial(r3.Scale(1/l, n))
	return plane{n: n, w: r3.Dot(n, a)}, true
}

// axial returns the unit vector n with exact components when it is
// within rounding of a coordinate axis.
func axial(n r3.Vec) r3.Vec {
	const tol = 1e-12
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ay < tol && az < tol:
		return r3.Vec{X: math.Copysign(1, n.X)}
	case ax < tol && az < tol:
		return r3.Vec{Y: math.Copysign(1, n.Y)}
	case ax < tol && ay < tol:
		return r3.Vec{Z: math.Copysign(1, n.Z)}
	}
	return n
}

// onPlane moves v onto p along the axis p is normal to. Other planes
// leave v unchanged.
func (p plane) onPlane(v r3.Vec) r3.Vec {
	switch {
	case p.n.Y == 0 && p.n.Z == 0:
		v.X = p.w * p.n.X
	case p.n.X == 0 && p.n.Z == 0:
		v.Y = p.w * p.n.Y
	case p.n.X == 0 && p.n.Y == 0:
		v.Z = p.w * p.n.Z
	}
	return v
}

func (p plane) flipped() plane { return plane{n: r3.Scale(-1, p.n), w: -p.w} }

// polygon is a planar convex polygon with counter clockwise vertices
// seen from the side its plane normal points to.
type polygon struct {
	v []r3.Vec
	p plane
}

// newPolygon returns a polygon on the plane defined by its vertices.
// It returns false when fewer than 3 vertices are given or they are collinear.
func newPolygon(v []r3.Vec) (polygon, bool) {
	if len(v) < 3 {
		return polygon{}, false
	}
	// Newell's method tolerates nearly collinear leading vertices.
	var n r3.Vec
	for i := range v {
		a, b := v[i], v[(i+1)%len(v)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	l := r3.Norm(n)
	if l < 1e-12 {
		return polygon{}, false
	}
	n = axial(r3.Scale(1/l, n))
	return polygon{v: v, p: plane{n: n, w: r3.Dot(n, v[0])}}, true
}

func (poly polygon) flipped() polygon {
	v := make([]r3.Vec, len(poly.v))
	for i := range poly.v {
		v[len(v)-1-i] = poly.v[i]
	}
	return polygon{v: v, p: poly.p.flipped()}
}

func (poly polygon) translated(d r3.Vec) polygon {
	v := make([]r3.Vec, len(poly.v))
	for i := range poly.v {
		v[i] = r3.Add(poly.v[i], d)
	}
	return polygon{v: v, p: plane{n: poly.p.n, w: poly.p.w + r3.Dot(poly.p.n, d)}}
}

func (poly polygon) scaled(k float64) polygon {
	v := make([]r3.Vec, len(poly.v))
	for i := range poly.v {
		v[i] = r3.Scale(k, poly.v[i])
	}
	return polygon{v: v, p: plane{n: poly.p.n, w: poly.p.w * k}}
}

// area returns the polygon area.
func (poly polygon) area() float64 {
	var s r3.Vec
	for i := range poly.v {
		s = r3.Add(s, r3.Cross(poly.v[i], poly.v[(i+1)%len(poly.v)]))
	}
	return math.Abs(r3.Dot(s, poly.p.n)) / 2
}

// split classifies poly against p and appends it, or its pieces, to the
// matching output slices. Coplanar polygons go to coFront or coBack
// depending on whether they face the same way as p.
func (p plane) split(poly polygon, coFront, coBack, fr, bk *[]polygon) {
	var kind int
	types := make([]int, len(poly.v))
	for i, v := range poly.v {
		t := r3.Dot(p.n, v) - p.w
		typ := coplanar
		if t < -epsilon {
			typ = back
		} else if t > epsilon {
			typ = front
		}
		kind |= typ
		types[i] = typ
	}
	switch kind {
	case coplanar:
		if r3.Dot(p.n, poly.p.n) > 0 {
			*coFront = append(*coFront, poly)
		} else {
			*coBack = append(*coBack, poly)
		}
	case front:
		*fr = append(*fr, poly)
	case back:
		*bk = append(*bk, poly)
	case spanning:
		var f, b []r3.Vec
		n := len(poly.v)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := poly.v[i], poly.v[j]
			if ti != back {
				f = append(f, vi)
			}
			if ti != front {
				b = append(b, vi)
			}
			if ti|tj == spanning {
				t := (p.w - r3.Dot(p.n, vi)) / r3.Dot(p.n, r3.Sub(vj, vi))
				v := p.onPlane(r3.Add(vi, r3.Scale(t, r3.Sub(vj, vi))))
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*fr = append(*fr, polygon{v: f, p: poly.p})
		}
		if len(b) >= 3 {
			*bk = append(*bk, polygon{v: b, p: poly.p})
		}
	}
}
