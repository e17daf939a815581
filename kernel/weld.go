package kernel

import (
	"math"
	"sort"

	"github.com/soypat/partgen/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// weldTol is the distance under which vertices of a boolean result merge.
const weldTol = 1e-6

type cell struct{ x, y, z int64 }

func cellOf(v r3.Vec) cell {
	return cell{
		x: int64(math.Floor(v.X / weldTol)),
		y: int64(math.Floor(v.Y / weldTol)),
		z: int64(math.Floor(v.Z / weldTol)),
	}
}

// weld repairs the polygons left by BSP clipping so that their edges
// match. Vertices closer than weldTol are merged, every vertex lying on
// another polygon's edge is inserted into that edge, and polygons
// thinner than weldTol are dropped.
func weld(polys []polygon) []polygon {
	grid := make(map[cell][]r3.Vec)
	var verts []r3.Vec
	find := func(v r3.Vec) r3.Vec {
		c := cellOf(v)
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, u := range grid[cell{c.x + dx, c.y + dy, c.z + dz}] {
						if d3.EqualWithin(u, v, weldTol) {
							return u
						}
					}
				}
			}
		}
		grid[c] = append(grid[c], v)
		verts = append(verts, v)
		return v
	}

	welded := make([]polygon, 0, len(polys))
	for _, p := range polys {
		v := make([]r3.Vec, 0, len(p.v))
		for _, u := range p.v {
			u = find(u)
			if len(v) > 0 && v[len(v)-1] == u {
				continue
			}
			v = append(v, u)
		}
		for len(v) > 1 && v[0] == v[len(v)-1] {
			v = v[:len(v)-1]
		}
		if len(v) >= 3 {
			welded = append(welded, polygon{v: v, p: p.p})
		}
	}

	sort.Slice(verts, func(i, j int) bool { return verts[i].X < verts[j].X })
	out := welded[:0]
	for _, p := range welded {
		p.v = splitEdges(p.v, verts)
		if !p.thin() {
			out = append(out, p)
		}
	}
	return out
}

// splitEdges returns loop with every vertex of verts that lies strictly
// inside one of its edges inserted in order along that edge.
// verts must be sorted by X.
func splitEdges(loop, verts []r3.Vec) []r3.Vec {
	type hit struct {
		t float64
		v r3.Vec
	}
	var (
		out  = make([]r3.Vec, 0, len(loop))
		hits []hit
	)
	for i, a := range loop {
		b := loop[(i+1)%len(loop)]
		out = append(out, a)
		d := r3.Sub(b, a)
		l2 := r3.Norm2(d)
		if l2 == 0 {
			continue
		}
		lo, hi := math.Min(a.X, b.X)-weldTol, math.Max(a.X, b.X)+weldTol
		k := sort.Search(len(verts), func(k int) bool { return verts[k].X >= lo })
		hits = hits[:0]
		for _, v := range verts[k:] {
			if v.X > hi {
				break
			}
			if v == a || v == b {
				continue
			}
			t := r3.Dot(r3.Sub(v, a), d) / l2
			if t <= 0 || t >= 1 {
				continue
			}
			if r3.Norm2(r3.Sub(v, r3.Add(a, r3.Scale(t, d)))) > weldTol*weldTol {
				continue
			}
			hits = append(hits, hit{t: t, v: v})
		}
		sort.Slice(hits, func(i, j int) bool { return hits[i].t < hits[j].t })
		for _, h := range hits {
			out = append(out, h.v)
		}
	}
	return out
}

// thin reports whether the polygon is narrower than weldTol everywhere.
func (poly polygon) thin() bool {
	var longest float64
	for i, a := range poly.v {
		longest = math.Max(longest, r3.Norm(r3.Sub(poly.v[(i+1)%len(poly.v)], a)))
	}
	return poly.area() <= weldTol*longest/2
}
