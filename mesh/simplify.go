package mesh

import (
	"github.com/fogleman/simplify"
	"gonum.org/v1/gonum/spatial/r3"
)

// Decimate reduces the triangle count of m to roughly factor*len(m) using
// quadric error simplification. factor >= 1 returns a copy of m.
func Decimate(m Mesh, factor float64) Mesh {
	if factor >= 1 || len(m) == 0 {
		return Combine(m)
	}
	tris := make([]*simplify.Triangle, len(m))
	for i, t := range m {
		tris[i] = simplify.NewTriangle(svec(t[0]), svec(t[1]), svec(t[2]))
	}
	out := simplify.NewMesh(tris).Simplify(factor)
	res := make(Mesh, 0, len(out.Triangles))
	for _, t := range out.Triangles {
		res = append(res, Triangle{rvec(t.V1), rvec(t.V2), rvec(t.V3)})
	}
	return res
}

func svec(v r3.Vec) simplify.Vector { return simplify.Vector{X: v.X, Y: v.Y, Z: v.Z} }

func rvec(v simplify.Vector) r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
