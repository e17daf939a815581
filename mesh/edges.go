package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// EdgeReport summarizes edge adjacency of a mesh. Vertices are matched
// exactly, which holds for meshes generated in this package.
type EdgeReport struct {
	// Edges is the number of distinct undirected edges.
	Edges int
	// Boundary counts edges used by a single triangle.
	Boundary int
	// NonManifold counts edges used by more than two triangles.
	NonManifold int
	// Misoriented counts edges traversed twice in the same direction.
	Misoriented int
}

// Closed reports whether every edge is shared by exactly two triangles.
func (r EdgeReport) Closed() bool { return r.Boundary == 0 && r.NonManifold == 0 }

// Oriented reports whether the mesh is closed and adjacent triangles
// traverse shared edges in opposite directions.
func (r EdgeReport) Oriented() bool { return r.Closed() && r.Misoriented == 0 }

func (r EdgeReport) String() string {
	return fmt.Sprintf("edges=%d boundary=%d non-manifold=%d misoriented=%d",
		r.Edges, r.Boundary, r.NonManifold, r.Misoriented)
}

type vkey [3]float64

type edge struct{ a, b vkey }

func key(v r3.Vec) vkey { return vkey{v.X, v.Y, v.Z} }

// Edges builds the edge adjacency report of the mesh.
func (m Mesh) Edges() EdgeReport {
	directed := make(map[edge]int, 3*len(m))
	for _, t := range m {
		for i := 0; i < 3; i++ {
			directed[edge{key(t[i]), key(t[(i+1)%3])}]++
		}
	}
	var r EdgeReport
	seen := make(map[edge]bool, len(directed))
	for e, n := range directed {
		if seen[e] {
			continue
		}
		rev := edge{e.b, e.a}
		seen[e], seen[rev] = true, true
		r.Edges++
		back := directed[rev]
		switch total := n + back; {
		case total == 1:
			r.Boundary++
		case total > 2:
			r.NonManifold++
		case n == 2 || back == 2:
			r.Misoriented++
		}
	}
	return r
}
