// Package mesh provides triangle lists, procedural primitives and STL
// input/output for printable parts built without a boolean kernel.
package mesh

import (
	"github.com/soypat/partgen/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is an ordered vertex triple. Counter clockwise winding seen
// from outside the solid gives the outward normal.
type Triangle [3]r3.Vec

// Normal returns the unit normal implied by the vertex order.
// Degenerate triangles return the zero vector.
func (t Triangle) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	if r3.Norm2(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Reversed returns the triangle with its vertex order reversed.
func (t Triangle) Reversed() Triangle {
	return Triangle{t[2], t[1], t[0]}
}

// Mesh is an ordered list of triangles.
type Mesh []Triangle

// Combine concatenates meshes in order. The result shares no memory
// with its arguments.
func Combine(meshes ...Mesh) Mesh {
	n := 0
	for _, m := range meshes {
		n += len(m)
	}
	out := make(Mesh, 0, n)
	for _, m := range meshes {
		out = append(out, m...)
	}
	return out
}

// Translate returns a copy of the mesh moved by v.
func (m Mesh) Translate(v r3.Vec) Mesh {
	out := make(Mesh, len(m))
	for i, t := range m {
		for j := range t {
			out[i][j] = r3.Add(t[j], v)
		}
	}
	return out
}

// MirrorZ reflects the mesh about the plane z = height/2, mapping each
// z to height-z, and reverses the vertex order of every triangle so
// normals keep pointing outward. Applying it twice with the same
// height returns the original mesh.
func (m Mesh) MirrorZ(height float64) Mesh {
	out := make(Mesh, len(m))
	for i, t := range m {
		for j := range t {
			t[j].Z = height - t[j].Z
		}
		out[i] = t.Reversed()
	}
	return out
}

// Bounds returns the axis aligned bounding box of all vertices. An
// empty mesh has an empty box.
func (m Mesh) Bounds() d3.Box {
	bb := d3.Empty()
	for _, t := range m {
		bb = bb.Include(t[0]).Include(t[1]).Include(t[2])
	}
	return bb
}

// Volume returns the signed enclosed volume using the divergence theorem.
// It is positive for closed meshes with outward winding.
func (m Mesh) Volume() float64 {
	var v float64
	for _, t := range m {
		v += r3.Dot(t[0], r3.Cross(t[1], t[2]))
	}
	return v / 6
}
