package assembly

import (
	"github.com/soypat/partgen/internal/d3"
	"github.com/soypat/partgen/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Layout is an ordered list of primitives at assembly coordinates.
type Layout []Primitive

// Mesh concatenates the meshes of every primitive in order.
func (l Layout) Mesh() mesh.Mesh {
	meshes := make([]mesh.Mesh, len(l))
	for i, p := range l {
		meshes[i] = p.Mesh()
	}
	return mesh.Combine(meshes...)
}

// Bounds returns the bounding box of all primitives.
func (l Layout) Bounds() d3.Box {
	bb := d3.Empty()
	for _, p := range l {
		bb = bb.Extend(p.Bounds())
	}
	return bb
}

// Height returns the highest Z reached by the layout, or zero when empty.
func (l Layout) Height() float64 {
	if len(l) == 0 {
		return 0
	}
	return l.Bounds().Max.Z
}

// Split partitions the layout at height z. Primitives entirely below z
// go to the lower part. Primitives entirely above z go to the upper part,
// which is translated by -z so it starts at the origin. Primitives
// crossing z are cut in two. Pinned primitives go to their part whole;
// pinned lower primitives keep their coordinates.
func (l Layout) Split(z float64) (lower, upper Layout) {
	down := r3.Vec{Z: -z}
	for _, p := range l {
		switch {
		case p.Pin == Lower:
			lower = append(lower, p)
		case p.Pin == Upper:
			upper = append(upper, p.Translate(down))
		case p.Top() <= z+splitTol:
			lower = append(lower, p)
		case p.Bottom() >= z-splitTol:
			upper = append(upper, p.Translate(down))
		default:
			lo, hi, _ := p.SplitZ(z)
			lower = append(lower, lo)
			upper = append(upper, hi.Translate(down))
		}
	}
	return lower, upper
}
