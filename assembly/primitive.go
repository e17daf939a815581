// Package assembly describes multi-part prints as lists of primitive
// descriptors and splits them into printable parts with pure coordinate
// transforms.
package assembly

import (
	"fmt"

	"github.com/soypat/partgen/internal/d3"
	"github.com/soypat/partgen/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind is the shape of a primitive descriptor.
type Kind int

const (
	KindBox Kind = iota
	KindCylinder
	KindRing
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindCylinder:
		return "cylinder"
	case KindRing:
		return "ring"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Part selects one of the printed parts of a split layout.
type Part int

const (
	// Unpinned descriptors are assigned by their height.
	Unpinned Part = iota
	Lower
	Upper
)

// Primitive describes a Z extrusion. Base is the XY center and the Z
// bottom of the shape.
type Primitive struct {
	Kind  Kind
	Group string
	Base  r3.Vec
	// Size holds the box extents. Only Size.Z is used by cylinders and rings.
	Size r3.Vec
	// Radius is the cylinder radius or the outer ring radius.
	Radius float64
	// Inner is the inner ring radius.
	Inner    float64
	Segments int
	Pin      Part
}

// Box returns a box descriptor of the given extents.
func Box(group string, w, d, h float64, base r3.Vec) Primitive {
	return Primitive{Kind: KindBox, Group: group, Base: base, Size: r3.Vec{X: w, Y: d, Z: h}}
}

// Cylinder returns a cylinder descriptor with n segments.
func Cylinder(group string, r, h float64, base r3.Vec, n int) Primitive {
	return Primitive{Kind: KindCylinder, Group: group, Base: base, Size: r3.Vec{X: 2 * r, Y: 2 * r, Z: h}, Radius: r, Segments: n}
}

// Ring returns an annulus descriptor with n segments.
func Ring(group string, ro, ri, h float64, base r3.Vec, n int) Primitive {
	return Primitive{Kind: KindRing, Group: group, Base: base, Size: r3.Vec{X: 2 * ro, Y: 2 * ro, Z: h}, Radius: ro, Inner: ri, Segments: n}
}

// Bottom returns the lowest Z of the primitive.
func (p Primitive) Bottom() float64 { return p.Base.Z }

// Top returns the highest Z of the primitive.
func (p Primitive) Top() float64 { return p.Base.Z + p.Size.Z }

// Bounds returns the bounding box of the primitive.
func (p Primitive) Bounds() d3.Box {
	size := p.Size
	if p.Kind != KindBox {
		size.X, size.Y = 2*p.Radius, 2*p.Radius
	}
	corner := r3.Vec{X: p.Base.X - size.X/2, Y: p.Base.Y - size.Y/2, Z: p.Base.Z}
	return d3.CornerBox(corner, size)
}

// Mesh generates the triangles of the primitive.
func (p Primitive) Mesh() mesh.Mesh {
	switch p.Kind {
	case KindCylinder:
		return mesh.Cylinder(p.Radius, p.Size.Z, p.Base, p.Segments)
	case KindRing:
		return mesh.Ring(p.Radius, p.Inner, p.Size.Z, p.Base, p.Segments)
	}
	return mesh.Box(p.Size, p.Base)
}

// Translate returns the primitive moved by v.
func (p Primitive) Translate(v r3.Vec) Primitive {
	p.Base = r3.Add(p.Base, v)
	return p
}

// SplitZ cuts the extrusion at height z. ok is false when z does not lie
// strictly inside the primitive, in which case lower and upper are
// zero values.
func (p Primitive) SplitZ(z float64) (lower, upper Primitive, ok bool) {
	if z <= p.Bottom()+splitTol || z >= p.Top()-splitTol {
		return Primitive{}, Primitive{}, false
	}
	lower, upper = p, p
	lower.Size.Z = z - p.Bottom()
	upper.Base.Z = z
	upper.Size.Z = p.Top() - z
	return lower, upper, true
}

const splitTol = 1e-9
