package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// boxFaces indexes the corners returned by boxCorners, two triangles per face.
var boxFaces = [12][3]int{
	{0, 2, 1}, {0, 3, 2}, // bottom
	{4, 5, 6}, {4, 6, 7}, // top
	{0, 1, 5}, {0, 5, 4}, // front
	{2, 3, 7}, {2, 7, 6}, // back
	{0, 4, 7}, {0, 7, 3}, // left
	{1, 2, 6}, {1, 6, 5}, // right
}

// Box returns a 12 triangle box of the given size. base is the center of
// the box in X and Y and its bottom in Z.
func Box(size, base r3.Vec) Mesh {
	x0, x1 := base.X-size.X/2, base.X+size.X/2
	y0, y1 := base.Y-size.Y/2, base.Y+size.Y/2
	z0, z1 := base.Z, base.Z+size.Z
	c := [8]r3.Vec{
		{X: x0, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y1, Z: z0}, {X: x0, Y: y1, Z: z0},
		{X: x0, Y: y0, Z: z1}, {X: x1, Y: y0, Z: z1}, {X: x1, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z1},
	}
	m := make(Mesh, len(boxFaces))
	for i, f := range boxFaces {
		m[i] = Triangle{c[f[0]], c[f[1]], c[f[2]]}
	}
	return m
}

// circle samples n points of a circle of radius r around (cx,cy) at height z.
// Point i is at angle 2πi/n.
func circle(r float64, base r3.Vec, z float64, n int) []r3.Vec {
	pts := make([]r3.Vec, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = r3.Vec{X: base.X + r*math.Cos(a), Y: base.Y + r*math.Sin(a), Z: z}
	}
	return pts
}

// Cylinder returns a faceted cylinder of radius r and height h with n
// segments: 4n triangles (bottom cap, top cap and two side triangles per
// segment). base is the center of the bottom cap. n <= 0 yields an empty
// mesh.
func Cylinder(r, h float64, base r3.Vec, n int) Mesh {
	if n <= 0 {
		return nil
	}
	z0, z1 := base.Z, base.Z+h
	bot := circle(r, base, z0, n)
	top := circle(r, base, z1, n)
	cb := r3.Vec{X: base.X, Y: base.Y, Z: z0}
	ct := r3.Vec{X: base.X, Y: base.Y, Z: z1}
	m := make(Mesh, 0, 4*n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		m = append(m,
			Triangle{cb, bot[j], bot[i]},
			Triangle{ct, top[i], top[j]},
			Triangle{bot[i], bot[j], top[j]},
			Triangle{bot[i], top[j], top[i]},
		)
	}
	return m
}

// Ring returns a faceted annulus extruded to height h with outer radius
// ro, inner radius ri and n segments: 8n triangles (top, bottom, outer
// wall and inner wall, two each per segment). The radii are not checked
// against each other. n <= 0 yields an empty mesh.
func Ring(ro, ri, h float64, base r3.Vec, n int) Mesh {
	if n <= 0 {
		return nil
	}
	z0, z1 := base.Z, base.Z+h
	ob := circle(ro, base, z0, n)
	ot := circle(ro, base, z1, n)
	ib := circle(ri, base, z0, n)
	it := circle(ri, base, z1, n)
	m := make(Mesh, 0, 8*n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		m = append(m,
			// top
			Triangle{ot[i], ot[j], it[j]},
			Triangle{ot[i], it[j], it[i]},
			// bottom
			Triangle{ob[j], ob[i], ib[i]},
			Triangle{ob[j], ib[i], ib[j]},
			// outer wall
			Triangle{ob[i], ob[j], ot[j]},
			Triangle{ob[i], ot[j], ot[i]},
			// inner wall
			Triangle{ib[j], ib[i], it[i]},
			Triangle{ib[j], it[i], it[j]},
		)
	}
	return m
}
