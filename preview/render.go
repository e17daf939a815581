// Package preview renders images of generated parts.
package preview

import (
	"errors"
	"fmt"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/partgen/internal/d3"
	"github.com/soypat/partgen/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// View is the camera setup used to render a part. The part is fitted in
// a bi-unit cube centered at the origin before rendering.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye       r3.Vec
	Near, Far float64
	// Supersampling factor, downsampled for antialiasing.
	Scale int
	// Object and background colours as hex strings.
	Color, Background string
}

// DefaultView is an isometric view with Z up.
var DefaultView = View{
	Up:         r3.Vec{Z: 1},
	Eye:        d3.Elem(2.4), // iso view.
	Near:       1,
	Far:        10,
	Scale:      2,
	Color:      "#468966",
	Background: "#FFF8E3",
}

// ErrEmptyMesh is returned when rendering a mesh without triangles.
var ErrEmptyMesh = errors.New("nothing to render")

// Render draws m with a Phong shader into a width x height image.
func Render(m mesh.Mesh, width, height int, view View) (image.Image, error) {
	if len(m) == 0 {
		return nil, ErrEmptyMesh
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	const fovy = 30 // vertical field of view in degrees
	scale := view.Scale
	if scale < 1 {
		scale = 1
	}
	var (
		eye    = fauxV(view.Eye)
		center = fauxV(view.LookAt)
		up     = fauxV(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)
	fm := fauxMesh(m)
	// fit mesh in a bi-unit cube centered at the origin
	fm.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor(view.Background))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(view.Color)
	context.Shader = shader
	context.DrawMesh(fm)
	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	}
	return img, nil
}

// SavePNG renders m and writes the image to a PNG file.
func SavePNG(path string, m mesh.Mesh, width, height int, view View) error {
	img, err := Render(m, width, height, view)
	if err != nil {
		return fmt.Errorf("preview %s: %w", path, err)
	}
	return fauxgl.SavePNG(path, img)
}

func fauxV(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }

func fauxMesh(m mesh.Mesh) *fauxgl.Mesh {
	tris := make([]*fauxgl.Triangle, len(m))
	for i, t := range m {
		tris[i] = fauxgl.NewTriangleForPoints(fauxV(t[0]), fauxV(t[1]), fauxV(t[2]))
	}
	return fauxgl.NewTriangleMesh(tris)
}
