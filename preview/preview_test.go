package preview

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/soypat/partgen/assembly"
	"github.com/soypat/partgen/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRender(t *testing.T) {
	box := mesh.Box(r3.Vec{X: 10, Y: 10, Z: 4}, r3.Vec{})
	img, err := Render(box, 80, 60, DefaultView)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 60 {
		t.Fatalf("image size %v", b)
	}
	same := func(x0, y0, x1, y1 int) bool {
		r0, g0, b0, _ := img.At(x0, y0).RGBA()
		r1, g1, b1, _ := img.At(x1, y1).RGBA()
		return r0>>8 == r1>>8 && g0>>8 == g1>>8 && b0>>8 == b1>>8
	}
	if !same(0, 0, 79, 0) {
		t.Error("top corners should both show the background")
	}
	if same(40, 30, 0, 0) {
		t.Error("center pixel shows background, box not drawn")
	}

	if _, err := Render(nil, 80, 60, DefaultView); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("want ErrEmptyMesh, got %v", err)
	}
	if _, err := Render(box, 0, 60, DefaultView); err == nil {
		t.Error("zero width accepted")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.png")
	if err := SavePNG(path, mesh.Cylinder(5, 20, r3.Vec{}, 24), 64, 48, DefaultView); err != nil {
		t.Fatal(err)
	}
}

func TestElevation(t *testing.T) {
	l, err := assembly.CoolingStand(assembly.DefaultDimensions(), assembly.Rev1)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteElevation(&buf, l, "rev1", "png"); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("elevation is not a png: %v", err)
	}
	p, err := Elevation(l, "rev1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Y.Max != 290 || p.Y.Min != 0 {
		t.Errorf("z axis [%g,%g], want [0,290]", p.Y.Min, p.Y.Max)
	}
	if _, err := Elevation(nil, ""); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("want ErrEmptyMesh, got %v", err)
	}
}

func TestHexColor(t *testing.T) {
	c, err := hexColor(assembly.GroupColors[assembly.GroupLegs])
	if err != nil {
		t.Fatal(err)
	}
	if c != (color.RGBA{R: 0x46, G: 0x82, B: 0xB4, A: 255}) {
		t.Errorf("got %v", c)
	}
	if _, err := hexColor("steelblue"); err == nil {
		t.Error("named colour accepted")
	}
}
