package preview

import (
	"fmt"
	"image/color"
	"io"

	"github.com/soypat/partgen/assembly"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Elevation plots the front view (X against Z) of a layout, one filled
// outline per primitive coloured by group.
func Elevation(l assembly.Layout, title string) (*plot.Plot, error) {
	if len(l) == 0 {
		return nil, ErrEmptyMesh
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (mm)"
	p.Y.Label.Text = "z (mm)"
	legend := make(map[string]bool)
	for i, prim := range l {
		bb := prim.Bounds()
		outline := plotter.XYs{
			{X: bb.Min.X, Y: bb.Min.Z}, {X: bb.Max.X, Y: bb.Min.Z},
			{X: bb.Max.X, Y: bb.Max.Z}, {X: bb.Min.X, Y: bb.Max.Z},
		}
		poly, err := plotter.NewPolygon(outline)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
		fill, err := hexColor(assembly.GroupColors[prim.Group])
		if err != nil {
			fill = color.RGBA{R: 128, G: 128, B: 128, A: 255}
		}
		poly.Color = fill
		poly.LineStyle.Width = vg.Points(0.5)
		poly.LineStyle.Color = color.Black
		p.Add(poly)
		if !legend[prim.Group] {
			legend[prim.Group] = true
			p.Legend.Add(prim.Group, poly)
		}
	}
	return p, nil
}

// WriteElevation writes the elevation of l in the given image format
// ("png", "svg", "pdf", ...).
func WriteElevation(w io.Writer, l assembly.Layout, title, format string) error {
	p, err := Elevation(l, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(16*vg.Centimeter, 12*vg.Centimeter, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func hexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 255}
	if len(s) != 7 {
		return c, fmt.Errorf("invalid colour %q", s)
	}
	_, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	return c, err
}
