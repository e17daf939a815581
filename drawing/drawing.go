// Package drawing produces 2D outlines of parts as SVG or DXF files for
// checking fits on paper or cutting templates.
package drawing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	svg "github.com/ajstarks/svgo/float"
	"github.com/soypat/partgen/internal/d2"
	"github.com/yofu/dxf"
	"gonum.org/v1/gonum/spatial/r2"
)

// Rect is an axis aligned rectangle on a layer.
type Rect struct {
	Layer string
	Box   d2.Box
}

// Circle is a circle on a layer.
type Circle struct {
	Layer  string
	Center r2.Vec
	R      float64
}

// Label is a line of text anchored at its baseline start.
type Label struct {
	Pos  r2.Vec
	Text string
}

// Sheet is a flat drawing in millimetres with Y pointing up.
type Sheet struct {
	Title   string
	Rects   []Rect
	Circles []Circle
	Labels  []Label
	// Colors maps layer names to stroke colours. Missing layers are black.
	Colors map[string]string
	// Margin around the drawn shapes.
	Margin float64
}

// ErrEmptySheet is returned when writing a sheet with no shapes.
var ErrEmptySheet = errors.New("sheet has no shapes")

// NewSheet returns an empty sheet with a 5mm margin.
func NewSheet(title string) *Sheet {
	return &Sheet{Title: title, Margin: 5, Colors: make(map[string]string)}
}

// AddRect adds the rectangle centered at c with size.
func (s *Sheet) AddRect(layer string, c, size r2.Vec) {
	s.Rects = append(s.Rects, Rect{Layer: layer, Box: d2.NewBox(c, size)})
}

// AddCircle adds a circle centered at c.
func (s *Sheet) AddCircle(layer string, c r2.Vec, r float64) {
	s.Circles = append(s.Circles, Circle{Layer: layer, Center: c, R: r})
}

// AddLabel adds a text label at p.
func (s *Sheet) AddLabel(p r2.Vec, format string, args ...any) {
	s.Labels = append(s.Labels, Label{Pos: p, Text: fmt.Sprintf(format, args...)})
}

// Bounds returns the box enclosing every rectangle and circle.
func (s *Sheet) Bounds() d2.Box {
	bb := d2.Empty()
	for _, r := range s.Rects {
		bb = bb.Extend(r.Box)
	}
	for _, c := range s.Circles {
		bb = bb.Extend(d2.NewBox(c.Center, d2.Elem(2*c.R)))
	}
	return bb
}

// Layers returns the layer names in order of first use.
func (s *Sheet) Layers() []string {
	var layers []string
	seen := make(map[string]bool)
	add := func(l string) {
		if !seen[l] {
			seen[l] = true
			layers = append(layers, l)
		}
	}
	for _, r := range s.Rects {
		add(r.Layer)
	}
	for _, c := range s.Circles {
		add(c.Layer)
	}
	return layers
}

func (s *Sheet) color(layer string) string {
	if c, ok := s.Colors[layer]; ok {
		return c
	}
	return "black"
}

// WriteSVG writes the sheet as an SVG document sized in millimetres.
func (s *Sheet) WriteSVG(w io.Writer) error {
	bb := s.Bounds()
	if bb.IsEmpty() {
		return ErrEmptySheet
	}
	bb = bb.Enlarge(d2.Elem(2 * s.Margin))
	size := bb.Size()
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Decimals = 3
	// SVG Y grows downward, drawing coordinates are mirrored.
	canvas.StartviewUnit(size.X, size.Y, "mm", bb.Min.X, -bb.Max.Y, size.X, size.Y)
	if s.Title != "" {
		canvas.Title(s.Title)
	}
	for _, layer := range s.Layers() {
		canvas.Gid(layer)
		style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:0.2", s.color(layer))
		for _, r := range s.Rects {
			if r.Layer == layer {
				sz := r.Box.Size()
				canvas.Rect(r.Box.Min.X, -r.Box.Max.Y, sz.X, sz.Y, style)
			}
		}
		for _, c := range s.Circles {
			if c.Layer == layer {
				canvas.Circle(c.Center.X, -c.Center.Y, c.R, style)
			}
		}
		canvas.Gend()
	}
	for _, l := range s.Labels {
		canvas.Text(l.Pos.X, -l.Pos.Y, l.Text, "font-size:3px;font-family:sans-serif")
	}
	canvas.End()
	return ew.err
}

// SaveSVG writes the sheet to an SVG file.
func (s *Sheet) SaveSVG(path string) error {
	var buf bytes.Buffer
	if err := s.WriteSVG(&buf); err != nil {
		return fmt.Errorf("drawing %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// SaveDXF writes the sheet outlines to a DXF file.
func (s *Sheet) SaveDXF(path string) error {
	var buf bytes.Buffer
	if err := s.WriteDXF(&buf); err != nil {
		return fmt.Errorf("drawing %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// WriteDXF writes the sheet outlines as DXF, one layer per sheet
// layer. Labels are not exported.
func (s *Sheet) WriteDXF(w io.Writer) error {
	if s.Bounds().IsEmpty() {
		return ErrEmptySheet
	}
	d := dxf.NewDrawing()
	for _, layer := range s.Layers() {
		if _, err := d.AddLayer(layer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("layer %s: %w", layer, err)
		}
		for _, r := range s.Rects {
			if r.Layer != layer {
				continue
			}
			a, b := r.Box.Min, r.Box.Max
			corners := [5]r2.Vec{a, {X: b.X, Y: a.Y}, b, {X: a.X, Y: b.Y}, a}
			for i := 0; i < 4; i++ {
				p, q := corners[i], corners[i+1]
				if _, err := d.Line(p.X, p.Y, 0, q.X, q.Y, 0); err != nil {
					return err
				}
			}
		}
		for _, c := range s.Circles {
			if c.Layer != layer {
				continue
			}
			if _, err := d.Circle(c.Center.X, c.Center.Y, 0, c.R); err != nil {
				return err
			}
		}
	}
	_, err := d.WriteTo(w)
	return err
}

// errWriter keeps the first write error, svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	e.err = err
	return n, err
}
