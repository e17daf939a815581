package drawing

import (
	"fmt"

	"github.com/soypat/partgen/assembly"
	"github.com/soypat/partgen/internal/d3"
	"github.com/soypat/partgen/lens"
	"github.com/soypat/partgen/slot"
	"gonum.org/v1/gonum/spatial/r2"
)

// Lens returns the top view of a lens cover: flange and insert outlines
// centered on the origin.
func Lens(p lens.Params) *Sheet {
	s := NewSheet("lens cover")
	s.Colors["insert"] = "#FF6B35"
	flange, insert := p.FlangeSize(), p.InsertSize()
	s.AddRect("flange", r2.Vec{}, r2.Vec{X: flange.X, Y: flange.Y})
	s.AddRect("insert", r2.Vec{}, r2.Vec{X: insert.X, Y: insert.Y})
	s.AddLabel(r2.Vec{X: -flange.X / 2, Y: flange.Y/2 + 2}, "flange %.2f x %.2f x %.2f", flange.X, flange.Y, flange.Z)
	s.AddLabel(r2.Vec{X: -flange.X / 2, Y: -flange.Y/2 - 5}, "insert %.2f x %.2f x %.2f", insert.X, insert.Y, insert.Z)
	return s
}

// SlotTemplate returns the top view of the cutters placed on a part with
// bounding box bb, outlined together with the part footprint.
func SlotTemplate(bb d3.Box, cuts []slot.Cut) (*Sheet, error) {
	s := NewSheet("slot template")
	s.Colors["cut"] = "red"
	size, c := bb.Size(), bb.Center()
	s.AddRect("part", r2.Vec{X: c.X, Y: c.Y}, r2.Vec{X: size.X, Y: size.Y})
	for i, cut := range cuts {
		box, err := cut.Place(bb)
		if err != nil {
			return nil, fmt.Errorf("cut %d: %w", i, err)
		}
		bc, bs := box.Center(), box.Size()
		s.AddRect("cut", r2.Vec{X: bc.X, Y: bc.Y}, r2.Vec{X: bs.X, Y: bs.Y})
		name := cut.Name
		if name == "" {
			name = fmt.Sprintf("cut %d", i+1)
		}
		s.AddLabel(r2.Vec{X: box.Min.X, Y: box.Max.Y + 1}, "%s z %.1f..%.1f", name, box.Min.Z, box.Max.Z)
	}
	return s, nil
}

// StandTop returns the top view of a layout with one layer per group.
// Boxes are drawn as rectangles and cylinders and rings as circles.
func StandTop(l assembly.Layout) *Sheet {
	s := NewSheet("cooling stand top view")
	for group, color := range assembly.GroupColors {
		s.Colors[group] = color
	}
	for _, p := range l {
		c := r2.Vec{X: p.Base.X, Y: p.Base.Y}
		switch p.Kind {
		case assembly.KindBox:
			s.AddRect(p.Group, c, r2.Vec{X: p.Size.X, Y: p.Size.Y})
		case assembly.KindCylinder:
			s.AddCircle(p.Group, c, p.Radius)
		case assembly.KindRing:
			s.AddCircle(p.Group, c, p.Radius)
			s.AddCircle(p.Group, c, p.Inner)
		}
	}
	return s
}
