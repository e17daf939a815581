// Package slot cuts rectangular slots into existing solids. Cutter
// positions are anchored to the bounding box of the solid being cut.
package slot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/soypat/partgen/helpers/matter"
	"github.com/soypat/partgen/internal/d3"
	"github.com/soypat/partgen/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Ref selects the bounding box coordinate an anchor is measured from.
type Ref string

const (
	Abs    Ref = "abs" // the origin
	Min    Ref = "min"
	Max    Ref = "max"
	Center Ref = "center"
)

// Anchor positions one axis of a cutter's minimum corner at Ref+Offset.
type Anchor struct {
	Ref    Ref     `toml:"ref"`
	Offset float64 `toml:"offset"`
}

func (a Anchor) resolve(lo, hi float64) (float64, error) {
	switch Ref(strings.ToLower(string(a.Ref))) {
	case Abs, "":
		return a.Offset, nil
	case Min:
		return lo + a.Offset, nil
	case Max:
		return hi + a.Offset, nil
	case Center:
		return (lo+hi)/2 + a.Offset, nil
	}
	return 0, fmt.Errorf("unknown anchor reference %q", a.Ref)
}

// Cut is a box cutter.
type Cut struct {
	Name string `toml:"name"`
	// Size is the cutter extent along X, Y and Z.
	Size [3]float64 `toml:"size"`
	X    Anchor     `toml:"x"`
	Y    Anchor     `toml:"y"`
	Z    Anchor     `toml:"z"`
}

// Place returns the cutter box for a solid with bounding box bb.
func (c Cut) Place(bb d3.Box) (d3.Box, error) {
	size := r3.Vec{X: c.Size[0], Y: c.Size[1], Z: c.Size[2]}
	if d3.LTEZero(size) {
		return d3.Box{}, fmt.Errorf("cut %q: size must be positive, got %v", c.Name, c.Size)
	}
	var corner r3.Vec
	var err error
	if corner.X, err = c.X.resolve(bb.Min.X, bb.Max.X); err != nil {
		return d3.Box{}, fmt.Errorf("cut %q x: %w", c.Name, err)
	}
	if corner.Y, err = c.Y.resolve(bb.Min.Y, bb.Max.Y); err != nil {
		return d3.Box{}, fmt.Errorf("cut %q y: %w", c.Name, err)
	}
	if corner.Z, err = c.Z.resolve(bb.Min.Z, bb.Max.Z); err != nil {
		return d3.Box{}, fmt.Errorf("cut %q z: %w", c.Name, err)
	}
	return d3.CornerBox(corner, size), nil
}

// Apollo slot constants, measured against the Apollo R-PRO-1 case model.
const (
	apolloSlotWidth  = 40.0
	apolloSlotHeight = 10.0
	apolloWall       = 2.5
	apolloCutDepth   = 15.0
)

// ApolloCuts returns the two light slots of the Apollo R-PRO-1 case for
// the LTR390 sensor: a front slot through the floor near the back wall
// and a top slot through the back wall. The offsets are calibration data
// for that case.
func ApolloCuts() []Cut {
	return []Cut{
		{
			Name: "front slot",
			Size: [3]float64{apolloSlotWidth, apolloSlotHeight, apolloCutDepth},
			X:    Anchor{Ref: Abs, Offset: -apolloSlotWidth / 2},
			Y:    Anchor{Ref: Max, Offset: -apolloWall - apolloSlotHeight},
			Z:    Anchor{Ref: Min, Offset: -5},
		},
		{
			Name: "top slot",
			Size: [3]float64{apolloSlotWidth, apolloCutDepth, apolloSlotHeight},
			X:    Anchor{Ref: Abs, Offset: -apolloSlotWidth / 2},
			Y:    Anchor{Ref: Max, Offset: -5},
			Z:    Anchor{Ref: Min, Offset: apolloWall},
		},
	}
}

// Plan is a list of cuts with print settings, as read from TOML.
type Plan struct {
	// Material compensates cutter sizes for shrinkage of internal features.
	Material string `toml:"material"`
	// MaxTriangles decimates STL inputs above this count before cutting. Zero disables.
	MaxTriangles int   `toml:"max_triangles"`
	Cuts         []Cut `toml:"cut"`
}

// Validate checks the plan has cuts with positive sizes and valid anchors.
func (p Plan) Validate() error {
	if len(p.Cuts) == 0 {
		return errors.New("plan has no cuts")
	}
	if _, err := matter.ByName(p.Material); err != nil {
		return err
	}
	for _, c := range p.Cuts {
		if _, err := c.Place(d3.Box{}); err != nil {
			return err
		}
	}
	return nil
}

// Compensated returns the cuts with sizes enlarged for mat.
func Compensated(cuts []Cut, mat matter.ViscousMaterial) []Cut {
	out := make([]Cut, len(cuts))
	for i, c := range cuts {
		out[i] = c
		if mat.Shrink == 0 && mat.PullShrink == 0 {
			continue
		}
		for j, v := range c.Size {
			if v > 0 {
				out[i].Size[j] = mat.InternalDimScale(v)
			}
		}
	}
	return out
}

// Apply subtracts each cut from s in order. The bounding box is
// recomputed before every cut. The first failing cut aborts.
func Apply(s kernel.Solid, cuts []Cut, log zerolog.Logger) (kernel.Solid, error) {
	for _, c := range cuts {
		bb := s.Bounds()
		place, err := c.Place(bb)
		if err != nil {
			return kernel.Solid{}, err
		}
		log.Info().Str("cut", c.Name).
			Floats64("min", []float64{place.Min.X, place.Min.Y, place.Min.Z}).
			Floats64("size", c.Size[:]).
			Msg("cutting slot")
		cutter, err := kernel.Box(place.Min, place.Size())
		if err != nil {
			return kernel.Solid{}, fmt.Errorf("cut %q: %w", c.Name, err)
		}
		s, err = kernel.Difference(s, cutter)
		if err != nil {
			return kernel.Solid{}, fmt.Errorf("cut %q: %w", c.Name, err)
		}
	}
	return s, nil
}
