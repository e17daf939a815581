// Package matter compensates printed part dimensions for material shrinkage.
package matter

import (
	"fmt"
	"strings"

	"github.com/soypat/partgen/kernel"
)

var (
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{Name: "PLA", Shrink: 0.2e-2, PullShrink: .45} // 0.2% shrinkage
	// Exact applies no compensation.
	Exact = ViscousMaterial{Name: "none"}
)

type ViscousMaterial struct {
	Name string
	// Shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	Shrink float64
	// PullShrink takes into account viscoelastic shrinkage of holes and slots, in millimeters.
	PullShrink float64
}

// ByName returns a known material. The empty name selects Exact.
func ByName(name string) (ViscousMaterial, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return Exact, nil
	case "pla":
		return PLA, nil
	}
	return ViscousMaterial{}, fmt.Errorf("unknown material %q", name)
}

// ScaleFactor is the uniform scale that makes a printed part shrink back to nominal size.
func (m ViscousMaterial) ScaleFactor() float64 {
	return 1 / (1 - m.Shrink)
}

// Scale scales a solid about the origin by ScaleFactor.
func (m ViscousMaterial) Scale(s kernel.Solid) (kernel.Solid, error) {
	if m.Shrink == 0 {
		return s, nil
	}
	return s.Scale(m.ScaleFactor())
}

// InternalDimScale returns the modeled size of an internal feature (hole,
// slot) that should measure real after printing.
func (m ViscousMaterial) InternalDimScale(real float64) float64 {
	if real <= 0 {
		panic("InternalDimScale only works for non-zero dimensions")
	}
	return real*(m.Shrink+1) + m.PullShrink
}
