// Package lens builds press-fit lens covers for rectangular light slots.
// A cover is a thin flange lying on z=0 with an insert body on top that
// presses into the slot.
package lens

import (
	"errors"
	"fmt"
	"io"

	"github.com/soypat/partgen/helpers/matter"
	"github.com/soypat/partgen/internal/d3"
	"github.com/soypat/partgen/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Params are the lens cover dimensions in millimeters.
type Params struct {
	// Slot opening the cover fits into. Must match the slot cutter.
	SlotWidth  float64 `toml:"slot_width"`
	SlotHeight float64 `toml:"slot_height"`
	// Clearance per side between insert and slot.
	Clearance float64 `toml:"clearance"`
	// Lip is the flange overhang per side.
	Lip             float64 `toml:"lip"`
	FlangeThickness float64 `toml:"flange_thickness"`
	InsertDepth     float64 `toml:"insert_depth"`
	// Copies to print, one per slot.
	Copies int `toml:"copies"`
	// Material selects shrink compensation, see matter.ByName.
	Material string `toml:"material"`
}

// DefaultParams returns the dimensions of the Apollo R-PRO-1 light slots.
func DefaultParams() Params {
	return Params{
		SlotWidth:       40,
		SlotHeight:      10,
		Clearance:       0.1,
		Lip:             1.0,
		FlangeThickness: 0.8, // thin for light transmission
		InsertDepth:     2.0,
		Copies:          2,
	}
}

// Validate checks every dimension is positive and the insert keeps a
// positive size after clearance.
func (p Params) Validate() error {
	var errs []error
	for _, d := range []struct {
		name string
		v    float64
	}{
		{"slot_width", p.SlotWidth}, {"slot_height", p.SlotHeight},
		{"flange_thickness", p.FlangeThickness}, {"insert_depth", p.InsertDepth},
	} {
		if d.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", d.name, d.v))
		}
	}
	if p.Clearance < 0 || p.Lip < 0 {
		errs = append(errs, errors.New("clearance and lip must not be negative"))
	}
	if 2*p.Clearance >= p.SlotWidth || 2*p.Clearance >= p.SlotHeight {
		errs = append(errs, fmt.Errorf("clearance %g leaves no insert in a %gx%g slot", p.Clearance, p.SlotWidth, p.SlotHeight))
	}
	if p.Copies < 1 {
		errs = append(errs, errors.New("copies must be at least 1"))
	}
	if _, err := matter.ByName(p.Material); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// InsertSize returns the insert body extents.
func (p Params) InsertSize() r3.Vec {
	return r3.Vec{X: p.SlotWidth - 2*p.Clearance, Y: p.SlotHeight - 2*p.Clearance, Z: p.InsertDepth}
}

// FlangeSize returns the flange extents.
func (p Params) FlangeSize() r3.Vec {
	return r3.Vec{X: p.SlotWidth + 2*p.Lip, Y: p.SlotHeight + 2*p.Lip, Z: p.FlangeThickness}
}

// Depth is the total height of the cover.
func (p Params) Depth() float64 { return p.FlangeThickness + p.InsertDepth }

// Build returns the union of the flange, centered in XY on z=0, and the
// insert stacked on top of it. The result is scaled for the selected
// material.
func Build(p Params) (kernel.Solid, error) {
	if err := p.Validate(); err != nil {
		return kernel.Solid{}, err
	}
	fs, is := p.FlangeSize(), p.InsertSize()
	flange, err := kernel.Box(r3.Vec{X: -fs.X / 2, Y: -fs.Y / 2}, fs)
	if err != nil {
		return kernel.Solid{}, err
	}
	insert, err := kernel.Box(r3.Vec{X: -is.X / 2, Y: -is.Y / 2, Z: p.FlangeThickness}, is)
	if err != nil {
		return kernel.Solid{}, err
	}
	cover, err := kernel.Union(flange, insert)
	if err != nil {
		return kernel.Solid{}, err
	}
	mat, _ := matter.ByName(p.Material)
	return mat.Scale(cover)
}

// WriteSummary prints the cover dimensions.
func WriteSummary(w io.Writer, p Params) error {
	is, fs := p.InsertSize(), p.FlangeSize()
	_, err := fmt.Fprintf(w, "Slot opening:      %g x %g mm\n"+
		"Clearance/side:    %g mm\n"+
		"Insert body:       %g x %g x %g mm\n"+
		"Flange:            %g x %g x %g mm\n"+
		"Total depth:       %g mm\n",
		p.SlotWidth, p.SlotHeight, p.Clearance,
		is.X, is.Y, is.Z, fs.X, fs.Y, fs.Z, p.Depth())
	return err
}

// WriteBounds prints the bounding box of a solid.
func WriteBounds(w io.Writer, bb d3.Box) error {
	sz := bb.Size()
	_, err := fmt.Fprintf(w, "Bounding box:\n"+
		"  X: %.2f to %.2f (width: %.2fmm)\n"+
		"  Y: %.2f to %.2f (height: %.2fmm)\n"+
		"  Z: %.2f to %.2f (depth: %.2fmm)\n",
		bb.Min.X, bb.Max.X, sz.X, bb.Min.Y, bb.Max.Y, sz.Y, bb.Min.Z, bb.Max.Z, sz.Z)
	return err
}
