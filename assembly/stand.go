package assembly

import (
	"errors"
	"fmt"

	"github.com/soypat/partgen/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Revision selects a cooling stand design.
type Revision int

const (
	// Rev1 has screw bosses on a plain shelf and prints the upper part as
	// assembled.
	Rev1 Revision = 1
	// Rev2 adds fan hole rings, runs the legs up to the shelf and prints the
	// upper part cradle down.
	Rev2 Revision = 2
)

func (r Revision) String() string { return fmt.Sprintf("rev%d", int(r)) }

// Colour groups used by the stand layout.
const (
	GroupLegs   = "legs"
	GroupShelf  = "shelf"
	GroupPosts  = "posts"
	GroupCradle = "cradle"
	GroupLip    = "lip"
)

// GroupColors maps stand groups to the viewer's hex colours.
var GroupColors = map[string]string{
	GroupLegs:   "#4682B4",
	GroupShelf:  "#E8922A",
	GroupPosts:  "#D4831F",
	GroupCradle: "#E8922A",
	GroupLip:    "#FF6B35",
}

// Dimensions of the switch cooling stand in millimetres.
type Dimensions struct {
	SwitchWidth     float64 `toml:"switch_width"`
	SwitchThickness float64 `toml:"switch_thickness"`
	Fan             float64 `toml:"fan"`
	FanGap          float64 `toml:"fan_gap"`

	RailDepth  float64 `toml:"rail_depth"`
	RailOffset float64 `toml:"rail_offset"`
	RailHeight float64 `toml:"rail_height"`
	// The platform is PlatformMargin wider than the switch and
	// PlatformDepthMargin deeper than a fan.
	PlatformMargin      float64 `toml:"platform_margin"`
	PlatformDepthMargin float64 `toml:"platform_depth_margin"`

	FloorClearance float64 `toml:"floor_clearance"`
	LegWidth       float64 `toml:"leg_width"`
	LegInset       float64 `toml:"leg_inset"`
	BraceThickness float64 `toml:"brace_thickness"`
	BraceHeight    float64 `toml:"brace_height"`

	ShelfZ         float64 `toml:"shelf_z"`
	ShelfThickness float64 `toml:"shelf_thickness"`

	FanCutRadius    float64 `toml:"fan_cut_radius"`
	FanRingWall     float64 `toml:"fan_ring_wall"`
	FanScrewSpacing float64 `toml:"fan_screw_spacing"`
	FanScrewRadius  float64 `toml:"fan_screw_radius"`
	// BossRadius is used by rev1; rev2 bosses are FanScrewRadius+BossWall.
	BossRadius   float64 `toml:"boss_radius"`
	BossWall     float64 `toml:"boss_wall"`
	RingSegments int     `toml:"ring_segments"`
	BossSegments int     `toml:"boss_segments"`

	Post     float64 `toml:"post"`
	CableGap float64 `toml:"cable_gap"`

	Wall           float64 `toml:"wall"`
	WallHeight     float64 `toml:"wall_height"`
	Clearance      float64 `toml:"clearance"`
	Lip            float64 `toml:"lip"`
	SlotLip        float64 `toml:"slot_lip"`
	CradleOverhang float64 `toml:"cradle_overhang"`

	SplitZ      float64 `toml:"split_z"`
	TenonWidth  float64 `toml:"tenon_width"`
	TenonDepth  float64 `toml:"tenon_depth"`
	TenonHeight float64 `toml:"tenon_height"`
}

// DefaultDimensions returns the stand sized for a 210.4 x 43.7 mm switch
// cooled by two 80 mm fans.
func DefaultDimensions() Dimensions {
	return Dimensions{
		SwitchWidth:     210.4,
		SwitchThickness: 43.7,
		Fan:             80,
		FanGap:          10,

		RailDepth:           8,
		RailOffset:          59,
		RailHeight:          4,
		PlatformMargin:      16,
		PlatformDepthMargin: 20,

		FloorClearance: 155,
		LegWidth:       30,
		LegInset:       4,
		BraceThickness: 4,
		BraceHeight:    10,

		ShelfZ:         165,
		ShelfThickness: 5,

		FanCutRadius:    76.0 / 2,
		FanRingWall:     4,
		FanScrewSpacing: 71.5,
		FanScrewRadius:  4.3 / 2,
		BossRadius:      5,
		BossWall:        3,
		RingSegments:    48,
		BossSegments:    16,

		Post:     8,
		CableGap: 50,

		Wall:           4,
		WallHeight:     70,
		Clearance:      1.5,
		Lip:            10,
		SlotLip:        8,
		CradleOverhang: 10,

		SplitZ:      75,
		TenonWidth:  24,
		TenonDepth:  6,
		TenonHeight: 16,
	}
}

// PlatformWidth is the X extent of the rails and the shelf.
func (d Dimensions) PlatformWidth() float64 { return d.SwitchWidth + d.PlatformMargin }

// PlatformDepth is the Y extent of the shelf.
func (d Dimensions) PlatformDepth() float64 { return d.Fan + d.PlatformDepthMargin }

// SlotWidth is the gap between the cradle walls.
func (d Dimensions) SlotWidth() float64 { return d.SwitchThickness + 2*d.Clearance }

// LegX is the X distance from the stand center to the leg centers.
func (d Dimensions) LegX() float64 { return d.PlatformWidth()/2 - d.LegWidth/2 - d.LegInset }

// FanX is the X distance from the stand center to each fan center.
func (d Dimensions) FanX() float64 { return d.Fan/2 + d.FanGap/2 }

// CradleZ is the height of the cradle floor.
func (d Dimensions) CradleZ(rev Revision) float64 {
	if rev == Rev1 {
		return d.ShelfZ + d.ShelfThickness + d.CableGap
	}
	return d.ShelfZ + d.CableGap
}

// Validate checks the dimensions describe a buildable stand.
func (d Dimensions) Validate() error {
	var errs []error
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"switch_width", d.SwitchWidth}, {"switch_thickness", d.SwitchThickness}, {"fan", d.Fan},
		{"rail_depth", d.RailDepth}, {"rail_height", d.RailHeight}, {"floor_clearance", d.FloorClearance},
		{"leg_width", d.LegWidth}, {"brace_thickness", d.BraceThickness}, {"brace_height", d.BraceHeight},
		{"shelf_thickness", d.ShelfThickness}, {"fan_cut_radius", d.FanCutRadius}, {"fan_ring_wall", d.FanRingWall},
		{"boss_radius", d.BossRadius}, {"post", d.Post}, {"cable_gap", d.CableGap}, {"wall", d.Wall},
		{"wall_height", d.WallHeight}, {"lip", d.Lip}, {"slot_lip", d.SlotLip}, {"tenon_width", d.TenonWidth},
		{"tenon_depth", d.TenonDepth}, {"tenon_height", d.TenonHeight},
	} {
		if !(f.v > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", f.name, f.v))
		}
	}
	if d.RingSegments < 3 || d.BossSegments < 3 {
		errs = append(errs, fmt.Errorf("need at least 3 segments, got ring %d boss %d", d.RingSegments, d.BossSegments))
	}
	if d.ShelfZ-d.ShelfThickness < d.FloorClearance {
		errs = append(errs, fmt.Errorf("shelf bottom %g below floor clearance %g", d.ShelfZ-d.ShelfThickness, d.FloorClearance))
	}
	if d.SplitZ <= d.RailHeight || d.SplitZ+d.TenonHeight >= d.FloorClearance {
		errs = append(errs, fmt.Errorf("split_z %g must leave room for the rails and tenons below %g", d.SplitZ, d.FloorClearance))
	}
	if d.TenonWidth >= d.LegWidth || d.TenonDepth >= d.RailDepth {
		errs = append(errs, errors.New("tenons must be narrower than the legs"))
	}
	if d.LegX() <= d.LegWidth/2 {
		errs = append(errs, fmt.Errorf("legs overlap: leg x %g, leg width %g", d.LegX(), d.LegWidth))
	}
	return errors.Join(errs...)
}

// ErrRevision is returned for unknown stand revisions.
var ErrRevision = errors.New("unknown cooling stand revision")

// CoolingStand returns the assembled stand layout. Tenons are pinned to
// the lower part and overlap the legs in the assembled model.
func CoolingStand(d Dimensions, rev Revision) (Layout, error) {
	if rev != Rev1 && rev != Rev2 {
		return nil, fmt.Errorf("%w: %d", ErrRevision, int(rev))
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	var l Layout
	platW, legX, railY := d.PlatformWidth(), d.LegX(), d.RailOffset
	shelfBottom := d.ShelfZ - d.ShelfThickness

	for _, s := range []float64{-1, 1} {
		l = append(l, Box(GroupLegs, platW, d.RailDepth, d.RailHeight, r3.Vec{Y: s * railY}))
	}
	legH, braceZ := d.FloorClearance, d.FloorClearance+(shelfBottom-d.FloorClearance)/2
	if rev == Rev2 {
		legH, braceZ = shelfBottom, d.SplitZ+(shelfBottom-d.SplitZ)/2
	}
	for _, lx := range []float64{-legX, legX} {
		for _, s := range []float64{-1, 1} {
			l = append(l, Box(GroupLegs, d.LegWidth, d.RailDepth, legH, r3.Vec{X: lx, Y: s * railY}))
		}
	}
	for _, lx := range []float64{-legX, legX} {
		for _, s := range []float64{-1, 1} {
			tenon := Box(GroupLegs, d.TenonWidth, d.TenonDepth, d.TenonHeight, r3.Vec{X: lx, Y: s * railY, Z: d.SplitZ})
			tenon.Pin = Lower
			l = append(l, tenon)
		}
	}
	for _, lx := range []float64{-legX, legX} {
		l = append(l, Box(GroupShelf, d.BraceThickness, 2*railY, d.BraceHeight, r3.Vec{X: lx, Z: braceZ}))
	}

	l = append(l, Box(GroupShelf, platW, d.PlatformDepth(), d.ShelfThickness, r3.Vec{Z: shelfBottom}))
	bossR := d.BossRadius
	if rev == Rev2 {
		bossR = d.FanScrewRadius + d.BossWall
	}
	half := d.FanScrewSpacing / 2
	for _, fx := range []float64{-d.FanX(), d.FanX()} {
		if rev == Rev2 {
			l = append(l, Ring(GroupShelf, d.FanCutRadius+d.FanRingWall, d.FanCutRadius, d.ShelfThickness,
				r3.Vec{X: fx, Z: shelfBottom}, d.RingSegments))
		}
		for _, dx := range []float64{-1, 1} {
			for _, dy := range []float64{-1, 1} {
				l = append(l, Cylinder(GroupShelf, bossR, d.ShelfThickness,
					r3.Vec{X: fx + dx*half, Y: dy * half, Z: shelfBottom}, d.BossSegments))
			}
		}
	}

	slotW := d.SlotWidth()
	wallY := slotW/2 + d.Wall/2
	for _, dx := range []float64{-1, 1} {
		for _, dy := range []float64{-1, 1} {
			l = append(l, Box(GroupPosts, d.Post, d.Post, d.CableGap,
				r3.Vec{X: dx * d.SwitchWidth / 2, Y: dy * wallY, Z: d.ShelfZ}))
		}
	}

	cz := d.CradleZ(rev)
	cradleW := d.SwitchWidth + d.CradleOverhang
	lipY := slotW/2 - d.Lip/2
	l = append(l,
		Box(GroupCradle, cradleW, d.Wall, d.WallHeight, r3.Vec{Y: -wallY, Z: cz}),
		Box(GroupCradle, cradleW, d.Wall, d.WallHeight, r3.Vec{Y: wallY, Z: cz}),
		Box(GroupLip, cradleW, d.Lip, d.Wall, r3.Vec{Y: -lipY, Z: cz}),
		Box(GroupLip, cradleW, d.Lip, d.Wall, r3.Vec{Y: lipY, Z: cz}),
	)
	stopX := d.SwitchWidth/2 + d.Clearance + d.Wall/2
	for _, dx := range []float64{-1, 1} {
		l = append(l, Box(GroupCradle, d.Wall, slotW+2*d.Wall, d.SlotLip, r3.Vec{X: dx * stopX, Z: cz}))
	}
	return l, nil
}

// Parts holds the meshes written for a stand and the layout they were
// generated from.
type Parts struct {
	Layout Layout
	// Full is the assembled model, tenons included.
	Full mesh.Mesh
	// Lower starts on the floor and carries the tenons.
	Lower       mesh.Mesh
	LowerHeight float64
	// Upper starts at z=0. Rev2 flips it about UpperHeight so the cradle
	// rests on the print bed.
	Upper       mesh.Mesh
	UpperHeight float64
}

// BuildParts generates the full model and both printed parts from the same
// layout.
func BuildParts(d Dimensions, rev Revision) (Parts, error) {
	l, err := CoolingStand(d, rev)
	if err != nil {
		return Parts{}, err
	}
	lower, upper := l.Split(d.SplitZ)
	p := Parts{
		Layout:      l,
		Full:        l.Mesh(),
		Lower:       lower.Mesh(),
		LowerHeight: lower.Height(),
		Upper:       upper.Mesh(),
		UpperHeight: upper.Height(),
	}
	if rev == Rev2 {
		p.Upper = p.Upper.MirrorZ(p.UpperHeight)
	}
	return p, nil
}

// Config is the cooling stand configuration file.
type Config struct {
	Revision   Revision   `toml:"revision"`
	Dimensions Dimensions `toml:"dimensions"`
}

// DefaultConfig returns the rev2 stand with default dimensions.
func DefaultConfig() Config {
	return Config{Revision: Rev2, Dimensions: DefaultDimensions()}
}
