// Command slotcut cuts rectangular slots into STEP or STL solids.
//
// Usage:
//
//	slotcut <input> <output>                      report dimensions and convert
//	slotcut --apollo <input> <output>             cut the Apollo R-PRO-1 light slots
//	slotcut --plan <plan.toml> <input> <output>   apply the cuts of a plan file
//
// Cutters are positioned relative to the bounding box of the part, which
// is recomputed after every cut. Nothing is written if any cut fails.
//
// STEP input must be a faceted B-rep: every face planar with a single
// boundary loop. Models with curved faces or faces with holes are
// rejected and should be exported to STL first.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/soypat/partgen/config"
	"github.com/soypat/partgen/helpers/matter"
	"github.com/soypat/partgen/internal/logging"
	"github.com/soypat/partgen/kernel"
	"github.com/soypat/partgen/mesh"
	"github.com/soypat/partgen/shapeio"
	"github.com/soypat/partgen/slot"
	"github.com/soypat/partgen/step"
)

const usage = `slotcut cuts rectangular slots into STEP or STL solids.

Usage:
    slotcut <input> <output>
    slotcut --apollo <input> <output>
    slotcut --plan <plan.toml> <input> <output>

STEP input must be a faceted B-rep with planar faces bounded by a single
loop. Curved faces and faces with holes are rejected; export such models
to STL instead.
`

func main() {
	log := logging.Init("slotcut")
	if err := run(os.Args[1:], os.Stdout, log); err != nil {
		log.Fatal().Err(err).Msg("slot cutting failed")
	}
}

func run(args []string, stdout io.Writer, log zerolog.Logger) error {
	var (
		plan          slot.Plan
		input, output string
	)
	switch {
	case len(args) == 2 && !strings.HasPrefix(args[0], "-"):
		input, output = args[0], args[1]
	case len(args) == 3 && args[0] == "--apollo":
		plan.Cuts = slot.ApolloCuts()
		input, output = args[1], args[2]
	case len(args) == 4 && args[0] == "--plan":
		if err := config.Load(args[1], &plan); err != nil {
			return err
		}
		if err := plan.Validate(); err != nil {
			return fmt.Errorf("plan %s: %w", args[1], err)
		}
		input, output = args[2], args[3]
	default:
		_, err := io.WriteString(stdout, usage)
		return err
	}

	log.Info().Str("path", input).Msg("loading")
	part, err := load(input, plan.MaxTriangles, log)
	if errors.Is(err, step.ErrUnsupported) {
		return fmt.Errorf("%w (export the model to STL to cut it)", err)
	} else if err != nil {
		return err
	}
	if err := slot.WriteDimensions(stdout, part.Bounds()); err != nil {
		return err
	}
	if len(plan.Cuts) > 0 {
		mat, err := matter.ByName(plan.Material)
		if err != nil {
			return err
		}
		part, err = slot.Apply(part, slot.Compensated(plan.Cuts, mat), log)
		if err != nil {
			return err
		}
	}
	if err := shapeio.Save(output, part, step.Header{}); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved: %s\n", output)
	if len(plan.Cuts) > 0 {
		fmt.Fprintln(stdout, "Done!")
	}
	return nil
}

// load reads the part. STL meshes with more than maxTriangles triangles
// are decimated first when maxTriangles is positive.
func load(path string, maxTriangles int, log zerolog.Logger) (kernel.Solid, error) {
	if maxTriangles <= 0 || shapeio.FormatOf(path) != shapeio.STL {
		return shapeio.Load(path)
	}
	m, err := mesh.LoadSTL(path)
	if err != nil {
		return kernel.Solid{}, err
	}
	if len(m) > maxTriangles {
		factor := float64(maxTriangles) / float64(len(m))
		log.Info().Int("triangles", len(m)).Float64("factor", factor).Msg("decimating input")
		m = mesh.Decimate(m, factor)
	}
	s, err := kernel.FromMesh(m)
	if err != nil {
		return kernel.Solid{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return s, nil
}
