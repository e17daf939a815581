// Command lenscover generates a press-fit translucent lens cover for the
// light slots cut in the Apollo R-PRO-1 case and writes it as STEP.
//
// Usage:
//
//	lenscover [output.step] [params.toml]
//
// The default output is ../apollo-r-pro-1-case/r_pro-1_lens_cover.step
// relative to the executable.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/soypat/partgen/config"
	"github.com/soypat/partgen/internal/logging"
	"github.com/soypat/partgen/lens"
	"github.com/soypat/partgen/shapeio"
	"github.com/soypat/partgen/step"
)

func main() {
	log := logging.Init("lenscover")
	if err := run(os.Args[1:], os.Stdout, log); err != nil {
		log.Fatal().Err(err).Msg("lens cover not generated")
	}
}

func run(args []string, stdout io.Writer, log zerolog.Logger) error {
	p := lens.DefaultParams()
	output, err := defaultOutput()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		output = args[0]
	}
	if len(args) > 1 {
		if err := config.Load(args[1], &p); err != nil {
			return err
		}
	}

	fmt.Fprintln(stdout, "Lens Cover Generator")
	fmt.Fprintln(stdout, "========================================")
	if err := lens.WriteSummary(stdout, p); err != nil {
		return err
	}
	fmt.Fprintln(stdout)

	cover, err := lens.Build(p)
	if err != nil {
		return err
	}
	if err := lens.WriteBounds(stdout, cover.Bounds()); err != nil {
		return err
	}
	fmt.Fprintln(stdout)

	if err := shapeio.Save(output, cover, step.Header{}); err != nil {
		return err
	}
	log.Info().Str("path", output).Int("faces", cover.NumFaces()).Msg("saved")
	fmt.Fprintf(stdout, "Saved: %s\n\nPrint %d copies (one for each slot).\n", output, p.Copies)
	return nil
}

func defaultOutput() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable for default output: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "..", "apollo-r-pro-1-case", "r_pro-1_lens_cover.step"), nil
}
