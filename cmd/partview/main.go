// Command partview renders previews and paper templates of parts.
//
// Usage:
//
//	partview <model.stl|model.step> [out.png]
//	partview outline lens <out.svg|out.dxf> [lens.toml]
//	partview outline slots <case.step|case.stl> <out.svg|out.dxf>
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/soypat/partgen/config"
	"github.com/soypat/partgen/drawing"
	"github.com/soypat/partgen/internal/logging"
	"github.com/soypat/partgen/lens"
	"github.com/soypat/partgen/preview"
	"github.com/soypat/partgen/shapeio"
	"github.com/soypat/partgen/slot"
)

const (
	// Scale down images relative to Full HD resolution.
	FHDscaler     = 0.4
	width, height = int(1920. * FHDscaler), int(1080. * FHDscaler) // output width and height in pixels
)

var errUsage = errors.New(`usage:
    partview <model.stl|model.step> [out.png]
    partview outline lens <out.svg|out.dxf> [lens.toml]
    partview outline slots <case.step|case.stl> <out.svg|out.dxf>`)

func main() {
	log := logging.Init("partview")
	if err := run(os.Args[1:], log); err != nil {
		log.Fatal().Err(err).Msg("partview failed")
	}
}

func run(args []string, log zerolog.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	if args[0] == "outline" {
		return outline(args[1:], log)
	}
	if len(args) > 2 {
		return errUsage
	}
	model := args[0]
	out := strings.TrimSuffix(model, filepath.Ext(model)) + ".png"
	if len(args) == 2 {
		out = args[1]
	}
	m, err := shapeio.LoadMesh(model)
	if err != nil {
		return err
	}
	if err := preview.SavePNG(out, m, width, height, preview.DefaultView); err != nil {
		return err
	}
	log.Info().Str("model", model).Str("path", out).Int("triangles", len(m)).Msg("preview saved")
	return nil
}

func outline(args []string, log zerolog.Logger) error {
	if len(args) < 2 {
		return errUsage
	}
	var (
		sheet *drawing.Sheet
		out   string
	)
	switch args[0] {
	case "lens":
		if len(args) > 3 {
			return errUsage
		}
		p := lens.DefaultParams()
		if len(args) == 3 {
			if err := config.Load(args[2], &p); err != nil {
				return err
			}
		}
		if err := p.Validate(); err != nil {
			return err
		}
		sheet, out = drawing.Lens(p), args[1]
	case "slots":
		if len(args) != 3 {
			return errUsage
		}
		part, err := shapeio.Load(args[1])
		if err != nil {
			return err
		}
		sheet, err = drawing.SlotTemplate(part.Bounds(), slot.ApolloCuts())
		if err != nil {
			return err
		}
		out = args[2]
	default:
		return errUsage
	}
	var err error
	switch ext := strings.ToLower(filepath.Ext(out)); ext {
	case ".svg":
		err = sheet.SaveSVG(out)
	case ".dxf":
		err = sheet.SaveDXF(out)
	default:
		err = fmt.Errorf("%s: unsupported drawing format %q, want .svg or .dxf", out, ext)
	}
	if err == nil {
		log.Info().Str("path", out).Msg("outline saved")
	}
	return err
}
