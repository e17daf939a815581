// Command coolingstand builds the switch cooling stand meshes: the full
// assembly and the two printed parts split at the tenon joint.
//
// Usage:
//
//	coolingstand [outdir] [stand.toml]
//	coolingstand watch <stand.toml> [outdir]
//	coolingstand template <stand.toml>
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/soypat/partgen/assembly"
	"github.com/soypat/partgen/config"
	"github.com/soypat/partgen/drawing"
	"github.com/soypat/partgen/internal/logging"
	"github.com/soypat/partgen/mesh"
	"github.com/soypat/partgen/preview"
)

func main() {
	log := logging.Init("coolingstand")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, log); err != nil {
		log.Fatal().Err(err).Msg("cooling stand not generated")
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, log zerolog.Logger) error {
	if len(args) > 0 {
		switch args[0] {
		case "watch":
			if len(args) < 2 || len(args) > 3 {
				return errors.New("usage: coolingstand watch <stand.toml> [outdir]")
			}
			outdir := "."
			if len(args) == 3 {
				outdir = args[2]
			}
			return watch(ctx, args[1], outdir, stdout, log, nil)
		case "template":
			if len(args) != 2 {
				return errors.New("usage: coolingstand template <stand.toml>")
			}
			err := config.WriteTemplate(args[1], assembly.DefaultConfig(),
				"Cooling stand configuration. Dimensions in mm.",
				"revision 1 prints the upper part as assembled, revision 2 flips it cradle down.")
			if err == nil {
				log.Info().Str("path", args[1]).Msg("template written")
			}
			return err
		}
	}
	outdir, cfgPath := ".", ""
	if len(args) > 0 {
		outdir = args[0]
	}
	if len(args) > 1 {
		cfgPath = args[1]
	}
	if len(args) > 2 {
		return errors.New("usage: coolingstand [outdir] [stand.toml]")
	}
	return generate(cfgPath, outdir, stdout, log)
}

func loadConfig(path string) (assembly.Config, error) {
	cfg := assembly.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	err := config.Load(path, &cfg)
	return cfg, err
}

// generate encodes every output in memory and only then writes the
// files, so a failed build leaves outdir untouched.
func generate(cfgPath, outdir string, stdout io.Writer, log zerolog.Logger) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	d, rev := cfg.Dimensions, cfg.Revision
	parts, err := assembly.BuildParts(d, rev)
	if err != nil {
		return err
	}
	name := func(suffix string) string {
		return filepath.Join(outdir, fmt.Sprintf("stand_%s_%s", rev, suffix))
	}
	type output struct {
		path      string
		triangles int
		buf       bytes.Buffer
	}
	var outputs []*output
	encode := func(path string, triangles int, write func(io.Writer) error) error {
		o := &output{path: path, triangles: triangles}
		if err := write(&o.buf); err != nil {
			return fmt.Errorf("encoding %s: %w", path, err)
		}
		outputs = append(outputs, o)
		return nil
	}
	for _, m := range []struct {
		suffix string
		m      mesh.Mesh
	}{
		{"full.stl", parts.Full},
		{"part_a.stl", parts.Lower},
		{"part_b.stl", parts.Upper},
	} {
		if err := encode(name(m.suffix), len(m.m), func(w io.Writer) error { return mesh.WriteSTL(w, m.m) }); err != nil {
			return err
		}
	}
	top := drawing.StandTop(parts.Layout)
	if err := encode(name("top.svg"), 0, top.WriteSVG); err != nil {
		return err
	}
	if err := encode(name("top.dxf"), 0, top.WriteDXF); err != nil {
		return err
	}
	err = encode(name("elevation.png"), 0, func(w io.Writer) error {
		return preview.WriteElevation(w, parts.Layout, "cooling stand "+rev.String(), "png")
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return err
	}
	for _, o := range outputs {
		if err := os.WriteFile(o.path, o.buf.Bytes(), 0o644); err != nil {
			return err
		}
		ev := log.Info().Str("path", o.path)
		if o.triangles > 0 {
			ev = ev.Int("triangles", o.triangles)
		}
		ev.Msg("saved")
	}

	height := parts.Layout.Height()
	fmt.Fprintf(stdout, "Full model: %d triangles, %gmm tall (%.1f\")\n", len(parts.Full), height, height/25.4)
	fmt.Fprintf(stdout, "Part A: %d triangles, %gmm tall\n", len(parts.Lower), parts.LowerHeight)
	fmt.Fprintf(stdout, "Part B: %d triangles, %gmm tall\n", len(parts.Upper), parts.UpperHeight)
	if rev == assembly.Rev2 {
		fmt.Fprintln(stdout, "Part B is flipped for printing: cradle at bottom, legs pointing up.")
	}
	fmt.Fprintf(stdout, "Assembled: Part A on floor, Part B placed at z=%g\n", d.SplitZ)
	return nil
}

// watch regenerates the outputs every time the configuration file
// changes, until ctx is done. Build errors are logged and do not stop the
// loop. Each build result is sent on built when it is not nil.
func watch(ctx context.Context, cfgPath, outdir string, stdout io.Writer, log zerolog.Logger, built chan<- error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Editors often replace the file, watch its directory instead.
	if err := w.Add(filepath.Dir(cfgPath)); err != nil {
		return err
	}
	target := filepath.Clean(cfgPath)
	build := func() bool {
		err := generate(cfgPath, outdir, stdout, log)
		if err != nil {
			log.Error().Err(err).Str("config", cfgPath).Msg("build failed")
		}
		if built == nil {
			return true
		}
		select {
		case built <- err:
			return true
		case <-ctx.Done():
			return false
		}
	}
	if !build() {
		return nil
	}
	log.Info().Str("config", cfgPath).Msg("watching for changes")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopped watching")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			log.Info().Str("event", ev.Op.String()).Msg("configuration changed")
			if !build() {
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}
