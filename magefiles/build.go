//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Generates both cooling stand revisions and the lens cover into build/.
func (Build) Parts() error {
	mg.Deps(mkOut)
	for _, rev := range []string{"1", "2"} {
		dir := filepath.Join(outDir, "rev"+rev)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		cfg := filepath.Join(dir, "stand.toml")
		if err := os.WriteFile(cfg, []byte("revision = "+rev+"\n"), 0o644); err != nil {
			return err
		}
		if err := goRun("./cmd/coolingstand", dir, cfg); err != nil {
			return err
		}
	}
	return goRun("./cmd/lenscover", filepath.Join(outDir, "lens_cover.step"))
}

// Renders a PNG preview next to every generated part.
func (Build) Previews() error {
	mg.Deps(Build.Parts)
	models, err := filepath.Glob(filepath.Join(outDir, "*", "*.stl"))
	if err != nil {
		return err
	}
	models = append(models, filepath.Join(outDir, "lens_cover.step"))
	for _, m := range models {
		if err := goRun("./cmd/partview", m); err != nil {
			return err
		}
	}
	return goRun("./cmd/partview", "outline", "lens", filepath.Join(outDir, "lens_cover.svg"))
}

func mkOut() error {
	return os.MkdirAll(outDir, 0o755)
}
