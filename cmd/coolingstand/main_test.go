package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/soypat/partgen/assembly"
	"github.com/soypat/partgen/config"
	"github.com/soypat/partgen/mesh"
)

var quiet = zerolog.New(io.Discard)

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer
	if err := run(context.Background(), []string{dir}, &stdout, quiet); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"full.stl", "part_a.stl", "part_b.stl", "top.svg", "top.dxf", "elevation.png"} {
		if _, err := os.Stat(filepath.Join(dir, "stand_rev2_"+name)); err != nil {
			t.Error(err)
		}
	}
	for _, want := range []string{"Part A: 120 triangles, 91mm tall", "Part B: ", "210mm tall", "flipped for printing", "z=75"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("output missing %q:\n%s", want, stdout.String())
		}
	}
	upper, err := mesh.LoadSTL(filepath.Join(dir, "stand_rev2_part_b.stl"))
	if err != nil {
		t.Fatal(err)
	}
	if bb := upper.Bounds(); bb.Min.Z != 0 || bb.Max.Z != 210 {
		t.Errorf("part b spans z [%g,%g]", bb.Min.Z, bb.Max.Z)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stand.toml")
	if err := run(context.Background(), []string{"template", path}, io.Discard, quiet); err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), []string{"template", path}, io.Discard, quiet); err == nil {
		t.Error("template overwrote an existing file")
	}
	cfg := assembly.Config{}
	if err := config.Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg != assembly.DefaultConfig() {
		t.Errorf("template decodes to %+v", cfg)
	}
}

func TestRev1Config(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "stand.toml")
	if err := os.WriteFile(cfg, []byte("revision = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout bytes.Buffer
	if err := run(context.Background(), []string{dir, cfg}, &stdout, quiet); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "stand_rev1_part_b.stl")); err != nil {
		t.Error(err)
	}
	if strings.Contains(stdout.String(), "flipped") {
		t.Error("rev1 upper part should not be flipped")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "stand.toml")
	if err := os.WriteFile(cfg, []byte("[dimensions]\nsplit_z = 75\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	built := make(chan error)
	done := make(chan error, 1)
	go func() { done <- watch(ctx, cfg, out, io.Discard, quiet, built) }()

	select {
	case err := <-built:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the first build")
	}
	if err := os.WriteFile(cfg, []byte("[dimensions]\nsplit_z = 60\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A single save can produce several events, the first of which may
	// see a truncated file. Wait for the build that picks up the change.
	deadline := time.After(10 * time.Second)
	for rebuilt := false; !rebuilt; {
		select {
		case err := <-built:
			if err != nil {
				continue
			}
			lower, err := mesh.LoadSTL(filepath.Join(out, "stand_rev2_part_a.stl"))
			rebuilt = err == nil && lower.Bounds().Max.Z == 76
		case <-deadline:
			t.Fatal("part a was not rebuilt with split_z = 60")
		}
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Error(err)
		}
	case <-time.After(5 * time.Second):
		t.Error("watch did not stop")
	}
}

func TestGenerateInvalidWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "stand.toml")
	if err := os.WriteFile(cfg, []byte("[dimensions]\nleg_width = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")
	if err := run(context.Background(), []string{out, cfg}, io.Discard, quiet); err == nil {
		t.Fatal("invalid dimensions accepted")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output directory created for a failed build: %v", err)
	}
}
