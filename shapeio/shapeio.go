// Package shapeio loads and saves solids, choosing the file format from
// the file extension.
package shapeio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/soypat/partgen/kernel"
	"github.com/soypat/partgen/mesh"
	"github.com/soypat/partgen/step"
)

// Format is a supported solid file format.
type Format int

const (
	Unknown Format = iota
	STEP
	STL
)

// ErrUnknownFormat is returned for paths with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown shape file extension, want .step, .stp or .stl")

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".step", ".stp":
		return STEP
	case ".stl":
		return STL
	}
	return Unknown
}

// Load reads a solid from a STEP or STL file.
func Load(path string) (kernel.Solid, error) {
	switch FormatOf(path) {
	case STEP:
		m, err := step.Load(path)
		if err != nil {
			return kernel.Solid{}, err
		}
		s, err := kernel.FromFaces(m.Faces)
		if err != nil {
			return kernel.Solid{}, &step.StatusError{Path: path, Status: step.StatusFail, Err: err}
		}
		return s, nil
	case STL:
		m, err := mesh.LoadSTL(path)
		if err != nil {
			return kernel.Solid{}, err
		}
		s, err := kernel.FromMesh(m)
		if err != nil {
			return kernel.Solid{}, fmt.Errorf("reading %s: %w", path, err)
		}
		return s, nil
	}
	return kernel.Solid{}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Save writes s to a STEP or STL file. h is only used for STEP files.
func Save(path string, s kernel.Solid, h step.Header) error {
	switch FormatOf(path) {
	case STEP:
		return step.Save(path, step.Model{Faces: s.Faces()}, h)
	case STL:
		return mesh.SaveSTL(path, s.Mesh())
	}
	return fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// LoadMesh reads a triangle mesh from a STEP or STL file. STEP faces are
// triangulated.
func LoadMesh(path string) (mesh.Mesh, error) {
	if FormatOf(path) == STL {
		return mesh.LoadSTL(path)
	}
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	return s.Mesh(), nil
}
