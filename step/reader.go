package step

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
)

// Load reads the faceted model stored in the STEP file at path.
// Every failure is reported as a *StatusError.
func Load(path string) (Model, error) {
	fp, err := os.Open(path)
	if err != nil {
		return Model{}, &StatusError{Path: path, Status: StatusVoid, Err: err}
	}
	defer fp.Close()
	f, err := Parse(fp)
	if err != nil {
		return Model{}, &StatusError{Path: path, Status: StatusMalformed, Err: err}
	}
	m, err := f.Model()
	if err != nil {
		return Model{}, &StatusError{Path: path, Status: StatusFail, Err: err}
	}
	return m, nil
}

// Read parses a STEP stream and extracts its faceted model.
func Read(r io.Reader) (Model, error) {
	f, err := Parse(r)
	if err != nil {
		return Model{}, err
	}
	return f.Model()
}

// Model extracts the faces of every CLOSED_SHELL in the file. Faces must
// lie on a PLANE and be bounded by a single POLY_LOOP or an EDGE_LOOP of
// straight edges; anything else wraps ErrUnsupported.
func (f *File) Model() (Model, error) {
	var m Model
	shells := 0
	for _, id := range f.Order {
		e := f.Entities[id]
		switch e.Name {
		case "PRODUCT":
			if m.Name == "" && len(e.Params) > 1 && e.Params[1].Kind == KindString {
				m.Name = e.Params[1].Str
			}
		case "CLOSED_SHELL":
			shells++
			refs, err := f.refList(e, 1)
			if err != nil {
				return Model{}, err
			}
			for _, ref := range refs {
				loop, err := f.face(ref)
				if err != nil {
					return Model{}, err
				}
				m.Faces = append(m.Faces, loop)
			}
		}
	}
	if shells == 0 {
		return Model{}, ErrNoShell
	}
	return m, nil
}

func (f *File) entity(id int, names ...string) (*Entity, error) {
	e, ok := f.Entities[id]
	if !ok {
		return nil, fmt.Errorf("reference to undefined instance #%d", id)
	}
	if len(names) == 0 {
		return e, nil
	}
	for _, n := range names {
		if e.Name == n {
			return e, nil
		}
	}
	name := e.Name
	if name == "" {
		name = "complex instance"
	}
	return nil, fmt.Errorf("#%d: %w: %s where %v expected", id, ErrUnsupported, name, names)
}

func (f *File) param(e *Entity, i int, kind ParamKind) (Param, error) {
	if i >= len(e.Params) {
		return Param{}, fmt.Errorf("#%d %s: missing parameter %d", e.ID, e.Name, i)
	}
	p := e.Params[i]
	if p.Kind != kind {
		return Param{}, fmt.Errorf("#%d %s: parameter %d has kind %d, want %d", e.ID, e.Name, i, p.Kind, kind)
	}
	return p, nil
}

func (f *File) ref(e *Entity, i int) (int, error) {
	p, err := f.param(e, i, KindRef)
	return p.Ref, err
}

func (f *File) boolean(e *Entity, i int) (bool, error) {
	p, err := f.param(e, i, KindEnum)
	if err != nil {
		return false, err
	}
	switch p.Str {
	case "T":
		return true, nil
	case "F":
		return false, nil
	}
	return false, fmt.Errorf("#%d %s: parameter %d is .%s., want .T. or .F.", e.ID, e.Name, i, p.Str)
}

func (f *File) refList(e *Entity, i int) ([]int, error) {
	p, err := f.param(e, i, KindList)
	if err != nil {
		return nil, err
	}
	refs := make([]int, len(p.List))
	for j, item := range p.List {
		if item.Kind != KindRef {
			return nil, fmt.Errorf("#%d %s: list item %d is not a reference", e.ID, e.Name, j)
		}
		refs[j] = item.Ref
	}
	return refs, nil
}

// face returns the outer loop of a planar face wound counter clockwise
// around the outward normal.
func (f *File) face(id int) ([]r3.Vec, error) {
	e, err := f.entity(id, "FACE_SURFACE", "ADVANCED_FACE", "FACE")
	if err != nil {
		return nil, err
	}
	bounds, err := f.refList(e, 1)
	if err != nil {
		return nil, err
	}
	sameSense := true
	if e.Name != "FACE" {
		surf, err := f.ref(e, 2)
		if err != nil {
			return nil, err
		}
		if _, err := f.entity(surf, "PLANE"); err != nil {
			return nil, fmt.Errorf("face #%d: %w", id, err)
		}
		if sameSense, err = f.boolean(e, 3); err != nil {
			return nil, err
		}
	}
	if len(bounds) != 1 {
		return nil, fmt.Errorf("face #%d: %w: %d bounds, faces with holes are not supported", id, ErrUnsupported, len(bounds))
	}
	b, err := f.entity(bounds[0], "FACE_OUTER_BOUND", "FACE_BOUND")
	if err != nil {
		return nil, err
	}
	loopID, err := f.ref(b, 1)
	if err != nil {
		return nil, err
	}
	orientation, err := f.boolean(b, 2)
	if err != nil {
		return nil, err
	}
	loop, err := f.loop(loopID)
	if err != nil {
		return nil, fmt.Errorf("face #%d: %w", id, err)
	}
	if orientation != sameSense {
		for i, j := 0, len(loop)-1; i < j; i, j = i+1, j-1 {
			loop[i], loop[j] = loop[j], loop[i]
		}
	}
	return loop, nil
}

func (f *File) loop(id int) ([]r3.Vec, error) {
	e, err := f.entity(id, "POLY_LOOP", "EDGE_LOOP")
	if err != nil {
		return nil, err
	}
	refs, err := f.refList(e, 1)
	if err != nil {
		return nil, err
	}
	loop := make([]r3.Vec, 0, len(refs))
	for _, ref := range refs {
		var pt int
		if e.Name == "POLY_LOOP" {
			pt = ref
		} else if pt, err = f.edgeStart(ref); err != nil {
			return nil, err
		}
		v, err := f.point(pt)
		if err != nil {
			return nil, err
		}
		loop = append(loop, v)
	}
	if len(loop) < 3 {
		return nil, errors.New("loop with fewer than 3 vertices")
	}
	return loop, nil
}

// edgeStart returns the CARTESIAN_POINT id where an ORIENTED_EDGE starts.
func (f *File) edgeStart(id int) (int, error) {
	oe, err := f.entity(id, "ORIENTED_EDGE")
	if err != nil {
		return 0, err
	}
	edgeID, err := f.ref(oe, 3)
	if err != nil {
		return 0, err
	}
	forward, err := f.boolean(oe, 4)
	if err != nil {
		return 0, err
	}
	edge, err := f.entity(edgeID, "EDGE_CURVE")
	if err != nil {
		return 0, err
	}
	curve, err := f.ref(edge, 3)
	if err != nil {
		return 0, err
	}
	if _, err := f.entity(curve, "LINE"); err != nil {
		return 0, err
	}
	start := 1
	if !forward {
		start = 2
	}
	vid, err := f.ref(edge, start)
	if err != nil {
		return 0, err
	}
	vertex, err := f.entity(vid, "VERTEX_POINT")
	if err != nil {
		return 0, err
	}
	return f.ref(vertex, 1)
}

func (f *File) point(id int) (r3.Vec, error) {
	e, err := f.entity(id, "CARTESIAN_POINT")
	if err != nil {
		return r3.Vec{}, err
	}
	p, err := f.param(e, 1, KindList)
	if err != nil {
		return r3.Vec{}, err
	}
	var c [3]float64
	if len(p.List) < 2 || len(p.List) > 3 {
		return r3.Vec{}, fmt.Errorf("#%d CARTESIAN_POINT: %d coordinates", id, len(p.List))
	}
	for i, item := range p.List {
		if item.Kind != KindNumber {
			return r3.Vec{}, fmt.Errorf("#%d CARTESIAN_POINT: coordinate %d is not a number", id, i)
		}
		c[i] = item.Num
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}
