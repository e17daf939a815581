package mesh

import (
	"errors"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/hschendel/stl"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrEmpty is returned when writing a mesh with no triangles.
	ErrEmpty = errors.New("empty triangle slice")

	errCalculatedNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices")
)

// Solid converts the mesh to an hschendel/stl solid with normals
// computed from the vertex order.
func (m Mesh) Solid(name string) (*stl.Solid, error) {
	if len(m) == 0 {
		return nil, ErrEmpty
	}
	s := &stl.Solid{Name: name, Triangles: make([]stl.Triangle, len(m))}
	for i, t := range m {
		st := stl.Triangle{
			Normal:   vec3(t.Normal()),
			Vertices: [3]stl.Vec3{vec3(t[0]), vec3(t[1]), vec3(t[2])},
		}
		if bad3F32(st.Vertices[0]) || bad3F32(st.Vertices[1]) || bad3F32(st.Vertices[2]) {
			return nil, fmt.Errorf("triangle %d: inf/NaN STL triangle vertex", i)
		}
		s.Triangles[i] = st
	}
	return s, nil
}

// WriteSTL writes the mesh to w in binary STL format.
func WriteSTL(w io.Writer, m Mesh) error {
	s, err := m.Solid("")
	if err != nil {
		return err
	}
	return s.WriteAll(w)
}

// SaveSTL writes the mesh to a binary STL file at path.
func SaveSTL(path string, m Mesh) error {
	s, err := m.Solid("")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadSTL reads an ASCII or binary STL stream and validates each triangle.
// The format is detected by peeking, so r must be seekable.
// Triangles whose stored normal disagrees with their winding are kept.
func ReadSTL(r io.ReadSeeker) (Mesh, error) {
	s, err := stl.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return fromSolid(s)
}

// LoadSTL reads an STL file from path.
func LoadSTL(path string) (Mesh, error) {
	s, err := stl.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := fromSolid(s)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}

func fromSolid(s *stl.Solid) (Mesh, error) {
	if len(s.Triangles) == 0 {
		return nil, errors.New("STL file contains 0 triangles")
	}
	m := make(Mesh, 0, len(s.Triangles))
	for i, t := range s.Triangles {
		err := validate(t)
		if err != nil && !errors.Is(err, errCalculatedNormalMismatch) {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i+1, len(s.Triangles), err)
		}
		m = append(m, Triangle{r3From3F32(t.Vertices[0]), r3From3F32(t.Vertices[1]), r3From3F32(t.Vertices[2])})
	}
	return m, nil
}

func validate(t stl.Triangle) error {
	const epsilon = 1e-12
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertices[0]) || bad3F32(t.Vertices[1]) || bad3F32(t.Vertices[2]) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if equalWithin3F32(t.Vertices[0], t.Vertices[1], epsilon) ||
		equalWithin3F32(t.Vertices[1], t.Vertices[2], epsilon) ||
		equalWithin3F32(t.Vertices[2], t.Vertices[0], epsilon) {
		return errors.New("triangle is degenerate")
	}
	calc := vec3(Triangle{r3From3F32(t.Vertices[0]), r3From3F32(t.Vertices[1]), r3From3F32(t.Vertices[2])}.Normal())
	neg := stl.Vec3{-calc[0], -calc[1], -calc[2]}
	// Zero normals are allowed by the format.
	if t.Normal != (stl.Vec3{}) && !equalWithin3F32(calc, t.Normal, normTol) && !equalWithin3F32(neg, t.Normal, normTol) {
		return errCalculatedNormalMismatch
	}
	return nil
}

func vec3(v r3.Vec) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func r3From3F32(f stl.Vec3) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func bad3F32(f stl.Vec3) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func equalWithin3F32(a, b stl.Vec3, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}
