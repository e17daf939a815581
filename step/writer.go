package step

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Model is a faceted boundary representation: planar faces given as
// vertex loops wound counter clockwise seen from outside the solid.
type Model struct {
	Name  string
	Faces [][]r3.Vec
}

// Header holds the FILE_NAME metadata written to the header section.
type Header struct {
	Author       string
	Organization string
	// Timestamp defaults to the current time when zero.
	Timestamp time.Time
}

const originatingSystem = "partgen"

// productNamespace scopes product ids generated for written models.
var productNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/soypat/partgen/step"))

// Save writes m to path as an AP214 faceted B-rep. The file is only
// created once the whole model has been encoded.
func Save(path string, m Model, h Header) error {
	var buf bytes.Buffer
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := write(&buf, filepath.Base(path), m, h); err != nil {
		return fmt.Errorf("error writing STEP file: %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("error writing STEP file: %s: %w", path, err)
	}
	return nil
}

// Write encodes m as an AP214 faceted B-rep exchange structure.
func Write(w io.Writer, m Model, h Header) error {
	return write(w, m.Name+".step", m, h)
}

type encoder struct {
	w      *bufio.Writer
	id     int
	points map[[3]float64]int
}

func (e *encoder) entity(format string, args ...any) int {
	e.id++
	fmt.Fprintf(e.w, "#%d=", e.id)
	fmt.Fprintf(e.w, format, args...)
	e.w.WriteString(";\n")
	return e.id
}

func (e *encoder) point(v r3.Vec) int {
	k := [3]float64{v.X, v.Y, v.Z}
	if id, ok := e.points[k]; ok {
		return id
	}
	id := e.entity("CARTESIAN_POINT('',(%s,%s,%s))", formatReal(v.X), formatReal(v.Y), formatReal(v.Z))
	e.points[k] = id
	return id
}

func (e *encoder) direction(v r3.Vec) int {
	return e.entity("DIRECTION('',(%s,%s,%s))", formatReal(v.X), formatReal(v.Y), formatReal(v.Z))
}

func write(w io.Writer, filename string, m Model, h Header) error {
	if len(m.Faces) == 0 {
		return errEmptyModel
	}
	ts := h.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	e := &encoder{w: bufio.NewWriter(w), points: make(map[[3]float64]int)}
	e.w.WriteString("ISO-10303-21;\nHEADER;\n")
	fmt.Fprintf(e.w, "FILE_DESCRIPTION((%s),'2;1');\n", str("faceted boundary representation"))
	fmt.Fprintf(e.w, "FILE_NAME(%s,%s,(%s),(%s),%s,%s,'');\n",
		str(filename), str(ts.UTC().Format("2006-01-02T15:04:05")), str(h.Author), str(h.Organization),
		str(originatingSystem), str(originatingSystem))
	e.w.WriteString("FILE_SCHEMA(('AUTOMOTIVE_DESIGN { 1 0 10303 214 1 1 1 1 }'));\nENDSEC;\nDATA;\n")

	appCtx := e.entity("APPLICATION_CONTEXT('core data for automotive mechanical design processes')")
	e.entity("APPLICATION_PROTOCOL_DEFINITION('international standard','automotive_design',2000,#%d)", appCtx)
	prodCtx := e.entity("PRODUCT_CONTEXT('',#%d,'mechanical')", appCtx)
	product := e.entity("PRODUCT(%s,%s,'',(#%d))", str(productID(m).String()), str(m.Name), prodCtx)
	formation := e.entity("PRODUCT_DEFINITION_FORMATION('','',#%d)", product)
	defCtx := e.entity("PRODUCT_DEFINITION_CONTEXT('part definition',#%d,'design')", appCtx)
	def := e.entity("PRODUCT_DEFINITION('design','',#%d,#%d)", formation, defCtx)
	defShape := e.entity("PRODUCT_DEFINITION_SHAPE('','',#%d)", def)
	length := e.entity("(LENGTH_UNIT()NAMED_UNIT(*)SI_UNIT(.MILLI.,.METRE.))")
	angle := e.entity("(NAMED_UNIT(*)PLANE_ANGLE_UNIT()SI_UNIT($,.RADIAN.))")
	solidAngle := e.entity("(NAMED_UNIT(*)SI_UNIT($,.STERADIAN.)SOLID_ANGLE_UNIT())")
	uncertainty := e.entity("UNCERTAINTY_MEASURE_WITH_UNIT(LENGTH_MEASURE(1.E-07),#%d,'distance_accuracy_value','confusion accuracy')", length)
	geomCtx := e.entity("(GEOMETRIC_REPRESENTATION_CONTEXT(3)GLOBAL_UNCERTAINTY_ASSIGNED_CONTEXT((#%d))"+
		"GLOBAL_UNIT_ASSIGNED_CONTEXT((#%d,#%d,#%d))REPRESENTATION_CONTEXT('Context #1','3D Context with UNIT and UNCERTAINTY'))",
		uncertainty, length, angle, solidAngle)

	var faces []string
	for _, loop := range m.Faces {
		n, ok := loopNormal(loop)
		if !ok {
			continue
		}
		ids := make([]string, len(loop))
		for i, v := range loop {
			ids[i] = "#" + strconv.Itoa(e.point(v))
		}
		polyLoop := e.entity("POLY_LOOP('',(%s))", strings.Join(ids, ","))
		bound := e.entity("FACE_OUTER_BOUND('',#%d,.T.)", polyLoop)
		axis := e.direction(n)
		ref := e.direction(refDirection(loop, n))
		place := e.entity("AXIS2_PLACEMENT_3D('',#%d,#%d,#%d)", e.point(loop[0]), axis, ref)
		plane := e.entity("PLANE('',#%d)", place)
		faces = append(faces, "#"+strconv.Itoa(e.entity("FACE_SURFACE('',(#%d),#%d,.T.)", bound, plane)))
	}
	if len(faces) == 0 {
		return errEmptyModel
	}
	shell := e.entity("CLOSED_SHELL('',(%s))", strings.Join(faces, ","))
	brep := e.entity("FACETED_BREP(%s,#%d)", str(m.Name), shell)
	origin := e.entity("AXIS2_PLACEMENT_3D('',#%d,#%d,#%d)",
		e.point(r3.Vec{}), e.direction(r3.Vec{Z: 1}), e.direction(r3.Vec{X: 1}))
	rep := e.entity("FACETED_BREP_SHAPE_REPRESENTATION(%s,(#%d,#%d),#%d)", str(m.Name), brep, origin, geomCtx)
	e.entity("SHAPE_DEFINITION_REPRESENTATION(#%d,#%d)", defShape, rep)
	e.w.WriteString("ENDSEC;\nEND-ISO-10303-21;\n")
	return e.w.Flush()
}

var errEmptyModel = errors.New("model has no valid faces")

// productID derives a stable product id from the model name and geometry size.
func productID(m Model) uuid.UUID {
	vertices := 0
	for _, f := range m.Faces {
		vertices += len(f)
	}
	return uuid.NewSHA1(productNamespace, []byte(fmt.Sprintf("%s/%d/%d", m.Name, len(m.Faces), vertices)))
}

// loopNormal computes the unit normal of a vertex loop with Newell's method.
func loopNormal(loop []r3.Vec) (r3.Vec, bool) {
	if len(loop) < 3 {
		return r3.Vec{}, false
	}
	var n r3.Vec
	for i := range loop {
		a, b := loop[i], loop[(i+1)%len(loop)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	l := r3.Norm(n)
	if l < 1e-12 {
		return r3.Vec{}, false
	}
	return r3.Scale(1/l, n), true
}

// refDirection returns a unit vector in the face plane.
func refDirection(loop []r3.Vec, n r3.Vec) r3.Vec {
	for i := 1; i < len(loop); i++ {
		d := r3.Sub(loop[i], loop[0])
		d = r3.Sub(d, r3.Scale(r3.Dot(d, n), n))
		if l := r3.Norm(d); l > 1e-12 {
			return r3.Scale(1/l, d)
		}
	}
	// Any vector orthogonal to n.
	if math.Abs(n.X) < 0.9 {
		return r3.Unit(r3.Cross(n, r3.Vec{X: 1}))
	}
	return r3.Unit(r3.Cross(n, r3.Vec{Y: 1}))
}

// formatReal formats v as a Part 21 real, which always carries a decimal point.
func formatReal(v float64) string {
	if v == 0 {
		return "0."
	}
	s := strconv.FormatFloat(v, 'G', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	if i := strings.IndexByte(s, 'E'); i >= 0 {
		return s[:i] + "." + s[i:]
	}
	return s + "."
}

// str quotes s as a Part 21 string.
func str(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
