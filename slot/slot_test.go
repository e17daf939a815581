package slot_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/soypat/partgen/config"
	"github.com/soypat/partgen/helpers/matter"
	"github.com/soypat/partgen/internal/d3"
	"github.com/soypat/partgen/kernel"
	"github.com/soypat/partgen/slot"
	"gonum.org/v1/gonum/spatial/r3"
)

func caseBlock(t *testing.T) kernel.Solid {
	t.Helper()
	s, err := kernel.Box(r3.Vec{X: -30}, r3.Vec{X: 60, Y: 50, Z: 20})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestApolloPlacement(t *testing.T) {
	bb := d3.Box{Min: r3.Vec{X: -30}, Max: r3.Vec{X: 30, Y: 50, Z: 20}}
	cuts := slot.ApolloCuts()
	front, err := cuts[0].Place(bb)
	if err != nil {
		t.Fatal(err)
	}
	want := d3.Box{Min: r3.Vec{X: -20, Y: 37.5, Z: -5}, Max: r3.Vec{X: 20, Y: 47.5, Z: 10}}
	if !front.Equals(want, 1e-12) {
		t.Errorf("front slot: want %+v, got %+v", want, front)
	}
	top, err := cuts[1].Place(bb)
	if err != nil {
		t.Fatal(err)
	}
	want = d3.Box{Min: r3.Vec{X: -20, Y: 45, Z: 2.5}, Max: r3.Vec{X: 20, Y: 60, Z: 12.5}}
	if !top.Equals(want, 1e-12) {
		t.Errorf("top slot: want %+v, got %+v", want, top)
	}
}

func TestApply(t *testing.T) {
	var logs bytes.Buffer
	got, err := slot.Apply(caseBlock(t), slot.ApolloCuts(), zerolog.New(&logs))
	if err != nil {
		t.Fatal(err)
	}
	const want = 60*50*20 - 40*10*10 - (40*5*10 - 40*2.5*7.5)
	if v := got.Volume(); math.Abs(v-want) > 1e-6 {
		t.Errorf("volume: want %g, got %g", float64(want), v)
	}
	if got.Contains(r3.Vec{X: 0, Y: 42, Z: 5}) {
		t.Error("front slot not cut")
	}
	if got.Contains(r3.Vec{X: 0, Y: 49, Z: 11}) {
		t.Error("top slot not cut")
	}
	if !got.Contains(r3.Vec{X: 25, Y: 42, Z: 5}) {
		t.Error("material beside the slot removed")
	}
	if rep := got.Mesh().Edges(); !rep.Closed() {
		t.Errorf("cut mesh not closed: %s", rep)
	}
	if n := strings.Count(logs.String(), "cutting slot"); n != 2 {
		t.Errorf("want 2 cut log lines, got %d", n)
	}
}

func TestApplyFailFast(t *testing.T) {
	cuts := []slot.Cut{
		{Name: "everything", Size: [3]float64{100, 100, 100}, X: slot.Anchor{Ref: slot.Min, Offset: -1}, Y: slot.Anchor{Ref: slot.Min, Offset: -1}, Z: slot.Anchor{Ref: slot.Min, Offset: -1}},
		{Name: "never", Size: [3]float64{1, 1, 1}},
	}
	_, err := slot.Apply(caseBlock(t), cuts, zerolog.Nop())
	if !errors.Is(err, kernel.ErrEmptyResult) || !strings.Contains(err.Error(), `cut "everything"`) {
		t.Errorf("want empty result error from first cut, got %v", err)
	}
	bad := []slot.Cut{{Name: "flat", Size: [3]float64{1, 0, 1}}}
	if _, err := slot.Apply(caseBlock(t), bad, zerolog.Nop()); err == nil {
		t.Error("expected error for zero size cutter")
	}
	anchor := []slot.Cut{{Name: "odd", Size: [3]float64{1, 1, 1}, X: slot.Anchor{Ref: "middle"}}}
	if _, err := slot.Apply(caseBlock(t), anchor, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown anchor")
	}
}

const planTOML = `
material = "PLA"

[[cut]]
name = "front"
size = [40.0, 10.0, 15.0]
x = { ref = "abs", offset = -20.0 }
y = { ref = "max", offset = -12.5 }
z = { ref = "min", offset = -5.0 }

[[cut]]
name = "center"
size = [4.0, 4.0, 40.0]
x = { ref = "center", offset = -2.0 }
y = { ref = "center", offset = -2.0 }
z = { ref = "min", offset = -10.0 }
`

func TestPlan(t *testing.T) {
	var plan slot.Plan
	if err := config.Decode(planTOML, &plan); err != nil {
		t.Fatal(err)
	}
	if err := plan.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(plan.Cuts) != 2 || plan.Cuts[0].Y.Ref != slot.Max || plan.Cuts[1].X.Ref != slot.Center {
		t.Fatalf("unexpected plan %+v", plan)
	}
	mat, err := matter.ByName(plan.Material)
	if err != nil {
		t.Fatal(err)
	}
	cuts := slot.Compensated(plan.Cuts, mat)
	if got, want := cuts[0].Size[0], 40*1.002+0.45; math.Abs(got-want) > 1e-12 {
		t.Errorf("compensated width: want %g, got %g", want, got)
	}
	if plan.Cuts[0].Size[0] != 40 {
		t.Error("Compensated modified its input")
	}
	got, err := slot.Apply(caseBlock(t), plan.Cuts, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if got.Contains(r3.Vec{X: 0, Y: 25, Z: 10}) {
		t.Error("center hole not cut")
	}
	if err := (slot.Plan{}).Validate(); err == nil {
		t.Error("empty plan should be invalid")
	}
}

func TestWriteDimensions(t *testing.T) {
	var buf bytes.Buffer
	bb := d3.Box{Min: r3.Vec{X: -30}, Max: r3.Vec{X: 30, Y: 50, Z: 20}}
	if err := slot.WriteDimensions(&buf, bb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Y: 0.00 to 50.00 (depth: 50.00mm)") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
}
