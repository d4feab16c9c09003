package engine

import (
	"math"
	"testing"

	"padkey/internal/protocol"
)

var pointerCurve = Curve{DeadZone: 0.1, Base: 1.0, Accel: 24.0}

func TestCarryDeadZoneResets(t *testing.T) {
	c := Carry{X: 0.7, Y: -0.4}

	dx, dy := c.Step(pointerCurve, 0.1, -0.05)
	if dx != 0 || dy != 0 {
		t.Errorf("Expected no motion inside the dead zone, got %d,%d", dx, dy)
	}
	if c.X != 0 || c.Y != 0 {
		t.Errorf("Expected carry reset, got %+v", c)
	}
}

func TestCarryOneAxisOutsideDeadZone(t *testing.T) {
	var c Carry
	// x alone is in the dead zone but y is not, so both axes move
	dx, dy := c.Step(pointerCurve, 0.05, 0.5)
	if dy >= 0 {
		t.Errorf("Expected upward stick to move the pointer up, got dy=%d", dy)
	}
	if dx != 0 {
		t.Errorf("Expected small x to round to zero, got %d", dx)
	}
	if c.X == 0 {
		t.Error("Expected sub-unit x motion to be carried")
	}
}

func TestCarryConservesMotion(t *testing.T) {
	for _, v := range []float64{0.15, 0.3, -0.6, 0.95} {
		var c Carry
		sum := 0
		const n = 1000
		for i := 0; i < n; i++ {
			dx, _ := c.Step(pointerCurve, v, 0)
			sum += dx
			if math.Abs(c.X) >= 1 {
				t.Fatalf("v=%v tick %d: carry %v out of range", v, i, c.X)
			}
		}
		want := n * pointerCurve.Raw(v)
		if math.Abs(float64(sum)-want) >= 1 {
			t.Errorf("v=%v: emitted %d, expected %.3f within 1", v, sum, want)
		}
	}
}

func TestCurveRaw(t *testing.T) {
	scroll := Curve{Base: 0, Accel: 1.02}
	if got := scroll.Raw(-1); math.Abs(got+1.02) > 1e-9 {
		t.Errorf("Expected -1.02, got %v", got)
	}
	if got := pointerCurve.Raw(0.5); math.Abs(got-3.5) > 1e-9 {
		t.Errorf("Expected 3.5, got %v", got)
	}
}

func TestStickEdgeTriggered(t *testing.T) {
	var s stickState
	var steps []navStep
	for _, x := range []float64{0, 0.8, 0.8, 0.8, 0} {
		steps = append(steps, s.update(x, 0, 0.5)...)
	}

	want := []navStep{
		{dx: 1, phase: protocol.PhaseDown},
		{dx: 1, phase: protocol.PhaseUp},
	}
	if len(steps) != len(want) {
		t.Fatalf("Expected %d steps, got %+v", len(want), steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d: got %+v, want %+v", i, steps[i], want[i])
		}
	}
}

func TestStickReversalAndDiagonal(t *testing.T) {
	var s stickState
	s.update(0.8, 0, 0.5)

	steps := s.update(-0.8, 0, 0.5)
	if len(steps) != 2 || steps[0] != (navStep{dx: 1, phase: protocol.PhaseUp}) || steps[1] != (navStep{dx: -1, phase: protocol.PhaseDown}) {
		t.Errorf("unexpected reversal steps %+v", steps)
	}

	var d stickState
	steps = d.update(0.8, 0.8, 0.5)
	if len(steps) != 2 || steps[0] != (navStep{dx: 1, phase: protocol.PhaseDown}) || steps[1] != (navStep{dy: -1, phase: protocol.PhaseDown}) {
		t.Errorf("Expected independent x and y steps for a diagonal, got %+v", steps)
	}

	if steps := d.update(0.5, 0.8, 0.5); len(steps) != 1 || steps[0] != (navStep{dx: 1, phase: protocol.PhaseUp}) {
		t.Errorf("Expected the threshold itself to count as centered, got %+v", steps)
	}
}
