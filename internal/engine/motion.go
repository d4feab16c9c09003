package engine

import "math"

// Curve maps a stick deflection to units per tick: v*Base + v³*Accel
type Curve struct {
	DeadZone float64
	Base     float64
	Accel    float64
}

// Raw returns the unrounded delta for deflection v
func (c Curve) Raw(v float64) float64 {
	return v*c.Base + v*v*v*c.Accel
}

// InDeadZone reports whether both axes are at rest
func (c Curve) InDeadZone(x, y float64) bool {
	return math.Abs(x) <= c.DeadZone && math.Abs(y) <= c.DeadZone
}

// Carry holds the fractional units left over from previous ticks for one stick.
// Its magnitude stays below 1 on each axis.
type Carry struct {
	X, Y float64
}

// Step converts one stick reading to whole units. y is the stick's reading
// (positive up); the returned dy is positive down, matching screen and wheel
// coordinates. Inside the dead zone nothing is emitted and the carry resets.
func (c *Carry) Step(curve Curve, x, y float64) (dx, dy int) {
	if curve.InDeadZone(x, y) {
		c.X, c.Y = 0, 0
		return 0, 0
	}

	tx := curve.Raw(x) + c.X
	ty := curve.Raw(-y) + c.Y
	wx, wy := math.Trunc(tx), math.Trunc(ty)
	c.X, c.Y = tx-wx, ty-wy
	return int(wx), int(wy)
}
