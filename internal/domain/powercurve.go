package domain

import (
	"math"
	"sort"
)

// PowerCurvePoint is one knot of a turbine power curve. Power is in kW or as a
// fraction of rated output; the estimator only needs it to share units with the
// rated power it is compared against.
type PowerCurvePoint struct {
	WindSpeed float64 `json:"wind_speed_ms"`
	Power     float64 `json:"power_kw"`
}

// PowerCurve is an immutable, validated piecewise-linear turbine power curve.
// Output is zero below the first knot (cut-in) and above the last knot (cut-out);
// a rated plateau must be encoded explicitly by repeating the rated value up to
// the cut-out speed.
type PowerCurve struct {
	speeds []float64
	powers []float64
}

// NewPowerCurve validates points and builds a PowerCurve. It requires at least two
// knots with strictly increasing, non-negative wind speeds and non-negative power.
func NewPowerCurve(points []PowerCurvePoint) (PowerCurve, error) {
	if len(points) < 2 {
		return PowerCurve{}, curveError("need at least 2 points, got %d", len(points))
	}

	speeds := make([]float64, len(points))
	powers := make([]float64, len(points))
	for i, p := range points {
		if !finite(p.WindSpeed) || p.WindSpeed < 0 {
			return PowerCurve{}, curveError("point %d: wind speed %g must be a non-negative number", i, p.WindSpeed)
		}
		if !finite(p.Power) || p.Power < 0 {
			return PowerCurve{}, curveError("point %d: power %g must be a non-negative number", i, p.Power)
		}
		if i > 0 && p.WindSpeed <= speeds[i-1] {
			return PowerCurve{}, curveError("wind speeds must be strictly increasing: %g follows %g", p.WindSpeed, speeds[i-1])
		}
		speeds[i] = p.WindSpeed
		powers[i] = p.Power
	}
	return PowerCurve{speeds: speeds, powers: powers}, nil
}

// PowerAt returns the turbine output at speed. Exact knots return their stored
// value, speeds between knots interpolate linearly, and speeds outside the curve
// return zero.
func (c PowerCurve) PowerAt(speed float64) float64 {
	n := len(c.speeds)
	if n == 0 || math.IsNaN(speed) || speed < c.speeds[0] || speed > c.speeds[n-1] {
		return 0
	}

	i := sort.SearchFloat64s(c.speeds, speed)
	if c.speeds[i] == speed {
		return c.powers[i]
	}

	v0, v1 := c.speeds[i-1], c.speeds[i]
	p0, p1 := c.powers[i-1], c.powers[i]
	return p0 + (p1-p0)*(speed-v0)/(v1-v0)
}

// RatedPower returns the highest output on the curve.
func (c PowerCurve) RatedPower() float64 {
	rated := 0.0
	for _, p := range c.powers {
		rated = math.Max(rated, p)
	}
	return rated
}

// CutIn returns the lowest wind speed on the curve.
func (c PowerCurve) CutIn() float64 {
	if len(c.speeds) == 0 {
		return 0
	}
	return c.speeds[0]
}

// CutOut returns the highest wind speed on the curve.
func (c PowerCurve) CutOut() float64 {
	if len(c.speeds) == 0 {
		return 0
	}
	return c.speeds[len(c.speeds)-1]
}

// Knots returns the wind speeds at which the curve changes slope.
func (c PowerCurve) Knots() []float64 {
	return append([]float64(nil), c.speeds...)
}

// Points returns a copy of the curve's knots.
func (c PowerCurve) Points() []PowerCurvePoint {
	out := make([]PowerCurvePoint, len(c.speeds))
	for i := range c.speeds {
		out[i] = PowerCurvePoint{WindSpeed: c.speeds[i], Power: c.powers[i]}
	}
	return out
}

// Reference turbine: generic 3 MW onshore machine.
const (
	GenericCutIn      = 3.0
	GenericRatedSpeed = 12.0
	GenericCutOut     = 25.0
	GenericRatedKW    = 3000.0
)

// GenericTurbineCurve returns the reference 3 MW curve: a cubic ramp from cut-in
// to rated speed sampled every 0.5 m/s, then a rated plateau through cut-out.
func GenericTurbineCurve() PowerCurve {
	var points []PowerCurvePoint
	for v := GenericCutIn; v < GenericRatedSpeed; v += 0.5 {
		frac := (v - GenericCutIn) / (GenericRatedSpeed - GenericCutIn)
		points = append(points, PowerCurvePoint{WindSpeed: v, Power: GenericRatedKW * frac * frac * frac})
	}
	points = append(points,
		PowerCurvePoint{WindSpeed: GenericRatedSpeed, Power: GenericRatedKW},
		PowerCurvePoint{WindSpeed: GenericCutOut, Power: GenericRatedKW},
	)

	curve, err := NewPowerCurve(points)
	if err != nil {
		panic("domain: generic turbine curve: " + err.Error())
	}
	return curve
}

func curveError(format string, args ...any) error {
	return wrapf(ErrInvalidCurve, format, args...)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
