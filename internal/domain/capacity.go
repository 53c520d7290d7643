package domain

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultQuadratureTolerance bounds the change in capacity factor between two
	// successive refinements of the Weibull integral.
	DefaultQuadratureTolerance = 1e-6

	initialQuadratureNodes = 8
	maxQuadratureNodes     = 4096

	// rangeSlack absorbs floating-point noise at the [0, 1] bounds.
	rangeSlack = 1e-9
)

// CapacityFactorEstimator converts a wind regime and a power curve into the
// expected fraction of rated output.
type CapacityFactorEstimator struct {
	tolerance float64
}

// NewCapacityFactorEstimator returns an estimator that refines the Weibull
// integral until successive estimates differ by less than tolerance. A
// non-positive tolerance selects DefaultQuadratureTolerance.
func NewCapacityFactorEstimator(tolerance float64) CapacityFactorEstimator {
	if !(tolerance > 0) {
		tolerance = DefaultQuadratureTolerance
	}
	return CapacityFactorEstimator{tolerance: tolerance}
}

// Tolerance returns the convergence tolerance in use.
func (e CapacityFactorEstimator) Tolerance() float64 {
	if !(e.tolerance > 0) {
		return DefaultQuadratureTolerance
	}
	return e.tolerance
}

// Estimate returns the capacity factor in [0, 1]. Empirical regimes average the
// curve over the samples; Weibull regimes integrate the curve against the density.
func (e CapacityFactorEstimator) Estimate(dist WindSpeedDistribution, curve PowerCurve, ratedPower float64) (float64, error) {
	if !(ratedPower > 0) || math.IsInf(ratedPower, 0) {
		return 0, invalidInput("rated power must be positive, got %g", ratedPower)
	}
	if err := dist.validate(); err != nil {
		return 0, err
	}
	if len(curve.speeds) < 2 {
		return 0, curveError("power curve is not initialised")
	}

	var expected float64
	switch dist.kind {
	case DistributionEmpirical:
		expected = empiricalExpectedPower(dist.samples, curve)
	case DistributionWeibull:
		expected = e.weibullExpectedPower(dist, curve)
	}
	return checkCapacityFactor(expected / ratedPower)
}

func empiricalExpectedPower(samples []float64, curve PowerCurve) float64 {
	powers := make([]float64, len(samples))
	for i, v := range samples {
		powers[i] = curve.PowerAt(v)
	}
	return stat.Mean(powers, nil)
}

// weibullExpectedPower integrates P(v)·f(v) piecewise between curve knots so each
// Gauss-Legendre panel sees a smooth integrand. The curve is zero outside
// [cut-in, cut-out], so those knots bound the integral exactly.
func (e CapacityFactorEstimator) weibullExpectedPower(dist WindSpeedDistribution, curve PowerCurve) float64 {
	w := distuv.Weibull{K: dist.shapeK, Lambda: dist.scaleC}
	bounds := curve.Knots()

	integrand := func(v float64) float64 {
		return curve.PowerAt(v) * w.Prob(v)
	}

	// Tolerance applies to the whole integral in rated units, split evenly
	// across panels.
	panels := len(bounds) - 1
	tol := e.Tolerance() * curve.RatedPower() / float64(panels)

	var total float64
	for i := 1; i < len(bounds); i++ {
		total += refineFixed(integrand, bounds[i-1], bounds[i], tol)
	}
	return total
}

// refineFixed doubles the Legendre node count until two successive estimates
// agree within tol, returning the finest estimate.
func refineFixed(f func(float64) float64, a, b, tol float64) float64 {
	n := initialQuadratureNodes
	prev := quad.Fixed(f, a, b, n, nil, 0)
	for n < maxQuadratureNodes {
		n *= 2
		next := quad.Fixed(f, a, b, n, nil, 0)
		if math.Abs(next-prev) <= tol {
			return next
		}
		prev = next
	}
	return prev
}

func checkCapacityFactor(cf float64) (float64, error) {
	if math.IsNaN(cf) || cf < -rangeSlack || cf > 1+rangeSlack {
		return 0, wrapf(ErrCapacityFactorOutOfRange, "computed %g; check curve power against rated power", cf)
	}
	return math.Max(0, math.Min(1, cf)), nil
}

// ApplyDispatchDown reduces a capacity factor by the fraction of output curtailed
// by the grid operator.
func ApplyDispatchDown(cf, fraction float64) (float64, error) {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return 0, invalidInput("dispatch-down fraction must be within [0, 1], got %g", fraction)
	}
	return cf * (1 - fraction), nil
}
