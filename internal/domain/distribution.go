package domain

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DistributionKind tells an empirical sample series from a parametric Weibull fit.
type DistributionKind string

const (
	DistributionEmpirical DistributionKind = "empirical"
	DistributionWeibull   DistributionKind = "weibull"
)

// WindSpeedDistribution is the wind regime over an assessment period, either as an
// ordered series of speed samples or as a two-parameter Weibull distribution.
type WindSpeedDistribution struct {
	kind    DistributionKind
	samples []float64
	shapeK  float64
	scaleC  float64
}

// EmpiricalDistribution wraps a series of speed samples in m/s. The slice is copied.
func EmpiricalDistribution(samples []float64) WindSpeedDistribution {
	return WindSpeedDistribution{
		kind:    DistributionEmpirical,
		samples: append([]float64(nil), samples...),
	}
}

// WeibullDistribution returns a parametric regime with shape k and scale c (m/s).
func WeibullDistribution(shapeK, scaleC float64) WindSpeedDistribution {
	return WindSpeedDistribution{kind: DistributionWeibull, shapeK: shapeK, scaleC: scaleC}
}

// RayleighFromMean returns the Weibull k=2 distribution whose mean equals meanSpeed.
// It stands in for a measured regime when only a mean speed is known.
func RayleighFromMean(meanSpeed float64) (WindSpeedDistribution, error) {
	if !(meanSpeed > 0) || math.IsInf(meanSpeed, 0) {
		return WindSpeedDistribution{}, invalidInput("mean speed must be positive to derive a Rayleigh regime, got %g", meanSpeed)
	}
	return WeibullDistribution(2, meanSpeed/math.Gamma(1.5)), nil
}

func (d WindSpeedDistribution) Kind() DistributionKind { return d.kind }

// Samples returns a copy of the empirical samples; nil for a Weibull distribution.
func (d WindSpeedDistribution) Samples() []float64 {
	if d.kind != DistributionEmpirical {
		return nil
	}
	return append([]float64(nil), d.samples...)
}

func (d WindSpeedDistribution) ShapeK() float64 { return d.shapeK }

func (d WindSpeedDistribution) ScaleC() float64 { return d.scaleC }

// Scaled multiplies every speed in the distribution by factor: each sample for an
// empirical series, the scale parameter for a Weibull fit (shape is unchanged).
func (d WindSpeedDistribution) Scaled(factor float64) WindSpeedDistribution {
	switch d.kind {
	case DistributionEmpirical:
		out := make([]float64, len(d.samples))
		for i, s := range d.samples {
			out[i] = s * factor
		}
		return WindSpeedDistribution{kind: DistributionEmpirical, samples: out}
	case DistributionWeibull:
		return WeibullDistribution(d.shapeK, d.scaleC*factor)
	default:
		return d
	}
}

// Mean returns the expected wind speed of the distribution.
func (d WindSpeedDistribution) Mean() float64 {
	switch d.kind {
	case DistributionEmpirical:
		if len(d.samples) == 0 {
			return 0
		}
		return stat.Mean(d.samples, nil)
	case DistributionWeibull:
		return distuv.Weibull{K: d.shapeK, Lambda: d.scaleC}.Mean()
	default:
		return 0
	}
}

func (d WindSpeedDistribution) validate() error {
	switch d.kind {
	case DistributionEmpirical:
		if len(d.samples) == 0 {
			return invalidInput("empirical distribution has no samples")
		}
		for i, s := range d.samples {
			if !finite(s) || s < 0 {
				return invalidInput("sample %d: wind speed %g must be a non-negative number", i, s)
			}
		}
	case DistributionWeibull:
		if !(d.shapeK > 0) || math.IsInf(d.shapeK, 0) {
			return invalidInput("Weibull shape k must be positive, got %g", d.shapeK)
		}
		if !(d.scaleC > 0) || math.IsInf(d.scaleC, 0) {
			return invalidInput("Weibull scale c must be positive, got %g", d.scaleC)
		}
	default:
		return invalidInput("wind speed distribution is not set")
	}
	return nil
}
