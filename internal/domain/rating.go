package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Default grid connection cost model: a fixed substation bay plus a per-km line cost.
var (
	DefaultConnectionBaseEUR  = decimal.NewFromInt(250_000)
	DefaultConnectionPerKmEUR = decimal.NewFromInt(25_000)
)

// CostModel prices a grid connection from its length.
type CostModel struct {
	BaseEUR  decimal.Decimal
	PerKmEUR decimal.Decimal
}

// DefaultCostModel returns the 250k EUR + 25k EUR/km model.
func DefaultCostModel() CostModel {
	return CostModel{BaseEUR: DefaultConnectionBaseEUR, PerKmEUR: DefaultConnectionPerKmEUR}
}

// ConnectionCost returns the estimated cost in EUR, rounded to whole euros.
func (m CostModel) ConnectionCost(distanceKm float64) decimal.Decimal {
	km := decimal.NewFromFloat(math.Max(0, distanceKm))
	return m.BaseEUR.Add(m.PerKmEUR.Mul(km)).Round(0)
}

// Wind resource classes by hub-height mean speed.
const (
	WindClassWeak        = "weak"
	WindClassModerate    = "moderate"
	WindClassStrong      = "strong"
	WindClassExceptional = "exceptional"
)

// ClassifyWind buckets a hub-height mean wind speed in m/s.
func ClassifyWind(speed float64) string {
	switch {
	case speed > 9.5:
		return WindClassExceptional
	case speed > 8.0:
		return WindClassStrong
	case speed > 6.5:
		return WindClassModerate
	default:
		return WindClassWeak
	}
}

// Generation potential classes by capacity factor.
const (
	PotentialPoor      = "poor"
	PotentialModest    = "modest"
	PotentialSolid     = "solid"
	PotentialExcellent = "excellent"
)

// ClassifyPotential buckets a capacity factor.
func ClassifyPotential(cf float64) string {
	switch {
	case cf < 0.15:
		return PotentialPoor
	case cf < 0.30:
		return PotentialModest
	case cf < 0.45:
		return PotentialSolid
	default:
		return PotentialExcellent
	}
}

// ScoreWeights sets the contribution of each sub-score to the viability score.
// Weights are normalised by their sum.
type ScoreWeights struct {
	Wind     float64
	Grid     float64
	Capacity float64
}

// DefaultScoreWeights favours the wind resource, then grid access.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Wind: 0.5, Grid: 0.3, Capacity: 0.2}
}

// WindScore maps hub-height speed to [0, 1]: nothing below 6 m/s, full marks from
// 10 m/s, logistic in between.
func WindScore(speed float64) float64 {
	switch {
	case speed < 6:
		return 0
	case speed >= 10:
		return 1
	default:
		return 1 / (1 + math.Exp(-2*(speed-8)))
	}
}

// GridScore maps connection distance in km to [0, 1].
func GridScore(distanceKm float64) float64 {
	var s float64
	switch {
	case distanceKm <= 5:
		s = 1
	case distanceKm <= 15:
		s = 1 - 0.3*(distanceKm-5)/10
	case distanceKm <= 30:
		s = 0.7 - 0.4*(distanceKm-15)/15
	default:
		s = 0.3 * math.Exp(-(distanceKm-30)/20)
	}
	return math.Max(0, math.Min(1, s))
}

// CapacityScore maps a capacity factor to [0, 1], saturating at 0.5.
func CapacityScore(cf float64) float64 {
	return math.Max(0, math.Min(1, cf/0.5))
}

// Viability combines the three sub-scores into a weighted composite in [0, 1].
func (w ScoreWeights) Viability(speed, cf, distanceKm float64) float64 {
	total := w.Wind + w.Grid + w.Capacity
	if !(total > 0) {
		w, total = DefaultScoreWeights(), 1
	}
	score := (w.Wind*WindScore(speed) + w.Grid*GridScore(distanceKm) + w.Capacity*CapacityScore(cf)) / total
	return math.Max(0, math.Min(1, score))
}

// Development zone categories.
const (
	ZoneExcellent = "excellent"
	ZoneGood      = "good"
	ZoneModerate  = "moderate"
	ZoneMarginal  = "marginal"
)

// CategorizeZone grades a site for development. Each category needs the
// viability score, hub-height speed in m/s and grid distance in km to all
// clear its thresholds.
func CategorizeZone(viability, speed, distanceKm float64) string {
	switch {
	case viability >= 0.8 && speed >= 8.5 && distanceKm <= 15:
		return ZoneExcellent
	case viability >= 0.65 && speed >= 7.5 && distanceKm <= 25:
		return ZoneGood
	case viability >= 0.45 && speed >= 6.5 && distanceKm <= 35:
		return ZoneModerate
	default:
		return ZoneMarginal
	}
}
