package domain

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Capacity factor methods recorded on a SiteSummary.
const (
	MethodEmpirical = "empirical"
	MethodWeibull   = "weibull"
	MethodRayleigh  = "rayleigh_from_mean"
)

// Turbine is the machine under evaluation: its power curve and the rated power the
// capacity factor is measured against, in the curve's units.
type Turbine struct {
	Curve      PowerCurve
	RatedPower float64
}

// GenericTurbine returns the reference 3 MW turbine.
func GenericTurbine() Turbine {
	return Turbine{Curve: GenericTurbineCurve(), RatedPower: GenericRatedKW}
}

// SiteInput carries every caller-supplied dataset needed to assess one site.
// Distribution, when set, describes the regime at the reference height; when nil
// a Rayleigh regime is derived from the hub-height speed.
type SiteInput struct {
	QueryPoint   Point
	Reference    WindObservation
	Roughness    RoughnessProfile
	Law          ProfileLaw
	HubHeight    float64
	Turbine      Turbine
	Distribution *WindSpeedDistribution
	DispatchDown float64
	GridFeatures []GridFeature
}

// SiteSummary is the assessment of one site. The engine fills the measured
// fields; ID, Name, PlaceName and AssessedAt are stamped by the service layer.
type SiteSummary struct {
	ID                      string          `json:"id,omitempty"`
	Name                    string          `json:"name,omitempty"`
	PlaceName               string          `json:"place_name,omitempty"`
	QueryPoint              Point           `json:"query_point"`
	HubHeight               float64         `json:"hub_height_m"`
	HubHeightWindSpeed      float64         `json:"hub_height_wind_speed_ms"`
	CapacityFactor          float64         `json:"capacity_factor"`
	CapacityFactorMethod    string          `json:"capacity_factor_method"`
	NearestGridFeatureID    string          `json:"nearest_grid_feature_id"`
	NearestGridVoltageClass string          `json:"nearest_grid_voltage_class,omitempty"`
	NearestGridPoint        Point           `json:"nearest_grid_point"`
	DistanceToGridKm        float64         `json:"distance_to_grid_km"`
	GridConnectionCostEUR   decimal.Decimal `json:"grid_connection_cost_eur"`
	WindClass               string          `json:"wind_class"`
	PotentialClass          string          `json:"potential_class"`
	ViabilityScore          float64         `json:"viability_score"`
	ZoneCategory            string          `json:"zone_category"`
	AssessedAt              time.Time       `json:"assessed_at,omitzero"`
}

// AggregatorConfig holds the tunables consumed by the engine.
type AggregatorConfig struct {
	QuadratureTolerance float64
	TieEpsilonKm        float64
	Cost                CostModel
	Weights             ScoreWeights
}

// DefaultAggregatorConfig returns the engine defaults.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		QuadratureTolerance: DefaultQuadratureTolerance,
		TieEpsilonKm:        DefaultTieEpsilonKm,
		Cost:                DefaultCostModel(),
		Weights:             DefaultScoreWeights(),
	}
}

// Aggregator assesses a single site by combining wind profile extrapolation,
// capacity factor estimation and grid lookup. It is immutable and safe for
// concurrent use.
type Aggregator struct {
	estimator CapacityFactorEstimator
	locator   GridLocator
	cost      CostModel
	weights   ScoreWeights
}

// NewAggregator builds an Aggregator from cfg.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	return &Aggregator{
		estimator: NewCapacityFactorEstimator(cfg.QuadratureTolerance),
		locator:   NewGridLocator(cfg.TieEpsilonKm),
		cost:      cfg.Cost,
		weights:   cfg.Weights,
	}
}

type windResult struct {
	hubSpeed float64
	cf       float64
	method   string
}

// Summarize assesses one site. The wind/capacity path and the grid path run
// concurrently and are joined before returning. On failure no summary is
// returned; the error is the *StageError of the failed step, or both stage
// errors joined in pipeline order when both paths fail.
func (a *Aggregator) Summarize(in SiteInput) (SiteSummary, error) {
	var (
		wg      sync.WaitGroup
		wind    windResult
		grid    GridConnection
		windErr error
		gridErr error
	)

	wg.Go(func() {
		wind, windErr = a.assessWind(in)
	})
	wg.Go(func() {
		var err error
		grid, err = a.locator.Nearest(in.QueryPoint, in.GridFeatures)
		if err != nil {
			gridErr = &StageError{Stage: StageGridLookup, Err: err}
		}
	})
	wg.Wait()

	switch {
	case windErr != nil && gridErr != nil:
		return SiteSummary{}, errors.Join(windErr, gridErr)
	case windErr != nil:
		return SiteSummary{}, windErr
	case gridErr != nil:
		return SiteSummary{}, gridErr
	}

	viability := a.weights.Viability(wind.hubSpeed, wind.cf, grid.DistanceKm)
	return SiteSummary{
		QueryPoint:              in.QueryPoint,
		HubHeight:               in.HubHeight,
		HubHeightWindSpeed:      wind.hubSpeed,
		CapacityFactor:          wind.cf,
		CapacityFactorMethod:    wind.method,
		NearestGridFeatureID:    grid.FeatureID,
		NearestGridVoltageClass: grid.VoltageClass,
		NearestGridPoint:        grid.Nearest,
		DistanceToGridKm:        grid.DistanceKm,
		GridConnectionCostEUR:   a.cost.ConnectionCost(grid.DistanceKm),
		WindClass:               ClassifyWind(wind.hubSpeed),
		PotentialClass:          ClassifyPotential(wind.cf),
		ViabilityScore:          viability,
		ZoneCategory:            CategorizeZone(viability, wind.hubSpeed, grid.DistanceKm),
	}, nil
}

func (a *Aggregator) assessWind(in SiteInput) (windResult, error) {
	hubSpeed, err := Extrapolate(in.Reference, in.HubHeight, in.Roughness, in.Law)
	if err != nil {
		return windResult{}, &StageError{Stage: StageWindProfile, Err: err}
	}
	factor, err := ProfileScaleFactor(in.Reference.Height, in.HubHeight, in.Roughness, in.Law)
	if err != nil {
		return windResult{}, &StageError{Stage: StageWindProfile, Err: err}
	}

	cf, method, err := a.capacityFactor(in, hubSpeed, factor)
	if err != nil {
		return windResult{}, &StageError{Stage: StageCapacityFactor, Err: err}
	}
	return windResult{hubSpeed: hubSpeed, cf: cf, method: method}, nil
}

func (a *Aggregator) capacityFactor(in SiteInput, hubSpeed, factor float64) (float64, string, error) {
	var (
		dist   WindSpeedDistribution
		method string
	)
	switch {
	case in.Distribution != nil:
		dist = in.Distribution.Scaled(factor)
		method = MethodEmpirical
		if dist.Kind() == DistributionWeibull {
			method = MethodWeibull
		}
	case hubSpeed == 0:
		// Rayleigh with zero mean degenerates to a point mass at calm.
		dist = EmpiricalDistribution([]float64{0})
		method = MethodRayleigh
	default:
		var err error
		if dist, err = RayleighFromMean(hubSpeed); err != nil {
			return 0, "", err
		}
		method = MethodRayleigh
	}

	cf, err := a.estimator.Estimate(dist, in.Turbine.Curve, in.Turbine.RatedPower)
	if err != nil {
		return 0, "", err
	}
	cf, err = ApplyDispatchDown(cf, in.DispatchDown)
	if err != nil {
		return 0, "", err
	}
	return cf, method, nil
}
