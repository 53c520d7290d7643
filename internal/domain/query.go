package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedQuery marks a site query that could not be decoded or is missing
// required fields. Numeric ranges are left to the engine so that failures carry
// the stage that rejected them.
var ErrMalformedQuery = errors.New("malformed site query")

var validate = validator.New(validator.WithRequiredStructEnabled())

// SiteQuery is the wire form of a site assessment request, shared by the Kafka
// source topic and the HTTP API.
type SiteQuery struct {
	RequestID    string             `json:"request_id,omitempty" validate:"omitempty,max=128"`
	Name         string             `json:"name,omitempty" validate:"omitempty,max=256"`
	Point        *Point             `json:"point" validate:"required"`
	Reference    *ReferenceQuery    `json:"reference" validate:"required"`
	Roughness    RoughnessQuery     `json:"roughness"`
	Law          string             `json:"law,omitempty" validate:"omitempty,oneof=power log POWER_LAW LOG_LAW power_law log_law"`
	HubHeightM   *float64           `json:"hub_height_m" validate:"required"`
	Turbine      *TurbineQuery      `json:"turbine,omitempty"`
	Distribution *DistributionQuery `json:"distribution,omitempty"`
	DispatchDown float64            `json:"dispatch_down,omitempty"`
	GridFeatures []GridFeatureQuery `json:"grid_features" validate:"dive"`
}

// ReferenceQuery is the measured wind at the reference height.
type ReferenceQuery struct {
	HeightM   *float64  `json:"height_m" validate:"required"`
	SpeedMS   *float64  `json:"speed_ms" validate:"required"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// RoughnessQuery sets exactly one of the two terrain representations.
type RoughnessQuery struct {
	RoughnessLengthM *float64 `json:"roughness_length_m,omitempty"`
	HellmannExponent *float64 `json:"hellmann_exponent,omitempty"`
}

// TurbineQuery carries a custom power curve. RatedPowerKW defaults to the curve's
// highest output when omitted.
type TurbineQuery struct {
	RatedPowerKW *float64          `json:"rated_power_kw,omitempty"`
	Curve        []PowerCurvePoint `json:"curve" validate:"required"`
}

// DistributionQuery sets either empirical samples or a Weibull fit, both at the
// reference height.
type DistributionQuery struct {
	SamplesMS []float64     `json:"samples_ms,omitempty"`
	Weibull   *WeibullQuery `json:"weibull,omitempty"`
}

type WeibullQuery struct {
	ShapeK float64 `json:"shape_k"`
	ScaleC float64 `json:"scale_c"`
}

// GridFeatureQuery is a grid asset with [lon, lat] coordinate pairs.
type GridFeatureQuery struct {
	ID           string      `json:"id" validate:"required"`
	VoltageClass string      `json:"voltage_class,omitempty"`
	Coordinates  [][]float64 `json:"coordinates" validate:"dive,len=2"`
}

// ParseSiteQuery decodes and shape-checks a JSON site query.
func ParseSiteQuery(data []byte) (SiteQuery, error) {
	var q SiteQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return SiteQuery{}, fmt.Errorf("%w: %w", ErrMalformedQuery, err)
	}
	if err := validate.Struct(q); err != nil {
		return SiteQuery{}, fmt.Errorf("%w: %w", ErrMalformedQuery, err)
	}
	return q, nil
}

// ToInput converts a parsed query into engine input. defaultLaw applies when the
// query names no law. Conversion failures are attributed to the stage that owns
// the offending field.
func (q SiteQuery) ToInput(defaultLaw ProfileLaw) (SiteInput, error) {
	if q.Point == nil || q.Reference == nil || q.Reference.HeightM == nil || q.Reference.SpeedMS == nil || q.HubHeightM == nil {
		return SiteInput{}, fmt.Errorf("%w: point, reference and hub_height_m are required", ErrMalformedQuery)
	}

	law := defaultLaw
	if q.Law != "" {
		parsed, err := ParseProfileLaw(q.Law)
		if err != nil {
			return SiteInput{}, &StageError{Stage: StageWindProfile, Err: err}
		}
		law = parsed
	}

	roughness, err := q.Roughness.profile()
	if err != nil {
		return SiteInput{}, &StageError{Stage: StageWindProfile, Err: err}
	}

	turbine, err := q.turbine()
	if err != nil {
		return SiteInput{}, &StageError{Stage: StageCapacityFactor, Err: err}
	}

	dist, err := q.Distribution.distribution()
	if err != nil {
		return SiteInput{}, &StageError{Stage: StageCapacityFactor, Err: err}
	}

	features := make([]GridFeature, len(q.GridFeatures))
	for i, f := range q.GridFeatures {
		geom := make([]Point, len(f.Coordinates))
		for j, c := range f.Coordinates {
			geom[j] = Point{Lon: c[0], Lat: c[1]}
		}
		features[i] = GridFeature{ID: f.ID, Geometry: geom, VoltageClass: f.VoltageClass}
	}

	return SiteInput{
		QueryPoint: *q.Point,
		Reference: WindObservation{
			Height:    *q.Reference.HeightM,
			Speed:     *q.Reference.SpeedMS,
			Timestamp: q.Reference.Timestamp,
		},
		Roughness:    roughness,
		Law:          law,
		HubHeight:    *q.HubHeightM,
		Turbine:      turbine,
		Distribution: dist,
		DispatchDown: q.DispatchDown,
		GridFeatures: features,
	}, nil
}

func (r RoughnessQuery) profile() (RoughnessProfile, error) {
	switch {
	case r.RoughnessLengthM != nil && r.HellmannExponent != nil:
		return RoughnessProfile{}, invalidInput("set either roughness_length_m or hellmann_exponent, not both")
	case r.RoughnessLengthM != nil:
		return RoughnessLength(*r.RoughnessLengthM), nil
	case r.HellmannExponent != nil:
		return HellmannExponent(*r.HellmannExponent), nil
	default:
		return RoughnessProfile{}, invalidInput("roughness_length_m or hellmann_exponent is required")
	}
}

func (q SiteQuery) turbine() (Turbine, error) {
	if q.Turbine == nil {
		return GenericTurbine(), nil
	}
	curve, err := NewPowerCurve(q.Turbine.Curve)
	if err != nil {
		return Turbine{}, err
	}
	rated := curve.RatedPower()
	if q.Turbine.RatedPowerKW != nil {
		rated = *q.Turbine.RatedPowerKW
	}
	return Turbine{Curve: curve, RatedPower: rated}, nil
}

func (d *DistributionQuery) distribution() (*WindSpeedDistribution, error) {
	if d == nil {
		return nil, nil
	}
	var dist WindSpeedDistribution
	switch {
	case len(d.SamplesMS) > 0 && d.Weibull != nil:
		return nil, invalidInput("set either samples_ms or weibull, not both")
	case len(d.SamplesMS) > 0:
		dist = EmpiricalDistribution(d.SamplesMS)
	case d.Weibull != nil:
		dist = WeibullDistribution(d.Weibull.ShapeK, d.Weibull.ScaleC)
	default:
		return nil, invalidInput("distribution needs samples_ms or weibull")
	}
	return &dist, nil
}
