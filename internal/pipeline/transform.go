package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wind-site-assessment/internal/domain"
	"github.com/couchcryptid/wind-site-assessment/internal/observability"
)

// SiteTransformer assesses site queries with the engine, names sites through an
// optional geocoder, and stamps results with an ID and assessment time.
type SiteTransformer struct {
	aggregator *domain.Aggregator
	defaultLaw domain.ProfileLaw
	geocoder   domain.Geocoder
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewTransformer creates a SiteTransformer. Pass a nil geocoder to disable site
// naming and a nil clock to use wall time.
func NewTransformer(aggregator *domain.Aggregator, defaultLaw domain.ProfileLaw, geocoder domain.Geocoder, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *SiteTransformer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SiteTransformer{
		aggregator: aggregator,
		defaultLaw: defaultLaw,
		geocoder:   geocoder,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// Assess runs one site query through the engine. Engine failures are reported in
// the returned result rather than as an error.
func (t *SiteTransformer) Assess(ctx context.Context, q domain.SiteQuery) domain.AssessmentResult {
	start := t.clock.Now()
	defer func() {
		t.metrics.AssessmentDuration.Observe(t.clock.Since(start).Seconds())
	}()

	result := domain.AssessmentResult{
		ID:         uuid.NewString(),
		RequestID:  q.RequestID,
		AssessedAt: start.UTC(),
	}

	summary, err := t.summarize(q)
	if err != nil {
		result.Status = domain.StatusFailed
		result.Failure = domain.NewFailure(err)
		t.logger.Warn("site assessment failed",
			"assessment_id", result.ID,
			"request_id", q.RequestID,
			"stage", result.Failure.Stage,
			"kind", result.Failure.Kind,
			"error", err,
		)
		stage := string(result.Failure.Stage)
		if stage == "" {
			stage = "input"
		}
		t.metrics.Assessments.WithLabelValues(string(domain.StatusFailed)).Inc()
		t.metrics.AssessmentFailures.WithLabelValues(stage, result.Failure.Kind).Inc()
		return result
	}

	summary.ID = result.ID
	summary.Name = q.Name
	summary.AssessedAt = result.AssessedAt
	summary = domain.EnrichWithPlaceName(ctx, summary, t.geocoder, t.logger)

	t.metrics.Assessments.WithLabelValues(string(domain.StatusOK)).Inc()
	t.metrics.CapacityFactor.Observe(summary.CapacityFactor)
	t.metrics.DistanceToGridKm.Observe(summary.DistanceToGridKm)
	t.logger.Debug("site assessed",
		"assessment_id", result.ID,
		"capacity_factor", summary.CapacityFactor,
		"hub_speed_ms", summary.HubHeightWindSpeed,
		"grid_feature", summary.NearestGridFeatureID,
		"distance_km", summary.DistanceToGridKm,
	)

	result.Status = domain.StatusOK
	result.Summary = &summary
	return result
}

func (t *SiteTransformer) summarize(q domain.SiteQuery) (domain.SiteSummary, error) {
	in, err := q.ToInput(t.defaultLaw)
	if err != nil {
		return domain.SiteSummary{}, err
	}
	return t.aggregator.Summarize(in)
}

// Transform decodes a site query from the source topic, assesses it, and
// serializes the result. Only undecodable messages return an error.
func (t *SiteTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	q, err := domain.ParseSiteQuery(raw.Value)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("parse site query: %w", err)
	}
	if q.RequestID == "" && len(raw.Key) > 0 {
		q.RequestID = string(raw.Key)
	}

	return domain.SerializeResult(t.Assess(ctx, q))
}
