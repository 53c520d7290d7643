package httpadapter_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wind-site-assessment/internal/adapter/httpadapter"
	"github.com/couchcryptid/wind-site-assessment/internal/domain"
	"github.com/couchcryptid/wind-site-assessment/internal/observability"
	"github.com/couchcryptid/wind-site-assessment/internal/pipeline"
)

const siteQueryJSON = `{
	"name": "Erris North",
	"point": {"lon": -9.3, "lat": 53.9},
	"reference": {"height_m": 10, "speed_ms": 7},
	"roughness": {"roughness_length_m": 0.03},
	"hub_height_m": 100,
	"grid_features": [
		{"id": "sub-bellacorick", "voltage_class": "110kV", "coordinates": [[-9.3, 54.0]]}
	]
}`

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type stubAssessor struct {
	result domain.AssessmentResult
	calls  int
}

func (s *stubAssessor) Assess(_ context.Context, _ domain.SiteQuery) domain.AssessmentResult {
	s.calls++
	return s.result
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(readyErr error, assessor httpadapter.Assessor) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, assessor, discardLogger())
}

func newEngineServer() *httpadapter.Server {
	tfm := pipeline.NewTransformer(
		domain.NewAggregator(domain.DefaultAggregatorConfig()),
		domain.LawLog,
		nil,
		clockwork.NewFakeClockAt(time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)),
		discardLogger(),
		observability.NewMetricsForTesting(),
	)
	return newTestServer(nil, tfm)
}

func postAssessment(srv http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/assessments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil, &stubAssessor{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil, &stubAssessor{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("no batch loaded yet"), &stubAssessor{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "no batch loaded yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil, &stubAssessor{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAssessReturns200WithSummary(t *testing.T) {
	rec := postAssessment(newEngineServer(), siteQueryJSON)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result domain.AssessmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, domain.StatusOK, result.Status)
	require.NotNil(t, result.Summary)
	assert.Equal(t, "Erris North", result.Summary.Name)
	assert.Equal(t, "sub-bellacorick", result.Summary.NearestGridFeatureID)
	assert.Greater(t, result.Summary.CapacityFactor, 0.0)
	assert.LessOrEqual(t, result.Summary.CapacityFactor, 1.0)
}

func TestAssessReturns400ForMalformedJSON(t *testing.T) {
	assessor := &stubAssessor{}
	rec := postAssessment(newTestServer(nil, assessor), `{"point":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "malformed_query", body["kind"])
	assert.NotEmpty(t, body["error"])
	assert.Zero(t, assessor.calls)
}

func TestAssessReturns400ForMissingFields(t *testing.T) {
	rec := postAssessment(newEngineServer(), `{"point": {"lon": 0, "lat": 0}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed_query")
}

func TestAssessReturns422ForEngineFailure(t *testing.T) {
	rec := postAssessment(newEngineServer(), strings.Replace(siteQueryJSON,
		`"grid_features": [
		{"id": "sub-bellacorick", "voltage_class": "110kV", "coordinates": [[-9.3, 54.0]]}
	]`, `"grid_features": []`, 1))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "grid_lookup", body["stage"])
	assert.Equal(t, "empty_feature_set", body["kind"])
	assert.NotEmpty(t, body["id"])
}

func TestAssessReturns400ForStagelessFailure(t *testing.T) {
	assessor := &stubAssessor{result: domain.AssessmentResult{
		ID:      "a-1",
		Status:  domain.StatusFailed,
		Failure: &domain.AssessmentFailure{Kind: "malformed_query", Message: "malformed site query"},
	}}

	rec := postAssessment(newTestServer(nil, assessor), siteQueryJSON)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, assessor.calls)
}

func TestAssessRejectsOversizedBody(t *testing.T) {
	assessor := &stubAssessor{}
	body := `{"name":"` + strings.Repeat("x", 9<<20) + `"}`

	rec := postAssessment(newTestServer(nil, assessor), body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, assessor.calls)
}

func TestAssessRejectsGet(t *testing.T) {
	srv := newTestServer(nil, &stubAssessor{})
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/assessments", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
