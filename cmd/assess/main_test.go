package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wind-site-assessment/internal/domain"
)

var fixture = filepath.Join("..", "..", "internal", "domain", "testdata", "site_query.json")

func TestRun_QueryFile(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-query", fixture}, strings.NewReader(""), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	var result domain.AssessmentResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Equal(t, domain.StatusOK, result.Status)
	assert.Equal(t, "req-belmullet-001", result.RequestID)
	require.NotNil(t, result.Summary)
	assert.Equal(t, "Erris North", result.Summary.Name)
	assert.Equal(t, domain.MethodWeibull, result.Summary.CapacityFactorMethod)
	assert.Equal(t, "sub-bellacorick", result.Summary.NearestGridFeatureID)
	assert.Contains(t, stdout.String(), "\n  \"id\"", "output should be indented")
}

func TestRun_Stdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	query := `{
		"point": {"lon": 0, "lat": 0},
		"reference": {"height_m": 10, "speed_ms": 6},
		"roughness": {"hellmann_exponent": 0.14},
		"hub_height_m": 80,
		"grid_features": [{"id": "g", "coordinates": [[0, 1], [0, 2]]}]
	}`

	code := run([]string{"-law", "power"}, strings.NewReader(query), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	var result domain.AssessmentResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.InDelta(t, 111.2, result.Summary.DistanceToGridKm, 0.1)
}

func TestRun_EngineFailureExitsOne(t *testing.T) {
	var stdout, stderr bytes.Buffer
	query := `{
		"point": {"lon": 0, "lat": 0},
		"reference": {"height_m": 10, "speed_ms": 6},
		"roughness": {"hellmann_exponent": 0.14},
		"law": "power",
		"hub_height_m": 80,
		"grid_features": []
	}`

	code := run(nil, strings.NewReader(query), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), `"status": "failed"`)
	assert.Contains(t, stderr.String(), "assessment failed")
}

func TestRun_MalformedQuery(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(nil, strings.NewReader(`{"point":`), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "malformed site query")
}

func TestRun_UnknownLaw(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-law", "cubic"}, strings.NewReader("{}"), &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "cubic")
}

func TestRun_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-query", "does-not-exist.json"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "read query")
}
