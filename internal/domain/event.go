package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// AssessmentStatus reports whether a site assessment produced a summary.
type AssessmentStatus string

const (
	StatusOK     AssessmentStatus = "ok"
	StatusFailed AssessmentStatus = "failed"
)

// AssessmentFailure describes why an assessment produced no summary.
type AssessmentFailure struct {
	Stage   Stage  `json:"stage,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// AssessmentResult is the reply to one site query: either a complete summary or
// a failure, never both.
type AssessmentResult struct {
	ID         string             `json:"id"`
	RequestID  string             `json:"request_id,omitempty"`
	Status     AssessmentStatus   `json:"status"`
	Summary    *SiteSummary       `json:"summary,omitempty"`
	Failure    *AssessmentFailure `json:"failure,omitempty"`
	AssessedAt time.Time          `json:"assessed_at"`
}

// NewFailure classifies err into a wire-friendly failure record.
func NewFailure(err error) *AssessmentFailure {
	stage, _ := FailedStage(err)
	return &AssessmentFailure{
		Stage:   stage,
		Kind:    ErrorKind(err),
		Message: err.Error(),
	}
}

// SerializeResult marshals a result into a sink-topic event keyed by the
// assessment ID, with status and assessed_at headers for consumers that route
// without decoding the body.
func SerializeResult(result AssessmentResult) (OutputEvent, error) {
	value, err := json.Marshal(result)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("marshal assessment result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(result.ID),
		Value: value,
		Headers: map[string]string{
			"status":      string(result.Status),
			"assessed_at": result.AssessedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
