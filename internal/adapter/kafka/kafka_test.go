package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wind-site-assessment/internal/domain"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("req-1"),
		Value:     []byte(`{"request_id":"req-1"}`),
		Topic:     "site-assessment-requests",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("planning-portal")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("req-1"), raw.Key)
	assert.JSONEq(t, `{"request_id":"req-1"}`, string(raw.Value))
	assert.Equal(t, "site-assessment-requests", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "planning-portal", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestToMessage(t *testing.T) {
	result := domain.AssessmentResult{
		ID:         "5f1b3c2a-9d7e-4c1f-8a6b-2e3d4c5b6a79",
		Status:     domain.StatusOK,
		Summary:    &domain.SiteSummary{CapacityFactor: 0.38},
		AssessedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	event, err := domain.SerializeResult(result)
	require.NoError(t, err)

	msg := toMessage(event)

	assert.Equal(t, []byte(result.ID), msg.Key)
	assert.Contains(t, string(msg.Value), `"capacity_factor":0.38`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "assessed_at", msg.Headers[0].Key)
	assert.Equal(t, []byte("2026-03-01T09:30:00Z"), msg.Headers[0].Value)
	assert.Equal(t, "status", msg.Headers[1].Key)
	assert.Equal(t, []byte("ok"), msg.Headers[1].Value)
}

func TestToMessage_NoHeaders(t *testing.T) {
	msg := toMessage(domain.OutputEvent{Key: []byte("k"), Value: []byte("{}")})

	assert.Empty(t, msg.Headers)
	assert.Equal(t, []byte("{}"), msg.Value)
}
