//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("site-assessor-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type siteFixture struct {
	Expect struct {
		Nearest    string  `json:"nearest"`
		DistanceKm float64 `json:"distance_km"`
	} `json:"expect"`
	Query json.RawMessage `json:"query"`
}

// mockSite is a ready-to-publish site query with its expected nearest feature.
type mockSite struct {
	RequestID  string
	Nearest    string
	DistanceKm float64
	Payload    []byte
}

// loadMockData reads the Irish site fixtures shared with the pipeline tests and
// returns each query with the common grid features inlined.
func loadMockData(t *testing.T) []mockSite {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "pipeline", "testdata", "irish_sites.json"))
	require.NoError(t, err)

	var fixture struct {
		GridFeatures json.RawMessage `json:"grid_features"`
		Sites        []siteFixture   `json:"sites"`
	}
	require.NoError(t, json.Unmarshal(data, &fixture))

	sites := make([]mockSite, 0, len(fixture.Sites))
	for _, s := range fixture.Sites {
		var fields map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(s.Query, &fields))
		fields["grid_features"] = fixture.GridFeatures

		var id string
		require.NoError(t, json.Unmarshal(fields["request_id"], &id))

		payload, err := json.Marshal(fields)
		require.NoError(t, err)
		sites = append(sites, mockSite{
			RequestID:  id,
			Nearest:    s.Expect.Nearest,
			DistanceKm: s.Expect.DistanceKm,
			Payload:    payload,
		})
	}
	return sites
}
