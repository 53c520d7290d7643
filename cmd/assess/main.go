// Command assess runs a single site query through the assessment engine and
// prints the result as indented JSON. It exits non-zero when the query is
// malformed or the assessment fails.
//
// Usage:
//
//	go run ./cmd/assess -query testdata/site_query.json
//	go run ./cmd/assess -law power -tolerance 1e-8 < query.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/wind-site-assessment/internal/domain"
	"github.com/couchcryptid/wind-site-assessment/internal/observability"
	"github.com/couchcryptid/wind-site-assessment/internal/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("assess", flag.ContinueOnError)
	fs.SetOutput(stderr)
	queryPath := fs.String("query", "-", "site query JSON file, - for stdin")
	law := fs.String("law", "log", "wind profile law when the query names none (log|power)")
	tolerance := fs.Float64("tolerance", domain.DefaultQuadratureTolerance, "Weibull quadrature convergence tolerance")
	tieEpsilon := fs.Float64("tie-epsilon", domain.DefaultTieEpsilonKm, "grid equidistance epsilon in km")
	verbose := fs.Bool("v", false, "log to stderr at debug level")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	defaultLaw, err := domain.ParseProfileLaw(*law)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	data, err := readQuery(*queryPath, stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	q, err := domain.ParseSiteQuery(data)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	// Stdout carries the result, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := domain.DefaultAggregatorConfig()
	cfg.QuadratureTolerance = *tolerance
	cfg.TieEpsilonKm = *tieEpsilon

	transformer := pipeline.NewTransformer(
		domain.NewAggregator(cfg),
		defaultLaw,
		nil,
		nil,
		logger,
		observability.NewMetricsWith(prometheus.NewRegistry()),
	)
	result := transformer.Assess(context.Background(), q)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if result.Status != domain.StatusOK {
		fmt.Fprintf(stderr, "assessment failed: %s\n", result.Failure.Message)
		return 1
	}
	return 0
}

func readQuery(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query: %w", err)
	}
	return data, nil
}
