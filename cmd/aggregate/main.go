// Command aggregate runs the load-validate-aggregate pipeline over a data
// directory and prints the per-province severity table and summary as JSON.
//
// Usage:
//
//	go run ./cmd/aggregate -data-dir data \
//	  -datasets flood_cases,wildfire_cases -years 2020,2021
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/couchcryptid/cat-loss-atlas/internal/domain"
	"github.com/couchcryptid/cat-loss-atlas/internal/loader"
	"github.com/couchcryptid/cat-loss-atlas/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type output struct {
	Datasets []loader.DatasetInfo     `json:"datasets"`
	Failures map[string]string        `json:"failures,omitempty"`
	Result   domain.AggregationResult `json:"result"`
}

func run() error {
	dataDir := flag.String("data-dir", "data", "directory containing case data files")
	datasetsFlag := flag.String("datasets", "", "comma-separated dataset ids (empty = all)")
	yearsFlag := flag.String("years", "", "comma-separated years (empty = all)")
	catalogPath := flag.String("catalog", "", "optional JSON region catalog file")
	debug := flag.Bool("debug", false, "dump the full result to stderr")
	flag.Parse()

	req := domain.AggregationRequest{DatasetIDs: splitList(*datasetsFlag)}
	for _, part := range splitList(*yearsFlag) {
		year, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("invalid year %q", part)
		}
		req.Years = append(req.Years, year)
	}

	catalog := domain.DefaultCatalog()
	if *catalogPath != "" {
		var err error
		if catalog, err = domain.LoadCatalogFile(*catalogPath); err != nil {
			return err
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	metrics := observability.NewMetrics()

	store := loader.NewStore(*dataDir, loader.New(catalog, logger, metrics), logger, metrics)
	if err := store.LoadAll(); err != nil {
		return err
	}
	if !store.Ready() {
		return fmt.Errorf("no datasets loaded from %s", *dataDir)
	}

	result := domain.Aggregate(store.Datasets(req.DatasetIDs), req)
	if *debug {
		spew.Fdump(os.Stderr, result)
	}

	return writeOutput(os.Stdout, output{
		Datasets: store.List(),
		Failures: store.Failures(),
		Result:   result,
	})
}

func writeOutput(w io.Writer, out output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func splitList(v string) []string {
	var parts []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
