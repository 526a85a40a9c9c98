// Command genmock writes sample hazard case CSVs for local development and
// manual testing. The generated files carry the exact headers the loader
// requires and exercise the label shapes found in real case data: plain
// abbreviations, comma-separated lists, group labels, and the recurring
// "Prairies" misspelling.
//
// Usage:
//
//	go run ./cmd/genmock -out data
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

var header = []string{"Provinces", "Event_year", "Total_losses_in_billions"}

var fixtures = map[string][][]string{
	"flood_cases.csv": {
		{"ON", "2019", "0.9"},
		{"QC", "2019", "0.7"},
		{"ON, QC", "2020", "1.4"},
		{"BC", "2021", "2.1"},
		{"Maritimes", "2021", "0.6"},
	},
	"wildfire_cases.csv": {
		{"BC", "2021", "3.2"},
		{"AB", "2019", "1.1"},
		{"Priaries", "2020", "0.8"},
		{"NT", "2021", "0.2"},
	},
	"hail_cases.csv": {
		{"AB", "2020", "1.3"},
		{"SK", "2020", "0.4"},
		{"Prairies", "2021", "0.9"},
	},
}

func main() {
	out := flag.String("out", "data", "output directory for sample CSVs")
	flag.Parse()

	if err := run(*out); err != nil {
		log.Fatal(err)
	}
}

func run(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for name, rows := range fixtures {
		path := filepath.Join(dir, name)
		if err := writeCSV(path, rows); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Printf("wrote %s (%d rows)\n", path, len(rows))
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
