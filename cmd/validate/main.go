// Command validate checks a scraper output CSV for column order, required
// fields, numeric ranges and WMO index uniqueness. Source types missing from
// the priority table are reported as a warning.
//
// Usage:
//
//	go run ./cmd/validate -csv output/weather_file_locations.csv [-min-rows 100] [-priority priority.yml]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strconv"

	"github.com/couchcryptid/epw-station-etl/internal/config"
	"github.com/couchcryptid/epw-station-etl/internal/domain"
)

// Column positions in domain.Columns.
const (
	colLocation = iota
	colRegion
	colCountry
	colSource
	colWMO
	colLatitude
	colLongitude
	colTZ
	colElevation
	colURL
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	advisory bool // failures are reported but do not fail the run
	errors   []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the scraper output CSV")
	minRows := flag.Int("min-rows", 1, "minimum number of data rows expected")
	priorityPath := flag.String("priority", "", "source priority YAML; unknown source types are reported")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*csvPath, *minRows, *priorityPath, os.Stdout))
}

func run(csvPath string, minRows int, priorityPath string, out io.Writer) int {
	fmt.Fprintln(out, "=== Weather Station CSV Validation ===")
	fmt.Fprintln(out)

	rows, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load csv: %v\n", err)
		return 1
	}

	priority := domain.DefaultSourcePriority
	if priorityPath != "" {
		priority, err = config.LoadPriorityFile(priorityPath)
		if err != nil {
			fmt.Fprintf(out, "FATAL: %v\n", err)
			return 1
		}
	}

	var header []string
	var data [][]string
	if len(rows) > 0 {
		header, data = rows[0], rows[1:]
	}

	phases := []*phase{
		validateSchema(header, data, minRows),
		validateFields(data),
		validateUniqueness(data),
		validateSourceTypes(data, domain.NewPriorityTable(priority)),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.passed():
		case p.advisory:
			status = fmt.Sprintf("\033[33mWARN (%d)\033[0m", len(p.errors))
		default:
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d\n", len(data))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Fprintf(out, "  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Fprintf(out, "  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

func loadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func validateSchema(header []string, data [][]string, minRows int) *phase {
	p := &phase{name: "Schema"}
	if !slices.Equal(header, domain.Columns) {
		p.errorf("header %v, want %v", header, domain.Columns)
	}
	if len(data) < minRows {
		p.errorf("%d data rows, want at least %d", len(data), minRows)
	}
	for i, row := range data {
		if len(row) != len(domain.Columns) {
			p.errorf("line %d: %d fields, want %d", i+2, len(row), len(domain.Columns))
		}
	}
	return p
}

func validateFields(data [][]string) *phase {
	p := &phase{name: "Field integrity"}
	ranges := []struct {
		col    int
		lo, hi float64
	}{
		{colLatitude, -90, 90},
		{colLongitude, -180, 180},
		{colTZ, -12, 14},
		{colElevation, -500, 9000},
	}

	for i, row := range data {
		line := i + 2
		if len(row) != len(domain.Columns) {
			continue
		}
		for _, col := range []int{colLocation, colCountry, colSource, colWMO, colURL} {
			if row[col] == "" {
				p.errorf("line %d: empty %s", line, domain.Columns[col])
			}
		}
		if r := row[colRegion]; r != "" && len(r) < 2 {
			p.errorf("line %d: placeholder region %q", line, r)
		}
		for _, rg := range ranges {
			v, err := strconv.ParseFloat(row[rg.col], 64)
			if err != nil {
				p.errorf("line %d: %s %q is not numeric", line, domain.Columns[rg.col], row[rg.col])
				continue
			}
			if v < rg.lo || v > rg.hi {
				p.errorf("line %d: %s %g outside [%g, %g]", line, domain.Columns[rg.col], v, rg.lo, rg.hi)
			}
		}
		if u, err := url.Parse(row[colURL]); row[colURL] != "" && (err != nil || (u.Scheme != "http" && u.Scheme != "https")) {
			p.errorf("line %d: epw_url %q is not an http(s) url", line, row[colURL])
		}
	}
	return p
}

func validateUniqueness(data [][]string) *phase {
	p := &phase{name: "WMO index uniqueness"}
	seen := make(map[string]int, len(data))
	for i, row := range data {
		if len(row) <= colWMO || row[colWMO] == "" {
			continue
		}
		wmo := row[colWMO]
		if first, dup := seen[wmo]; dup {
			p.errorf("line %d: wmo_index %s already on line %d", i+2, wmo, first)
			continue
		}
		seen[wmo] = i + 2
	}
	return p
}

func validateSourceTypes(data [][]string, priority domain.PriorityTable) *phase {
	p := &phase{name: "Source types ranked", advisory: true}
	for i, row := range data {
		if len(row) <= colSource {
			continue
		}
		if src := row[colSource]; priority.Rank(src) == priority.Floor() {
			p.errorf("line %d: weather_source %q has no rank", i+2, src)
		}
	}
	return p
}
