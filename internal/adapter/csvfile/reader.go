package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/couchcryptid/epw-station-etl/internal/domain"
)

// ErrHeaderMismatch means the first row is not domain.Columns.
var ErrHeaderMismatch = errors.New("csv header does not match location columns")

// ReadFile reads locations written by Writer.
func ReadFile(path string) ([]domain.Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLocations(f)
}

// ReadLocations parses CSV in domain.Columns order, header row included.
func ReadLocations(r io.Reader) ([]domain.Location, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(domain.Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if !slices.Equal(header, domain.Columns) {
		return nil, fmt.Errorf("%w: got %v", ErrHeaderMismatch, header)
	}

	var locations []domain.Location
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return locations, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		loc, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		locations = append(locations, loc)
	}
}

func parseRecord(rec []string) (domain.Location, error) {
	loc := domain.Location{
		Name:       rec[0],
		Region:     rec[1],
		Country:    rec[2],
		SourceType: rec[3],
		WMOIndex:   rec[4],
		SourceURL:  rec[9],
	}
	numeric := []struct {
		col int
		dst *float64
	}{
		{5, &loc.Latitude},
		{6, &loc.Longitude},
		{7, &loc.TimeZoneOffset},
		{8, &loc.Elevation},
	}
	for _, n := range numeric {
		v, err := strconv.ParseFloat(rec[n.col], 64)
		if err != nil {
			return domain.Location{}, fmt.Errorf("%s: %w", domain.Columns[n.col], domain.ErrNonNumericField)
		}
		*n.dst = v
	}
	return loc, nil
}
