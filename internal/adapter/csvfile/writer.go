// Package csvfile writes scraped locations to a CSV artifact.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/epw-station-etl/internal/domain"
)

// Writer stores locations as CSV at a fixed path. It implements pipeline.Loader.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a CSV writer for path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Load writes a header row followed by one row per location, replacing any
// existing file. With no locations it logs a warning and leaves the path untouched.
func (w *Writer) Load(_ context.Context, locations []domain.Location) error {
	if len(locations) == 0 {
		w.logger.Warn("no locations to write", "path", w.path)
		return nil
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	cw := csv.NewWriter(tmp)
	if err := cw.Write(domain.Columns); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, loc := range locations {
		if err := cw.Write(Record(loc)); err != nil {
			tmp.Close() //nolint:errcheck,gosec // write error takes precedence
			return fmt.Errorf("write csv row %s: %w", loc.WMOIndex, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("move output file into place: %w", err)
	}

	w.logger.Info("wrote locations", "path", w.path, "count", len(locations))
	return nil
}

// Record renders a location as a CSV row in domain.Columns order.
func Record(loc domain.Location) []string {
	return []string{
		loc.Name,
		loc.Region,
		loc.Country,
		loc.SourceType,
		loc.WMOIndex,
		formatFloat(loc.Latitude),
		formatFloat(loc.Longitude),
		formatFloat(loc.TimeZoneOffset),
		formatFloat(loc.Elevation),
		loc.SourceURL,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
