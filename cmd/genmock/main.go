// Command genmock writes a mock weather index and EPW header files so the
// scraper can run against a local static file server.
//
// Stations come from a CSV in the scraper's output format (the epw_url column
// is ignored) or, without -stations, from a built-in set that includes WMO
// collisions across source types.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock [-stations stations.csv] [-latin1] [-base-url http://localhost:8000/]
//
// Serve data/mock with any static file server on :8000, then:
//
//	INDEX_URL=http://localhost:8000/master.geojson go run ./cmd/scraper
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/couchcryptid/epw-station-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/epw-station-etl/internal/domain"
)

// defaultStations mirrors the shapes seen in the published index: duplicate
// WMO indexes from different sources, a placeholder region, and a name that
// needs Latin-1.
var defaultStations = []domain.Location{
	{Name: "Paso Robles Municipal Arpt", Region: "CA", Country: "USA", SourceType: "TMY3", WMOIndex: "723965", Latitude: 35.67, Longitude: -120.63, TimeZoneOffset: -8, Elevation: 244},
	{Name: "Paso Robles", Region: "CA", Country: "USA", SourceType: "TMY2", WMOIndex: "723965", Latitude: 35.67, Longitude: -120.63, TimeZoneOffset: -8, Elevation: 246},
	{Name: "Montreal Int'l", Region: "PQ", Country: "CAN", SourceType: "CWEC", WMOIndex: "716270", Latitude: 45.47, Longitude: -73.75, TimeZoneOffset: -5, Elevation: 36},
	{Name: "Montreal", Region: "PQ", Country: "CAN", SourceType: "IWEC", WMOIndex: "716270", Latitude: 45.47, Longitude: -73.75, TimeZoneOffset: -5, Elevation: 36},
	{Name: "São Paulo", Country: "BRA", SourceType: "SWERA", WMOIndex: "837800", Latitude: -23.62, Longitude: -46.65, TimeZoneOffset: -3, Elevation: 803},
	{Name: "Algiers", Country: "DZA", SourceType: "IWEC", WMOIndex: "603900", Latitude: 36.72, Longitude: 3.25, TimeZoneOffset: 1, Elevation: 25},
}

// Trailing header lines written after LOCATION; the scraper ignores them.
var headerTail = []string{
	"DESIGN CONDITIONS,0",
	"TYPICAL/EXTREME PERIODS,0",
	"GROUND TEMPERATURES,0",
	"HOLIDAYS/DAYLIGHT SAVINGS,No,0,0,0",
	"COMMENTS 1,Generated mock header",
	"COMMENTS 2,",
	"DATA PERIODS,1,1,Data,Sunday, 1/ 1,12/31",
}

type geoJSONFeature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   geoJSONPoint   `json:"geometry"`
}

type geoJSONPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type featureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for master.geojson and EPW files")
	stationsPath := flag.String("stations", "", "CSV of stations in scraper output format (default: built-in set)")
	latin1 := flag.Bool("latin1", false, "encode EPW headers as ISO-8859-1 instead of UTF-8")
	baseURL := flag.String("base-url", "", "absolute URL prefix for EPW links (default: relative links)")
	withBroken := flag.Bool("with-broken", true, "add a feature without a link and a file without a LOCATION line")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	stations := defaultStations
	if *stationsPath != "" {
		var err error
		stations, err = csvfile.ReadFile(*stationsPath)
		if err != nil {
			return fmt.Errorf("reading stations: %w", err)
		}
	}

	var base *url.URL
	if *baseURL != "" {
		var err error
		base, err = url.Parse(*baseURL)
		if err != nil {
			return fmt.Errorf("parse -base-url: %w", err)
		}
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fc := featureCollection{Type: "FeatureCollection"}
	for _, st := range stations {
		name := fileName(st)
		if err := writeHeader(filepath.Join(*outDir, name), domain.FormatLocationLine(st), *latin1); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		fc.Features = append(fc.Features, newFeature(st.Name, st.Longitude, st.Latitude, link(base, name)))
	}

	if *withBroken {
		const orphan = "ZZZ_Broken.000000_Test.epw"
		if err := writeHeader(filepath.Join(*outDir, orphan), "", false); err != nil {
			return fmt.Errorf("writing %s: %w", orphan, err)
		}
		fc.Features = append(fc.Features,
			newFeature("No Link", 0, 0, ""),
			newFeature("No Location Line", 0, 0, link(base, orphan)),
		)
	}

	indexPath := filepath.Join(*outDir, "master.geojson")
	if err := writeJSON(indexPath, fc); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	log.Printf("wrote %s: %d features, %d stations", indexPath, len(fc.Features), len(stations))
	return nil
}

// fileName follows the published naming, e.g. USA_CA_Paso.Robles.723965_TMY3.epw.
func fileName(loc domain.Location) string {
	region := loc.Region
	if region == "" {
		region = "XX"
	}
	name := strings.Join(strings.FieldsFunc(loc.Name, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), ".")
	return fmt.Sprintf("%s_%s_%s.%s_%s.epw", loc.Country, region, name, loc.WMOIndex, loc.SourceType)
}

func link(base *url.URL, name string) string {
	href := name
	if base != nil {
		href = base.ResolveReference(&url.URL{Path: name}).String()
	}
	return fmt.Sprintf(`<a href=%s>Download Weather File</a>`, href)
}

func newFeature(title string, lon, lat float64, epw string) geoJSONFeature {
	props := map[string]any{"title": title}
	if epw != "" {
		props[domain.WeatherFileProperty] = epw
	}
	return geoJSONFeature{
		Type:       "Feature",
		Properties: props,
		Geometry:   geoJSONPoint{Type: "Point", Coordinates: [2]float64{lon, lat}},
	}
}

func writeHeader(path, locationLine string, latin1 bool) error {
	lines := append([]string{}, headerTail...)
	if locationLine != "" {
		lines = append([]string{locationLine}, lines...)
	}
	text := strings.Join(lines, "\r\n") + "\r\n"

	if latin1 {
		encoded, err := charmap.ISO8859_1.NewEncoder().String(text)
		if err != nil {
			return fmt.Errorf("encode latin-1: %w", err)
		}
		text = encoded
	}
	return os.WriteFile(path, []byte(text), 0o644) //nolint:gosec // served as static fixtures
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644) //nolint:gosec // served as static fixtures
}
