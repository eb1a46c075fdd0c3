package domain

import "encoding/json"

// Feature is one entry of the GeoJSON weather index.
type Feature struct {
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry,omitempty"`
}

// Location is the parsed LOCATION record of an EPW header.
type Location struct {
	Name           string  `json:"location"`
	Region         string  `json:"region,omitempty"`
	Country        string  `json:"country,omitempty"`
	SourceType     string  `json:"weather_source"`
	WMOIndex       string  `json:"wmo_index"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	TimeZoneOffset float64 `json:"tz_offset"` // hours from UTC
	Elevation      float64 `json:"elevation"` // metres
	SourceURL      string  `json:"epw_url"`
}

// Columns is the tabular column order for Location output.
var Columns = []string{
	"location",
	"region",
	"country",
	"weather_source",
	"wmo_index",
	"latitude",
	"longitude",
	"tz_offset",
	"elevation",
	"epw_url",
}
