package domain

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LocationMarker is the first field of the EPW LOCATION line.
const LocationMarker = "LOCATION"

// locationFieldCount is the marker plus the nine positional fields.
const locationFieldCount = 10

const (
	fieldName = iota + 1
	fieldRegion
	fieldCountry
	fieldSourceType
	fieldWMOIndex
	fieldLatitude
	fieldLongitude
	fieldTimeZone
	fieldElevation
)

var (
	// sourceTypeRe matches the leading alphanumeric token of a source type,
	// e.g. "IWEC Data" -> "IWEC", "--WYEC2-B-14636" -> "WYEC2".
	sourceTypeRe = regexp.MustCompile(`[A-Za-z0-9]+`)
)

// ParseLocationLine finds the LOCATION line in decoded header text and parses
// it into a Location attributed to sourceURL. Unrelated lines before or after
// the LOCATION line are ignored.
func ParseLocationLine(text, sourceURL string) (Location, error) {
	line, ok := findLocationLine(text)
	if !ok {
		return Location{}, &ParseError{URL: sourceURL, Err: ErrLocationLineNotFound}
	}

	fields := strings.Split(line, ",")
	if len(fields) < locationFieldCount {
		return Location{}, &ParseError{URL: sourceURL, Err: ErrMalformedLocationLine}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if fields[fieldWMOIndex] == "" {
		return Location{}, &ParseError{URL: sourceURL, Field: "wmo_index", Err: ErrMalformedLocationLine}
	}

	loc := Location{
		Name:       titleCase(fields[fieldName]),
		Region:     normalizeRegion(fields[fieldRegion]),
		Country:    fields[fieldCountry],
		SourceType: CleanSourceType(fields[fieldSourceType]),
		WMOIndex:   fields[fieldWMOIndex],
		SourceURL:  sourceURL,
	}

	numeric := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"latitude", fields[fieldLatitude], &loc.Latitude},
		{"longitude", fields[fieldLongitude], &loc.Longitude},
		{"tz_offset", fields[fieldTimeZone], &loc.TimeZoneOffset},
		{"elevation", fields[fieldElevation], &loc.Elevation},
	}
	for _, n := range numeric {
		v, err := strconv.ParseFloat(n.raw, 64)
		if err != nil {
			return Location{}, &ParseError{URL: sourceURL, Field: n.name, Err: ErrNonNumericField}
		}
		*n.dst = v
	}

	return loc, nil
}

// findLocationLine returns the first line whose first comma-delimited token is
// the LOCATION marker, compared case-insensitively.
func findLocationLine(text string) (string, bool) {
	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\r\n")
		marker, _, _ := strings.Cut(line, ",")
		if strings.EqualFold(strings.TrimSpace(marker), LocationMarker) {
			return line, true
		}
	}
	return "", false
}

// titleCase builds a Caser per call; Casers are stateful.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// normalizeRegion blanks placeholder regions such as "-".
func normalizeRegion(region string) string {
	if len(region) < 2 {
		return ""
	}
	return region
}

// CleanSourceType reduces a raw source type to its leading alphanumeric token.
// Returns the trimmed input when it holds no alphanumerics.
func CleanSourceType(raw string) string {
	if tok := sourceTypeRe.FindString(raw); tok != "" {
		return tok
	}
	return strings.TrimSpace(raw)
}

// FormatLocationLine renders loc as an EPW LOCATION line.
func FormatLocationLine(loc Location) string {
	region := loc.Region
	if region == "" {
		region = "-"
	}
	return strings.Join([]string{
		LocationMarker,
		loc.Name,
		region,
		loc.Country,
		loc.SourceType,
		loc.WMOIndex,
		formatFloat(loc.Latitude),
		formatFloat(loc.Longitude),
		formatFloat(loc.TimeZoneOffset),
		formatFloat(loc.Elevation),
	}, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
