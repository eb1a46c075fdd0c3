package domain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testURL          = "https://fake.epw/url"
	testPasoRobles   = "LOCATION,Paso Robles Municipal Arpt,CA,USA,TMY3,723965,35.67,-120.63,-8.0,244.0"
	testPasoName     = "Paso Robles Municipal Arpt"
	testGenevaIWEC   = "LOCATION,GENEVA,-,CHE,IWEC Data,067000,46.25,6.13,1.0,416.0"
	testMissingField = "LOCATION,Paso Robles Municipal Arpt,CA,USA,TMY3,723965,35.67,-120.63,-8.0"
)

func TestParseLocationLine(t *testing.T) {
	t.Run("valid line", func(t *testing.T) {
		loc, err := ParseLocationLine(testPasoRobles, testURL)
		require.NoError(t, err)

		assert.Equal(t, Location{
			Name:           testPasoName,
			Region:         "CA",
			Country:        "USA",
			SourceType:     "TMY3",
			WMOIndex:       "723965",
			Latitude:       35.67,
			Longitude:      -120.63,
			TimeZoneOffset: -8.0,
			Elevation:      244.0,
			SourceURL:      testURL,
		}, loc)
	})

	t.Run("name is title cased", func(t *testing.T) {
		loc, err := ParseLocationLine(testGenevaIWEC, testURL)
		require.NoError(t, err)
		assert.Equal(t, "Geneva", loc.Name)

		loc, err = ParseLocationLine("LOCATION,PASO rObLeS municipal ARPt,CA,USA,TMY3,723965,35.67,-120.63,-8.0,244.0", testURL)
		require.NoError(t, err)
		assert.Equal(t, testPasoName, loc.Name)
	})

	t.Run("placeholder region is blank", func(t *testing.T) {
		loc, err := ParseLocationLine(testGenevaIWEC, testURL)
		require.NoError(t, err)
		assert.Empty(t, loc.Region)
		assert.Equal(t, "CHE", loc.Country)
	})

	t.Run("source type is cleaned", func(t *testing.T) {
		loc, err := ParseLocationLine(testGenevaIWEC, testURL)
		require.NoError(t, err)
		assert.Equal(t, "IWEC", loc.SourceType)
		assert.Equal(t, "067000", loc.WMOIndex)
	})

	t.Run("surrounding whitespace trimmed", func(t *testing.T) {
		loc, err := ParseLocationLine("LOCATION , Chicago Ohare Intl Ap , IL , USA , TMY3 , 725300 , 41.98 , -87.92 , -6.0 , 201.0 ", testURL)
		require.NoError(t, err)
		assert.Equal(t, "Chicago Ohare Intl Ap", loc.Name)
		assert.Equal(t, "IL", loc.Region)
		assert.Equal(t, "725300", loc.WMOIndex)
		assert.Equal(t, 201.0, loc.Elevation)
	})

	t.Run("empty name still parses", func(t *testing.T) {
		loc, err := ParseLocationLine("LOCATION,,CA,USA,TMY3,723965,35.67,-120.63,-8.0,244.0", testURL)
		require.NoError(t, err)
		assert.Empty(t, loc.Name)
	})

	t.Run("trailing fields ignored", func(t *testing.T) {
		loc, err := ParseLocationLine(testPasoRobles+",EXTRA_FIELD,another", testURL)
		require.NoError(t, err)
		assert.Equal(t, 244.0, loc.Elevation)
	})

	t.Run("lowercase marker", func(t *testing.T) {
		_, err := ParseLocationLine("location,Paso Robles,CA,USA,TMY3,723965,35.67,-120.63,-8.0,244.0", testURL)
		require.NoError(t, err)
	})

	t.Run("surrounded by unrelated lines", func(t *testing.T) {
		text := "COMMENTS 1,Custom/User Format\n\n" + testPasoRobles + "\r\nDESIGN CONDITIONS,0\r\n"
		loc, err := ParseLocationLine(text, testURL)
		require.NoError(t, err)
		assert.Equal(t, "723965", loc.WMOIndex)
	})

	t.Run("marker must be the whole first token", func(t *testing.T) {
		_, err := ParseLocationLine("NOLOCATION,Paso Robles,CA,USA,TMY3,723965,35.67,-120.63,-8.0,244.0", testURL)
		require.ErrorIs(t, err, ErrLocationLineNotFound)
	})

	t.Run("no marker line", func(t *testing.T) {
		_, err := ParseLocationLine("DESIGN CONDITIONS,0\nCOMMENTS 1,nothing here\n", testURL)
		require.ErrorIs(t, err, ErrLocationLineNotFound)
		assert.Contains(t, err.Error(), "metadata line not found")

		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, testURL, perr.URL)
	})

	t.Run("too few fields", func(t *testing.T) {
		_, err := ParseLocationLine(testMissingField, testURL)
		require.ErrorIs(t, err, ErrMalformedLocationLine)
		assert.Contains(t, err.Error(), "malformed metadata line")
	})

	t.Run("empty WMO index", func(t *testing.T) {
		_, err := ParseLocationLine("LOCATION,Paso Robles,CA,USA,TMY3, ,35.67,-120.63,-8.0,244.0", testURL)
		require.ErrorIs(t, err, ErrMalformedLocationLine)
	})

	t.Run("non-numeric fields are named", func(t *testing.T) {
		cases := map[string]string{
			"latitude":  "LOCATION,Paso Robles,CA,USA,TMY3,723965,north,-120.63,-8.0,244.0",
			"longitude": "LOCATION,Paso Robles,CA,USA,TMY3,723965,35.67,,-8.0,244.0",
			"tz_offset": "LOCATION,Paso Robles,CA,USA,TMY3,723965,35.67,-120.63,PST,244.0",
			"elevation": "LOCATION,Paso Robles,CA,USA,TMY3,723965,35.67,-120.63,-8.0,244m",
		}
		for field, line := range cases {
			_, err := ParseLocationLine(line, testURL)
			require.ErrorIs(t, err, ErrNonNumericField, field)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, field, perr.Field)
			assert.Contains(t, err.Error(), field)
		}
	})
}

func TestParseLocationLine_RoundTrip(t *testing.T) {
	want := Location{
		Name:           "Chicago Ohare Intl Ap",
		Region:         "IL",
		Country:        "USA",
		SourceType:     "TMY3",
		WMOIndex:       "725300",
		Latitude:       41.983333,
		Longitude:      -87.916667,
		TimeZoneOffset: -6,
		Elevation:      201.5,
		SourceURL:      testURL,
	}

	got, err := ParseLocationLine(FormatLocationLine(want), testURL)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseLocationLine_SampleHeader(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "sample_epw_header_tmy3.epw"))
	require.NoError(t, err)

	loc, err := ParseLocationLine(DecodeHeader(raw), testURL)
	require.NoError(t, err)
	assert.Equal(t, testPasoName, loc.Name)
	assert.Equal(t, "723965", loc.WMOIndex)
	assert.Equal(t, -8.0, loc.TimeZoneOffset)
}

func TestCleanSourceType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"TMY2-23232", "TMY2"},
		{"IWEC Data", "IWEC"},
		{"--WYEC2-B-14636", "WYEC2"},
		{"  TMY--40309", "TMY"},
		{"TMY3", "TMY3"},
		{" -- ", "--"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanSourceType(tc.in))
		})
	}
}

func TestFormatLocationLine(t *testing.T) {
	loc := Location{
		Name:       "Geneva",
		Country:    "CHE",
		SourceType: "IWEC",
		WMOIndex:   "067000",
		Latitude:   46.25,
		Longitude:  6.13,
		Elevation:  416,
	}
	assert.Equal(t, "LOCATION,Geneva,-,CHE,IWEC,067000,46.25,6.13,0,416", FormatLocationLine(loc))
}
