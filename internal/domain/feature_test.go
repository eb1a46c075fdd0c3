package domain

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAlgiersURL = "https://energyplus-weather.s3.amazonaws.com/africa_wmo_region_1/DZA/DZA_Algiers.603900_IWEC/DZA_Algiers.603900_IWEC.epw"

func feature(epw any) Feature {
	return Feature{Properties: map[string]any{"title": "Algiers", WeatherFileProperty: epw}}
}

func TestFeatureURL(t *testing.T) {
	base, err := url.Parse("https://energyplus.net/assets/master.geojson")
	require.NoError(t, err)

	t.Run("unquoted anchor", func(t *testing.T) {
		got, err := FeatureURL(0, feature("<a href="+testAlgiersURL+">Download Weather File</a>"), base)
		require.NoError(t, err)
		assert.Equal(t, testAlgiersURL, got)
	})

	t.Run("quoted anchor", func(t *testing.T) {
		got, err := FeatureURL(0, feature(`<a target="_blank" href="`+testAlgiersURL+`">Download</a>`), nil)
		require.NoError(t, err)
		assert.Equal(t, testAlgiersURL, got)
	})

	t.Run("bare url", func(t *testing.T) {
		got, err := FeatureURL(0, feature("  "+testAlgiersURL+" "), base)
		require.NoError(t, err)
		assert.Equal(t, testAlgiersURL, got)
	})

	t.Run("relative href resolves against index", func(t *testing.T) {
		got, err := FeatureURL(0, feature(`<a href="weather/DZA_Algiers.epw">Download</a>`), base)
		require.NoError(t, err)
		assert.Equal(t, "https://energyplus.net/assets/weather/DZA_Algiers.epw", got)
	})

	skips := []struct {
		name string
		f    Feature
	}{
		{"no properties", Feature{}},
		{"missing property", Feature{Properties: map[string]any{"title": "x"}}},
		{"not a string", feature(42.0)},
		{"empty string", feature("")},
		{"anchor without href", feature("<a>bad anchor</a>")},
		{"no anchor tag", feature("<p>some lovely text here</a>")},
		{"relative without base", feature("DZA_Algiers.epw")},
		{"unsupported scheme", feature("ftp://example.com/file.epw")},
	}
	for _, tc := range skips {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FeatureURL(7, tc.f, nil)
			var skipped *SkippedFeature
			require.ErrorAs(t, err, &skipped)
			assert.Equal(t, 7, skipped.Index)
			assert.NotEmpty(t, skipped.Reason)
		})
	}
}
