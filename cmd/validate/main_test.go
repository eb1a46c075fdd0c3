package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/epw-station-etl/internal/domain"
)

var header = strings.Join(domain.Columns, ",")

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestRun_Valid(t *testing.T) {
	path := writeCSV(t,
		header,
		"Paso Robles Municipal Arpt,CA,USA,TMY3,723965,35.67,-120.63,-8,244,https://x/a.epw",
		"Algiers,,DZA,IWEC,603900,36.72,3.25,1,25,https://x/b.epw",
	)
	var out bytes.Buffer
	assert.Equal(t, 0, run(path, 2, "", &out))
	assert.Contains(t, out.String(), "Rows: 2")
}

func TestRun_UnknownSourceWarnsOnly(t *testing.T) {
	path := writeCSV(t,
		header,
		"Kuwait Intl,,KWT,KISR,405820,29.22,47.98,3,55,https://x/k.epw",
	)
	var out bytes.Buffer
	assert.Equal(t, 0, run(path, 1, "", &out))
	assert.Contains(t, out.String(), "WARN (1)")
	assert.Contains(t, out.String(), `"KISR" has no rank`)
}

func TestRun_Failures(t *testing.T) {
	path := writeCSV(t,
		header,
		"Paso Robles,CA,USA,TMY3,723965,95,-120.63,-8,244,https://x/a.epw",
		"Paso Robles,-,USA,TMY2,723965,35.67,west,-8,244,ftp://x/b.epw",
	)
	var out bytes.Buffer
	assert.Equal(t, 1, run(path, 1, "", &out))

	s := out.String()
	assert.Contains(t, s, "latitude 95 outside")
	assert.Contains(t, s, `placeholder region "-"`)
	assert.Contains(t, s, `longitude "west" is not numeric`)
	assert.Contains(t, s, "not an http(s) url")
	assert.Contains(t, s, "wmo_index 723965 already on line 2")
}

func TestValidateSchema(t *testing.T) {
	p := validateSchema([]string{"location", "region"}, [][]string{{"a"}}, 2)
	require.Len(t, p.errors, 3)
	assert.Contains(t, p.errors[0], "header")
	assert.Contains(t, p.errors[1], "at least 2")
	assert.Contains(t, p.errors[2], "line 2: 1 fields")
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(filepath.Join(t.TempDir(), "nope.csv"), 1, "", &out))
	assert.Contains(t, out.String(), "FATAL")
}
