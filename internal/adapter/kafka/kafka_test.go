package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/epw-station-etl/internal/config"
	"github.com/couchcryptid/epw-station-etl/internal/domain"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testLocation() domain.Location {
	return domain.Location{
		Name:           "Paso Robles Municipal Arpt",
		Region:         "CA",
		Country:        "USA",
		SourceType:     "TMY3",
		WMOIndex:       "723965",
		Latitude:       35.67,
		Longitude:      -120.63,
		TimeZoneOffset: -8,
		Elevation:      244,
		SourceURL:      "https://example.org/USA_CA_Paso.Robles.723965_TMY3.epw",
	}
}

func testWriter(fw *fakeWriter) *Writer {
	return &Writer{writer: fw, topic: "weather-station-locations", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSerializeToMessage(t *testing.T) {
	loc := testLocation()

	msg, err := serializeToMessage(loc)
	require.NoError(t, err)

	assert.Equal(t, []byte("723965"), msg.Key)
	assert.Contains(t, string(msg.Value), `"wmo_index":"723965"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "weather_source", msg.Headers[0].Key)
	assert.Equal(t, []byte("TMY3"), msg.Headers[0].Value)
	assert.Equal(t, "epw_url", msg.Headers[1].Key)
	assert.Equal(t, []byte(loc.SourceURL), msg.Headers[1].Value)

	var roundtrip domain.Location
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))
	assert.Equal(t, loc, roundtrip)
}

func TestWriter_Load(t *testing.T) {
	fw := &fakeWriter{}
	w := testWriter(fw)

	second := testLocation()
	second.WMOIndex = "723940"
	require.NoError(t, w.Load(context.Background(), []domain.Location{testLocation(), second}))

	require.Len(t, fw.msgs, 2)
	assert.Equal(t, []byte("723965"), fw.msgs[0].Key)
	assert.Equal(t, []byte("723940"), fw.msgs[1].Key)

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestWriter_Load_Empty(t *testing.T) {
	fw := &fakeWriter{err: errors.New("must not be called")}
	require.NoError(t, testWriter(fw).Load(context.Background(), nil))
}

func TestWriter_Load_Error(t *testing.T) {
	fw := &fakeWriter{err: errors.New("leader not available")}
	err := testWriter(fw).Load(context.Background(), []domain.Location{testLocation()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather-station-locations")
	assert.Contains(t, err.Error(), "leader not available")
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "stations"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	kw, ok := w.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "stations", kw.Topic)
	assert.Equal(t, "stations", w.topic)
}
