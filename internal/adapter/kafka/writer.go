package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/epw-station-etl/internal/config"
	"github.com/couchcryptid/epw-station-etl/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes locations to a Kafka topic, keyed by WMO index.
// It implements pipeline.Loader.
type Writer struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured location topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, topic: cfg.KafkaTopic, logger: logger}
}

// Load serializes and publishes all locations in a single WriteMessages call.
func (w *Writer) Load(ctx context.Context, locations []domain.Location) error {
	if len(locations) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(locations))
	for i := range locations {
		msg, err := serializeToMessage(locations[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish locations to %s: %w", w.topic, err)
	}
	w.logger.Info("published locations", "topic", w.topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Location into a Kafka message.
func serializeToMessage(loc domain.Location) (kafkago.Message, error) {
	data, err := json.Marshal(loc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize location %s: %w", loc.WMOIndex, err)
	}
	return kafkago.Message{
		Key:   []byte(loc.WMOIndex),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "weather_source", Value: []byte(loc.SourceType)},
			{Key: "epw_url", Value: []byte(loc.SourceURL)},
		},
	}, nil
}
