package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/metar-entity-sync/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer mirrors published station entities to a Kafka topic.
// It implements pipeline.EntitySink.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the mirror topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes the entity keyed by its entity ID, so every revision of a
// station lands on the same partition in order.
func (w *Writer) Publish(ctx context.Context, entity domain.StationEntity) error {
	msg, err := serializeToMessage(entity)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write entity %s: %w", entity.EntityID, err)
	}
	w.logger.Debug("mirrored entity to kafka", "entity_id", entity.EntityID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StationEntity into a Kafka message.
func serializeToMessage(entity domain.StationEntity) (kafkago.Message, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station entity: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(entity.EntityID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "flight_category", Value: []byte(entity.FlightCategory)},
			{Key: "disposition", Value: []byte(entity.Disposition)},
			{Key: "created_time", Value: []byte(entity.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
