package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/prayer-month-builder/internal/config"
	"github.com/couchcryptid/prayer-month-builder/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces publication notices to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured notice topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one notice for a built month.
func (w *Writer) Publish(ctx context.Context, pub domain.Publication) error {
	msg, err := serializeToMessage(pub)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish month: %w", err)
	}
	w.logger.Info("publication notice sent", "region", pub.Region, "month", pub.Month, "sha256", pub.SHA256)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Publication into a Kafka message keyed by
// region and month, so notices for one month stay on one partition.
func serializeToMessage(pub domain.Publication) (kafkago.Message, error) {
	data, err := json.Marshal(pub)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize publication: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(pub.Region + "/" + pub.Month),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "region", Value: []byte(pub.Region)},
			{Key: "sha256", Value: []byte(pub.SHA256)},
		},
	}, nil
}
