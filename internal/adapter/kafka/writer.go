package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/astrolark/natal-chart-service/internal/domain"
)

// Writer publishes completed charts to a Kafka topic.
// It implements service.ChartPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured chart topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes the chart and writes it keyed by chart ID, so replays of
// the same chart land in one partition.
func (w *Writer) Publish(ctx context.Context, chart domain.NatalChart) error {
	msg, err := serializeToMessage(chart)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write chart message: %w", err)
	}
	w.logger.Debug("chart published", "chart_id", chart.ID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a chart into a Kafka message.
func serializeToMessage(chart domain.NatalChart) (kafkago.Message, error) {
	data, err := json.Marshal(chart)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize chart: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(chart.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "house_system", Value: []byte(chart.HouseSystem)},
			{Key: "mapped_at", Value: []byte(chart.MappedAt.Format(time.RFC3339))},
		},
	}, nil
}
