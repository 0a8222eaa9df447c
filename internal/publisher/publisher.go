// Package publisher emits report service events to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/sahakari/internal/events"
)

// Publisher announces completed exports.
type Publisher interface {
	PublishExport(ctx context.Context, evt events.ReportExported) error
}

// MessageWriter is the subset of KafkaProducer used by ExportPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

// ExportPublisher writes report.exported events keyed by subject.
type ExportPublisher struct {
	writer MessageWriter
	topic  string
}

// NewExportPublisher constructs an ExportPublisher writing to topic.
func NewExportPublisher(writer MessageWriter, topic string) *ExportPublisher {
	return &ExportPublisher{writer: writer, topic: topic}
}

// PublishExport implements Publisher.
func (p *ExportPublisher) PublishExport(ctx context.Context, evt events.ReportExported) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, p.topic, kafka.Message{
		Key:   []byte(evt.Subject),
		Value: body,
		Time:  evt.ExportedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(events.TypeReportExported)},
			{Key: "produced_at", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	})
}

// Noop discards events. It is used when no brokers are configured.
type Noop struct{}

// PublishExport implements Publisher.
func (Noop) PublishExport(context.Context, events.ReportExported) error { return nil }
