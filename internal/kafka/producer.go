package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	EventWorkstationCreated = "workstation.created"
	EventWorkstationUpdated = "workstation.updated"
	EventWorkstationDeleted = "workstation.deleted"
	EventTicketCreated      = "ticket.created"
	EventTicketStatus       = "ticket.status_changed"
)

// DeskEventProducer publishes desk lifecycle events. Implementations must
// not block the request that triggered the event for long and never fail it.
type DeskEventProducer interface {
	Produce(ctx context.Context, event string, payload map[string]interface{})
}

// Producer writes desk events to one Kafka topic (best effort).
type Producer struct {
	writer *kafka.Writer
	topic  string
	log    zerolog.Logger
}

// NewProducer returns a producer. With no brokers or no topic every call is a
// no-op.
func NewProducer(brokers []string, topic string, log zerolog.Logger) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{log: log}
	}
	return &Producer{
		topic: topic,
		log:   log,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Producer) Enabled() bool { return p.writer != nil }

func (p *Producer) Produce(ctx context.Context, event string, payload map[string]interface{}) {
	if p.writer == nil {
		return
	}
	msg := map[string]interface{}{"event": event}
	for k, v := range payload {
		msg[k] = v
	}
	body, err := json.Marshal(msg)
	if err != nil {
		p.log.Warn().Err(err).Str("event", event).Msg("kafka: marshal desk event")
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(event), Value: body}); err != nil {
		p.log.Warn().Err(err).Str("event", event).Msg("kafka: write desk event")
	}
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
