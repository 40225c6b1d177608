package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/ticket-marketplace/payments/internal/events"
	"github.com/ticket-marketplace/payments/pkg/logger"
)

var _ events.Publisher = (*Publisher)(nil)

// Publisher implements events.Publisher over a Kafka topic. Messages are
// keyed by transaction ID so one transaction's lifecycle stays in order
// within a partition.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(l *logger.Logger, brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{
		writer: writer,
		logger: l,
	}
}

func (p *Publisher) Publish(ctx context.Context, env events.Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(env.Key),
		Value: value,
	}

	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message: topic=%s key=%s error=%v",
			p.writer.Topic, env.Key, err)
		return err
	}

	p.logger.Debug("Message published: topic=%s key=%s event_id=%s",
		p.writer.Topic, env.Key, env.EventID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
