package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/tgroups/internal/config"
	"github.com/turtacn/tgroups/internal/domain/service"
	"github.com/turtacn/tgroups/pkg/logger"
)

// messageWriter is the subset of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ service.EventPublisher = (*KafkaProducer)(nil)

// KafkaProducer publishes membership events to a Kafka topic.
type KafkaProducer struct {
	writer messageWriter
	logger logger.Logger
}

// NewKafkaProducer creates a new KafkaProducer.
func NewKafkaProducer(cfg config.EventsConfig, log logger.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaProducer(writer, log)
}

func newKafkaProducer(w messageWriter, log logger.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer: w,
		logger: log.WithComponent("KafkaProducer"),
	}
}

// Publish sends events keyed by group id, so the events of one group stay ordered.
func (p *KafkaProducer) Publish(ctx context.Context, events ...service.MembershipEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		value, err := json.Marshal(ev)
		if err != nil {
			p.logger.Error(ctx, "failed to marshal membership event", err)
			return err
		}
		msgs = append(msgs, kafka.Message{Key: []byte(ev.GroupID), Value: value})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error(ctx, "failed to write messages to Kafka", err, logger.Int("count", len(msgs)))
		return err
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
