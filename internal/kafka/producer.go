package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
)

// Producer writes todo events to a single topic, keyed by todo id so all
// events for one todo land on the same partition.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(broker, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(broker),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			// one event per create; don't hold the request waiting for a batch
			BatchTimeout:           10 * time.Millisecond,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, event models.TodoEvent) error {
	msg, err := eventMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s event: %w", event.Type, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func eventMessage(event models.TodoEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encoding %s event: %w", event.Type, err)
	}
	return kafka.Message{
		Key:   []byte(event.ID.String()),
		Value: value,
		Time:  event.OccurredAtUtc,
	}, nil
}
