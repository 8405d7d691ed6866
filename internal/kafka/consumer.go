package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
)

// readRetryDelay is how long Consume waits after a failed read.
var readRetryDelay = time.Second

// MessageReader is the subset of *kafka.Reader used by Consume.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

func NewReader(broker, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: group,
	})
}

// Consume writes one audit entry per message until ctx is cancelled. Read
// errors are logged to errs and the read is retried after readRetryDelay; messages that are not
// todo events are recorded verbatim.
func Consume(ctx context.Context, r MessageReader, audit logrus.FieldLogger, errs logrus.FieldLogger) error {
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			errs.WithError(err).Error("error reading message")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(readRetryDelay):
			}
			continue
		}

		var event models.TodoEvent
		if err := json.Unmarshal(m.Value, &event); err != nil || event.Type == "" {
			audit.WithField("offset", m.Offset).Info(string(m.Value))
			continue
		}
		audit.WithFields(logrus.Fields{
			"offset":      m.Offset,
			"id":          event.ID,
			"title":       event.Title,
			"occurred_at": event.OccurredAtUtc,
		}).Info(event.Type)
	}
}
