package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/segmentio/kafka-go"
	"strconv"
)

// ErrQueueFull: inbox penuh atau producer sudah ditutup; event di-drop.
var ErrQueueFull = errors.New("kafka producer queue full")

// EventPublisher forwards engine events to the rental.events topic, keyed by item.
type EventPublisher struct{ P *Producer }

var _ rental.EventPublisher = (*EventPublisher)(nil)

func (e *EventPublisher) PublishEvent(_ context.Context, env rental.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	// jangan tahan request kalau inbox penuh
	if !e.P.TryPublish(rental.PartitionKey(env.ItemID), b,
		kafka.Header{Key: "x-event-type", Value: []byte(env.EventType)},
		kafka.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
	) {
		return ErrQueueFull
	}
	return nil
}
