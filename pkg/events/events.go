package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	OrderCreated   = "order_created"
	OrderPaid      = "order_paid"
	OrderDelivered = "order_delivered"

	publishTimeout = 5 * time.Second
)

type Event struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	SequenceID int64     `json:"sequence_id"`
	UserID     string    `json:"user_id"`
	Total      string    `json:"total_order_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, ev Event) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: marshal %s: %w", ev.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, Event) error { return nil }
func (Nop) Close() error                                 { return nil }

// New returns a Kafka publisher, or Nop when brokers is empty.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	return NewKafkaPublisher(brokers, topic)
}
