package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{w: w}

	err := p.Publish(context.Background(), "order-1", Event{Type: OrderCreated, OrderID: "order-1", SequenceID: 7})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "order-1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, OrderCreated, string(msg.Headers[0].Value))

	var ev Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.EqualValues(t, 7, ev.SequenceID)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaPublisher{w: &recordingWriter{err: boom}}

	err := p.Publish(context.Background(), "k", Event{Type: OrderPaid})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNew_WithoutBrokersIsNop(t *testing.T) {
	p := New(nil, "order_events")
	_, ok := p.(Nop)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), "k", Event{}))

	_, ok = New([]string{"localhost:9092"}, "order_events").(*KafkaPublisher)
	assert.True(t, ok)
}
