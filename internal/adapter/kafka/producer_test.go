package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "orders.reconciled"}

	err := p.Publish(context.Background(), "2000001", map[string]any{"type": "order.reconciled", "order_id": 2000001})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	assert.Equal(t, []byte("2000001"), w.msgs[0].Key)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "order.reconciled", got["type"])
	assert.False(t, w.msgs[0].Time.IsZero())
}

func TestProducer_PublishError(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("broker down")}, topic: "t"}

	err := p.Publish(context.Background(), "k", struct{}{})
	assert.ErrorContains(t, err, "publish to t")
}

func TestProducer_MarshalError(t *testing.T) {
	p := &Producer{writer: &fakeWriter{}, topic: "t"}

	err := p.Publish(context.Background(), "k", make(chan int))
	assert.ErrorContains(t, err, "marshal event")
}

func TestNewProducer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "inventory.stock-locations")
	assert.Equal(t, "inventory.stock-locations", p.Topic())
	assert.NoError(t, p.Close())
}
