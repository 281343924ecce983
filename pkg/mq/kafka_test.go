package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	got []kafka.Message
	err error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.got = append(w.got, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestSendMessages_MapsFields(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaProducer{writer: w}

	err := p.SendMessages(context.Background(),
		Message{Topic: "shop.order.placed", Key: "ORD-1", Value: []byte(`{"a":1}`)},
		Message{Topic: "shop.order.placed", Key: "ORD-2", Value: []byte(`{"a":2}`)},
	)
	require.NoError(t, err)
	require.Len(t, w.got, 2)
	assert.Equal(t, "shop.order.placed", w.got[0].Topic)
	assert.Equal(t, []byte("ORD-2"), w.got[1].Key)
	assert.JSONEq(t, `{"a":2}`, string(w.got[1].Value))

	assert.NoError(t, p.SendMessages(context.Background()))
}

func TestSendMessages_PropagatesError(t *testing.T) {
	p := &KafkaProducer{writer: &recordingWriter{err: errors.New("broker down")}}
	assert.Error(t, p.SendMessages(context.Background(), Message{Topic: "t", Value: []byte("{}")}))
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(KafkaConfig{})
	assert.Error(t, err)

	p, err := NewProducer(KafkaConfig{Brokers: []string{"localhost:9092"}, MaxRetries: 3, RetryBackoff: 100})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
