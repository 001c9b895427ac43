package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
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

func TestKafka_PublishKeysByUser(t *testing.T) {
	w := &recordingWriter{}
	k := newKafkaWithWriter(w, slog.New(slog.DiscardHandler))

	e := New(CheckSet, "user-1", map[string]any{"habit_id": "h1", "day": "2024-03-04"})
	require.NoError(t, k.Publish(context.Background(), e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "user-1", string(msg.Key))
	assert.Equal(t, "check.set", string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, CheckSet, decoded.Type)

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

func TestKafka_PublishError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	k := newKafkaWithWriter(w, slog.New(slog.DiscardHandler))

	err := k.Publish(context.Background(), New(HabitCreated, "u", nil))
	assert.ErrorContains(t, err, "broker down")
}

func TestNewKafka_Validates(t *testing.T) {
	_, err := NewKafka(KafkaConfig{Topic: "t"}, nil)
	assert.Error(t, err)

	_, err = NewKafka(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: " "}, nil)
	assert.Error(t, err)
}

func TestNew_StampsIDs(t *testing.T) {
	a := New(NoteSaved, "u", nil)
	b := New(NoteSaved, "u", nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.OccurredAt.IsZero())
}

func TestNoop(t *testing.T) {
	p := NewNoop()
	assert.NoError(t, p.Publish(context.Background(), New(UserDeleted, "u", nil)))
	assert.NoError(t, p.Close())
}
