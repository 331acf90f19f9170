package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository/memory"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/messaging"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

type fakeBroker struct {
	mu        sync.Mutex
	failFirst int
	calls     int
	published []string
}

func (b *fakeBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.calls <= b.failFirst {
		return errors.New("broker down")
	}
	b.published = append(b.published, channel)
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, ...string) (<-chan messaging.Message, error) {
	return nil, errors.New("not supported")
}

func (b *fakeBroker) Close() error { return nil }

func newProcessor(t *testing.T, broker messaging.Broker, store *memory.Store, attempts int) *OutboxProcessor {
	t.Helper()
	p, err := NewOutboxProcessor(store.Outbox(), broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: attempts,
		RetryDelay:    time.Millisecond,
		MaxFailures:   2,
	}, logger.Nop(), metrics.NewMetrics("test", nil))
	require.NoError(t, err)
	return p
}

func seed(t *testing.T, store *memory.Store, eventType string) {
	t.Helper()
	require.NoError(t, store.Outbox().Create(context.Background(), &model.OutboxEvent{
		EventType: eventType,
		Payload:   []byte(`{"appointment_id":"x"}`),
	}))
}

func TestProcessOnceDelivers(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, model.EventAppointmentBooked)
	seed(t, store, model.EventAppointmentApproved)
	broker := &fakeBroker{}

	n, err := newProcessor(t, broker, store, 1).ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{model.EventAppointmentBooked, model.EventAppointmentApproved}, broker.published)

	pending, err := store.Outbox().GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessOnceRetriesWithinPoll(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, model.EventAppointmentCancelled)
	broker := &fakeBroker{failFirst: 2}

	n, err := newProcessor(t, broker, store, 3).ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, broker.calls)
}

func TestProcessOnceMarksFailedAfterMaxFailures(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, model.EventAppointmentRejected)
	broker := &fakeBroker{failFirst: 100}
	p := newProcessor(t, broker, store, 1)

	for i := 0; i < 2; i++ {
		n, err := p.ProcessOnce(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	}

	pending, err := store.Outbox().GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	_, err := NewOutboxProcessor(nil, nil, OutboxProcessorConfig{}, logger.Nop(), metrics.NewMetrics("test", nil))
	assert.Error(t, err)
}
