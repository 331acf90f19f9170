package event

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository/memory"
)

func TestOutboxEmitterWritesPendingRow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	emitter := NewOutboxEmitter(store.Outbox())

	aptID := uuid.New()
	require.NoError(t, emitter.Emit(ctx, model.EventAppointmentBooked, model.AppointmentEvent{
		AppointmentID: aptID,
		Status:        model.AppointmentStatusPending,
	}))

	pending, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.EventAppointmentBooked, pending[0].EventType)

	var payload model.AppointmentEvent
	require.NoError(t, json.Unmarshal(pending[0].Payload, &payload))
	assert.Equal(t, aptID, payload.AppointmentID)
	assert.Equal(t, model.AppointmentStatusPending, payload.Status)
}

func TestOutboxEmitterRejectsUnmarshalablePayload(t *testing.T) {
	emitter := NewOutboxEmitter(memory.NewStore().Outbox())
	assert.Error(t, emitter.Emit(context.Background(), "x", make(chan int)))
}
