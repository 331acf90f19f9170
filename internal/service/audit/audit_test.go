package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/pkg/logger"
)

func TestLogWritesActorAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(logger.FromZerolog(zerolog.New(&buf)))

	actor := model.DoctorPrincipal{UserID: uuid.New()}
	entityID := uuid.New()
	ctx := logger.ContextWithRequestID(context.Background(), "req-1")

	l.Log(ctx, Entry{
		Actor:      actor,
		Action:     "approve",
		EntityType: "appointment",
		EntityID:   entityID,
		Metadata:   map[string]interface{}{"status": "SCHEDULED"},
	})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["component"])
	assert.Equal(t, "approve", line["action"])
	assert.Equal(t, actor.UserID.String(), line["actor_id"])
	assert.Equal(t, "DOCTOR", line["actor_type"])
	assert.Equal(t, entityID.String(), line["entity_id"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "SCHEDULED", line["status"])
}
