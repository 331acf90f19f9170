package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/pkg/logger"
)

// Entry is one audited action.
type Entry struct {
	Actor      model.Principal
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Metadata   map[string]interface{}
}

// Logger writes audit lines to a dedicated zerolog stream.
type Logger struct {
	log *logger.Logger
}

func NewLogger(log *logger.Logger) *Logger {
	return &Logger{log: log.With("audit")}
}

func (l *Logger) Log(ctx context.Context, e Entry) {
	fields := map[string]interface{}{
		"action":      e.Action,
		"entity_type": e.EntityType,
		"entity_id":   e.EntityID.String(),
	}
	if e.Actor != nil {
		fields["actor_id"] = e.Actor.ID().String()
		fields["actor_type"] = string(e.Actor.Type())
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		fields["request_id"] = id
	}
	for k, v := range e.Metadata {
		fields[k] = v
	}

	l.log.WithFields(fields).Info("audit")
}
