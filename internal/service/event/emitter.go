// Package event records domain events in the outbox for asynchronous
// delivery by the worker.
package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

// Emitter is what services depend on.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type OutboxEmitter struct {
	outboxRepo repository.OutboxRepository
}

func NewOutboxEmitter(outboxRepo repository.OutboxRepository) *OutboxEmitter {
	return &OutboxEmitter{outboxRepo: outboxRepo}
}

func (s *OutboxEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payloadJSON,
		Status:    model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}
