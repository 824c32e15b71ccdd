package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/pkg/events"

	"github.com/google/uuid"
)

// Emitter queues an event inside the caller's transaction. The event is delivered only if
// that transaction commits.
type Emitter interface {
	Emit(ctx context.Context, uow unitofwork.UnitOfWork, event events.Event) error
}

// Recorder writes events to the outbox table.
type Recorder struct {
	now func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) Emit(ctx context.Context, uow unitofwork.UnitOfWork, event events.Event) error {
	if !uow.InTransaction() {
		return fmt.Errorf("outbox: emit %s outside a transaction", event.EventType())
	}

	msg, err := NewMessage(event, r.now())
	if err != nil {
		return err
	}
	return uow.OutboxRepository().Create(ctx, msg)
}

// NewMessage builds the pending row for event. Also used to hand an event straight to a
// Sink when no transaction can be opened.
func NewMessage(event events.Event, now time.Time) (*entity.OutboxMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("outbox: marshal %s: %w", event.EventType(), err)
	}

	now = now.UTC()
	return &entity.OutboxMessage{
		Id:          uuid.New(),
		Topic:       event.EventType(),
		AggregateId: event.Key(),
		Payload:     payload,
		Status:      entity.OutboxStatusPending,
		AvailableAt: now,
		CreatedAt:   now,
	}, nil
}
