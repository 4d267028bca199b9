package audit

import (
	"context"
	"time"
)

// Publisher is the narrow sink domain logic emits into. Emit must never block
// the calling flow; implementations decide whether persistence is inline or
// deferred.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// Store is append-only persistence for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID string) ([]Event, error)
}

// StorePublisher appends directly to the store. Used in tests and small
// deployments where inline persistence is fine.
type StorePublisher struct {
	store Store
}

func NewStorePublisher(store Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	// Audit failures must never break the user-facing flow.
	_ = p.store.Append(ctx, event)
}

// ChannelPublisher hands events to a background worker. Emit drops on a full
// inbox rather than blocking a user-facing flow.
type ChannelPublisher struct {
	inbox chan<- Event
}

func NewChannelPublisher(inbox chan<- Event) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox}
}

func (p *ChannelPublisher) Emit(_ context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
	}
}

// Nop discards every event; keeps call sites unconditional.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}
