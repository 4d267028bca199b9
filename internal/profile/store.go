package profile

import "context"

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

// Store is interface-driven to keep the gating logic testable and to allow
// swapping in-memory, Redis, Postgres, or Firestore persistence without
// rewiring business code.
//
// Get returns sentinel.ErrNotFound when no record exists for the ID; the
// state machine maps that to the incomplete state rather than an error.
// Create is create-or-overwrite, matching the one-shot registration write.
// Update applies a partial merge and must be all-or-nothing.
type Store interface {
	Get(ctx context.Context, uid string) (*Profile, error)
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, uid string, u Update) (*Profile, error)
}
