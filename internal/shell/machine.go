package shell

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"vitrin/internal/audit"
	"vitrin/internal/identity"
	"vitrin/internal/platform/metrics"
	"vitrin/internal/profile"
	"vitrin/pkg/platform/sentinel"
)

// Subscriber is the slice of the identity provider the machine depends on.
type Subscriber interface {
	Subscribe(fn func(*identity.Identity)) (unsubscribe func())
}

// Machine combines the identity change stream with a profile-existence check
// to produce the current navigation state. It is the single writer of that
// state; every mutation funnels through its transition function and the
// snapshot is replaced atomically, never mutated in place.
type Machine struct {
	profiles profile.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    audit.Publisher

	mu        sync.Mutex
	snap      Snapshot
	gen       uint64
	observers []func(Snapshot)

	unsubscribe func()
}

func NewMachine(profiles profile.Store, logger *slog.Logger, m *metrics.Metrics, auditor audit.Publisher) *Machine {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Machine{
		profiles: profiles,
		logger:   logger,
		metrics:  m,
		audit:    auditor,
		snap:     Snapshot{State: StateUnresolved},
	}
}

// Start subscribes to the identity stream. The subscription delivers the
// current identity immediately, so by the time Start returns the first
// resolution has been applied and Ready is true.
func (m *Machine) Start(ctx context.Context, provider Subscriber) {
	m.unsubscribe = provider.Subscribe(func(ident *identity.Identity) {
		m.transition(ctx, ident)
	})
}

// Stop cancels the identity subscription.
func (m *Machine) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Snapshot returns the current navigation state snapshot.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// OnChange registers an observer called after every applied transition.
func (m *Machine) OnChange(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Recheck re-derives the state for the current identity. Called after a
// profile write so the guard reflects the new record without waiting for an
// identity change.
func (m *Machine) Recheck(ctx context.Context) {
	m.mu.Lock()
	ident := m.snap.Identity
	m.mu.Unlock()
	m.transition(ctx, ident)
}

// transition processes one identity event to completion. The profile lookup
// runs outside the lock; if a newer event begins meanwhile, this result is
// stale and gets discarded so the latest identity always wins.
func (m *Machine) transition(ctx context.Context, ident *identity.Identity) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	if ident == nil {
		m.apply(gen, Snapshot{State: StateAnonymous, Ready: true})
		return
	}

	state := m.lookup(ctx, ident)
	m.apply(gen, Snapshot{State: state, Identity: ident, Ready: true})
}

// lookup issues exactly one profile-existence check. A failed lookup degrades
// to the incomplete state: the conservative direction is requiring
// registration, never granting access.
func (m *Machine) lookup(ctx context.Context, ident *identity.Identity) State {
	if m.metrics != nil {
		m.metrics.ProfileLookups.Inc()
	}

	_, err := m.profiles.Get(ctx, ident.ID)
	switch {
	case err == nil:
		return StateComplete
	case errors.Is(err, sentinel.ErrNotFound):
		return StateIncomplete
	default:
		if m.metrics != nil {
			m.metrics.ProfileLookupFailures.Inc()
		}
		m.logger.ErrorContext(ctx, "profile lookup failed, treating as incomplete",
			"uid", ident.ID,
			"error", err.Error(),
		)
		m.audit.Emit(ctx, audit.Event{
			UserID: ident.ID,
			Action: audit.ActionProfileLookupFailed,
			Detail: err.Error(),
		})
		return StateIncomplete
	}
}

func (m *Machine) apply(gen uint64, next Snapshot) {
	m.mu.Lock()
	if gen != m.gen {
		// A newer identity event superseded this resolution.
		m.mu.Unlock()
		if m.metrics != nil {
			m.metrics.StaleLookupsDiscarded.Inc()
		}
		return
	}
	m.snap = next
	observers := append([]func(Snapshot){}, m.observers...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
}
