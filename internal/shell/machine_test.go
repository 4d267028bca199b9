package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vitrin/internal/identity"
	"vitrin/internal/profile"
)

// fakeProvider hands the machine's callback to the test so identity events
// can be emitted directly.
type fakeProvider struct {
	mu sync.Mutex
	fn func(*identity.Identity)
}

func (f *fakeProvider) Subscribe(fn func(*identity.Identity)) func() {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
	fn(nil) // initial delivery, like a restored empty session
	return func() {}
}

func (f *fakeProvider) emit(ident *identity.Identity) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	fn(ident)
}

type MachineSuite struct {
	suite.Suite
	ctx      context.Context
	store    *profile.InMemory
	provider *fakeProvider
	machine  *Machine
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func (s *MachineSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = profile.NewInMemory()
	s.provider = &fakeProvider{}
	s.machine = NewMachine(s.store, discardLogger(), nil, nil)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeIdentity(id string) *identity.Identity {
	return &identity.Identity{ID: id, Email: id + "@example.com"}
}

func makeProfile(uid string) *profile.Profile {
	now := time.Now()
	return &profile.Profile{
		UID:       uid,
		FirstName: "Aziz",
		LastName:  "Karimov",
		FullName:  "Aziz Karimov",
		Role:      profile.RoleCustomer,
		Gender:    profile.GenderMale,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *MachineSuite) TestStartsUnresolvedThenReady() {
	fresh := NewMachine(s.store, discardLogger(), nil, nil)
	snap := fresh.Snapshot()
	s.Equal(StateUnresolved, snap.State)
	s.False(snap.Ready)

	fresh.Start(s.ctx, s.provider)
	snap = fresh.Snapshot()
	s.Equal(StateAnonymous, snap.State)
	s.True(snap.Ready)
}

// Navigation state is anonymous iff the identity is nil, regardless of what
// the profile store contains.
func (s *MachineSuite) TestAnonymousIgnoresStoreContents() {
	s.Require().NoError(s.store.Create(s.ctx, makeProfile("u1")))

	s.machine.Start(s.ctx, s.provider)
	snap := s.machine.Snapshot()
	s.Equal(StateAnonymous, snap.State)
	s.Nil(snap.Identity)
}

func (s *MachineSuite) TestSignInWithoutProfile() {
	s.machine.Start(s.ctx, s.provider)

	s.provider.emit(makeIdentity("u1"))

	snap := s.machine.Snapshot()
	s.Equal(StateIncomplete, snap.State)
	s.True(snap.Ready)
	s.Equal("u1", snap.Identity.ID)
}

func (s *MachineSuite) TestSignInWithProfile() {
	s.Require().NoError(s.store.Create(s.ctx, makeProfile("u1")))
	s.machine.Start(s.ctx, s.provider)

	s.provider.emit(makeIdentity("u1"))

	s.Equal(StateComplete, s.machine.Snapshot().State)
}

// Repeated rechecks are idempotent: once a profile exists the state converges
// to complete and stays there.
func (s *MachineSuite) TestRecheckConvergence() {
	s.machine.Start(s.ctx, s.provider)
	s.provider.emit(makeIdentity("u1"))
	s.Equal(StateIncomplete, s.machine.Snapshot().State)

	s.Require().NoError(s.store.Create(s.ctx, makeProfile("u1")))

	for range 3 {
		s.machine.Recheck(s.ctx)
		s.Equal(StateComplete, s.machine.Snapshot().State)
	}
}

func (s *MachineSuite) TestSignOutReturnsToAnonymous() {
	s.Require().NoError(s.store.Create(s.ctx, makeProfile("u1")))
	s.machine.Start(s.ctx, s.provider)
	s.provider.emit(makeIdentity("u1"))
	s.Equal(StateComplete, s.machine.Snapshot().State)

	s.provider.emit(nil)

	snap := s.machine.Snapshot()
	s.Equal(StateAnonymous, snap.State)
	s.True(snap.Ready, "ready never reverts")
}

// A failed lookup resolves to incomplete, never unresolved and never
// complete.
func (s *MachineSuite) TestLookupFailureFailsSafe() {
	failing := &failingStore{err: errors.New("store down")}
	machine := NewMachine(failing, discardLogger(), nil, nil)
	machine.Start(s.ctx, s.provider)

	s.provider.emit(makeIdentity("u1"))

	snap := machine.Snapshot()
	s.Equal(StateIncomplete, snap.State)
	s.True(snap.Ready)
}

// If a second identity event arrives while the first event's lookup is
// outstanding, the stale result is discarded: the latest event wins.
func (s *MachineSuite) TestStaleLookupDiscarded() {
	blocking := newBlockingStore()
	machine := NewMachine(blocking, discardLogger(), nil, nil)
	machine.Start(s.ctx, s.provider)

	done := make(chan struct{})
	go func() {
		s.provider.emit(makeIdentity("slow"))
		close(done)
	}()

	<-blocking.started // lookup for "slow" is now outstanding
	s.provider.emit(nil)
	s.Equal(StateAnonymous, machine.Snapshot().State)

	close(blocking.release)
	<-done

	// The slow lookup completed but must not have been applied.
	s.Equal(StateAnonymous, machine.Snapshot().State)
}

func (s *MachineSuite) TestObserversSeeTransitions() {
	var states []State
	s.machine.OnChange(func(snap Snapshot) { states = append(states, snap.State) })
	s.machine.Start(s.ctx, s.provider)
	s.provider.emit(makeIdentity("u1"))

	s.Equal([]State{StateAnonymous, StateIncomplete}, states)
}

type failingStore struct {
	err error
}

func (f *failingStore) Get(context.Context, string) (*profile.Profile, error) { return nil, f.err }
func (f *failingStore) Create(context.Context, *profile.Profile) error        { return f.err }
func (f *failingStore) Update(context.Context, string, profile.Update) (*profile.Profile, error) {
	return nil, f.err
}

// blockingStore blocks the first Get until released, signalling when the
// lookup has started.
type blockingStore struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingStore) Get(context.Context, string) (*profile.Profile, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return makeProfile("slow"), nil
}

func (b *blockingStore) Create(context.Context, *profile.Profile) error { return nil }
func (b *blockingStore) Update(context.Context, string, profile.Update) (*profile.Profile, error) {
	return nil, nil
}
