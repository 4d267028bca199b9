package identity

import "sync"

// stream fans a single identity value out to subscribers. Deliveries are
// serialized under the mutex so a subscriber always observes events in the
// order they were emitted, and a new subscriber immediately receives the
// value current at subscription time.
type stream struct {
	mu      sync.Mutex
	current *Identity
	nextID  int
	subs    map[int]func(*Identity)
}

func newStream() *stream {
	return &stream{subs: make(map[int]func(*Identity))}
}

func (s *stream) subscribe(fn func(*Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := s.current
	s.mu.Unlock()

	// Session restoration: the subscriber sees the persisted state right
	// away instead of waiting for the next change.
	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *stream) emit(ident *Identity) {
	s.mu.Lock()
	s.current = ident
	fns := make([]func(*Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ident)
	}
}

func (s *stream) currentIdentity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
