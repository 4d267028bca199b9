// Package shell owns the session/profile gating logic: the state machine
// deriving the navigation state from the identity stream and profile
// existence, and the route guard mapping that state to page decisions.
package shell

import "vitrin/internal/identity"

// State is the derived navigation state. It is a pure function of identity
// presence and profile existence, recomputed on every identity change and
// never cached beyond one update cycle.
type State string

const (
	// StateUnresolved holds before the first authentication check
	// completes. The shell renders nothing in this state.
	StateUnresolved State = "unresolved"
	// StateAnonymous means no identity is present.
	StateAnonymous State = "anonymous"
	// StateIncomplete means signed in without a profile record; the only
	// page open to this state is registration.
	StateIncomplete State = "authenticated-incomplete"
	// StateComplete means signed in with a profile record, the sole
	// authorization signal for gated pages.
	StateComplete State = "authenticated-complete"
)

// Snapshot is the machine's immutable output. Consumers observe snapshots;
// they never reach into machine internals. Ready flips to true after the
// first resolution and stays true.
type Snapshot struct {
	State    State
	Identity *identity.Identity
	Ready    bool
}
