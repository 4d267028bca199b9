package audit

import "time"

// Actions recorded by the shell.
const (
	ActionSignIn              = "signin"
	ActionSignOut             = "signout"
	ActionProfileRegistered   = "profile_registered"
	ActionProfileUpdated      = "profile_updated"
	ActionProfileLookupFailed = "profile_lookup_failed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    string
	Action    string
	Detail    string
}
