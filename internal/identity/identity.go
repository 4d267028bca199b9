// Package identity wraps the external identity provider behind a narrow
// contract: a change stream of the signed-in user plus sign-in/sign-out.
// Identities are owned by the provider, held in memory only, and never
// persisted by this system.
package identity

import (
	"context"

	"vitrin/pkg/platform/sentinel"
)

// ErrCancelled is returned by SignIn when the user backed out of the
// provider's interactive flow. Callers treat it as a silent no-op, not a
// failure to surface.
var ErrCancelled = sentinel.ErrCancelled

// Identity is the provider-issued user record. Opaque from this system's
// perspective; its lifecycle begins at sign-in and ends at sign-out.
type Identity struct {
	ID          string
	DisplayName string
	Email       string
	PhotoURL    string
}

// Credentials carries whatever the concrete provider needs to complete a
// sign-in. Local uses Email/Password; Firebase verifies IDToken.
type Credentials struct {
	Email    string
	Password string
	IDToken  string
}

// Provider is the identity adapter contract. Subscribe delivers the current
// identity immediately and then once per change; the returned function
// cancels the subscription. A nil identity means signed out.
type Provider interface {
	Subscribe(fn func(*Identity)) (unsubscribe func())
	SignIn(ctx context.Context, creds Credentials) (*Identity, error)
	SignOut(ctx context.Context) error
}
