package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Firebase adapts the Firebase Admin SDK to the Provider contract. The
// interactive popup lives on the client; the shell receives the resulting ID
// token, verifies it, and emits the identity on the change stream.
type Firebase struct {
	client *fbauth.Client
	stream *stream
}

// NewFirebase initializes a Firebase Admin auth client. credentialsFile may
// be empty, in which case the SDK falls back to the
// GOOGLE_APPLICATION_CREDENTIALS default chain.
func NewFirebase(ctx context.Context, projectID, credentialsFile string) (*Firebase, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	return &Firebase{client: client, stream: newStream()}, nil
}

func (f *Firebase) Subscribe(fn func(*Identity)) func() {
	return f.stream.subscribe(fn)
}

// SignIn verifies the client-supplied ID token and emits the identity. An
// empty token means the user closed the popup without completing sign-in.
func (f *Firebase) SignIn(ctx context.Context, creds Credentials) (*Identity, error) {
	if creds.IDToken == "" {
		return nil, ErrCancelled
	}

	token, err := f.client.VerifyIDToken(ctx, creds.IDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	record, err := f.client.GetUser(ctx, token.UID)
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", token.UID, err)
	}

	ident := &Identity{
		ID:          record.UID,
		DisplayName: record.DisplayName,
		Email:       record.Email,
		PhotoURL:    record.PhotoURL,
	}
	f.stream.emit(ident)
	return ident, nil
}

func (f *Firebase) SignOut(ctx context.Context) error {
	if current := f.stream.currentIdentity(); current != nil {
		if err := f.client.RevokeRefreshTokens(ctx, current.ID); err != nil {
			return fmt.Errorf("revoke refresh tokens: %w", err)
		}
	}
	f.stream.emit(nil)
	return nil
}
