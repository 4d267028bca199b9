package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vitrin/pkg/httperr"
)

// Local is an in-process identity provider backed by bcrypt-hashed
// credentials. It stands in for the hosted provider in development and tests
// while honoring the same contract, including the cancelled-sign-in no-op.
type Local struct {
	mu       sync.Mutex
	accounts map[string]localAccount
	stream   *stream
}

type localAccount struct {
	passwordHash string
	identity     Identity
}

func NewLocal() *Local {
	return &Local{
		accounts: make(map[string]localAccount),
		stream:   newStream(),
	}
}

// Register adds an account. The identity ID is generated when empty.
func (l *Local) Register(email, password string, ident Identity) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if ident.ID == "" {
		ident.ID = uuid.NewString()
	}
	ident.Email = email

	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[strings.ToLower(email)] = localAccount{
		passwordHash: string(hash),
		identity:     ident,
	}
	return nil
}

func (l *Local) Subscribe(fn func(*Identity)) func() {
	return l.stream.subscribe(fn)
}

// SignIn verifies credentials and emits the resulting identity. Empty
// credentials model the user dismissing the sign-in prompt and return
// ErrCancelled.
func (l *Local) SignIn(_ context.Context, creds Credentials) (*Identity, error) {
	if creds.Email == "" && creds.Password == "" {
		return nil, ErrCancelled
	}

	l.mu.Lock()
	account, ok := l.accounts[strings.ToLower(creds.Email)]
	l.mu.Unlock()
	if !ok {
		return nil, httperr.New(httperr.CodeUnauthorized, "unknown account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.passwordHash), []byte(creds.Password)); err != nil {
		return nil, httperr.New(httperr.CodeUnauthorized, "invalid credentials")
	}

	ident := account.identity
	l.stream.emit(&ident)
	return &ident, nil
}

func (l *Local) SignOut(context.Context) error {
	l.stream.emit(nil)
	return nil
}
