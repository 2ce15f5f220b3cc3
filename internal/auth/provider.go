package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned when an email/password pair does not match.
var ErrInvalidCredentials = errors.New("Invalid login credentials")

// ErrDuplicateEmail is returned when a signup reuses a registered email.
var ErrDuplicateEmail = errors.New("User already registered")

// Identity is the auth provider's notion of an authenticated user.
// The client treats it as immutable once loaded for the session.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Session is an authenticated identity plus its bearer credential.
type Session struct {
	Identity    Identity  `json:"identity"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Subscription is a handle for an auth-state listener registration.
type Subscription interface {
	Unsubscribe()
}

// ChangeFunc receives the new session on every auth-state change.
// A nil session means the user signed out.
type ChangeFunc func(s *Session)

// Provider is the external authentication collaborator. The session store
// consumes only this interface; PostgresProvider is the shipped
// implementation.
type Provider interface {
	// GetSession returns the current persisted session, or (nil, nil)
	// when signed out.
	GetSession(ctx context.Context) (*Session, error)

	// OnAuthStateChange registers fn for the lifetime of the returned
	// subscription. Notifications are delivered in emit order.
	OnAuthStateChange(fn ChangeFunc) Subscription

	// SignUp creates a new identity. It does not sign the user in.
	SignUp(ctx context.Context, email, password string) (*Identity, error)

	// SignInWithPassword checks credentials and establishes a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignOut tears down the current session.
	SignOut(ctx context.Context) error
}
