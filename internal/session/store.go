// Package session holds the client-side session state: the current
// identity, its profile, and the loading flag the shell renders splash
// against. It is the one place that orchestrates the auth provider, the
// profile rows, and the verification service.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ceylonbites/ceylonbites/internal/auth"
	"github.com/ceylonbites/ceylonbites/internal/profiles"
	"github.com/ceylonbites/ceylonbites/internal/verification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotSignedIn is returned by operations that require an active identity.
var ErrNotSignedIn = errors.New("No user logged in")

// ProfileStore is the slice of the profiles service the store consumes.
type ProfileStore interface {
	Create(ctx context.Context, p *profiles.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*profiles.Profile, error)
	GetByUsername(ctx context.Context, username string) (*profiles.Profile, error)
}

// Verifier is the slice of the verification service the store consumes.
type Verifier interface {
	Issue(ctx context.Context, userID uuid.UUID, email string) (*verification.Record, error)
	Verify(ctx context.Context, userID uuid.UUID, code string) error
	Resend(ctx context.Context, userID uuid.UUID, email string) (*verification.Record, error)
}

// Store is the session store. Construct one at process start with New,
// call Hydrate once, and Close on teardown to release the auth-state
// subscription.
type Store struct {
	provider auth.Provider
	profiles ProfileStore
	verifier Verifier
	logger   *zap.Logger

	mu       sync.Mutex
	identity *auth.Identity
	profile  *profiles.Profile
	loading  bool
	sub      auth.Subscription
	onChange []func()

	fetches sync.WaitGroup
}

// New creates a Store. The store is Loading until Hydrate resolves.
func New(provider auth.Provider, profileStore ProfileStore, verifier Verifier, logger *zap.Logger) *Store {
	return &Store{
		provider: provider,
		profiles: profileStore,
		verifier: verifier,
		logger:   logger,
		loading:  true,
	}
}

// Hydrate requests the current session from the auth provider and, when one
// exists, loads the matching profile. It also registers the auth-state
// subscription for the lifetime of the store. Run it from its own
// goroutine if the caller must not block.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	if s.sub == nil {
		s.sub = s.provider.OnAuthStateChange(s.handleAuthChange)
	}
	s.mu.Unlock()

	sess, err := s.provider.GetSession(ctx)
	if err != nil {
		s.logger.Error("session hydration failed", zap.Error(err))
		sess = nil
	}

	if sess == nil {
		s.mu.Lock()
		s.identity = nil
		s.loading = false
		s.mu.Unlock()
		s.notify()
		return
	}

	id := sess.Identity
	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()
	s.notify()
	s.loadProfile(ctx, id.ID)
}

// Close releases the auth-state subscription and waits for in-flight
// profile fetches to settle.
func (s *Store) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
	s.fetches.Wait()
}

// handleAuthChange replaces the identity on every provider notification
// and re-triggers the profile fetch, or clears the profile when the
// session became empty. The fetch runs asynchronously; its result is
// discarded if the identity changed again before it resolved.
func (s *Store) handleAuthChange(sess *auth.Session) {
	if sess == nil {
		s.mu.Lock()
		s.identity = nil
		s.profile = nil
		s.mu.Unlock()
		s.notify()
		return
	}

	id := sess.Identity
	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()
	s.notify()

	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		s.loadProfile(context.Background(), id.ID)
	}()
}

// loadProfile fetches the profile for the given identity id. The fetch is
// tagged with that id: if the current identity no longer matches when the
// result arrives, the result is dropped so a slow fetch for an old
// identity can never overwrite a newer one. Failures are logged, never
// surfaced; the loading flag clears regardless of outcome.
func (s *Store) loadProfile(ctx context.Context, tag uuid.UUID) {
	p, err := s.profiles.GetByID(ctx, tag)

	s.mu.Lock()
	if s.identity == nil || s.identity.ID != tag {
		// Superseded while in flight.
		s.loading = false
		s.mu.Unlock()
		s.notify()
		return
	}
	if err != nil {
		if !errors.Is(err, profiles.ErrNotFound) {
			s.logger.Error("error loading profile", zap.String("profile_id", tag.String()), zap.Error(err))
		}
		// Identity without profile is the post-signup window, not a
		// signed-out state; the identity stays put.
		s.profile = nil
	} else {
		s.profile = p
	}
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

// Identity returns the current identity, or nil when signed out.
func (s *Store) Identity() *auth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	cp := *s.identity
	return &cp
}

// Profile returns the current profile, or nil while it has not loaded.
func (s *Store) Profile() *profiles.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	cp := *s.profile
	return &cp
}

// Loading reports whether the initial hydration or a profile fetch is
// still pending.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// OnChange registers fn to run after every state replacement. Intended for
// the shell; register before Hydrate.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), len(s.onChange))
	copy(fns, s.onChange)
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// SignUp runs the two-step account creation: identity first, then the
// profile row (tier free), then the initial verification code. The
// username pre-check is a fast-path UX hint only; the store's unique
// constraint is the real guarantee.
//
// Returns an error whose message is user-facing; never panics.
func (s *Store) SignUp(ctx context.Context, emailAddr, password, username, fullName, country string) error {
	if _, err := s.profiles.GetByUsername(ctx, username); err == nil {
		return profiles.ErrUsernameTaken
	} else if !errors.Is(err, profiles.ErrNotFound) {
		s.logger.Warn("username pre-check failed, continuing", zap.Error(err))
	}

	identity, err := s.provider.SignUp(ctx, emailAddr, password)
	if err != nil {
		return err
	}

	profile := &profiles.Profile{
		ID:               identity.ID,
		Username:         username,
		FullName:         fullName,
		Country:          country,
		SubscriptionTier: profiles.TierFree,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		// No client-side rollback exists for the identity created above;
		// it stays orphaned until reconciled out of band.
		s.logger.Error("profile creation failed after identity creation — orphaned identity",
			zap.String("identity_id", identity.ID.String()),
			zap.Error(err),
		)
		if errors.Is(err, profiles.ErrUsernameTaken) {
			return err
		}
		return fmt.Errorf("Sign up failed")
	}

	if _, err := s.verifier.Issue(ctx, identity.ID, identity.Email); err != nil {
		s.logger.Warn("initial verification issue failed", zap.Error(err))
	}
	return nil
}

// SignIn delegates the credential check to the auth provider. State
// updates arrive via the auth-state change notification.
func (s *Store) SignIn(ctx context.Context, emailAddr, password string) error {
	if _, err := s.provider.SignInWithPassword(ctx, emailAddr, password); err != nil {
		return err
	}
	return nil
}

// SignOut tears down the provider session and clears the profile
// immediately; the identity clears via the change notification.
func (s *Store) SignOut(ctx context.Context) error {
	err := s.provider.SignOut(ctx)
	s.mu.Lock()
	s.profile = nil
	s.mu.Unlock()
	s.notify()
	return err
}

// RefreshProfile re-runs the profile fetch for the current identity.
// No-op when signed out.
func (s *Store) RefreshProfile(ctx context.Context) {
	id := s.Identity()
	if id == nil {
		return
	}
	s.loadProfile(ctx, id.ID)
}

// VerifyEmail checks a one-time code for the active identity.
func (s *Store) VerifyEmail(ctx context.Context, code string) error {
	id := s.Identity()
	if id == nil {
		return ErrNotSignedIn
	}
	return s.verifier.Verify(ctx, id.ID, code)
}

// ResendVerification issues a fresh code for the active identity.
func (s *Store) ResendVerification(ctx context.Context) error {
	id := s.Identity()
	if id == nil {
		return ErrNotSignedIn
	}
	_, err := s.verifier.Resend(ctx, id.ID, id.Email)
	return err
}
