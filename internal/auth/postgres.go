package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PostgresProvider implements Provider against the identities table.
//
// The current session is held in memory and, when a state path is
// configured, mirrored to disk so GetSession survives a process restart.
type PostgresProvider struct {
	db        *pgxpool.Pool
	tokens    *TokenIssuer
	statePath string
	logger    *zap.Logger

	mu      sync.Mutex
	current *Session
	subs    map[int]ChangeFunc
	nextSub int

	emitMu sync.Mutex // serializes change notifications so they arrive in emit order
}

// NewPostgresProvider creates a PostgresProvider.
// statePath may be empty to disable session persistence across restarts.
func NewPostgresProvider(db *pgxpool.Pool, tokens *TokenIssuer, statePath string, logger *zap.Logger) *PostgresProvider {
	return &PostgresProvider{
		db:        db,
		tokens:    tokens,
		statePath: statePath,
		logger:    logger,
		subs:      make(map[int]ChangeFunc),
	}
}

// GetSession returns the current session, restoring it from the persisted
// token when present. Returns (nil, nil) when signed out.
func (p *PostgresProvider) GetSession(_ context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		if time.Now().After(p.current.ExpiresAt) {
			p.current = nil
			p.removeStateLocked()
			return nil, nil
		}
		s := *p.current
		return &s, nil
	}

	if p.statePath == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(p.statePath)
	if err != nil {
		return nil, nil // no persisted session
	}
	claims, err := p.tokens.Verify(strings.TrimSpace(string(raw)))
	if err != nil {
		p.logger.Warn("persisted session token rejected", zap.Error(err))
		p.removeStateLocked()
		return nil, nil
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil
	}
	p.current = &Session{
		Identity:    Identity{ID: id, Email: claims.Email},
		AccessToken: strings.TrimSpace(string(raw)),
		ExpiresAt:   claims.ExpiresAt.Time,
	}
	s := *p.current
	return &s, nil
}

// OnAuthStateChange registers fn for sign-in/sign-out notifications.
func (p *PostgresProvider) OnAuthStateChange(fn ChangeFunc) Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return &subscription{p: p, id: id}
}

type subscription struct {
	p  *PostgresProvider
	id int
}

func (s *subscription) Unsubscribe() {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	delete(s.p.subs, s.id)
}

// SignUp creates a new identity row. It does not establish a session; the
// user authenticates explicitly afterwards.
func (p *PostgresProvider) SignUp(ctx context.Context, emailAddr, password string) (*Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.New()
	q := `
		INSERT INTO identities (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err = p.db.Exec(ctx, q, id, strings.ToLower(emailAddr), string(hash), time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}
	return &Identity{ID: id, Email: strings.ToLower(emailAddr)}, nil
}

// DeleteIdentity removes an identity row. Used to roll back a signup whose
// profile creation failed, so no orphaned identity is left behind.
func (p *PostgresProvider) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	_, err := p.db.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

// SignInWithPassword checks credentials, issues a session token, and
// notifies auth-state listeners.
func (p *PostgresProvider) SignInWithPassword(ctx context.Context, emailAddr, password string) (*Session, error) {
	var id uuid.UUID
	var storedEmail, hash string
	q := `SELECT id, email, password_hash FROM identities WHERE email = $1`
	err := p.db.QueryRow(ctx, q, strings.ToLower(emailAddr)).Scan(&id, &storedEmail, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup identity: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	identity := Identity{ID: id, Email: storedEmail}
	token, expires, err := p.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	session := &Session{Identity: identity, AccessToken: token, ExpiresAt: expires}

	p.mu.Lock()
	p.current = session
	p.persistStateLocked(token)
	p.mu.Unlock()

	p.emit(session)
	s := *session
	return &s, nil
}

// SignOut clears the session and notifies listeners with a nil session.
func (p *PostgresProvider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.removeStateLocked()
	p.mu.Unlock()

	p.emit(nil)
	return nil
}

// emit delivers the change to all subscribers in registration order.
func (p *PostgresProvider) emit(s *Session) {
	p.mu.Lock()
	ids := make([]int, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]ChangeFunc, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, p.subs[id])
	}
	p.mu.Unlock()

	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	for _, fn := range fns {
		var cp *Session
		if s != nil {
			c := *s
			cp = &c
		}
		fn(cp)
	}
}

func (p *PostgresProvider) persistStateLocked(token string) {
	if p.statePath == "" {
		return
	}
	if err := os.WriteFile(p.statePath, []byte(token), 0o600); err != nil {
		p.logger.Warn("persist session token", zap.Error(err))
	}
}

func (p *PostgresProvider) removeStateLocked() {
	if p.statePath == "" {
		return
	}
	if err := os.Remove(p.statePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.Warn("remove session token", zap.Error(err))
	}
}
