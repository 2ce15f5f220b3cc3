package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoVerification is returned when a user has no unverified record.
var ErrNoVerification = errors.New("No verification found")

// Repository stores verification records in PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new verification record. Sets ID and CreatedAt.
func (r *Repository) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	q := `
		INSERT INTO email_verifications (id, user_id, email, otp, expires_at, verified, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, q,
		rec.ID, rec.UserID, rec.Email, rec.Code, rec.ExpiresAt, rec.Verified, rec.Attempts, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create verification: %w", err)
	}
	return nil
}

// LatestUnverified returns the most recently created unverified record for
// the user, or ErrNoVerification.
func (r *Repository) LatestUnverified(ctx context.Context, userID uuid.UUID) (*Record, error) {
	q := `
		SELECT id, user_id, email, otp, expires_at, verified, attempts, created_at
		FROM email_verifications
		WHERE user_id = $1 AND verified = false
		ORDER BY created_at DESC
		LIMIT 1`
	var rec Record
	err := r.db.QueryRow(ctx, q, userID).Scan(
		&rec.ID, &rec.UserID, &rec.Email, &rec.Code, &rec.ExpiresAt,
		&rec.Verified, &rec.Attempts, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoVerification
		}
		return nil, fmt.Errorf("query latest verification: %w", err)
	}
	return &rec, nil
}

// IncrementAttempts bumps the failed-attempts counter on a record.
func (r *Repository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	q := `UPDATE email_verifications SET attempts = attempts + 1 WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id)
	return err
}

// MarkVerified flips the verified flag on a record.
func (r *Repository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	q := `UPDATE email_verifications SET verified = true WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id)
	return err
}

// ExpireUnverified moves expires_at to now on all unverified records for
// the user. Rows are kept; codes just stop being usable.
func (r *Repository) ExpireUnverified(ctx context.Context, userID uuid.UUID) error {
	q := `
		UPDATE email_verifications
		SET expires_at = $2
		WHERE user_id = $1 AND verified = false AND expires_at > $2`
	_, err := r.db.Exec(ctx, q, userID, time.Now().UTC())
	return err
}
