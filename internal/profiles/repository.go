package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a profile lookup finds no matching record.
var ErrNotFound = errors.New("profile not found")

// ErrUsernameTaken is returned when an insert collides with an existing
// username. The store-level unique constraint is the correctness guarantee;
// any read-before-write check is only a fast-path UX hint.
var ErrUsernameTaken = errors.New("Username already taken")

// Repository provides CRUD operations for profiles against PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new profile row keyed to an existing identity ID.
// Sets CreatedAt and UpdatedAt on the profile.
func (r *Repository) Create(ctx context.Context, p *Profile) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.SubscriptionTier == "" {
		p.SubscriptionTier = TierFree
	}
	if p.SkillLevel == "" {
		p.SkillLevel = SkillBeginner
	}

	q := `
		INSERT INTO profiles (id, username, full_name, avatar_url, bio, country, country_code,
		                      subscription_tier, dietary_preferences, skill_level, favorite_cuisines,
		                      points, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.db.Exec(ctx, q,
		p.ID, p.Username, p.FullName, p.AvatarURL, p.Bio, p.Country, p.CountryCode,
		p.SubscriptionTier, p.DietaryPreferences, p.SkillLevel, p.FavoriteCuisines,
		p.Points, p.IsAdmin, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "profiles_username_key" {
				return ErrUsernameTaken
			}
			return fmt.Errorf("profile already exists for identity %s", p.ID)
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by its identity UUID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return r.scanOne(ctx, `SELECT * FROM profiles WHERE id = $1`, id)
}

// GetByUsername retrieves a profile by its username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	return r.scanOne(ctx, `SELECT * FROM profiles WHERE username = $1`, username)
}

// UpdateDetails updates the editable display fields on a profile.
func (r *Repository) UpdateDetails(ctx context.Context, id uuid.UUID, fullName, bio, avatarURL string, skill SkillLevel) error {
	q := `
		UPDATE profiles
		SET full_name = $2, bio = $3, avatar_url = $4, skill_level = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id, fullName, bio, avatarURL, skill, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePreferences replaces the dietary preferences and favorite cuisines
// collected during onboarding.
func (r *Repository) UpdatePreferences(ctx context.Context, id uuid.UUID, dietary, cuisines []string) error {
	q := `
		UPDATE profiles
		SET dietary_preferences = $2, favorite_cuisines = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id, dietary, cuisines, time.Now().UTC())
	return err
}

// SetTier changes the subscription tier.
func (r *Repository) SetTier(ctx context.Context, id uuid.UUID, tier Tier) error {
	q := `UPDATE profiles SET subscription_tier = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id, tier, time.Now().UTC())
	return err
}

// SetAdmin flips the admin flag.
func (r *Repository) SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	q := `UPDATE profiles SET is_admin = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id, admin, time.Now().UTC())
	return err
}

// AddPoints increments the points counter. Points never go below zero.
func (r *Repository) AddPoints(ctx context.Context, id uuid.UUID, delta int) error {
	q := `UPDATE profiles SET points = GREATEST(points + $2, 0), updated_at = $3 WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id, delta, time.Now().UTC())
	return err
}

// scanOne executes a single-row query and scans the result into a Profile.
// Column order matches the profiles table definition.
func (r *Repository) scanOne(ctx context.Context, q string, args ...any) (*Profile, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	var p Profile
	if err := rows.Scan(
		&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.Bio, &p.Country, &p.CountryCode,
		&p.SubscriptionTier, &p.DietaryPreferences, &p.SkillLevel, &p.FavoriteCuisines,
		&p.Points, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &p, rows.Err()
}
