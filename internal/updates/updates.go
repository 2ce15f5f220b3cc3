// Package updates is the home-feed announcement stream: short cards about
// new recipes, features, and creator news, managed from the admin screens.
package updates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an update lookup finds no matching record.
var ErrNotFound = errors.New("update not found")

// Type classifies an update card on the home feed.
type Type string

const (
	TypeRecipe       Type = "recipe"
	TypeFeature      Type = "feature"
	TypeAnnouncement Type = "announcement"
	TypeCreator      Type = "creator"
)

// ValidType reports whether t is a known card type.
func ValidType(t Type) bool {
	switch t {
	case TypeRecipe, TypeFeature, TypeAnnouncement, TypeCreator:
		return true
	}
	return false
}

// Update is one card on the home feed.
type Update struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      Type      `json:"type"`
	ImageURL  string    `json:"image_url"`
	LinkURL   string    `json:"link_url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// HomeFeedLimit caps the cards shown on the home screen.
const HomeFeedLimit = 5

// Repository persists updates in PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts an update card.
func (r *Repository) Create(ctx context.Context, u *Update) error {
	if !ValidType(u.Type) {
		return fmt.Errorf("unknown update type %q", u.Type)
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now().UTC()

	q := `
		INSERT INTO app_updates (id, title, content, type, image_url, link_url, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, q,
		u.ID, u.Title, u.Content, u.Type, u.ImageURL, u.LinkURL, u.IsActive, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create update: %w", err)
	}
	return nil
}

// ListActive returns the newest active cards, capped at limit.
func (r *Repository) ListActive(ctx context.Context, limit int) ([]*Update, error) {
	if limit <= 0 || limit > HomeFeedLimit {
		limit = HomeFeedLimit
	}
	q := `
		SELECT id, title, content, type, image_url, link_url, is_active, created_at
		FROM app_updates
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Update
	for rows.Next() {
		var u Update
		if err := rows.Scan(
			&u.ID, &u.Title, &u.Content, &u.Type, &u.ImageURL, &u.LinkURL,
			&u.IsActive, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// SetActive toggles a card's visibility on the feed.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE app_updates SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set update active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a card permanently.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM app_updates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
