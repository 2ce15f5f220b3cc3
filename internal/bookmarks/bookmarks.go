// Package bookmarks lets users save recipes into folders for the
// bookmarks tab.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a bookmark lookup finds no matching record.
var ErrNotFound = errors.New("bookmark not found")

// DefaultFolder is where bookmarks land when no folder is chosen.
const DefaultFolder = "default"

// Bookmark is one saved recipe.
type Bookmark struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	RecipeID  uuid.UUID `json:"recipe_id"`
	Folder    string    `json:"folder"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists bookmarks in PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Add saves a recipe for a user. Saving the same recipe twice is not an
// error: the existing row keeps its folder and notes untouched.
func (r *Repository) Add(ctx context.Context, b *Bookmark) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Folder == "" {
		b.Folder = DefaultFolder
	}
	b.CreatedAt = time.Now().UTC()

	q := `
		INSERT INTO bookmarks (id, user_id, recipe_id, folder, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, recipe_id) DO NOTHING`
	_, err := r.db.Exec(ctx, q, b.ID, b.UserID, b.RecipeID, b.Folder, b.Notes, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("add bookmark: %w", err)
	}
	return nil
}

// Remove deletes a user's bookmark for one recipe.
func (r *Repository) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND recipe_id = $2`,
		userID, recipeID)
	if err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns a user's bookmarks, newest first, optionally
// restricted to one folder.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, folder string) ([]*Bookmark, error) {
	q := `SELECT id, user_id, recipe_id, folder, notes, created_at
		FROM bookmarks WHERE user_id = $1`
	args := []any{userID}
	if folder != "" {
		q += ` AND folder = $2`
		args = append(args, folder)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.RecipeID, &b.Folder, &b.Notes, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// IsBookmarked reports whether userID has saved recipeID.
func (r *Repository) IsBookmarked(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND recipe_id = $2)`,
		userID, recipeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check bookmark: %w", err)
	}
	return exists, nil
}
