package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a request lookup finds no matching record.
var ErrNotFound = errors.New("recipe request not found")

const requestColumns = `
	id, user_id, recipe_name, cuisine_type, difficulty_preference,
	dietary_restrictions, occasion, notes, status, upvotes, admin_notes,
	recipe_id, created_at, updated_at`

// Repository persists recipe requests in PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a request in the submitted state.
func (r *Repository) Create(ctx context.Context, req *Request) error {
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.Status = StatusSubmitted
	req.Upvotes = 0

	q := `
		INSERT INTO recipe_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.Exec(ctx, q,
		req.ID, req.UserID, req.RecipeName, req.CuisineType, req.Difficulty,
		req.DietaryRestrictions, req.Occasion, req.Notes, req.Status,
		req.Upvotes, req.AdminNotes, req.RecipeID, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create recipe request: %w", err)
	}
	return nil
}

// GetByID retrieves one request.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	rows, err := r.db.Query(ctx, `SELECT `+requestColumns+` FROM recipe_requests WHERE id = $1`, id)
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
	req, err := scanRequest(rows.Scan)
	if err != nil {
		return nil, err
	}
	return req, rows.Err()
}

// ListByUser returns one user's requests, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Request, error) {
	q := `SELECT ` + requestColumns + ` FROM recipe_requests
		WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

// ListByStatus returns all requests in one pipeline state, newest first.
// Admin only.
func (r *Repository) ListByStatus(ctx context.Context, status Status) ([]*Request, error) {
	q := `SELECT ` + requestColumns + ` FROM recipe_requests
		WHERE status = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, status)
}

// SetStatus moves a request through the pipeline, optionally attaching
// admin notes and the completed recipe.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status Status, adminNotes string, recipeID *uuid.UUID) error {
	q := `
		UPDATE recipe_requests
		SET status = $2, admin_notes = $3, recipe_id = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id, status, adminNotes, recipeID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Upvote bumps a request's upvote counter.
func (r *Repository) Upvote(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE recipe_requests SET upvotes = upvotes + 1, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upvote request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]*Request, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(scan func(...any) error) (*Request, error) {
	var req Request
	if err := scan(
		&req.ID, &req.UserID, &req.RecipeName, &req.CuisineType, &req.Difficulty,
		&req.DietaryRestrictions, &req.Occasion, &req.Notes, &req.Status,
		&req.Upvotes, &req.AdminNotes, &req.RecipeID, &req.CreatedAt, &req.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan recipe request: %w", err)
	}
	return &req, nil
}
