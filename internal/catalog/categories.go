package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `
	id, name, slug, description, image_url, icon, sort_order, is_active,
	created_at, updated_at`

// CategoryRepository persists recipe categories in PostgreSQL.
type CategoryRepository struct {
	db *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category. Slugs are unique store-wide.
func (r *CategoryRepository) Create(ctx context.Context, c *Category) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	q := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, q,
		c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.Icon,
		c.SortOrder, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update replaces the editable fields of a category.
func (r *CategoryRepository) Update(ctx context.Context, c *Category) error {
	c.UpdatedAt = time.Now().UTC()
	q := `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, image_url = $5, icon = $6,
		    sort_order = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, q,
		c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.Icon,
		c.SortOrder, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves one category.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
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
	var c Category
	if err := rows.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.Icon,
		&c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &c, rows.Err()
}

// ListActive returns active categories in display order.
func (r *CategoryRepository) ListActive(ctx context.Context) ([]*Category, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE is_active = true ORDER BY sort_order ASC`)
}

// ListAll returns every category, inactive included. Admin only.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]*Category, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order ASC`)
}

// SetActive toggles a category's visibility.
func (r *CategoryRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	q := `UPDATE categories SET is_active = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set category active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a category permanently.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) list(ctx context.Context, q string, args ...any) ([]*Category, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.Icon,
			&c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
