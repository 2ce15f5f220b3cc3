package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a recipe or category lookup finds nothing.
var ErrNotFound = errors.New("not found")

// ErrDuplicateSlug is returned when an insert collides with an existing slug.
var ErrDuplicateSlug = errors.New("slug already in use")

const recipeColumns = `
	id, title, slug, description, image_url, ingredients, instructions, nutrition,
	prep_time_minutes, cook_time_minutes, servings, difficulty, tags, cuisine_type,
	category_id, is_featured, is_published, published_at, view_count,
	average_rating, rating_count, created_by, created_at, updated_at`

// RecipeRepository persists recipes in PostgreSQL. The structured fields
// (ingredients, instructions, nutrition) are JSONB columns marshalled
// explicitly so the wire shape stays under our control.
type RecipeRepository struct {
	db *pgxpool.Pool
}

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(db *pgxpool.Pool) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create inserts a recipe. Slugs are unique store-wide.
func (r *RecipeRepository) Create(ctx context.Context, rec *Recipe) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	ingredients, instructions, nutrition, err := marshalRecipeJSON(rec)
	if err != nil {
		return err
	}

	q := `
		INSERT INTO recipes (` + recipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err = r.db.Exec(ctx, q,
		rec.ID, rec.Title, rec.Slug, rec.Description, rec.ImageURL,
		ingredients, instructions, nutrition,
		rec.PrepMinutes, rec.CookMinutes, rec.Servings, rec.Difficulty,
		rec.Tags, rec.CuisineType, rec.CategoryID, rec.IsFeatured,
		rec.IsPublished, rec.PublishedAt, rec.ViewCount,
		rec.AverageRating, rec.RatingCount, rec.CreatedBy,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("create recipe: %w", err)
	}
	return nil
}

// Update replaces the editable fields of an existing recipe.
func (r *RecipeRepository) Update(ctx context.Context, rec *Recipe) error {
	rec.UpdatedAt = time.Now().UTC()

	ingredients, instructions, nutrition, err := marshalRecipeJSON(rec)
	if err != nil {
		return err
	}

	q := `
		UPDATE recipes
		SET title = $2, slug = $3, description = $4, image_url = $5,
		    ingredients = $6, instructions = $7, nutrition = $8,
		    prep_time_minutes = $9, cook_time_minutes = $10, servings = $11,
		    difficulty = $12, tags = $13, cuisine_type = $14, category_id = $15,
		    is_featured = $16, updated_at = $17
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, q,
		rec.ID, rec.Title, rec.Slug, rec.Description, rec.ImageURL,
		ingredients, instructions, nutrition,
		rec.PrepMinutes, rec.CookMinutes, rec.Servings,
		rec.Difficulty, rec.Tags, rec.CuisineType, rec.CategoryID,
		rec.IsFeatured, rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves one recipe, published or not.
func (r *RecipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	return r.scanOne(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id)
}

// GetBySlug retrieves one recipe by its URL slug.
func (r *RecipeRepository) GetBySlug(ctx context.Context, slug string) (*Recipe, error) {
	return r.scanOne(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE slug = $1`, slug)
}

// ListPublished returns published recipes in the requested order,
// optionally restricted to one category.
func (r *RecipeRepository) ListPublished(ctx context.Context, sort Sort, categoryID uuid.UUID, limit, offset int) ([]*Recipe, error) {
	order := "published_at DESC"
	switch sort {
	case SortPopular:
		order = "view_count DESC"
	case SortRating:
		order = "average_rating DESC"
	}

	q := `SELECT ` + recipeColumns + ` FROM recipes WHERE is_published = true`
	args := []any{}
	if categoryID != uuid.Nil {
		q += ` AND category_id = $1`
		args = append(args, categoryID)
	}
	q += fmt.Sprintf(` ORDER BY %s LIMIT %d OFFSET %d`, order, limit, offset)

	return r.scanMany(ctx, q, args...)
}

// ListAll returns every recipe, drafts included, newest first. Admin only.
func (r *RecipeRepository) ListAll(ctx context.Context, limit, offset int) ([]*Recipe, error) {
	q := `SELECT ` + recipeColumns + ` FROM recipes
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.scanMany(ctx, q, limit, offset)
}

// Search matches published recipes by title or description substring,
// case-insensitive, newest first.
func (r *RecipeRepository) Search(ctx context.Context, query string, limit int) ([]*Recipe, error) {
	q := `SELECT ` + recipeColumns + ` FROM recipes
		WHERE is_published = true
		  AND (title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY published_at DESC LIMIT $2`
	return r.scanMany(ctx, q, query, limit)
}

// ListFeatured returns published featured recipes for the home carousel.
func (r *RecipeRepository) ListFeatured(ctx context.Context, limit int) ([]*Recipe, error) {
	q := `SELECT ` + recipeColumns + ` FROM recipes
		WHERE is_published = true AND is_featured = true
		ORDER BY published_at DESC LIMIT $1`
	return r.scanMany(ctx, q, limit)
}

// SetPublished toggles visibility. Publishing stamps published_at;
// unpublishing clears it.
func (r *RecipeRepository) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	var publishedAt *time.Time
	if published {
		now := time.Now().UTC()
		publishedAt = &now
	}
	q := `UPDATE recipes SET is_published = $2, published_at = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id, published, publishedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter.
func (r *RecipeRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	q := `UPDATE recipes SET view_count = view_count + 1 WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id)
	return err
}

// Delete removes a recipe permanently.
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RecipeRepository) scanOne(ctx context.Context, q string, args ...any) (*Recipe, error) {
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
	rec, err := scanRecipe(rows)
	if err != nil {
		return nil, err
	}
	return rec, rows.Err()
}

func (r *RecipeRepository) scanMany(ctx context.Context, q string, args ...any) ([]*Recipe, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecipe(rows pgx.Rows) (*Recipe, error) {
	var (
		rec          Recipe
		ingredients  []byte
		instructions []byte
		nutrition    []byte
	)
	if err := rows.Scan(
		&rec.ID, &rec.Title, &rec.Slug, &rec.Description, &rec.ImageURL,
		&ingredients, &instructions, &nutrition,
		&rec.PrepMinutes, &rec.CookMinutes, &rec.Servings, &rec.Difficulty,
		&rec.Tags, &rec.CuisineType, &rec.CategoryID, &rec.IsFeatured,
		&rec.IsPublished, &rec.PublishedAt, &rec.ViewCount,
		&rec.AverageRating, &rec.RatingCount, &rec.CreatedBy,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan recipe: %w", err)
	}
	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &rec.Ingredients); err != nil {
			return nil, fmt.Errorf("decode ingredients: %w", err)
		}
	}
	if len(instructions) > 0 {
		if err := json.Unmarshal(instructions, &rec.Instructions); err != nil {
			return nil, fmt.Errorf("decode instructions: %w", err)
		}
	}
	if len(nutrition) > 0 {
		if err := json.Unmarshal(nutrition, &rec.Nutrition); err != nil {
			return nil, fmt.Errorf("decode nutrition: %w", err)
		}
	}
	return &rec, nil
}

func marshalRecipeJSON(rec *Recipe) (ingredients, instructions, nutrition []byte, err error) {
	if ingredients, err = json.Marshal(rec.Ingredients); err != nil {
		return nil, nil, nil, fmt.Errorf("encode ingredients: %w", err)
	}
	if instructions, err = json.Marshal(rec.Instructions); err != nil {
		return nil, nil, nil, fmt.Errorf("encode instructions: %w", err)
	}
	if rec.Nutrition != nil {
		if nutrition, err = json.Marshal(rec.Nutrition); err != nil {
			return nil, nil, nil, fmt.Errorf("encode nutrition: %w", err)
		}
	}
	return ingredients, instructions, nutrition, nil
}
