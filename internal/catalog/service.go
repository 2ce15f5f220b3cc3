package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	categoryCacheTTL = 5 * time.Minute
)

// recipeRepo is the recipe storage interface consumed by Service.
type recipeRepo interface {
	Create(ctx context.Context, rec *Recipe) error
	Update(ctx context.Context, rec *Recipe) error
	GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error)
	GetBySlug(ctx context.Context, slug string) (*Recipe, error)
	ListPublished(ctx context.Context, sort Sort, categoryID uuid.UUID, limit, offset int) ([]*Recipe, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Recipe, error)
	ListFeatured(ctx context.Context, limit int) ([]*Recipe, error)
	Search(ctx context.Context, query string, limit int) ([]*Recipe, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// categoryRepo is the category storage interface consumed by Service.
type categoryRepo interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	ListActive(ctx context.Context) ([]*Category, error)
	ListAll(ctx context.Context) ([]*Category, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service implements catalog business logic for both the app screens and
// the admin screens.
type Service struct {
	recipes    recipeRepo
	categories categoryRepo
	cache      *categoryCache
	logger     *zap.Logger
}

// NewService creates a new Service.
func NewService(recipes recipeRepo, categories categoryRepo, logger *zap.Logger) *Service {
	return &Service{
		recipes:    recipes,
		categories: categories,
		cache:      newCategoryCache(categoryCacheTTL),
		logger:     logger,
	}
}

// ListPublished returns published recipes. Unknown sorts fall back to
// newest-first rather than erroring; the sort is a UI toggle.
func (s *Service) ListPublished(ctx context.Context, sort Sort, categoryID uuid.UUID, limit, offset int) ([]*Recipe, error) {
	if !ValidSort(sort) {
		sort = SortNewest
	}
	return s.recipes.ListPublished(ctx, sort, categoryID, clampLimit(limit), max(offset, 0))
}

// ListFeatured returns the home carousel recipes.
func (s *Service) ListFeatured(ctx context.Context, limit int) ([]*Recipe, error) {
	return s.recipes.ListFeatured(ctx, clampLimit(limit))
}

// Search matches published recipes by title or description.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.recipes.Search(ctx, query, clampLimit(limit))
}

// GetBySlug returns one published recipe and counts the view. Drafts are
// invisible through this path.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Recipe, error) {
	rec, err := s.recipes.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !rec.IsPublished {
		return nil, ErrNotFound
	}
	if err := s.recipes.IncrementViews(ctx, rec.ID); err != nil {
		s.logger.Warn("view count increment failed",
			zap.String("recipe_id", rec.ID.String()),
			zap.Error(err),
		)
	}
	return rec, nil
}

// GetRecipe returns one recipe by ID, drafts included. Admin only.
func (s *Service) GetRecipe(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	return s.recipes.GetByID(ctx, id)
}

// ListAllRecipes returns every recipe for the admin list. Admin only.
func (s *Service) ListAllRecipes(ctx context.Context, limit, offset int) ([]*Recipe, error) {
	return s.recipes.ListAll(ctx, clampLimit(limit), max(offset, 0))
}

// CreateRecipe validates and inserts a recipe as an unpublished draft.
func (s *Service) CreateRecipe(ctx context.Context, rec *Recipe) error {
	if err := validateRecipe(rec); err != nil {
		return err
	}
	if rec.Slug == "" {
		rec.Slug = Slugify(rec.Title)
	}
	rec.IsPublished = false
	rec.PublishedAt = nil
	return s.recipes.Create(ctx, rec)
}

// UpdateRecipe validates and saves edits to an existing recipe.
func (s *Service) UpdateRecipe(ctx context.Context, rec *Recipe) error {
	if err := validateRecipe(rec); err != nil {
		return err
	}
	if rec.Slug == "" {
		rec.Slug = Slugify(rec.Title)
	}
	return s.recipes.Update(ctx, rec)
}

// SetPublished toggles recipe visibility.
func (s *Service) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	return s.recipes.SetPublished(ctx, id, published)
}

// DeleteRecipe removes a recipe permanently.
func (s *Service) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return s.recipes.Delete(ctx, id)
}

// ActiveCategories returns the browse-screen category list through the
// TTL cache.
func (s *Service) ActiveCategories(ctx context.Context) ([]*Category, error) {
	if cached := s.cache.get(); cached != nil {
		return cached, nil
	}
	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.set(categories)
	return categories, nil
}

// AllCategories returns every category for the admin list. Admin only.
func (s *Service) AllCategories(ctx context.Context) ([]*Category, error) {
	return s.categories.ListAll(ctx)
}

// CreateCategory validates and inserts a category.
func (s *Service) CreateCategory(ctx context.Context, c *Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return err
	}
	s.cache.invalidate()
	return nil
}

// UpdateCategory saves edits to a category.
func (s *Service) UpdateCategory(ctx context.Context, c *Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return err
	}
	s.cache.invalidate()
	return nil
}

// SetCategoryActive toggles a category's visibility.
func (s *Service) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.categories.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.cache.invalidate()
	return nil
}

// DeleteCategory removes a category permanently.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate()
	return nil
}

func validateRecipe(rec *Recipe) error {
	if strings.TrimSpace(rec.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !ValidDifficulty(rec.Difficulty) {
		return fmt.Errorf("unknown difficulty %q", rec.Difficulty)
	}
	if len(rec.Ingredients) == 0 {
		return fmt.Errorf("at least one ingredient is required")
	}
	if len(rec.Instructions) == 0 {
		return fmt.Errorf("at least one instruction step is required")
	}
	if rec.Servings <= 0 {
		return fmt.Errorf("servings must be positive")
	}
	return nil
}

// Slugify derives a URL slug: lowercase, runs of non-alphanumerics
// collapsed to single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
