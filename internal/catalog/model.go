// Package catalog holds the recipe and category domain: models, PostgreSQL
// repositories, and the service the app and admin screens go through.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty grades how demanding a recipe is to cook.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Sort selects the ordering of published recipe listings.
type Sort string

const (
	SortNewest  Sort = "newest"
	SortPopular Sort = "popular"
	SortRating  Sort = "rating"
)

// Ingredient is one line of a recipe's ingredient list. Stored as JSONB.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
}

// Nutrition is the per-serving nutrition summary. Stored as JSONB.
type Nutrition struct {
	Calories int    `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fat      string `json:"fat"`
}

// Recipe is a single catalog entry. Only published recipes are visible to
// the app; drafts live in the admin screens until published.
type Recipe struct {
	ID            uuid.UUID    `json:"id"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Description   string       `json:"description"`
	ImageURL      string       `json:"image_url"`
	Ingredients   []Ingredient `json:"ingredients"`
	Instructions  []string     `json:"instructions"`
	Nutrition     *Nutrition   `json:"nutrition,omitempty"`
	PrepMinutes   int          `json:"prep_time_minutes"`
	CookMinutes   int          `json:"cook_time_minutes"`
	Servings      int          `json:"servings"`
	Difficulty    Difficulty   `json:"difficulty"`
	Tags          []string     `json:"tags"`
	CuisineType   string       `json:"cuisine_type"`
	CategoryID    uuid.UUID    `json:"category_id"`
	IsFeatured    bool         `json:"is_featured"`
	IsPublished   bool         `json:"is_published"`
	PublishedAt   *time.Time   `json:"published_at,omitempty"`
	ViewCount     int          `json:"view_count"`
	AverageRating float64      `json:"average_rating"`
	RatingCount   int          `json:"rating_count"`
	CreatedBy     uuid.UUID    `json:"created_by"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Category groups recipes on the browse screen. Inactive categories stay
// in storage but disappear from listings.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Icon        string    `json:"icon"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidDifficulty reports whether d is one of the known grades.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

// ValidSort reports whether s is a known listing order.
func ValidSort(s Sort) bool {
	switch s {
	case SortNewest, SortPopular, SortRating:
		return true
	}
	return false
}
