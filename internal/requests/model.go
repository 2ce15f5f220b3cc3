// Package requests handles recipe requests: users ask for dishes they want
// to see, admins move requests through a review pipeline toward a published
// recipe.
package requests

import (
	"time"

	"github.com/google/uuid"
)

// Status is a request's position in the review pipeline.
type Status string

const (
	StatusSubmitted    Status = "submitted"
	StatusUnderReview  Status = "under_review"
	StatusApproved     Status = "approved"
	StatusInProduction Status = "in_production"
	StatusPublished    Status = "published"
	StatusRejected     Status = "rejected"
)

// ValidStatus reports whether s is a known pipeline status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved,
		StatusInProduction, StatusPublished, StatusRejected:
		return true
	}
	return false
}

// Request is one user-submitted recipe request.
type Request struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              uuid.UUID  `json:"user_id"`
	RecipeName          string     `json:"recipe_name"`
	CuisineType         string     `json:"cuisine_type"`
	Difficulty          string     `json:"difficulty_preference"`
	DietaryRestrictions []string   `json:"dietary_restrictions"`
	Occasion            string     `json:"occasion"`
	Notes               string     `json:"notes"`
	Status              Status     `json:"status"`
	Upvotes             int        `json:"upvotes"`
	AdminNotes          string     `json:"admin_notes"`
	RecipeID            *uuid.UUID `json:"recipe_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
