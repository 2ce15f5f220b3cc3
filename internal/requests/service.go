package requests

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// requestRepo is the storage interface consumed by Service.
type requestRepo interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Request, error)
	ListByStatus(ctx context.Context, status Status) ([]*Request, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status, adminNotes string, recipeID *uuid.UUID) error
	Upvote(ctx context.Context, id uuid.UUID) error
}

// Service implements recipe-request business logic.
type Service struct {
	repo   requestRepo
	logger *zap.Logger
}

// NewService creates a new Service.
func NewService(repo requestRepo, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Submit validates and files a new request for userID.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req *Request) error {
	if strings.TrimSpace(req.RecipeName) == "" {
		return fmt.Errorf("recipe name is required")
	}
	req.UserID = userID
	if err := s.repo.Create(ctx, req); err != nil {
		return err
	}
	s.logger.Info("recipe request submitted",
		zap.String("request_id", req.ID.String()),
		zap.String("recipe_name", req.RecipeName),
	)
	return nil
}

// ListMine returns the caller's own requests, newest first.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*Request, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListByStatus returns the admin review queue for one pipeline state.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]*Request, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	return s.repo.ListByStatus(ctx, status)
}

// Transition moves a request to a new pipeline state. Linking a completed
// recipe is only meaningful on the published state.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, status Status, adminNotes string, recipeID *uuid.UUID) error {
	if !ValidStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}
	if recipeID != nil && status != StatusPublished {
		return fmt.Errorf("recipe link requires published status")
	}
	return s.repo.SetStatus(ctx, id, status, adminNotes, recipeID)
}

// Upvote bumps a request's counter.
func (s *Service) Upvote(ctx context.Context, id uuid.UUID) error {
	return s.repo.Upvote(ctx, id)
}
