package profiles

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBioLength = 200

// profileRepo is the storage interface consumed by Service.
type profileRepo interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByUsername(ctx context.Context, username string) (*Profile, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, fullName, bio, avatarURL string, skill SkillLevel) error
	UpdatePreferences(ctx context.Context, id uuid.UUID, dietary, cuisines []string) error
	SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error
}

// Service implements business logic for profile management.
type Service struct {
	repo   profileRepo
	logger *zap.Logger
}

// NewService creates a new Service.
func NewService(repo profileRepo, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates and inserts a profile for a freshly created identity.
// The tier defaults to free.
func (s *Service) Create(ctx context.Context, p *Profile) error {
	username, err := NormalizeUsername(p.Username)
	if err != nil {
		return err
	}
	p.Username = username
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("full name is required")
	}
	if len(p.Bio) > maxBioLength {
		return fmt.Errorf("bio must be at most %d characters", maxBioLength)
	}
	return s.repo.Create(ctx, p)
}

// GetByID retrieves a profile by identity ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername retrieves a profile by username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	normalized, err := NormalizeUsername(username)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByUsername(ctx, normalized)
}

// UpdateDetails updates the editable display fields after validation.
func (s *Service) UpdateDetails(ctx context.Context, id uuid.UUID, fullName, bio, avatarURL string, skill SkillLevel) error {
	if strings.TrimSpace(fullName) == "" {
		return fmt.Errorf("full name is required")
	}
	if len(bio) > maxBioLength {
		return fmt.Errorf("bio must be at most %d characters", maxBioLength)
	}
	switch skill {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert:
	default:
		return fmt.Errorf("unknown skill level %q", skill)
	}
	return s.repo.UpdateDetails(ctx, id, fullName, bio, avatarURL, skill)
}

// UpdatePreferences stores the onboarding cuisine/dietary selections.
func (s *Service) UpdatePreferences(ctx context.Context, id uuid.UUID, dietary, cuisines []string) error {
	return s.repo.UpdatePreferences(ctx, id, dietary, cuisines)
}

// SetAdmin grants or revokes the admin flag.
func (s *Service) SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	s.logger.Info("admin flag changed", zap.String("profile_id", id.String()), zap.Bool("admin", admin))
	return s.repo.SetAdmin(ctx, id, admin)
}

// IsAdmin reports whether the profile carries the admin flag.
// Satisfies the auth.AdminChecker interface.
func (s *Service) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p.IsAdmin, nil
}

// NormalizeUsername lowercases the username and rejects anything that is
// not 3+ characters of letters, digits, underscores, or hyphens.
func NormalizeUsername(username string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(username))
	if len(u) < 3 {
		return "", fmt.Errorf("username must be at least 3 characters")
	}
	for _, r := range u {
		if unicode.IsSpace(r) {
			return "", fmt.Errorf("username must not contain whitespace")
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return "", fmt.Errorf("username may only contain letters, digits, '_' and '-'")
		}
	}
	return u, nil
}
