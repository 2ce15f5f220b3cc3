package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ceylonbites/ceylonbites/internal/email"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCodeExpired is returned when the latest code's expiry has passed.
// Expiry is checked before the code itself, so an expired code fails with
// this error even on an exact match.
var ErrCodeExpired = errors.New("Verification code expired")

// ErrCodeMismatch is returned when the supplied code differs from the
// stored one. The record's attempts counter has already been incremented
// by the time the caller sees this error.
var ErrCodeMismatch = errors.New("Invalid verification code")

// recordRepo is the storage interface consumed by Service.
type recordRepo interface {
	Create(ctx context.Context, rec *Record) error
	LatestUnverified(ctx context.Context, userID uuid.UUID) (*Record, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	ExpireUnverified(ctx context.Context, userID uuid.UUID) error
}

// Service issues and checks one-time email verification codes.
type Service struct {
	repo   recordRepo
	mailer email.Sender
	logger *zap.Logger

	now func() time.Time // overridable in tests
}

// NewService creates a new Service.
func NewService(repo recordRepo, mailer email.Sender, logger *zap.Logger) *Service {
	return &Service{repo: repo, mailer: mailer, logger: logger, now: time.Now}
}

// Issue creates a fresh code for the user and emails it. A failed send is
// non-fatal: the record exists and the user can request a resend.
func (s *Service) Issue(ctx context.Context, userID uuid.UUID, emailAddr string) (*Record, error) {
	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	rec := &Record{
		UserID:    userID,
		Email:     emailAddr,
		Code:      code,
		ExpiresAt: s.now().UTC().Add(CodeTTL),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	body := email.VerificationBody(code, CodeTTL)
	if err := s.mailer.Send(ctx, emailAddr, email.VerificationSubject, body); err != nil {
		s.logger.Warn("failed to send verification email",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
	return rec, nil
}

// Verify checks the supplied code against the user's latest unverified
// record. Codes are compared as exact strings, never numerically.
//
// Failure order: no record → ErrNoVerification; expired → ErrCodeExpired
// (even on an exact match); mismatch → attempts+1, then ErrCodeMismatch.
// On success the record is marked verified.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, code string) error {
	rec, err := s.repo.LatestUnverified(ctx, userID)
	if err != nil {
		return err
	}

	if s.now().After(rec.ExpiresAt) {
		return ErrCodeExpired
	}

	if rec.Code != code {
		if err := s.repo.IncrementAttempts(ctx, rec.ID); err != nil {
			s.logger.Warn("increment verification attempts", zap.Error(err))
		}
		return ErrCodeMismatch
	}

	if err := s.repo.MarkVerified(ctx, rec.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	s.logger.Info("email verified", zap.String("user_id", userID.String()))
	return nil
}

// Resend expires any outstanding unverified codes for the user and issues
// a new one. Old rows are kept but become permanently unusable.
func (s *Service) Resend(ctx context.Context, userID uuid.UUID, emailAddr string) (*Record, error) {
	if err := s.repo.ExpireUnverified(ctx, userID); err != nil {
		return nil, fmt.Errorf("expire previous codes: %w", err)
	}
	return s.Issue(ctx, userID, emailAddr)
}

// generateCode draws a uniform 6-digit code from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
