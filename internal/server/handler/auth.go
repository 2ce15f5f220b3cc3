// Package handler contains the Gin HTTP handlers for the CeylonBites API.
// Each handler takes narrow service interfaces and registers its routes on
// the /api/v1 group.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ceylonbites/ceylonbites/internal/auth"
	"github.com/ceylonbites/ceylonbites/internal/profiles"
	"github.com/ceylonbites/ceylonbites/internal/verification"
)

// authProvider is the subset of the auth provider used by AuthHandler.
type authProvider interface {
	SignUp(ctx context.Context, email, password string) (*auth.Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context) error
	DeleteIdentity(ctx context.Context, id uuid.UUID) error
}

// profileCreator is the subset of the profiles service used by AuthHandler.
type profileCreator interface {
	Create(ctx context.Context, p *profiles.Profile) error
}

// emailVerifier is the subset of the verification service used by AuthHandler.
type emailVerifier interface {
	Issue(ctx context.Context, userID uuid.UUID, email string) (*verification.Record, error)
	Verify(ctx context.Context, userID uuid.UUID, code string) error
	Resend(ctx context.Context, userID uuid.UUID, email string) (*verification.Record, error)
}

// AuthHandler handles signup, login, logout, and email verification.
type AuthHandler struct {
	provider authProvider
	profiles profileCreator
	verifier emailVerifier
	tokens   *auth.TokenIssuer
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(provider authProvider, profileSvc profileCreator, verifier emailVerifier, tokens *auth.TokenIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		profiles: profileSvc,
		verifier: verifier,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register registers AuthHandler routes on the given router group.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", h.SignUp)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/logout", auth.RequireSession(h.tokens), h.Logout)
	rg.POST("/auth/verify-email", auth.RequireSession(h.tokens), h.VerifyEmail)
	rg.POST("/auth/resend-verification", auth.RequireSession(h.tokens), h.ResendVerification)
}

// signupRequest is the body for POST /auth/signup.
type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

// SignUp handles POST /auth/signup — creates the identity and its profile
// in one request. If the profile insert fails the identity is rolled back,
// so the two never diverge. No session is established; the client signs in
// explicitly afterwards.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	identity, err := h.provider.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		RecordSignup(false)
		if errors.Is(err, auth.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("signup: create identity", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign up failed"})
		return
	}

	profile := &profiles.Profile{
		ID:       identity.ID,
		Username: req.Username,
		FullName: req.FullName,
	}
	if err := h.profiles.Create(ctx, profile); err != nil {
		RecordSignup(false)
		if rbErr := h.provider.DeleteIdentity(ctx, identity.ID); rbErr != nil {
			h.logger.Error("signup: identity rollback failed",
				zap.String("identity_id", identity.ID.String()),
				zap.Error(rbErr),
			)
		}
		if errors.Is(err, profiles.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.verifier.Issue(ctx, identity.ID, identity.Email); err != nil {
		// The account exists; the client can request a resend.
		h.logger.Warn("signup: verification issue failed",
			zap.String("identity_id", identity.ID.String()),
			zap.Error(err),
		)
	}

	RecordSignup(true)
	c.JSON(http.StatusCreated, gin.H{
		"user_id":  identity.ID,
		"email":    identity.Email,
		"username": profile.Username,
	})
}

// loginRequest is the body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login — exchanges credentials for a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.provider.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": session.AccessToken,
		"expires_at":   session.ExpiresAt,
		"user": gin.H{
			"id":    session.Identity.ID,
			"email": session.Identity.Email,
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.provider.SignOut(c.Request.Context()); err != nil {
		h.logger.Error("logout", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// verifyEmailRequest is the body for POST /auth/verify-email.
type verifyEmailRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// VerifyEmail handles POST /auth/verify-email — checks the six-digit code
// against the caller's latest outstanding verification.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	claims := auth.ClaimsFromCtx(c)
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID in token"})
		return
	}

	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.verifier.Verify(c.Request.Context(), uid, req.Code); err != nil {
		RecordVerification(false)
		switch {
		case errors.Is(err, verification.ErrNoVerification):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, verification.ErrCodeExpired),
			errors.Is(err, verification.ErrCodeMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("verify email", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}

	RecordVerification(true)
	c.JSON(http.StatusOK, gin.H{"status": "verified"})
}

// ResendVerification handles POST /auth/resend-verification — expires any
// outstanding codes and issues a fresh one.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	claims := auth.ClaimsFromCtx(c)
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID in token"})
		return
	}

	if _, err := h.verifier.Resend(c.Request.Context(), uid, claims.Email); err != nil {
		h.logger.Error("resend verification", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resend verification code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
