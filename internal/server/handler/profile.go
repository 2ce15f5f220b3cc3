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
)

// profileSvc is the subset of the profiles service used by ProfileHandler.
type profileSvc interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profiles.Profile, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, fullName, bio, avatarURL string, skill profiles.SkillLevel) error
	UpdatePreferences(ctx context.Context, id uuid.UUID, dietary, cuisines []string) error
}

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
	profiles profileSvc
	tokens   *auth.TokenIssuer
	logger   *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileSvc profileSvc, tokens *auth.TokenIssuer, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profileSvc, tokens: tokens, logger: logger}
}

// Register registers ProfileHandler routes on the given router group.
func (h *ProfileHandler) Register(rg *gin.RouterGroup) {
	me := rg.Group("/profile", auth.RequireSession(h.tokens))
	me.GET("/me", h.GetMyProfile)
	me.PATCH("/me", h.UpdateMyProfile)
	me.PUT("/me/preferences", h.UpdateMyPreferences)
}

// GetMyProfile handles GET /profile/me.
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	uid, ok := sessionUserID(c)
	if !ok {
		return
	}

	profile, err := h.profiles.GetByID(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("get profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// updateProfileRequest is the body for PATCH /profile/me.
type updateProfileRequest struct {
	FullName   string              `json:"full_name" binding:"required"`
	Bio        string              `json:"bio"`
	AvatarURL  string              `json:"avatar_url"`
	SkillLevel profiles.SkillLevel `json:"skill_level"`
}

// UpdateMyProfile handles PATCH /profile/me.
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	uid, ok := sessionUserID(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SkillLevel == "" {
		req.SkillLevel = profiles.SkillBeginner
	}

	ctx := c.Request.Context()
	if err := h.profiles.UpdateDetails(ctx, uid, req.FullName, req.Bio, req.AvatarURL, req.SkillLevel); err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profiles.GetByID(ctx, uid)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// updatePreferencesRequest is the body for PUT /profile/me/preferences.
type updatePreferencesRequest struct {
	DietaryPreferences []string `json:"dietary_preferences"`
	FavoriteCuisines   []string `json:"favorite_cuisines"`
}

// UpdateMyPreferences handles PUT /profile/me/preferences — saves the
// onboarding selections.
func (h *ProfileHandler) UpdateMyPreferences(c *gin.Context) {
	uid, ok := sessionUserID(c)
	if !ok {
		return
	}

	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.profiles.UpdatePreferences(c.Request.Context(), uid, req.DietaryPreferences, req.FavoriteCuisines); err != nil {
		h.logger.Error("update preferences", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// sessionUserID extracts the authenticated user's UUID from the session
// claims, writing the error response itself on failure.
func sessionUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := auth.ClaimsFromCtx(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return uuid.Nil, false
	}
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID in token"})
		return uuid.Nil, false
	}
	return uid, true
}
