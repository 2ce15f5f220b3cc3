package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ceylonbites/ceylonbites/internal/auth"
	"github.com/ceylonbites/ceylonbites/internal/requests"
)

// requestSvc is the subset of the requests service used by RequestHandler.
type requestSvc interface {
	Submit(ctx context.Context, userID uuid.UUID, req *requests.Request) error
	ListMine(ctx context.Context, userID uuid.UUID) ([]*requests.Request, error)
	ListByStatus(ctx context.Context, status requests.Status) ([]*requests.Request, error)
	Transition(ctx context.Context, id uuid.UUID, status requests.Status, adminNotes string, recipeID *uuid.UUID) error
	Upvote(ctx context.Context, id uuid.UUID) error
}

// RequestHandler serves the recipe-request tab and the admin review queue.
type RequestHandler struct {
	requests requestSvc
	tokens   *auth.TokenIssuer
	admins   auth.AdminChecker
	logger   *zap.Logger
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(requestSvc requestSvc, tokens *auth.TokenIssuer, admins auth.AdminChecker, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{requests: requestSvc, tokens: tokens, admins: admins, logger: logger}
}

// Register registers RequestHandler routes on the given router group.
func (h *RequestHandler) Register(rg *gin.RouterGroup) {
	grp := rg.Group("/requests", auth.RequireSession(h.tokens))
	grp.POST("", h.Submit)
	grp.GET("/mine", h.ListMine)
	grp.POST("/:id/upvote", h.Upvote)

	admin := rg.Group("/admin/requests", auth.RequireAdmin(h.tokens, h.admins))
	admin.GET("", h.ListByStatus)
	admin.POST("/:id/status", h.Transition)
}

// submitRequest is the body for POST /requests.
type submitRequest struct {
	RecipeName          string   `json:"recipe_name" binding:"required"`
	CuisineType         string   `json:"cuisine_type"`
	Difficulty          string   `json:"difficulty_preference"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Occasion            string   `json:"occasion"`
	Notes               string   `json:"notes"`
}

// Submit handles POST /requests.
func (h *RequestHandler) Submit(c *gin.Context) {
	uid, ok := sessionUserID(c)
	if !ok {
		return
	}

	var body submitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := &requests.Request{
		RecipeName:          body.RecipeName,
		CuisineType:         body.CuisineType,
		Difficulty:          body.Difficulty,
		DietaryRestrictions: body.DietaryRestrictions,
		Occasion:            body.Occasion,
		Notes:               body.Notes,
	}
	if err := h.requests.Submit(c.Request.Context(), uid, req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, req)
}

// ListMine handles GET /requests/mine.
func (h *RequestHandler) ListMine(c *gin.Context) {
	uid, ok := sessionUserID(c)
	if !ok {
		return
	}

	list, err := h.requests.ListMine(c.Request.Context(), uid)
	if err != nil {
		h.logger.Error("list my requests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list requests"})
		return
	}
	if list == nil {
		list = []*requests.Request{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": list, "count": len(list)})
}

// Upvote handles POST /requests/:id/upvote.
func (h *RequestHandler) Upvote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request ID"})
		return
	}

	if err := h.requests.Upvote(c.Request.Context(), id); err != nil {
		if errors.Is(err, requests.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		h.logger.Error("upvote request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upvote"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "upvoted"})
}

// ListByStatus handles GET /admin/requests?status=submitted.
func (h *RequestHandler) ListByStatus(c *gin.Context) {
	status := requests.Status(c.DefaultQuery("status", string(requests.StatusSubmitted)))

	list, err := h.requests.ListByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []*requests.Request{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": list, "count": len(list)})
}

// transitionRequest is the body for POST /admin/requests/:id/status.
type transitionRequest struct {
	Status     requests.Status `json:"status" binding:"required"`
	AdminNotes string          `json:"admin_notes"`
	RecipeID   *uuid.UUID      `json:"recipe_id"`
}

// Transition handles POST /admin/requests/:id/status — moves a request
// through the review pipeline.
func (h *RequestHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request ID"})
		return
	}

	var body transitionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.requests.Transition(c.Request.Context(), id, body.Status, body.AdminNotes, body.RecipeID); err != nil {
		if errors.Is(err, requests.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
