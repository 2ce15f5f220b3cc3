package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ceylonbites/ceylonbites/internal/auth"
	"github.com/ceylonbites/ceylonbites/internal/updates"
)

// updateStore is the subset of the updates repository used by UpdateHandler.
type updateStore interface {
	Create(ctx context.Context, u *updates.Update) error
	ListActive(ctx context.Context, limit int) ([]*updates.Update, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpdateHandler serves the home-feed announcement cards.
type UpdateHandler struct {
	store  updateStore
	tokens *auth.TokenIssuer
	admins auth.AdminChecker
	logger *zap.Logger
}

// NewUpdateHandler creates a new UpdateHandler.
func NewUpdateHandler(store updateStore, tokens *auth.TokenIssuer, admins auth.AdminChecker, logger *zap.Logger) *UpdateHandler {
	return &UpdateHandler{store: store, tokens: tokens, admins: admins, logger: logger}
}

// Register registers UpdateHandler routes on the given router group.
func (h *UpdateHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/updates", h.ListActive)

	admin := rg.Group("/admin/updates", auth.RequireAdmin(h.tokens, h.admins))
	admin.POST("", h.Create)
	admin.POST("/:id/active", h.SetActive)
	admin.DELETE("/:id", h.Delete)
}

// ListActive handles GET /updates — the home feed, capped at five cards.
func (h *UpdateHandler) ListActive(c *gin.Context) {
	list, err := h.store.ListActive(c.Request.Context(), updates.HomeFeedLimit)
	if err != nil {
		h.logger.Error("list updates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list updates"})
		return
	}
	if list == nil {
		list = []*updates.Update{}
	}
	c.JSON(http.StatusOK, gin.H{"updates": list, "count": len(list)})
}

// Create handles POST /admin/updates.
func (h *UpdateHandler) Create(c *gin.Context) {
	var u updates.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Create(c.Request.Context(), &u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, u)
}

// SetActive handles POST /admin/updates/:id/active.
func (h *UpdateHandler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update ID"})
		return
	}

	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		if errors.Is(err, updates.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "update not found"})
			return
		}
		h.logger.Error("set update active", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated", "active": *req.Active})
}

// Delete handles DELETE /admin/updates/:id.
func (h *UpdateHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update ID"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, updates.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "update not found"})
			return
		}
		h.logger.Error("delete update", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete update"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
