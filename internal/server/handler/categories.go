package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ceylonbites/ceylonbites/internal/auth"
	"github.com/ceylonbites/ceylonbites/internal/catalog"
)

// categorySvc is the subset of the catalog service used by CategoryHandler.
type categorySvc interface {
	ActiveCategories(ctx context.Context) ([]*catalog.Category, error)
	AllCategories(ctx context.Context) ([]*catalog.Category, error)
	CreateCategory(ctx context.Context, c *catalog.Category) error
	UpdateCategory(ctx context.Context, c *catalog.Category) error
	SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// CategoryHandler serves the public category list and the admin CRUD.
type CategoryHandler struct {
	catalog categorySvc
	tokens  *auth.TokenIssuer
	admins  auth.AdminChecker
	logger  *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(catalogSvc categorySvc, tokens *auth.TokenIssuer, admins auth.AdminChecker, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{catalog: catalogSvc, tokens: tokens, admins: admins, logger: logger}
}

// Register registers CategoryHandler routes on the given router group.
func (h *CategoryHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/categories", h.ListActive)

	admin := rg.Group("/admin/categories", auth.RequireAdmin(h.tokens, h.admins))
	admin.GET("", h.ListAll)
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.POST("/:id/active", h.SetActive)
	admin.DELETE("/:id", h.Delete)
}

// ListActive handles GET /categories.
func (h *CategoryHandler) ListActive(c *gin.Context) {
	categories, err := h.catalog.ActiveCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	if categories == nil {
		categories = []*catalog.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

// ListAll handles GET /admin/categories — inactive included.
func (h *CategoryHandler) ListAll(c *gin.Context) {
	categories, err := h.catalog.AllCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("list all categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	if categories == nil {
		categories = []*catalog.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

// Create handles POST /admin/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var cat catalog.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.catalog.CreateCategory(c.Request.Context(), &cat); err != nil {
		if errors.Is(err, catalog.ErrDuplicateSlug) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// Update handles PUT /admin/categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category ID"})
		return
	}

	var cat catalog.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat.ID = id

	if err := h.catalog.UpdateCategory(c.Request.Context(), &cat); err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		case errors.Is(err, catalog.ErrDuplicateSlug):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, cat)
}

// activeRequest is the body for POST /admin/categories/:id/active.
type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive handles POST /admin/categories/:id/active.
func (h *CategoryHandler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category ID"})
		return
	}

	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.catalog.SetCategoryActive(c.Request.Context(), id, *req.Active); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		h.logger.Error("set category active", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated", "active": *req.Active})
}

// Delete handles DELETE /admin/categories/:id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category ID"})
		return
	}

	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		h.logger.Error("delete category", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
