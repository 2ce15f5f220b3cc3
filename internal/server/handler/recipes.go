package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ceylonbites/ceylonbites/internal/auth"
	"github.com/ceylonbites/ceylonbites/internal/catalog"
)

// recipeSvc is the subset of the catalog service used by RecipeHandler.
type recipeSvc interface {
	ListPublished(ctx context.Context, sort catalog.Sort, categoryID uuid.UUID, limit, offset int) ([]*catalog.Recipe, error)
	ListFeatured(ctx context.Context, limit int) ([]*catalog.Recipe, error)
	Search(ctx context.Context, query string, limit int) ([]*catalog.Recipe, error)
	GetBySlug(ctx context.Context, slug string) (*catalog.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*catalog.Recipe, error)
	ListAllRecipes(ctx context.Context, limit, offset int) ([]*catalog.Recipe, error)
	CreateRecipe(ctx context.Context, rec *catalog.Recipe) error
	UpdateRecipe(ctx context.Context, rec *catalog.Recipe) error
	SetPublished(ctx context.Context, id uuid.UUID, published bool) error
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
}

// RecipeHandler serves public recipe reads and the admin recipe CRUD.
type RecipeHandler struct {
	catalog recipeSvc
	tokens  *auth.TokenIssuer
	admins  auth.AdminChecker
	logger  *zap.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(catalogSvc recipeSvc, tokens *auth.TokenIssuer, admins auth.AdminChecker, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{catalog: catalogSvc, tokens: tokens, admins: admins, logger: logger}
}

// Register registers RecipeHandler routes on the given router group.
func (h *RecipeHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/recipes", h.ListPublished)
	rg.GET("/recipes/featured", h.ListFeatured)
	rg.GET("/recipes/search", h.Search)
	rg.GET("/recipes/:slug", h.GetBySlug)

	admin := rg.Group("/admin/recipes", auth.RequireAdmin(h.tokens, h.admins))
	admin.GET("", h.ListAll)
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.POST("/:id/publish", h.SetPublished)
	admin.DELETE("/:id", h.Delete)
}

// ListPublished handles GET /recipes.
func (h *RecipeHandler) ListPublished(c *gin.Context) {
	limit, offset := pageParams(c)
	sort := catalog.Sort(c.DefaultQuery("sort", string(catalog.SortNewest)))

	var categoryID uuid.UUID
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		categoryID = id
	}

	recipes, err := h.catalog.ListPublished(c.Request.Context(), sort, categoryID, limit, offset)
	if err != nil {
		h.logger.Error("list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recipes"})
		return
	}
	if recipes == nil {
		recipes = []*catalog.Recipe{}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "count": len(recipes)})
}

// ListFeatured handles GET /recipes/featured.
func (h *RecipeHandler) ListFeatured(c *gin.Context) {
	limit, _ := pageParams(c)
	recipes, err := h.catalog.ListFeatured(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list featured recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recipes"})
		return
	}
	if recipes == nil {
		recipes = []*catalog.Recipe{}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "count": len(recipes)})
}

// Search handles GET /recipes/search?q=...
func (h *RecipeHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter is required"})
		return
	}
	limit, _ := pageParams(c)

	recipes, err := h.catalog.Search(c.Request.Context(), query, limit)
	if err != nil {
		h.logger.Error("search recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	if recipes == nil {
		recipes = []*catalog.Recipe{}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "count": len(recipes)})
}

// GetBySlug handles GET /recipes/:slug.
func (h *RecipeHandler) GetBySlug(c *gin.Context) {
	rec, err := h.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		h.logger.Error("get recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get recipe"})
		return
	}
	RecordRecipeView()
	c.JSON(http.StatusOK, rec)
}

// ListAll handles GET /admin/recipes — drafts included.
func (h *RecipeHandler) ListAll(c *gin.Context) {
	limit, offset := pageParams(c)
	recipes, err := h.catalog.ListAllRecipes(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list all recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recipes"})
		return
	}
	if recipes == nil {
		recipes = []*catalog.Recipe{}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "count": len(recipes)})
}

// Create handles POST /admin/recipes.
func (h *RecipeHandler) Create(c *gin.Context) {
	var rec catalog.Recipe
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if uid, ok := sessionUserID(c); ok {
		rec.CreatedBy = uid
	} else {
		return
	}

	if err := h.catalog.CreateRecipe(c.Request.Context(), &rec); err != nil {
		if errors.Is(err, catalog.ErrDuplicateSlug) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Update handles PUT /admin/recipes/:id.
func (h *RecipeHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe ID"})
		return
	}

	var rec catalog.Recipe
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec.ID = id

	if err := h.catalog.UpdateRecipe(c.Request.Context(), &rec); err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		case errors.Is(err, catalog.ErrDuplicateSlug):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, rec)
}

// publishRequest is the body for POST /admin/recipes/:id/publish.
type publishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// SetPublished handles POST /admin/recipes/:id/publish.
func (h *RecipeHandler) SetPublished(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe ID"})
		return
	}

	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.catalog.SetPublished(c.Request.Context(), id, *req.Published); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		h.logger.Error("set published", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update recipe"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated", "published": *req.Published})
}

// Delete handles DELETE /admin/recipes/:id.
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe ID"})
		return
	}

	if err := h.catalog.DeleteRecipe(c.Request.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		h.logger.Error("delete recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete recipe"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// pageParams parses limit/offset query parameters with sane bounds.
func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
