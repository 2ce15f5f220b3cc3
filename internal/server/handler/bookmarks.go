package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ceylonbites/ceylonbites/internal/auth"
	"github.com/ceylonbites/ceylonbites/internal/bookmarks"
)

// bookmarkStore is the subset of the bookmarks repository used by
// BookmarkHandler.
type bookmarkStore interface {
	Add(ctx context.Context, b *bookmarks.Bookmark) error
	Remove(ctx context.Context, userID, recipeID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, folder string) ([]*bookmarks.Bookmark, error)
}

// BookmarkHandler serves the bookmarks tab.
type BookmarkHandler struct {
	store  bookmarkStore
	tokens *auth.TokenIssuer
	logger *zap.Logger
}

// NewBookmarkHandler creates a new BookmarkHandler.
func NewBookmarkHandler(store bookmarkStore, tokens *auth.TokenIssuer, logger *zap.Logger) *BookmarkHandler {
	return &BookmarkHandler{store: store, tokens: tokens, logger: logger}
}

// Register registers BookmarkHandler routes on the given router group.
func (h *BookmarkHandler) Register(rg *gin.RouterGroup) {
	grp := rg.Group("/bookmarks", auth.RequireSession(h.tokens))
	grp.GET("", h.List)
	grp.POST("", h.Add)
	grp.DELETE("/:recipeID", h.Remove)
}

// List handles GET /bookmarks?folder=...
func (h *BookmarkHandler) List(c *gin.Context) {
	uid, ok := sessionUserID(c)
	if !ok {
		return
	}

	list, err := h.store.ListByUser(c.Request.Context(), uid, c.Query("folder"))
	if err != nil {
		h.logger.Error("list bookmarks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookmarks"})
		return
	}
	if list == nil {
		list = []*bookmarks.Bookmark{}
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": list, "count": len(list)})
}

// addBookmarkRequest is the body for POST /bookmarks.
type addBookmarkRequest struct {
	RecipeID uuid.UUID `json:"recipe_id" binding:"required"`
	Folder   string    `json:"folder"`
	Notes    string    `json:"notes"`
}

// Add handles POST /bookmarks. Re-bookmarking the same recipe is a no-op.
func (h *BookmarkHandler) Add(c *gin.Context) {
	uid, ok := sessionUserID(c)
	if !ok {
		return
	}

	var req addBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b := &bookmarks.Bookmark{
		UserID:   uid,
		RecipeID: req.RecipeID,
		Folder:   req.Folder,
		Notes:    req.Notes,
	}
	if err := h.store.Add(c.Request.Context(), b); err != nil {
		h.logger.Error("add bookmark", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add bookmark"})
		return
	}
	c.JSON(http.StatusCreated, b)
}

// Remove handles DELETE /bookmarks/:recipeID.
func (h *BookmarkHandler) Remove(c *gin.Context) {
	uid, ok := sessionUserID(c)
	if !ok {
		return
	}

	recipeID, err := uuid.Parse(c.Param("recipeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe ID"})
		return
	}

	if err := h.store.Remove(c.Request.Context(), uid, recipeID); err != nil {
		if errors.Is(err, bookmarks.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "bookmark not found"})
			return
		}
		h.logger.Error("remove bookmark", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove bookmark"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
