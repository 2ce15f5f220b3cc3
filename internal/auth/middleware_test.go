package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type adminFlags map[uuid.UUID]bool

func (a adminFlags) IsAdmin(_ context.Context, id uuid.UUID) (bool, error) {
	return a[id], nil
}

func setupAuthedRouter(t *testing.T, tokens *TokenIssuer, admins AdminChecker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireSession(tokens), func(c *gin.Context) {
		claims := ClaimsFromCtx(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	r.GET("/admin", RequireAdmin(tokens, admins), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	tokens := NewTokenIssuer([]byte("secret"), "http://localhost:8080", time.Hour)
	router := setupAuthedRouter(t, tokens, adminFlags{})

	if w := get(router, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}
	if w := get(router, "/me", "not-a-jwt"); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", w.Code)
	}

	signed, _, err := tokens.Issue(Identity{ID: uuid.New(), Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if w := get(router, "/me", signed); w.Code != http.StatusOK {
		t.Fatalf("valid token: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	tokens := NewTokenIssuer([]byte("secret"), "http://localhost:8080", time.Hour)
	adminID := uuid.New()
	userID := uuid.New()
	router := setupAuthedRouter(t, tokens, adminFlags{adminID: true})

	adminToken, _, err := tokens.Issue(Identity{ID: adminID, Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	userToken, _, err := tokens.Issue(Identity{ID: userID, Email: "user@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if w := get(router, "/admin", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}
	if w := get(router, "/admin", userToken); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403, got %d", w.Code)
	}
	if w := get(router, "/admin", adminToken); w.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
