package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ctxSessionClaims = "ceylonbites_session_claims"

// AdminChecker reports whether the given user's profile carries the admin
// flag. Satisfied by the profiles service.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequireSession returns a Gin middleware that enforces a valid session
// Bearer token.
//
// On success it injects the *SessionClaims into the context under the
// "ceylonbites_session_claims" key.
func RequireSession(tokens *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer session token required",
			})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid session token: " + err.Error(),
			})
			return
		}

		c.Set(ctxSessionClaims, claims)
		c.Next()
	}
}

// RequireAdmin returns a Gin middleware that enforces a valid session token
// whose profile carries the admin flag. The admin flag lives on the profile
// row, not in the token, so it is re-checked on every request — revoking
// admin takes effect immediately.
//
// Non-admins receive 403 with an access-denied body, mirroring the
// access-denied screen in the client shell.
func RequireAdmin(tokens *TokenIssuer, admins AdminChecker) gin.HandlerFunc {
	verify := RequireSession(tokens)
	return func(c *gin.Context) {
		verify(c)
		if c.IsAborted() {
			return
		}
		claims := ClaimsFromCtx(c)
		uid, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID in token"})
			return
		}
		ok, err := admins.IsAdmin(c.Request.Context(), uid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "admin check failed"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied: admin only"})
			return
		}
		c.Next()
	}
}

// ClaimsFromCtx retrieves the session claims injected by RequireSession.
// Returns nil if no session is present in the context.
func ClaimsFromCtx(c *gin.Context) *SessionClaims {
	v, _ := c.Get(ctxSessionClaims)
	claims, _ := v.(*SessionClaims)
	return claims
}
