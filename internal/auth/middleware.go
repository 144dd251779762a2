package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// ErrUserNotFound is returned by an IdentityLookup when the token's user no
// longer exists. The request is rejected even though the signature verified.
var ErrUserNotFound = errors.New("user not found")

// IdentityLookup resolves a verified user id to the live role. Implemented by
// the identity service; kept as a function type so auth does not depend on
// the identity package.
type IdentityLookup func(ctx context.Context, userID string) (role string, err error)

// RequireAccessToken verifies an access token, re-fetches the live user and
// injects identity into the request context. It does not perform role
// checks; those belong to internal/rbac.
func RequireAccessToken(m *Manager, lookup IdentityLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing bearer token"})
			return
		}
		tok := strings.TrimPrefix(raw, bearerPrefix)

		userID, err := m.Verify(tok, TokenTypeAccess, time.Now())
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, ErrExpiredToken) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": msg})
			return
		}

		role, err := lookup(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}

		ctx := WithIdentity(c.Request.Context(), userID, role)
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set("user_id", userID)
		c.Set("role", role)

		c.Next()
	}
}
