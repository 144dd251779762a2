package rbac

import (
	"net/http"

	"callcenter-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireRole allows the request through only when the caller's live role is
// one of the provided roles. It assumes the auth middleware has already
// injected a verified identity; there is no bypass role.
func RequireRole(allowed ...Role) gin.HandlerFunc {
	allowedSet := make(map[Role]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		raw, err := auth.RoleFromContext(c.Request.Context())
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}

		role, err := ParseRole(raw)
		if err != nil {
			// A persisted role outside the closed enum is a data fault, not
			// a grant.
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden"})
			return
		}

		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden"})
			return
		}
		c.Next()
	}
}

// ActorFromContext rebuilds the policy actor from the verified request
// identity.
func ActorFromContext(c *gin.Context) (Actor, error) {
	uid, err := auth.UserIDFromContext(c.Request.Context())
	if err != nil {
		return Actor{}, err
	}
	raw, err := auth.RoleFromContext(c.Request.Context())
	if err != nil {
		return Actor{}, err
	}
	role, err := ParseRole(raw)
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: uid, Role: role}, nil
}
