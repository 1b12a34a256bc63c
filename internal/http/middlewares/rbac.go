package middlewares

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// RequireRole gates a route group on a role tag; list endpoints use it with
// the admin role and get no ownership fallback.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing identity context",
			})
			return
		}

		if !slices.Contains(actor.Roles, required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Access denied",
			})
			return
		}
		c.Next()
	}
}
