package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/proprio/propertyhub/internal/accesscontrol"
	"github.com/proprio/propertyhub/internal/auth"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAuth verifies the bearer token and stashes the caller identity on
// the context as an explicit accesscontrol.Actor; handlers never reach into
// ambient session state.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing or invalid Authorization header",
			})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing or invalid access token",
			})
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired access token",
			})
			return
		}

		SetActor(c, accesscontrol.Actor{
			ID:    claims.UserID,
			Email: claims.Email,
			Roles: claims.Roles,
		})

		c.Next()
	}
}

// SetActor stashes the caller identity on the request context; tests inject
// actors through it directly.
func SetActor(c *gin.Context, actor accesscontrol.Actor) {
	c.Set(ctxActorKey, actor)
}

// ActorFromContext returns the authenticated caller set by RequireAuth.
func ActorFromContext(c *gin.Context) (accesscontrol.Actor, bool) {
	v, ok := c.Get(ctxActorKey)
	if !ok {
		return accesscontrol.Actor{}, false
	}

	actor, ok := v.(accesscontrol.Actor)

	return actor, ok && actor.ID != ""
}
