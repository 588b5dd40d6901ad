package middleware

import (
	"net/http"
	"strings"

	"analytics"
	"analytics/internal/api/handler/response"
	"analytics/internal/api/models"
	"analytics/internal/api/repo"
	"analytics/pkg"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware accepts "Authorization: Bearer <jwt>" and stores the token
// subject under pkg.UsernameKey.
func AuthMiddleware(cfg analytics.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.APIError{Message: "Authorization header required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.APIError{Message: "Invalid authorization header format"})
			return
		}

		claims, err := pkg.ValidateToken(parts[1], cfg.JWTConfig.Secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.APIError{Message: "Invalid or expired token"})
			return
		}

		c.Set(pkg.UsernameKey, claims.Username())
		c.Next()
	}
}

// RequireAdmin lets through only users holding the admin role. It must run
// after AuthMiddleware.
func RequireAdmin(roles *repo.RoleRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := pkg.GetUsername(c)
		if !ok {
			return
		}

		role, err := roles.RoleOf(username)
		if err != nil || role != models.AdminRole {
			c.AbortWithStatusJSON(http.StatusForbidden, response.APIError{Message: "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
