package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cropshield/cropshield-api/internal/domain/entity"
	"github.com/cropshield/cropshield-api/pkg/helpers"
	"github.com/cropshield/cropshield-api/pkg/response"
)

const (
	CtxAccountIDKey = "accountID"
	CtxRoleKey      = "accountRole"
	CtxUsernameKey  = "accountUsername"
	CtxRegionKey    = "accountRegion"
)

// Auth validates the Bearer session token and injects the session claims
// into the Gin context.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseSessionToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
			c.Abort()
			return
		}
		c.Set(CtxAccountIDKey, claims.AccountID)
		c.Set(CtxRoleKey, claims.Role)
		c.Set(CtxUsernameKey, claims.Username)
		c.Set(CtxRegionKey, claims.Region)
		c.Next()
	}
}

// RequireRole gates a route group to one role. Must run after Auth.
func RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRoleKey) != string(role) {
			response.Error[any](c, http.StatusForbidden, "FORBIDDEN", "insufficient permissions", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
