package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ineedllc/ineed-api/pkg/helpers"
	"github.com/ineedllc/ineed-api/pkg/response"
)

const (
	CtxUserIDKey      = "userID"
	CtxUserRoleKey    = "userRole"
	CtxAccessTokenKey = "accessToken"
)

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

// Auth validates the bearer access token and requires a full-scope session.
// It sets userID, userRole, and the raw token in the Gin context on success.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return AuthScope(jwt, helpers.ScopeFull)
}

// AuthScope is Auth for a specific token scope. Password-reset endpoints use
// it to accept only the short-lived reset-scoped token.
func AuthScope(jwt *helpers.JWTManager, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "authentication_required", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "token_error", nil)
			c.Abort()
			return
		}
		if claims.Scope != scope {
			response.Error[any](c, http.StatusUnauthorized, "token_error", nil)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserRoleKey, claims.Role)
		c.Set(CtxAccessTokenKey, token)
		c.Next()
	}
}

// RequireRole gates a route group behind one of the given roles. Must run
// after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxUserRoleKey)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Error[any](c, http.StatusForbidden, "permission_denied", nil)
		c.Abort()
	}
}
