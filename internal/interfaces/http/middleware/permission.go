package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/homeops/backend/internal/interfaces/http/dto"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
}

// RequirePermission creates middleware that requires a specific permission
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission creates middleware that requires any of the given
// permissions. The JWT middleware must run first.
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig creates permission middleware with custom config
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortForbidden(c, "No authentication claims found")
			return
		}

		if !claims.HasAnyPermission(permissions...) {
			if cfg.Logger != nil {
				cfg.Logger.Debug("Permission denied",
					zap.String("user_id", claims.UserID),
					zap.Strings("required_any", permissions),
				)
			}
			abortForbidden(c, "Insufficient permissions")
			return
		}

		c.Next()
	}
}

func abortForbidden(c *gin.Context, message string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, message, requestID))
}
