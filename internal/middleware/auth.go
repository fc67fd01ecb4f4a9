package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"schoolpay_backend/internal/auth"
	"schoolpay_backend/internal/logger"
	"schoolpay_backend/internal/models"
	"schoolpay_backend/pkg/apperrors"
	"schoolpay_backend/pkg/contextkeys"
)

// AuthMiddleware validates the bearer token and stores the caller's identity
// in the gin context and the request context (for log annotation).
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortWithError(c, apperrors.Unauthorized("Authorization header missing or invalid"))
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abortWithError(c, apperrors.TokenExpired())
			} else {
				abortWithError(c, apperrors.InvalidToken())
			}
			return
		}

		c.Set(contextkeys.UserIDKey, claims.UserID)
		c.Set(contextkeys.RoleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequireRoles restricts a route to the given roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		roleStr := c.GetString(contextkeys.RoleKey)
		if roleStr == "" {
			abortWithError(c, apperrors.Forbidden("Access denied: no role"))
			return
		}
		if !roleSet[models.UserRole(roleStr)] {
			abortWithError(c, apperrors.Forbidden("Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPCode, apperrors.ErrorResponse{Error: err})
}
