package handlers

import (
	"github.com/gin-gonic/gin"

	"schoolpay_backend/pkg/contextkeys"
)

// CurrentUserID returns the authenticated user's ID from the gin context.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}

// CurrentRole returns the authenticated user's role from the gin context.
func CurrentRole(c *gin.Context) string {
	return c.GetString(contextkeys.RoleKey)
}
