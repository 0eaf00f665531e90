package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity headers installed by the upstream session service. Their values
// are trusted as-is; credential checking happens before requests reach us.
const (
	userIDHeader   = "X-User-Id"
	userRoleHeader = "X-User-Role"
)

const userIDKey = "userID"

// RequireUser rejects requests that arrive without an authenticated user id.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_user_identity"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// RequireAdmin additionally requires the admin role header.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(userRoleHeader) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin_only"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
