package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agentledger/internal/domain"
	"agentledger/internal/store"
)

// AdminOnlyMiddleware re-checks the actor's role in the store on each
// request, so a role change takes effect without waiting for token
// expiry.
func AdminOnlyMiddleware(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := s.GetUser(c.Request.Context(), userID.(string))
		if err != nil || user.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
