package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"indastreet/utils"

	"github.com/gin-gonic/gin"
)

// Context keys populated by the auth middleware. Handlers pass these
// identities explicitly into service calls; services never read them.
const (
	CtxCallerID   = "callerID"
	CtxCallerRole = "callerRole"
)

// JWTAuthMiddleware validates the bearer token for the given role and checks
// that its hash is still cached (i.e. not revoked).
func JWTAuthMiddleware(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		callerID, role, err := utils.ExtractClaimsFromToken(tokenString)
		if err != nil || callerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		if requiredRole != "" && role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		cache := utils.GetAuthCacheClient()
		key := fmt.Sprintf("token:%s:%s", role, callerID)
		cached, err := cache.Get(context.Background(), key).Result()
		if err != nil || cached != utils.HashToken(tokenString) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please sign in again"})
			return
		}

		c.Set(CtxCallerID, callerID)
		c.Set(CtxCallerRole, role)
		c.Next()
	}
}
