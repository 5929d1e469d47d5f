package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vlogapp/api/internal/config"
	"vlogapp/api/internal/security"
)

const ClaimsKey = "auth_claims"

// Auth verifies the bearer token and attaches the decoded claims. Tokens are
// stateless: there is no session row to consult and no revocation.
func Auth(cfg *config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAuthToken(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ClaimsKey, *claims)
		c.Next()
	}
}

// Claims fetches what Auth stored; ok is false on unauthenticated routes.
func Claims(c *gin.Context) (security.AuthClaims, bool) {
	val, exists := c.Get(ClaimsKey)
	if !exists {
		return security.AuthClaims{}, false
	}
	claims, ok := val.(security.AuthClaims)
	return claims, ok
}
