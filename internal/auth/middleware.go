package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys populated by Middleware.
const (
	ContextUserID   = "auth_user_id"
	ContextUsername = "auth_username"
	ContextRole     = "auth_role"
)

// Middleware returns a gin handler that rejects requests without a valid
// bearer token and stores the verified claims on the request context.
func Middleware(tokens *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "authorization header must be a bearer token")
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "AUTHENTICATION_ERROR",
			"message": message,
		},
	})
}
