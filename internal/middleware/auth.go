package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kvitto/internal/services"
)

// Context keys set by the auth middlewares.
const (
	UserIDKey   = "userID"
	UsernameKey = "username"
)

// TokenAuth verifies the opaque API token from the Authorization header and
// sets the user in the context. The header format follows the token scheme:
//
//	Authorization: Token <40-hex-chars>
//
// A Bearer prefix is accepted as an alias.
func TokenAuth(tokens services.TokenServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || (parts[0] != "Token" && parts[0] != "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		user, err := tokens.Authenticate(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UsernameKey, user.Username)
		c.Next()
	}
}
