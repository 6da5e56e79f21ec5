package middleware

import (
	"net/http"

	"pixshelf/internal/auth"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie the signed session token travels in.
const SessionCookie = "token"

const identityKey = "identity"

// Identity is the authenticated caller, decoded from the session token and
// threaded through the gin context as one typed value.
type Identity struct {
	UserID   uint64
	Username string
	Email    string
}

// RequireSession verifies the session cookie and attaches the caller's
// Identity to the context. A missing cookie is rejected before any
// verification is attempted.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid token"})
			c.Abort()
			return
		}

		c.Set(identityKey, Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
		})
		c.Next()
	}
}

// CurrentIdentity returns the Identity set by RequireSession.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
