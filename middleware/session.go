package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionContextKey is the gin context key holding the storefront session id.
const SessionContextKey = "sessionID"

const sessionCookie = "va_session"

// cookie lifetime; durable records in Redis carry their own TTLs
const sessionMaxAge = 60 * 60 * 24 * 30

// SessionMiddleware assigns every browser a stable session id cookie. The
// cart and token records are keyed by this id.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, sessionID, sessionMaxAge, "/", "", false, true)
		}
		c.Set(SessionContextKey, sessionID)
		c.Next()
	}
}

// GetSessionID returns the session id set by SessionMiddleware.
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionContextKey)
}
