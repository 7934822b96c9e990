package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "persona_session"
	SessionHeader     = "X-Session-ID"
	CookieMaxAge      = 30 * 24 * 60 * 60 // 30 days

	sessionIDKey = "sessionID"
)

// SessionMiddleware resolves the caller's session id from the X-Session-ID
// header or the session cookie, issuing a new one when neither is present.
// It does not create the session in the store.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(SessionHeader))
		if raw == "" {
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				raw = cookie
			}
		}

		var sessionID string
		if raw == "" {
			sessionID = uuid.NewString()
			c.SetCookie(SessionCookieName, sessionID, CookieMaxAge, "/", "", false, true)
		} else {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
				return
			}
			sessionID = parsed.String()
		}

		c.Set(sessionIDKey, sessionID)
		c.Header(SessionHeader, sessionID)
		c.Next()
	}
}

// SessionID returns the id resolved by SessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
