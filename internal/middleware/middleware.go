package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHeader carries the client session id. The server mints one when the
// client does not send it, and echoes it back so the client can persist it
// for the rest of its session.
const SessionHeader = "X-Session-Id"

// SessionMiddleware ensures every request carries a valid session id and
// stores it in the request context under "session_id".
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
		} else if _, err := uuid.Parse(sessionID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid session id",
				"error":   "X-Session-Id must be a UUID",
			})
			c.Abort()
			return
		}

		c.Set("session_id", sessionID)
		c.Header(SessionHeader, sessionID)
		c.Next()
	}
}
