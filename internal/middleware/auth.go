package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the ambient session cookie.
const SessionCookie = "session"

// AuthMiddleware resolves the session cookie and stores the user id on the
// context. Requests without a valid session get 401, which clients map to a
// redirect-to-login.
func AuthMiddleware(store SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}

		userID, ok := store.Lookup(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
