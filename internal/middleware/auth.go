package middleware

import (
	"net/http"
	"strings"
	"upscoverflow/internal/identity"
	"upscoverflow/internal/response"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const ViewerKey = "viewer_id"

// SessionUserKey is the session field holding the signed-in user id.
const SessionUserKey = "user_id"

// LoadViewer resolves the caller from a bearer token, falling back to the session
// cookie. A bearer token that fails verification is rejected outright.
func LoadViewer(verifier *identity.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			if verifier == nil {
				response.Error(c, http.StatusUnauthorized, "Unauthorized", []string{"bearer tokens are not accepted"})
				return
			}
			userID, err := verifier.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				response.Error(c, http.StatusUnauthorized, "Unauthorized", []string{"invalid or expired token"})
				return
			}
			c.Set(ViewerKey, userID)
			c.Next()
			return
		}

		session := sessions.Default(c)
		if userID, ok := session.Get(SessionUserKey).(string); ok && userID != "" {
			c.Set(ViewerKey, userID)
		}
		c.Next()
	}
}

// AuthRequired ensures a viewer was resolved
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ViewerID(c) == "" {
			response.Error(c, http.StatusUnauthorized, "Unauthorized", []string{"sign in to continue"})
			return
		}
		c.Next()
	}
}

// ViewerID returns the resolved caller, or "" for anonymous requests.
func ViewerID(c *gin.Context) string {
	return c.GetString(ViewerKey)
}
