package middleware

import (
	"net/http" // HTTP status codes

	"catalogue_app/internal/session" // Server-side sessions
	"catalogue_app/internal/utils"   // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// LoginPath is where unauthenticated callers are sent
const LoginPath = "/login/"

// LoginRequired redirects to the login page unless the session has a signed-in user
func LoginRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Authenticate(c, secret) {
			c.Next() // Proceed to the next handler
		}
	}
}

// Authenticate is the guard behind LoginRequired. It returns false after
// redirecting to the login page, or true with the identity stored in the context.
func Authenticate(c *gin.Context, secret []byte) bool {
	s := CurrentSession(c) // Session attached by Sessions middleware
	// Check if a user has signed in on this session
	if s == nil || !s.Authenticated() {
		c.Redirect(http.StatusFound, LoginPath) // Send to login entry point
		c.Abort()                               // Do not run the route
		return false
	}
	id := s.Identity() // Immutable snapshot for handlers
	// Reissue the short-lived credential once it has lapsed
	if _, err := utils.ParseJWT(s.Token(), secret); err != nil {
		token, err := utils.GenerateJWT(id.UserID, secret, utils.SessionTokenTTL)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": id.UserID,   // User ID
				"error":   err.Error(), // Error message
			}).Warn("Failed to refresh session token")
		} else {
			s.SetToken(token)
		}
	}
	s.Touch()              // Restart the store TTL when the handler saves
	c.Set(identityKey, id) // Store identity in context
	return true
}

// CurrentIdentity returns the signed-in user placed in the context by LoginRequired
func CurrentIdentity(c *gin.Context) (session.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return session.Identity{}, false
	}
	id, ok := v.(session.Identity)
	return id, ok
}
