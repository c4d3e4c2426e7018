package middleware

import (
	"catalogue_app/internal/session" // Typed session view

	"github.com/gin-contrib/sessions" // Gin session middleware
	"github.com/gin-gonic/gin"        // Gin web framework
)

// identityKey holds the session.Identity of the signed-in user
const identityKey = "identity"

// Sessions attaches the caller's session, kept in store, to the context.
// Handlers save it themselves before writing a response.
func Sessions(store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(session.CookieName, store)
}

// CurrentSession returns the session attached by Sessions
func CurrentSession(c *gin.Context) *session.Session {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil // Sessions middleware not mounted
	}
	return session.Wrap(sessions.Default(c))
}
