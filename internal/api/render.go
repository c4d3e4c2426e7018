package api

import (
	"net/http" // HTTP status codes

	"catalogue_app/internal/middleware" // Session and identity accessors
	"catalogue_app/internal/session"    // Typed session view

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// render writes an HTML page, consuming pending flash messages
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if s := middleware.CurrentSession(c); s != nil {
		data["flashes"] = s.PopFlashes() // One-time notices
		// Show who is signed in on every page
		if s.Authenticated() {
			data["identity"] = s.Identity()
		}
		saveSession(c, s)
	}
	c.HTML(status, name, data)
}

// redirect saves the session before sending the caller elsewhere
func redirect(c *gin.Context, status int, location string) {
	if s := middleware.CurrentSession(c); s != nil {
		saveSession(c, s)
	}
	c.Redirect(status, location)
}

// saveSession persists the session while response headers can still carry the cookie
func saveSession(c *gin.Context, s *session.Session) {
	if err := s.Save(); err != nil {
		logrus.WithFields(logrus.Fields{
			"session_id": s.ID(),      // Session ID
			"error":      err.Error(), // Error message
		}).Error("Failed to save session")
	}
}

// seeOther redirects after a form submission
func seeOther(c *gin.Context, location string) {
	redirect(c, http.StatusSeeOther, location)
}
