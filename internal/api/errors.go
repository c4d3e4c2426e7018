package api

import (
	"errors"   // Error inspection
	"fmt"      // Error wrapping
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing
	"strings"  // Suffix handling

	"catalogue_app/internal/identity" // Identity token errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Boundary errors, each mapped to its own status code
var (
	ErrNotFound   = errors.New("resource not found")                          // 404
	ErrForbidden  = errors.New("only the creator of this item can change it") // 403
	ErrValidation = errors.New("invalid submission")                          // 400
)

// statusFor maps an error to the HTTP status returned to the caller
func statusFor(err error) int {
	var invalid *identity.InvalidTokenError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.As(err, &invalid):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal failures from the response body
func publicMessage(c *gin.Context, err error, status int) string {
	if status != http.StatusInternalServerError {
		return err.Error()
	}
	// Log the error with context
	logrus.WithFields(logrus.Fields{
		"method": c.Request.Method,   // HTTP method
		"path":   c.Request.URL.Path, // Requested path
		"error":  err.Error(),        // Error message
	}).Error("Request failed")
	return "Internal server error"
}

// respondJSONError writes {"error": ...} with the mapped status
func respondJSONError(c *gin.Context, err error) {
	status := statusFor(err)
	c.AbortWithStatusJSON(status, gin.H{"error": publicMessage(c, err, status)})
}

// respondHTMLError renders the error page with the mapped status
func respondHTMLError(c *gin.Context, err error) {
	status := statusFor(err)
	render(c, status, "error.html", gin.H{
		"title":  http.StatusText(status),       // Page title
		"status": status,                        // Status code
		"error":  publicMessage(c, err, status), // Message shown to the user
	})
	c.Abort()
}

// lookupErr turns a missing row into ErrNotFound
func lookupErr(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return fmt.Errorf("find %s %d: %w", what, id, err)
}

// parseRef reads an id path parameter that may carry a ".json" suffix
func parseRef(c *gin.Context) (uint, bool, error) {
	raw := c.Param("id")
	raw, asJSON := strings.CutSuffix(raw, ".json")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, asJSON, fmt.Errorf("%w: %q is not an id", ErrNotFound, c.Param("id"))
	}
	return uint(id), asJSON, nil
}

// parseID reads a plain id path parameter
func parseID(c *gin.Context) (uint, error) {
	id, asJSON, err := parseRef(c)
	if err == nil && asJSON {
		return 0, fmt.Errorf("%w: %q is not an id", ErrNotFound, c.Param("id"))
	}
	return id, err
}
