package api

import (
	"crypto/subtle" // Constant-time state comparison
	"errors"        // Error inspection
	"net/http"      // HTTP status codes
	"time"          // Timestamps in logs

	"catalogue_app/internal/identity"   // Identity token verification
	"catalogue_app/internal/middleware" // Session accessors
	"catalogue_app/internal/session"    // Typed session view
	"catalogue_app/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for the Google sign-in callback
type GoogleLoginRequest struct {
	IDToken string `form:"id_token" binding:"required"` // Token issued by Google
	State   string `form:"state"`                       // Anti-forgery state from the login page
}

// Response struct for a successful login
type LoginResponse struct {
	UserID   uint   `json:"user_id"`  // Local user ID
	Username string `json:"username"` // Display name
	Email    string `json:"email"`    // Email address
	Picture  string `json:"picture"`  // Profile picture URL
}

// stateLength is the number of characters in an anti-forgery state
const stateLength = 32

// LoginPageHandler issues an anti-forgery state and renders the login page
func LoginPageHandler(clientID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := session.NewState(stateLength) // Random state
		if err != nil {
			respondHTMLError(c, err)
			return
		}
		// Keep the state in the session
		middleware.CurrentSession(c).SetState(state)
		render(c, http.StatusOK, "login.html", gin.H{
			"title":     "Log in", // Page title
			"state":     state,    // Anti-forgery state
			"client_id": clientID, // Google client ID
		})
	}
}

// stateMatches compares the submitted state with the one issued to this session
func stateMatches(issued, submitted string) bool {
	if issued == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(issued), []byte(submitted)) == 1
}

// GoogleLoginHandler verifies a Google identity token and signs the user in
func GoogleLoginHandler(db *gorm.DB, verifier identity.Verifier, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GoogleLoginRequest // Bind form to struct
		if err := c.ShouldBind(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "id_token is required"})
			return
		}
		s := middleware.CurrentSession(c) // Session attached by middleware
		// Only the browser that loaded the login page may complete it
		if !stateMatches(s.State(), req.State) {
			logrus.WithFields(logrus.Fields{
				"client_ip": c.ClientIP(), // Caller address
			}).Warn("Invalid state parameter")
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid state parameter"})
			return
		}
		s.ClearState()             // A state is good for one attempt
		ctx := c.Request.Context() // Bounded by the request timeout
		claims, err := verifier.Verify(ctx, req.IDToken)
		if err != nil {
			var invalid *identity.InvalidTokenError
			if errors.As(err, &invalid) {
				// Log the rejected token
				logrus.WithFields(logrus.Fields{
					"client_ip": c.ClientIP(),   // Caller address
					"reason":    invalid.Reason, // Why verification failed
				}).Warn("Invalid token passed")
				saveSession(c, s)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid identity token"})
				return
			}
			saveSession(c, s)
			respondJSONError(c, err)
			return
		}
		// See if user exists, if it doesn't make a new one
		user, _, err := FindOrCreateUser(ctx, db, claims)
		if err != nil {
			saveSession(c, s)
			respondJSONError(c, err)
			return
		}
		token, err := utils.GenerateJWT(user.ID, secret, utils.SessionTokenTTL)
		if err != nil {
			saveSession(c, s)
			respondJSONError(c, err)
			return
		}
		firstLogin := s.Token() == "" // Only greet once per session
		// Move the signed-in session to a fresh id
		if err := s.Renew(); err != nil {
			respondJSONError(c, err)
			return
		}
		s.SignIn(session.SignIn{
			GoogleUserID: claims.Subject, // Google subject
			Username:     claims.Name,    // Authenticated-username marker
			Email:        claims.Email,   // Email address
			Picture:      claims.Picture, // Profile picture
			UserID:       user.ID,        // Local user ID
			Token:        token,          // Short-lived credential
		})
		if firstLogin {
			s.AddFlash("Logged in as: "+claims.Name+"!", "success")
		}
		// The new cookie must reach the browser before the body
		if err := s.Save(); err != nil {
			respondJSONError(c, err)
			return
		}
		// Log successful login
		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID,                         // User ID
			"username":  claims.Name,                     // Display name
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Added login session for user")
		c.JSON(http.StatusOK, LoginResponse{
			UserID:   user.ID,
			Username: claims.Name,
			Email:    claims.Email,
			Picture:  claims.Picture,
		})
	}
}

// LogoutHandler clears the session and returns to the catalogue
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := middleware.CurrentIdentity(c) // Signed-in user
		s := middleware.CurrentSession(c)
		s.Clear()                                   // Drop identity and token
		s.AddFlash("You have been logged out!", "") // Notice for the next page
		// Log the logout
		logrus.WithFields(logrus.Fields{
			"user_id": id.UserID, // User ID
		}).Info("User logged out")
		redirect(c, http.StatusFound, "/catalogue/")
	}
}
