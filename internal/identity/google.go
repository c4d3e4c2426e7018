// Package identity verifies identity tokens issued by Google Sign-In.
package identity

import (
	"context"  // Bounded key fetches
	"fmt"      // Error wrapping
	"net/http" // HTTP client for key fetches
	"slices"   // Issuer lookup
	"time"     // Fetch timeout

	"google.golang.org/api/idtoken" // Google ID token validation
	"google.golang.org/api/option"  // Client options for the validator
)

// AcceptedIssuers are the two issuer strings Google puts in ID tokens.
var AcceptedIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// Claims are the verified facts taken from an identity token.
type Claims struct {
	Subject string // Stable Google account id
	Name    string // Display name, the email when the profile has none
	Email   string // Verified email address
	Picture string // Profile picture URL
}

// InvalidTokenError reports a token that failed verification.
type InvalidTokenError struct {
	Reason string // Which check failed
	Err    error  // Underlying validator error, if any
}

func (e *InvalidTokenError) Error() string {
	if e.Err != nil {
		return "invalid identity token: " + e.Reason + ": " + e.Err.Error()
	}
	return "invalid identity token: " + e.Reason
}

func (e *InvalidTokenError) Unwrap() error { return e.Err }

// Verifier turns an opaque token into verified claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

type payloadValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier checks tokens against Google's published keys for one client id.
type GoogleVerifier struct {
	clientID  string           // Expected audience
	validator payloadValidator // Signature and expiry checks
}

// NewGoogleVerifier builds a verifier whose key fetches are bounded by timeout.
func NewGoogleVerifier(ctx context.Context, clientID string, timeout time.Duration) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("google token validator: %w", err)
	}
	return &GoogleVerifier{clientID: clientID, validator: v}, nil
}

// Verify validates signature, expiry, audience and issuer.
func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, &InvalidTokenError{Reason: "empty token"}
	}
	payload, err := g.validator.Validate(ctx, token, g.clientID)
	if err != nil {
		return nil, &InvalidTokenError{Reason: "signature or audience", Err: err}
	}
	return ClaimsFromPayload(payload, g.clientID)
}

// ClaimsFromPayload checks the issuer and audience of an already validated
// payload and extracts the profile claims.
func ClaimsFromPayload(p *idtoken.Payload, audience string) (*Claims, error) {
	if p == nil {
		return nil, &InvalidTokenError{Reason: "missing payload"}
	}
	if !slices.Contains(AcceptedIssuers, p.Issuer) {
		return nil, &InvalidTokenError{Reason: "wrong issuer " + p.Issuer}
	}
	if p.Audience != audience {
		return nil, &InvalidTokenError{Reason: "wrong audience"}
	}
	c := &Claims{
		Subject: p.Subject,
		Name:    stringClaim(p.Claims, "name"),
		Email:   stringClaim(p.Claims, "email"),
		Picture: stringClaim(p.Claims, "picture"),
	}
	if c.Subject == "" || c.Email == "" {
		return nil, &InvalidTokenError{Reason: "missing subject or email"}
	}
	// Users are keyed by email, so it must belong to the account
	if !boolClaim(p.Claims, "email_verified") {
		return nil, &InvalidTokenError{Reason: "email not verified"}
	}
	// Accounts without a profile name still need a display name
	if c.Name == "" {
		c.Name = c.Email
	}
	return c, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// boolClaim reads a flag Google sends either as a JSON bool or as "true"
func boolClaim(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
