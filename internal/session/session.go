// Package session is a typed view over the gin-contrib/sessions session of
// the current request. The browser only holds a signed session id; values
// live in the configured store.
package session

import (
	"crypto/rand"  // Secure random state
	"encoding/gob" // Store serialisers encode flash values with gob
	"errors"       // Error values
	"math/big"     // Uniform index into the state alphabet
	"time"         // Last-seen timestamps

	"github.com/gin-contrib/sessions"       // Gin session middleware
	gsessions "github.com/gorilla/sessions" // Underlying session record
)

// CookieName is the name of the session cookie
const CookieName = "catalogue_session"

// Keys of the values kept in a session
const (
	keyState        = "state"    // Anti-forgery state issued by the login page
	keyGoogleUserID = "guser_id" // Google subject
	keyUsername     = "username" // Display name, set only while signed in
	keyEmail        = "email"    // Email address
	keyPicture      = "picture"  // Profile picture URL
	keyUserID       = "user_id"  // Local user ID
	keyToken        = "token"    // Short-lived session credential
	keySeen         = "seen"     // Unix time of the last authenticated request
	flashKey        = "_flash"   // Default flash key of gorilla sessions
)

func init() {
	gob.Register(Flash{})
}

// Flash is a one-time notice shown on the next rendered page
type Flash struct {
	Message  string // Notice text
	Category string // Bootstrap style, empty for the default
}

// Identity is the immutable view of the signed-in user handed to handlers
type Identity struct {
	UserID   uint   // Local user ID
	Username string // Display name
	Email    string // Email address
	Picture  string // Profile picture URL
}

// SignIn is what a successful login writes into the session
type SignIn struct {
	GoogleUserID string // Google subject
	Username     string // Display name
	Email        string // Email address
	Picture      string // Profile picture URL
	UserID       uint   // Local user ID
	Token        string // Short-lived session credential
}

// Session wraps the request's sessions.Session with typed accessors
type Session struct {
	s sessions.Session // Session loaded by the gin-contrib middleware
}

// Wrap returns the typed view of s
func Wrap(s sessions.Session) *Session {
	return &Session{s: s}
}

// ID is the store's id for the session, empty until first saved
func (s *Session) ID() string { return s.s.ID() }

// Authenticated reports whether a user has signed in on this session
func (s *Session) Authenticated() bool {
	return s.str(keyUsername) != ""
}

// Identity returns a snapshot of the signed-in user
func (s *Session) Identity() Identity {
	id, _ := s.s.Get(keyUserID).(uint)
	return Identity{
		UserID:   id,
		Username: s.str(keyUsername),
		Email:    s.str(keyEmail),
		Picture:  s.str(keyPicture),
	}
}

// State returns the anti-forgery state issued by the login page
func (s *Session) State() string { return s.str(keyState) }

// SetState remembers the anti-forgery state until the login callback
func (s *Session) SetState(state string) { s.s.Set(keyState, state) }

// ClearState makes the current state single-use
func (s *Session) ClearState() { s.s.Delete(keyState) }

// Token returns the short-lived session credential
func (s *Session) Token() string { return s.str(keyToken) }

// SetToken replaces the short-lived session credential
func (s *Session) SetToken(token string) { s.s.Set(keyToken, token) }

// SignIn records the authenticated user
func (s *Session) SignIn(in SignIn) {
	s.s.Set(keyGoogleUserID, in.GoogleUserID)
	s.s.Set(keyUsername, in.Username)
	s.s.Set(keyEmail, in.Email)
	s.s.Set(keyPicture, in.Picture)
	s.s.Set(keyUserID, in.UserID)
	s.s.Set(keyToken, in.Token)
}

// Touch marks the session as used so the next Save resets its store TTL
func (s *Session) Touch() {
	s.s.Set(keySeen, time.Now().Unix())
}

// AddFlash queues a notice for the next rendered page
func (s *Session) AddFlash(message, category string) {
	s.s.AddFlash(Flash{Message: message, Category: category})
}

// PopFlashes returns and removes all pending notices
func (s *Session) PopFlashes() []Flash {
	// Reading flashes marks the session written, skip it when there are none
	if s.s.Get(flashKey) == nil {
		return nil
	}
	var out []Flash
	for _, v := range s.s.Flashes() {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	return out
}

// Clear drops every value, signing the user out
func (s *Session) Clear() { s.s.Clear() }

// Save writes the session to its store and sets the cookie. It must run
// before the response body is written.
func (s *Session) Save() error { return s.s.Save() }

// recordHolder is implemented by the gin-contrib session type
type recordHolder interface {
	Session() *gsessions.Session
}

// Renew moves the session's values to a fresh id. The old record is
// deleted from the store and its cookie expired; the new cookie is set by
// the next Save.
func (s *Session) Renew() error {
	holder, ok := s.s.(recordHolder)
	if !ok {
		return errors.New("session: store record is not reachable")
	}
	rec := holder.Session()
	if rec == nil {
		return errors.New("session: no session record")
	}
	values := make(map[interface{}]interface{}, len(rec.Values))
	for k, v := range rec.Values {
		values[k] = v
	}
	opts := *rec.Options
	if rec.ID != "" {
		expired := opts
		expired.MaxAge = -1
		s.s.Clear()
		s.s.Delete(keySeen) // Marks the record written even when it was empty
		rec.Options = &expired
		if err := s.s.Save(); err != nil {
			rec.Options = &opts
			return err
		}
	}
	rec.ID = ""
	rec.IsNew = true
	rec.Options = &opts
	rec.Values = make(map[interface{}]interface{}, len(values)) // Not shared with the old record
	for k, v := range values {
		s.s.Set(k, v)
	}
	return nil
}

func (s *Session) str(key string) string {
	v, _ := s.s.Get(key).(string)
	return v
}

const stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewState returns n random characters from A-Z and 0-9
func NewState(n int) (string, error) {
	limit := big.NewInt(int64(len(stateAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = stateAlphabet[idx.Int64()]
	}
	return string(b), nil
}
