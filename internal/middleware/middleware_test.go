package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalogue_app/internal/session"
	"catalogue_app/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

const privateBody = "private page of Ada"

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter mounts a protected /private route and a /signin route that
// marks the session as signed in without a credential.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store, err := session.NewMemoryStore(testSecret, session.Options{TTL: time.Hour})
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestTimeout(time.Second), Sessions(store))
	r.GET("/signin", func(c *gin.Context) {
		s := CurrentSession(c)
		s.SignIn(session.SignIn{Username: "Ada", Email: "ada@example.com", UserID: 3})
		require.NoError(t, s.Save())
		c.Status(http.StatusNoContent)
	})
	r.GET("/private", LoginRequired(testSecret), func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		s := CurrentSession(c)
		claims, err := utils.ParseJWT(s.Token(), testSecret)
		require.NoError(t, err)
		assert.Equal(t, id.UserID, claims.UserID)
		require.NoError(t, s.Save())
		c.String(http.StatusOK, "private page of "+id.Username)
	})
	return r
}

func signIn(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()
	req, _ := http.NewRequest("GET", "/signin", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestLoginRequiredRedirectsAnonymous(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/private", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, LoginPath, rr.Header().Get("Location"))
	assert.NotContains(t, rr.Body.String(), "private page")
	assert.Empty(t, rr.Header().Values("Set-Cookie"))
}

func TestLoginRequiredRejectsUnknownCookie(t *testing.T) {
	r := newTestRouter(t)
	cookie := signIn(t, r)

	// Same cookie against a router whose store never saw it
	other := newTestRouter(t)
	req, _ := http.NewRequest("GET", "/private", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	other.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.NotContains(t, rr.Body.String(), "private page")
}

func TestLoginRequiredPassesIdentity(t *testing.T) {
	r := newTestRouter(t)
	cookie := signIn(t, r)

	req, _ := http.NewRequest("GET", "/private", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, privateBody, rr.Body.String())
}

func TestLoginRequiredRefreshesSession(t *testing.T) {
	r := newTestRouter(t)
	cookie := signIn(t, r)

	// The sign-in route issued no credential, so the guard mints one
	req, _ := http.NewRequest("GET", "/private", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	// Every authenticated request rewrites the session and its cookie
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	req, _ = http.NewRequest("GET", "/private", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, privateBody, rr.Body.String())
}

func TestCurrentSessionWithoutMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		assert.Nil(t, CurrentSession(c))
		_, ok := CurrentIdentity(c)
		assert.False(t, ok)
		c.Status(http.StatusNoContent)
	})

	req, _ := http.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(RequestTimeout(50 * time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		<-c.Request.Context().Done()
		assert.ErrorIs(t, c.Request.Context().Err(), context.DeadlineExceeded)
		c.Status(http.StatusGatewayTimeout)
	})

	req, _ := http.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
}
