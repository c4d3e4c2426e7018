package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"catalogue_app/internal/db"
	"catalogue_app/internal/domain"
	"catalogue_app/internal/identity"
	"catalogue_app/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testClientID = "test-client.apps.googleusercontent.com"

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeVerifier accepts a fixed set of tokens
type fakeVerifier map[string]identity.Claims

func (f fakeVerifier) Verify(_ context.Context, token string) (*identity.Claims, error) {
	c, ok := f[token]
	if !ok {
		return nil, &identity.InvalidTokenError{Reason: "unknown token"}
	}
	return &c, nil
}

var testTokens = fakeVerifier{
	"ada-token": {Subject: "g-1", Name: "Ada Lovelace", Email: "ada@example.com", Picture: "https://example.com/ada.png"},
	"bob-token": {Subject: "g-2", Name: "Bob", Email: "bob@example.com", Picture: "https://example.com/bob.png"},
}

type testApp struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	redis  *miniredis.Miniredis // Set by newCachedTestApp
}

// newTestApp builds the full router over a fresh in-memory database seeded
// with "Soccer" (id 1) and "Hockey" (id 2).
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return buildTestApp(t, nil)
}

// newCachedTestApp is newTestApp with a Redis response cache
func newCachedTestApp(t *testing.T) *testApp {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	app := buildTestApp(t, rdb)
	app.redis = mr
	return app
}

func buildTestApp(t *testing.T, rdb redis.Cmdable) *testApp {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenDialector(sqlite.Open("file:" + name + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	_, err = db.SeedCategories(context.Background(), gdb, []string{"Soccer", "Hockey"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	secret := []byte("0123456789abcdef0123456789abcdef")
	store, err := session.NewMemoryStore(secret, session.Options{TTL: time.Hour})
	require.NoError(t, err)

	r, err := NewRouter(Deps{
		DB:             gdb,
		Sessions:       store,
		Redis:          rdb,
		Verifier:       testTokens,
		Secret:         secret,
		GoogleClientID: testClientID,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return &testApp{t: t, router: r, db: gdb}
}

// client is a browser with a cookie jar
type client struct {
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) anonymous() *client {
	return &client{app: a, cookies: map[string]*http.Cookie{}}
}

// login signs a new browser in with the given token
func (a *testApp) login(token string) *client {
	a.t.Helper()
	cl := a.anonymous()
	rr := cl.signIn(token)
	require.Equal(a.t, http.StatusOK, rr.Code, rr.Body.String())
	return cl
}

var stateField = regexp.MustCompile(`name="state" value="([A-Z0-9]{32})"`)

// loginState opens the login page and returns the state it issued
func (cl *client) loginState() string {
	cl.app.t.Helper()
	rr := cl.get("/login/")
	require.Equal(cl.app.t, http.StatusOK, rr.Code)
	m := stateField.FindStringSubmatch(rr.Body.String())
	require.Len(cl.app.t, m, 2, "login page carries a state")
	return m[1]
}

// signIn goes through the login page and posts the token with its state
func (cl *client) signIn(token string) *httptest.ResponseRecorder {
	cl.app.t.Helper()
	state := cl.loginState()
	return cl.post("/oauth/google/", url.Values{"id_token": {token}, "state": {state}})
}

func (cl *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	cl.app.router.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(cl.cookies, c.Name) // Expired by the server
			continue
		}
		cl.cookies[c.Name] = c
	}
	return rr
}

func (cl *client) get(path string) *httptest.ResponseRecorder { return cl.do(http.MethodGet, path, nil) }

func (cl *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return cl.do(http.MethodPost, path, form)
}

func (a *testApp) userByEmail(email string) domain.User {
	a.t.Helper()
	var u domain.User
	require.NoError(a.t, a.db.Where("email = ?", email).Take(&u).Error)
	return u
}

func (a *testApp) createItem(categoryID, userID uint, name, description string) domain.CategoryItem {
	a.t.Helper()
	item := domain.CategoryItem{Name: name, Description: description, CategoryID: categoryID, UserID: userID}
	require.NoError(a.t, a.db.Create(&item).Error)
	return item
}

func (a *testApp) reloadItem(id uint) (domain.CategoryItem, error) {
	var item domain.CategoryItem
	err := a.db.Take(&item, id).Error
	return item, err
}
