package session

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-contrib/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redisTestTTL = time.Hour

func newRedisTestStore(t *testing.T) (sessions.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisOptions{Addr: mr.Addr()}, testSecret, Options{TTL: redisTestTTL})
	require.NoError(t, err)
	return store, mr
}

func TestRedisStoreSaveAndLoad(t *testing.T) {
	store, mr := newRedisTestStore(t)
	b := newBrowser(newTestRouter(store))

	id := b.do(http.MethodPost, "/signin").Body.String()
	require.NotEmpty(t, id)
	assert.True(t, mr.Exists(KeyPrefix+id))
	assert.Equal(t, redisTestTTL, mr.TTL(KeyPrefix+id))

	w, code := b.whoami(t)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, w.ID)
	assert.Equal(t, Identity{UserID: 7, Username: "Ada", Email: "ada@example.com"}, w.Identity)
	assert.Equal(t, []Flash{{Message: "Logged in as: Ada!", Category: "success"}}, w.Flashes)
}

func TestRedisStoreMissingKey(t *testing.T) {
	store, mr := newRedisTestStore(t)
	b := newBrowser(newTestRouter(store))
	id := b.do(http.MethodPost, "/signin").Body.String()

	require.True(t, mr.Del(KeyPrefix+id))
	_, code := b.whoami(t)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRedisStoreRenewDeletesOldRecord(t *testing.T) {
	store, mr := newRedisTestStore(t)
	b := newBrowser(newTestRouter(store))
	oldID := b.do(http.MethodPost, "/signin").Body.String()

	newID := b.do(http.MethodPost, "/renew").Body.String()
	require.NotEqual(t, oldID, newID)
	assert.False(t, mr.Exists(KeyPrefix+oldID))
	assert.True(t, mr.Exists(KeyPrefix+newID))

	_, code := b.whoami(t)
	assert.Equal(t, http.StatusOK, code)
}

func TestRedisStoreExpiry(t *testing.T) {
	t.Run("record expires after the TTL", func(t *testing.T) {
		store, mr := newRedisTestStore(t)
		b := newBrowser(newTestRouter(store))
		id := b.do(http.MethodPost, "/signin").Body.String()

		mr.FastForward(redisTestTTL + time.Second)
		assert.False(t, mr.Exists(KeyPrefix+id))
		_, code := b.whoami(t)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("each authenticated request restarts the TTL", func(t *testing.T) {
		store, mr := newRedisTestStore(t)
		b := newBrowser(newTestRouter(store))
		id := b.do(http.MethodPost, "/signin").Body.String()

		for i := 0; i < 3; i++ {
			mr.FastForward(redisTestTTL / 2)
			_, code := b.whoami(t)
			require.Equal(t, http.StatusOK, code, "request "+strconv.Itoa(i))
			assert.Equal(t, redisTestTTL, mr.TTL(KeyPrefix+id))
		}
	})
}

func TestRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(RedisOptions{Addr: addr}, testSecret, Options{})
	assert.Error(t, err)
}
