package session

import (
	"crypto/sha256" // Hash for key derivation
	"errors"        // Error values
	"fmt"           // Error wrapping
	"io"            // Reading derived keys
	"net/http"      // SameSite mode
	"strconv"       // Redis database number
	"time"          // Durations

	"github.com/gin-contrib/sessions"          // Gin session middleware
	"github.com/gin-contrib/sessions/memstore" // In-process session store
	"github.com/gin-contrib/sessions/redis"    // Redis session store
	"golang.org/x/crypto/hkdf"                 // Key derivation
)

// KeyPrefix is prepended to session ids in Redis
const KeyPrefix = "session:"

// DefaultTTL is the session lifetime when none is configured
const DefaultTTL = 24 * time.Hour

// redisPoolSize is the number of idle Redis connections kept by the store
const redisPoolSize = 10

// minSecretLen is the shortest secret accepted for cookie keys
const minSecretLen = 16

// Options configure the session cookie and store lifetime
type Options struct {
	TTL    time.Duration // Lifetime of a session in the store and browser
	Secure bool          // Send the cookie over HTTPS only
}

// RedisOptions locate the Redis server backing the store
type RedisOptions struct {
	Addr     string // host:port
	Password string // Redis password
	DB       int    // Redis database number
}

// cookie converts o to the gin-contrib cookie options
func (o Options) cookie() sessions.Options {
	ttl := o.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return sessions.Options{
		Path:     "/",                  // Whole site
		MaxAge:   int(ttl.Seconds()),   // Cookie and store lifetime
		Secure:   o.Secure,             // HTTPS only in production
		HttpOnly: true,                 // Not readable from scripts
		SameSite: http.SameSiteLaxMode, // Top-level navigation only
	}
}

// NewMemoryStore keeps sessions in process memory. Used for local runs and tests.
func NewMemoryStore(secret []byte, o Options) (sessions.Store, error) {
	keys, err := cookieKeys(secret)
	if err != nil {
		return nil, err
	}
	store := memstore.NewStore(keys...)
	store.Options(o.cookie())
	return store, nil
}

// NewRedisStore keeps sessions in Redis under KeyPrefix with the session TTL
func NewRedisStore(ro RedisOptions, secret []byte, o Options) (sessions.Store, error) {
	keys, err := cookieKeys(secret)
	if err != nil {
		return nil, err
	}
	store, err := redis.NewStoreWithDB(redisPoolSize, "tcp", ro.Addr, "", ro.Password, strconv.Itoa(ro.DB), keys...)
	if err != nil {
		return nil, fmt.Errorf("connect session store: %w", err)
	}
	if err := redis.SetKeyPrefix(store, KeyPrefix); err != nil {
		return nil, err
	}
	store.Options(o.cookie())
	return store, nil
}

// cookieKeys derives the signing and encryption keys for the session cookie
func cookieKeys(secret []byte) ([][]byte, error) {
	if len(secret) < minSecretLen {
		return nil, errors.New("session secret must be at least 16 bytes")
	}
	r := hkdf.New(sha256.New, secret, nil, []byte("catalogue session cookie"))
	hashKey := make([]byte, 64)  // HMAC-SHA256 authentication key
	blockKey := make([]byte, 32) // AES-256 encryption key
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, err
	}
	return [][]byte{hashKey, blockKey}, nil
}
