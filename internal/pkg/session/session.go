package session

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/bizdir/internal/pkg/cache"
	"github.com/ManuelReschke/bizdir/internal/pkg/env"
)

const (
	// the cache itself uses database 0
	redisDatabase = 1
	lifetime      = 12 * time.Hour
	cookieName    = "bizdir_session"
)

var (
	sessionStore *session.Store

	errNoStore = errors.New("session store not initialized")
)

// NewSessionStore creates the redis backed login session store.
func NewSessionStore() *session.Store {
	sessionStore = session.New(session.Config{
		Storage:        cache.Storage(redisDatabase),
		Expiration:     lifetime,
		KeyLookup:      "cookie:" + cookieName,
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
	return sessionStore
}

// SetSessionStore installs a store, e.g. a memory backed one in tests.
func SetSessionStore(store *session.Store) {
	sessionStore = store
}

func GetSessionStore() *session.Store {
	return sessionStore
}

// SetSessionValue keeps a string in the visitor's session.
func SetSessionValue(c *fiber.Ctx, key, value string) error {
	if sessionStore == nil {
		return errNoStore
	}
	sess, err := sessionStore.Get(c)
	if err != nil {
		return err
	}
	sess.Set(key, value)
	return sess.Save()
}

// GetSessionValue returns a string stored with SetSessionValue, or "".
func GetSessionValue(c *fiber.Ctx, key string) string {
	if sessionStore == nil {
		return ""
	}
	sess, err := sessionStore.Get(c)
	if err != nil {
		return ""
	}
	v, _ := sess.Get(key).(string)
	return v
}
