package ratelimit

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/bizdir/internal/pkg/cache"
)

const keyPrefix = "lbd:throttle:"

// Allow sets a short lived flag for (action, ip). It reports false while a
// previous flag is still alive. Cache errors let the request through.
func Allow(action, ip string, window time.Duration) bool {
	if ip == "" || window <= 0 {
		return true
	}
	sum := sha1.Sum([]byte(ip))
	key := keyPrefix + action + ":" + hex.EncodeToString(sum[:])

	ok, err := cache.SetNX(key, "1", window)
	if err != nil {
		log.Warnf("[Throttle] cache unavailable for %s: %v", action, err)
		return true
	}
	return ok
}

// Reset clears the flag, e.g. after a request was rejected by validation.
func Reset(action, ip string) {
	sum := sha1.Sum([]byte(ip))
	_ = cache.Delete(keyPrefix + action + ":" + hex.EncodeToString(sum[:]))
}
