package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/session"
	"github.com/ManuelReschke/bizdir/internal/pkg/usercontext"
)

func setAnonymous(c *fiber.Ctx) {
	c.Locals(usercontext.LocalsKey, usercontext.UserContext{})
	c.Locals(usercontext.KeyFromProtected, false)
	c.Locals(usercontext.KeyIsAdmin, false)
}

// UserContext loads the session user for every request. The role is read from
// the database so a claim approval or a disabled account takes effect at once.
func UserContext(users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Goth keeps its own session store on the OAuth routes
		if strings.HasPrefix(c.Path(), "/auth/") {
			return c.Next()
		}

		store := session.GetSessionStore()
		if store == nil {
			setAnonymous(c)
			return c.Next()
		}
		sess, err := store.Get(c)
		if err != nil {
			setAnonymous(c)
			return c.Next()
		}
		userID, ok := sess.Get(usercontext.KeyUserID).(uint)
		if !ok || userID == 0 {
			setAnonymous(c)
			return c.Next()
		}

		user, err := users.GetByID(userID)
		if err != nil || !user.IsActive() {
			if err != nil {
				log.Warnf("[UserContext] dropping session of user %d: %v", userID, err)
			}
			_ = sess.Destroy()
			setAnonymous(c)
			return c.Next()
		}

		userCtx := usercontext.FromUser(user)
		c.Locals(usercontext.LocalsKey, userCtx)
		c.Locals(usercontext.KeyFromProtected, true)
		c.Locals(usercontext.KeyUsername, userCtx.Username)
		c.Locals(usercontext.KeyUserID, userCtx.UserID)
		c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)
		return c.Next()
	}
}
