package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/ManuelReschke/bizdir/internal/pkg/env"
	"github.com/ManuelReschke/bizdir/internal/pkg/middleware"
)

// csrfExtractor reads the token from the _csrf form field, or from the
// X-CSRF-Token header the ajax calls send.
func csrfExtractor(c *fiber.Ctx) (string, error) {
	if token, err := csrf.CsrfFromForm("_csrf")(c); err == nil {
		return token, nil
	}
	return csrf.CsrfFromHeader(csrf.HeaderName)(c)
}

func csrfError(c *fiber.Ctx, err error) error {
	if c.Get(fiber.HeaderAccept) == fiber.MIMEApplicationJSON || c.XHR() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Your session has expired. Please reload the page.",
		})
	}
	return middleware.Forbidden(c)
}

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		Extractor:      csrfExtractor,
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		ErrorHandler:   csrfError,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", csrf.New(csrfConf))
	group.Get("/", h.directory.HandleHome)

	// Accounts
	group.Get("/login", h.auth.HandleLogin)
	group.Post("/login", h.auth.HandleLoginPost)
	group.Get("/register", h.auth.HandleRegister)
	group.Post("/register", h.auth.HandleRegisterPost)
	group.Post("/logout", middleware.RequireAuth, h.auth.HandleLogout)

	// Public forms
	group.Get("/submit", h.submission.HandleNew)
	group.Post("/submit", h.submission.HandleNewPost)
	group.Get("/claim/:id", h.submission.HandleClaim)
	group.Post("/claim/:id", h.submission.HandleClaimPost)
	group.Post("/ajax/claims", h.submission.HandleClaimAjax)
	group.Post("/business/:id/reviews", h.review.HandleSubmit)
	group.Post("/ajax/reviews", h.review.HandleSubmitAjax)

	// Owner dashboard
	owner := group.Group("/owner", middleware.RequireAuth)
	owner.Get("/", h.owner.HandleDashboard)
	owner.Get("/businesses/:id/edit", middleware.RequireOwner, h.owner.HandleEdit)
	owner.Post("/businesses/:id/edit", middleware.RequireOwner, h.owner.HandleEditPost)

	h.registerAdminRoutes(group)
}
