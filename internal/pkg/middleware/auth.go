package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/internal/pkg/usercontext"
)

const permissionDenied = "You do not have permission to access this page."

// Forbidden renders the permission denied page and stops the request.
func Forbidden(c *fiber.Ctx) error {
	c.Status(fiber.StatusForbidden)
	err := c.Render("errors/403", fiber.Map{
		"Title":    "Permission denied",
		"Message":  permissionDenied,
		"User":     usercontext.GetUserContext(c),
		"Settings": models.GetDirectorySettings(),
	}, "layouts/main")
	if err != nil {
		return c.SendString(permissionDenied)
	}
	return nil
}

// RequireAuth ensures a logged-in web session; redirects to /login if missing.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Redirect("/login?next="+c.OriginalURL(), fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireOwner lets listing owners and admins through.
func RequireOwner(c *fiber.Ctx) error {
	u := usercontext.GetUserContext(c)
	if !u.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	if !u.IsOwner {
		return Forbidden(c)
	}
	return c.Next()
}

// RequireAdmin ensures a logged-in admin. Other users get the permission denied page.
func RequireAdmin(c *fiber.Ctx) error {
	u := usercontext.GetUserContext(c)
	if !u.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	if !u.IsAdmin {
		return Forbidden(c)
	}
	return c.Next()
}

// RequireAdminJSON guards the admin ajax endpoints.
func RequireAdminJSON(c *fiber.Ctx) error {
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": permissionDenied,
		})
	}
	return c.Next()
}
