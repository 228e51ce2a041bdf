// Package flash wraps the cookie flash messages with the message shape the
// layout renders: {"type": "error"|"success", "message": "..."}.
package flash

import (
	"github.com/gofiber/fiber/v2"
	sflash "github.com/sujit-baniya/flash"
)

// Get returns the flash message of the previous request, or nil.
func Get(c *fiber.Ctx) fiber.Map {
	m := sflash.Get(c)
	if len(m) == 0 {
		return nil
	}
	return m
}

// Error redirects to path with an error message.
func Error(c *fiber.Ctx, path, message string) error {
	return sflash.WithError(c, fiber.Map{
		"type":    "error",
		"message": message,
	}).Redirect(path)
}

// Success redirects to path with a success message.
func Success(c *fiber.Ctx, path, message string) error {
	return sflash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": message,
	}).Redirect(path)
}
