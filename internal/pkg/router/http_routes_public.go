package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	dc := h.directory

	// Directory permalinks, most specific pattern first. "categories" is
	// reserved and never resolves as an area.
	flush := dc.FlushMiddleware
	app.Get("/directory/categories/:category", flush, dc.HandleCategoryArchive)
	app.Get("/directory/:area/:category/:business", flush, dc.HandleBusiness)
	app.Get("/directory/:area/:category", flush, dc.HandleAreaCategoryArchive)
	app.Get("/directory/:area", flush, dc.HandleAreaArchive)
	app.Get("/business/:business", flush, dc.HandleBusinessBySlug)

	// Claim verification link from the mail
	app.Get("/claim/verify", h.submission.HandleVerifyClaim)

	// Social OAuth
	app.Get("/auth/:provider", h.auth.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", h.auth.HandleOAuthCallback)

	// Admin ajax answers JSON instead of the 403 page
	app.Use("/admin/ajax", middleware.RequireAdminJSON)
}
