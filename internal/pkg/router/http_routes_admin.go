package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(group fiber.Router) {
	ac := h.admin

	// ajax endpoints, guarded by RequireAdminJSON in the public routes
	ajax := group.Group("/admin/ajax")
	ajax.Post("/submissions/approve", ac.HandleSubmissionApprove)
	ajax.Post("/submissions/reject", ac.HandleSubmissionReject)

	adminGroup := group.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/", ac.HandleDashboard)
	adminGroup.Get("/settings", ac.HandleSettings)
	adminGroup.Post("/settings", ac.HandleSettingsUpdate)

	// Users
	adminGroup.Get("/users", ac.HandleUserManagement)
	adminGroup.Get("/users/:id/edit", ac.HandleUserEdit)
	adminGroup.Post("/users/:id", ac.HandleUserUpdate)
	adminGroup.Post("/users/:id/delete", ac.HandleUserDelete)

	// Submissions
	adminGroup.Get("/submissions", ac.HandleSubmissions)
	adminGroup.Get("/submissions/:id", ac.HandleSubmissionShow)

	// Reviews
	adminGroup.Get("/reviews", ac.HandleReviews)
	adminGroup.Get("/reviews/new", ac.HandleReviewNew)
	adminGroup.Post("/reviews", ac.HandleReviewCreate)
	adminGroup.Post("/reviews/bulk", ac.HandleReviewBulk)
	adminGroup.Get("/reviews/:id/:action", ac.HandleReviewAction)

	// Businesses
	adminGroup.Get("/businesses", ac.HandleBusinesses)
	adminGroup.Get("/businesses/new", ac.HandleBusinessNew)
	adminGroup.Post("/businesses", ac.HandleBusinessCreate)
	adminGroup.Get("/businesses/:id/edit", ac.HandleBusinessEdit)
	adminGroup.Post("/businesses/:id", ac.HandleBusinessUpdate)
	adminGroup.Post("/businesses/:id/trash", ac.HandleBusinessTrash)
	adminGroup.Post("/businesses/:id/restore", ac.HandleBusinessRestore)

	// Areas and categories
	adminGroup.Get("/terms", ac.HandleTerms)
	adminGroup.Post("/terms", ac.HandleTermCreate)
	adminGroup.Post("/terms/:id", ac.HandleTermUpdate)
	adminGroup.Post("/terms/:id/delete", ac.HandleTermDelete)

	// Import, export and category mapping
	adminGroup.Get("/import", ac.HandleImport)
	adminGroup.Post("/import/businesses", ac.HandleImportBusinesses)
	adminGroup.Post("/import/categories", ac.HandleImportCategories)
	adminGroup.Get("/export", ac.HandleExport)
	adminGroup.Get("/import/mapping", ac.HandleMapping)
	adminGroup.Post("/import/mapping/analyze", ac.HandleMappingAnalyze)
	adminGroup.Post("/import/mapping", ac.HandleMappingSave)

	// Maintenance
	adminGroup.Get("/duplicates", ac.HandleDuplicates)
	adminGroup.Post("/duplicates/delete", ac.HandleDuplicatesDelete)
	adminGroup.Get("/permalinks", ac.HandlePermalinks)
	adminGroup.Post("/permalinks/flush", ac.HandlePermalinksFlush)
	adminGroup.Post("/permalinks/regenerate", ac.HandlePermalinksRegenerate)
}
