package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/app/controllers"
	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
	"github.com/ManuelReschke/bizdir/internal/pkg/middleware"
	"github.com/ManuelReschke/bizdir/internal/pkg/oauth"
	"github.com/ManuelReschke/bizdir/internal/pkg/session"
)

type HttpRouter struct {
	svc        *directory.Services
	directory  *controllers.DirectoryController
	submission *controllers.SubmissionController
	review     *controllers.ReviewController
	owner      *controllers.OwnerController
	auth       *controllers.AuthController
	admin      *controllers.AdminController
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// tests install a memory backed store beforehand
	if session.GetSessionStore() == nil {
		session.NewSessionStore()
	}

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContext(h.svc.Repos.User))

	h.registerPublicRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter(svc *directory.Services) *HttpRouter {
	return &HttpRouter{
		svc:        svc,
		directory:  controllers.NewDirectoryController(svc),
		submission: controllers.NewSubmissionController(svc),
		review:     controllers.NewReviewController(svc),
		owner:      controllers.NewOwnerController(svc),
		auth:       controllers.NewAuthController(svc.Repos),
		admin:      controllers.NewAdminController(svc),
	}
}
