package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
)

// Router registers a set of routes on the app
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, svc *directory.Services) {
	// The HttpRouter installs the session store and the user context middleware
	// the API limiter and the catch-all rely on, so it goes first.
	web := NewHttpRouter(svc)
	setup(app, web, NewApiRouter(svc))
	app.Use(web.directory.HandleNotFound)
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
