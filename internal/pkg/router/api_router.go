package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/ManuelReschke/bizdir/internal/api/v1"
	"github.com/ManuelReschke/bizdir/internal/pkg/constants"
	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
)

type ApiRouter struct {
	svc *directory.Services
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIPrefix, cors.New(), limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(apiv1.Error{
				Error:   "rate_limited",
				Message: "too many requests",
			})
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
			"version": directory.Version,
		})
	})

	v1 := api.Group("/v1")
	apiv1.RegisterHandlers(v1, apiv1.NewAPIServer(h.svc))
}

func NewApiRouter(svc *directory.Services) *ApiRouter {
	return &ApiRouter{svc: svc}
}
