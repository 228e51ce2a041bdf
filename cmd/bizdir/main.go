package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/bizdir/internal/pkg/bootstrap"
	"github.com/ManuelReschke/bizdir/internal/pkg/constants"
	"github.com/ManuelReschke/bizdir/internal/pkg/env"
	"github.com/ManuelReschke/bizdir/internal/pkg/router"
	"github.com/ManuelReschke/bizdir/internal/pkg/viewmodel"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

// projectRoot finds the directory holding views/ when started from the
// repository root or from cmd/bizdir.
func projectRoot() string {
	for _, p := range []string{"./", "../../", "../../../"} {
		if _, err := os.Stat(p + "views"); err == nil {
			return p
		}
	}
	panic("Could not find project root directory")
}

func NewApplication() *fiber.App {
	svc := bootstrap.Services()
	basePath := projectRoot()

	app := fiber.New(fiber.Config{
		Views:     viewmodel.NewEngine(basePath + "views"),
		BodyLimit: 32 << 20, // CSV uploads
	})

	if icon := basePath + "public/assets/favicon.ico"; fileExists(icon) {
		app.Use(favicon.New(favicon.Config{
			File:         icon,
			URL:          "/favicon.ico",
			CacheControl: "public, max-age=604800",
		}))
	}

	app.Use(recover.New(), logger.New())

	app.Get(constants.MonitorPath, basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "change-me"),
		},
	}), monitor.New(monitor.Config{Title: "Business Directory Metrics"}))

	app.Static("/", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	// featured images and thumbnails
	app.Static(constants.UploadsRoute, basePath+constants.UploadsPath, fiber.Static{
		CacheDuration: 10 * time.Second,
		MaxAge:        604800,
	})

	app.Use(swagger.New(swagger.Config{
		BasePath: constants.APIPrefix + "/",
		FilePath: basePath + constants.APIDocsSpec,
		Path:     "docs",
		Title:    "Business Directory API",
	}))

	router.InstallRouter(app, svc)

	return app
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
