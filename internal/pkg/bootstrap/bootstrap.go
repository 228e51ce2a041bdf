// Package bootstrap connects the environment, database and cache and builds
// the directory services for the server and the CLI.
package bootstrap

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/ManuelReschke/bizdir/internal/pkg/cache"
	"github.com/ManuelReschke/bizdir/internal/pkg/config"
	"github.com/ManuelReschke/bizdir/internal/pkg/constants"
	"github.com/ManuelReschke/bizdir/internal/pkg/database"
	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
	"github.com/ManuelReschke/bizdir/internal/pkg/env"
	"github.com/ManuelReschke/bizdir/internal/pkg/mail"
	"github.com/ManuelReschke/bizdir/internal/pkg/permalink"
	"github.com/ManuelReschke/bizdir/internal/pkg/s3backup"
	"github.com/ManuelReschke/bizdir/internal/pkg/sideload"
)

// Services sets up env, database and cache and returns the wired services.
// It runs the version upgrade so a new release flushes the term cache once.
func Services() *directory.Services {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("[Bootstrap] %v, using defaults", err)
		cfg = config.Defaults()
		config.Set(cfg)
	}

	var svc *directory.Services
	notifier := mail.NewNotifier(
		mail.SMTPMailer{},
		func() string { return svc.AdminEmail() },
		strings.TrimRight(cfg.PublicDomain, "/"),
		permalink.BusinessURL,
	)
	svc = directory.New(database.GetDB(), cfg, notifier, imageFetcher(cfg))

	if upgraded, err := svc.Upgrade(); err != nil {
		log.Printf("[Bootstrap] version upgrade failed: %v", err)
	} else if upgraded {
		log.Printf("[Bootstrap] upgraded to %s, term cache flush scheduled", directory.Version)
	}
	return svc
}

func imageFetcher(cfg *config.Directory) *sideload.Fetcher {
	dir := cfg.UploadDir
	if dir == "" {
		dir = constants.UploadsPath
	}

	var mirror sideload.Mirror
	s3cfg, err := s3backup.LoadConfig()
	if err != nil {
		log.Printf("[Bootstrap] S3 mirror disabled: %v", err)
	} else if s3cfg.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		client, err := s3backup.NewClient(ctx, s3cfg)
		if err != nil {
			log.Printf("[Bootstrap] S3 mirror disabled: %v", err)
		} else {
			mirror = client
		}
	}
	return sideload.New(dir, cfg.ImageTimeout, cfg.ImageMaxBytes, mirror)
}
