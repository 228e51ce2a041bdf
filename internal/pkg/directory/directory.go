// Package directory assembles the domain services shared by the web server
// and the command line tool.
package directory

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/config"
	"github.com/ManuelReschke/bizdir/internal/pkg/csvimport"
	"github.com/ManuelReschke/bizdir/internal/pkg/duplicates"
	"github.com/ManuelReschke/bizdir/internal/pkg/nonce"
	"github.com/ManuelReschke/bizdir/internal/pkg/permalink"
	"github.com/ManuelReschke/bizdir/internal/pkg/reviews"
	"github.com/ManuelReschke/bizdir/internal/pkg/statistics"
	"github.com/ManuelReschke/bizdir/internal/pkg/submission"
	"github.com/ManuelReschke/bizdir/internal/pkg/taxonomy"
)

type Services struct {
	DB          *gorm.DB
	Config      *config.Directory
	Repos       *repository.Repositories
	Terms       *taxonomy.Service
	Resolver    *permalink.Resolver
	Submissions *submission.Service
	Reviews     *reviews.Service
	Mappings    *csvimport.Mappings
	Importer    *csvimport.Importer
	Duplicates  *duplicates.Service
	Nonce       *nonce.Signer
}

// New wires the services on db. notify and images may be nil; a nil image
// fetcher makes the importer report rows with an image_url as errors.
func New(db *gorm.DB, cfg *config.Directory, notify submission.Notifier, images csvimport.ImageFetcher) *Services {
	if cfg == nil {
		cfg = config.Defaults()
	}
	repos := repository.NewRepositories(db)
	terms := taxonomy.NewService(repos.Term, cfg.TermCacheTTL)
	mappings := csvimport.NewMappings(repos.Option, repos.Term, cfg.SimilarityThreshold)

	subs := submission.NewService(db, notify, cfg)
	subs.OnBusinessChanged = statistics.Invalidate

	// without a configured secret row action links only survive until restart
	secret := cfg.NonceSecret
	if secret == "" {
		secret = uuid.NewString()
	}

	dups := duplicates.NewService(repos.Business)
	dups.OnDeleted = statistics.Invalidate

	return &Services{
		DB:          db,
		Config:      cfg,
		Repos:       repos,
		Terms:       terms,
		Resolver:    permalink.NewResolver(terms, repos.Business),
		Submissions: subs,
		Reviews:     reviews.NewService(repos.Review, repos.Business, cfg.ReviewThrottle),
		Mappings:    mappings,
		Importer:    csvimport.NewImporter(repos, terms, mappings, images),
		Duplicates:  dups,
		Nonce:       nonce.New(secret),
	}
}

// AdminEmail is the notification address: the settings value, falling back
// to the configured one.
func (s *Services) AdminEmail() string {
	if e := models.GetDirectorySettings().AdminEmail; e != "" {
		return e
	}
	return s.Config.AdminEmail
}

// ConsumeFlushFlag flushes the term cache once when the flush option is set,
// e.g. by the CLI or after an upgrade.
func (s *Services) ConsumeFlushFlag() (bool, error) {
	v, err := s.Repos.Option.GetValue(models.OPTION_FLUSH_REWRITE_RULES)
	if err != nil || v == "" {
		return false, err
	}
	s.Terms.Flush()
	if err := s.Repos.Option.Delete(models.OPTION_FLUSH_REWRITE_RULES); err != nil {
		return true, err
	}
	return true, nil
}

// RequestFlush marks the term cache for a flush on the next request.
func (s *Services) RequestFlush() error {
	return s.Repos.Option.SetValue(models.OPTION_FLUSH_REWRITE_RULES, "1")
}

// Version is stored in the lbd_version option.
const Version = "1.4.0"

// Upgrade records Version and schedules a term cache flush when the stored
// marker differs. It reports whether an upgrade happened.
func (s *Services) Upgrade() (bool, error) {
	stored, err := s.Repos.Option.GetValue(models.OPTION_VERSION)
	if err != nil {
		return false, err
	}
	if stored == Version {
		return false, nil
	}
	if err := s.Repos.Option.SetValue(models.OPTION_VERSION, Version); err != nil {
		return false, err
	}
	return true, s.RequestFlush()
}
