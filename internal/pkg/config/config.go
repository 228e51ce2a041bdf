package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Directory holds the tunables of the directory features.
type Directory struct {
	SimilarityThreshold float64       `env:"LBD_SIMILARITY_THRESHOLD" env-default:"70"`
	TermCacheTTL        time.Duration `env:"LBD_TERM_CACHE_TTL" env-default:"6h"`
	ReviewThrottle      time.Duration `env:"LBD_REVIEW_THROTTLE" env-default:"60s"`
	SubmissionThrottle  time.Duration `env:"LBD_SUBMISSION_THROTTLE" env-default:"300s"`
	ClaimTokenTTL       time.Duration `env:"LBD_CLAIM_TOKEN_TTL" env-default:"48h"`
	ImageTimeout        time.Duration `env:"LBD_IMAGE_TIMEOUT" env-default:"20s"`
	ImageMaxBytes       int64         `env:"LBD_IMAGE_MAX_BYTES" env-default:"10485760"`
	UploadDir           string        `env:"LBD_UPLOAD_DIR" env-default:"uploads/businesses"`
	AdminEmail          string        `env:"LBD_ADMIN_EMAIL" env-default:""`
	PublicDomain        string        `env:"PUBLIC_DOMAIN" env-default:"http://localhost:4000"`
	NonceSecret         string        `env:"LBD_NONCE_SECRET" env-default:""`
	ReviewsPerPage      int           `env:"LBD_REVIEWS_PER_PAGE" env-default:"20"`
	BusinessesPerPage   int           `env:"LBD_BUSINESSES_PER_PAGE" env-default:"24"`
}

var (
	current *Directory
	mu      sync.RWMutex
)

// Load reads the directory config from the process environment.
func Load() (*Directory, error) {
	var cfg Directory
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read directory config: %w", err)
	}
	mu.Lock()
	current = &cfg
	mu.Unlock()
	return &cfg, nil
}

// Get returns the loaded config, loading defaults on first use.
func Get() *Directory {
	mu.RLock()
	cfg := current
	mu.RUnlock()
	if cfg != nil {
		return cfg
	}
	cfg, err := Load()
	if err != nil {
		return Defaults()
	}
	return cfg
}

// Set replaces the active config. Used by tests and the CLI.
func Set(cfg *Directory) {
	mu.Lock()
	current = cfg
	mu.Unlock()
}

// Defaults returns the built in values without consulting the environment.
func Defaults() *Directory {
	return &Directory{
		SimilarityThreshold: 70,
		TermCacheTTL:        6 * time.Hour,
		ReviewThrottle:      60 * time.Second,
		SubmissionThrottle:  300 * time.Second,
		ClaimTokenTTL:       48 * time.Hour,
		ImageTimeout:        20 * time.Second,
		ImageMaxBytes:       10 << 20,
		UploadDir:           "uploads/businesses",
		PublicDomain:        "http://localhost:4000",
		ReviewsPerPage:      20,
		BusinessesPerPage:   24,
	}
}
