package s3backup

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/ManuelReschke/bizdir/internal/pkg/env"
)

// Config holds the settings of the optional featured image mirror
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Prefix          string
	Enabled         bool
}

// LoadConfig loads S3 configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Prefix:          strings.Trim(env.GetEnv("S3_PREFIX", "businesses"), "/"),
		Enabled:         env.GetEnv("S3_MIRROR_ENABLED", "false") == "true",
	}
	if !cfg.Enabled {
		return cfg, nil
	}

	var missing []string
	if cfg.AccessKeyID == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if cfg.SecretAccessKey == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	if cfg.BucketName == "" {
		missing = append(missing, "S3_BUCKET_NAME")
	}
	if len(missing) > 0 {
		return nil, errors.New(strings.Join(missing, ", ") + " required when the S3 mirror is enabled")
	}
	return cfg, nil
}

// ObjectKey maps a local file name onto the bucket layout: <prefix>/<file>
func (c *Config) ObjectKey(fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if c.Prefix == "" {
		return name
	}
	return fmt.Sprintf("%s/%s", c.Prefix, name)
}
