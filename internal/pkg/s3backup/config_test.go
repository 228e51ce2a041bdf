package s3backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDisabledByDefault(t *testing.T) {
	t.Setenv("S3_MIRROR_ENABLED", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestLoadConfigRequiresCredentialsWhenEnabled(t *testing.T) {
	t.Setenv("S3_MIRROR_ENABLED", "true")
	t.Setenv("S3_ACCESS_KEY_ID", "")
	t.Setenv("S3_SECRET_ACCESS_KEY", "")
	t.Setenv("S3_BUCKET_NAME", "listings")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_ACCESS_KEY_ID")
	assert.NotContains(t, err.Error(), "S3_BUCKET_NAME")
}

func TestObjectKey(t *testing.T) {
	cfg := &Config{Prefix: "businesses"}
	assert.Equal(t, "businesses/abc.jpg", cfg.ObjectKey("uploads/businesses/abc.jpg"))

	cfg.Prefix = ""
	assert.Equal(t, "abc_thumb.jpg", cfg.ObjectKey("abc_thumb.jpg"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentType(".JPG"))
	assert.Equal(t, "image/webp", contentType(".webp"))
	assert.Equal(t, "application/octet-stream", contentType(".txt"))
}
