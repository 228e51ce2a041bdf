package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/bizdir/internal/pkg/testutil"
)

func TestAllowBlocksWithinWindow(t *testing.T) {
	mr := testutil.NewCache(t)

	assert.True(t, Allow("review", "203.0.113.9", time.Minute))
	assert.False(t, Allow("review", "203.0.113.9", time.Minute))
	assert.True(t, Allow("review", "203.0.113.10", time.Minute), "other ip is independent")
	assert.True(t, Allow("submission", "203.0.113.9", time.Minute), "other action is independent")

	mr.FastForward(61 * time.Second)
	assert.True(t, Allow("review", "203.0.113.9", time.Minute))
}

func TestAllowResetAndEmptyIP(t *testing.T) {
	testutil.NewCache(t)

	assert.True(t, Allow("review", "", time.Minute))
	assert.True(t, Allow("review", "", time.Minute))

	assert.True(t, Allow("review", "198.51.100.1", time.Minute))
	Reset("review", "198.51.100.1")
	assert.True(t, Allow("review", "198.51.100.1", time.Minute))
}

func TestAllowFailsOpenWhenCacheIsDown(t *testing.T) {
	mr := testutil.NewCache(t)
	mr.Close()

	assert.True(t, Allow("review", "192.0.2.1", time.Minute))
}
