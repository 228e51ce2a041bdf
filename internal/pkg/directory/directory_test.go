package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/internal/pkg/testutil"
)

func TestUpgradeSchedulesFlushOnce(t *testing.T) {
	testutil.NewCache(t)
	svc := New(testutil.NewDB(t), nil, nil, nil)

	upgraded, err := svc.Upgrade()
	require.NoError(t, err)
	assert.True(t, upgraded)

	v, err := svc.Repos.Option.GetValue(models.OPTION_VERSION)
	require.NoError(t, err)
	assert.Equal(t, Version, v)

	upgraded, err = svc.Upgrade()
	require.NoError(t, err)
	assert.False(t, upgraded)

	flushed, err := svc.ConsumeFlushFlag()
	require.NoError(t, err)
	assert.True(t, flushed)

	flushed, err = svc.ConsumeFlushFlag()
	require.NoError(t, err)
	assert.False(t, flushed)
}

func TestAdminEmailFallsBackToConfig(t *testing.T) {
	testutil.NewCache(t)
	svc := New(testutil.NewDB(t), nil, nil, nil)
	svc.Config.AdminEmail = "ops@example.com"

	// the in-memory settings start from defaults without an admin address
	if models.GetDirectorySettings().AdminEmail == "" {
		assert.Equal(t, "ops@example.com", svc.AdminEmail())
	}
}
