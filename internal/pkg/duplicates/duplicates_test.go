package duplicates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/testutil"
)

func TestGroupRowsFlagsOldest(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []Row{
		{ID: 7, Title: "Bakery", Postcode: "10115", CreatedAt: day},
		{ID: 3, Title: "bakery ", Postcode: "10115", CreatedAt: day.Add(time.Hour)},
		{ID: 9, Title: "Bakery", Postcode: "10117", CreatedAt: day},
		{ID: 4, Title: "Cafe", Postcode: "10115", CreatedAt: day},
		{ID: 5, Title: "Cafe", Postcode: "10115", CreatedAt: day.Add(time.Hour)},
		{ID: 6, Title: "Cafe", Postcode: "10115", CreatedAt: day.Add(2 * time.Hour)},
	}

	groups := GroupRows(rows, ModeTitlePostcode)
	require.Len(t, groups, 2, "singletons are dropped")

	assert.Equal(t, "bakery | 10115", groups[0].Key)
	require.Len(t, groups[0].Rows, 2)
	assert.True(t, groups[0].Rows[0].Oldest)
	assert.False(t, groups[0].Rows[0].Selected)
	assert.Equal(t, uint(7), groups[0].Rows[0].ID)
	assert.True(t, groups[0].Rows[1].Selected)

	require.Len(t, groups[1].Rows, 3)
	for _, r := range groups[1].Rows[1:] {
		assert.False(t, r.Oldest)
		assert.True(t, r.Selected)
	}

	titleOnly := GroupRows(rows[:3], ModeTitle)
	require.Len(t, titleOnly, 1)
	assert.Len(t, titleOnly[0].Rows, 3)
}

func TestGroupRowsIgnoresInputOrder(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// an accent insensitive collation returns these interleaved by age
	rows := []Row{
		{ID: 1, Title: "Cafe", CreatedAt: day},
		{ID: 2, Title: "Café", CreatedAt: day.Add(time.Hour)},
		{ID: 3, Title: "CAFE ", CreatedAt: day.Add(2 * time.Hour)},
		{ID: 4, Title: "cafe", CreatedAt: day.Add(-time.Hour)},
	}

	groups := GroupRows(rows, ModeTitle)
	require.Len(t, groups, 1)
	assert.Equal(t, "cafe", groups[0].Key)
	require.Len(t, groups[0].Rows, 3)
	assert.Equal(t, uint(4), groups[0].Rows[0].ID)
	assert.True(t, groups[0].Rows[0].Oldest)
	assert.Equal(t, uint(1), groups[0].Rows[1].ID)
	assert.Equal(t, uint(3), groups[0].Rows[2].ID)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeTitlePostcode, m)

	m, err = ParseMode("title_postcode_street")
	require.NoError(t, err)
	assert.Equal(t, ModeTitlePostcodeStreet, m)

	_, err = ParseMode("zip")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestScanAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mk := func(title, slug, postcode, street string, age int) *models.Business {
		b := &models.Business{
			Title:     title,
			Slug:      slug,
			Postcode:  postcode,
			Street:    street,
			Status:    models.BUSINESS_STATUS_PUBLISH,
			CreatedAt: base.Add(time.Duration(age) * time.Hour),
		}
		require.NoError(t, repos.Business.Create(b))
		return b
	}
	original := mk("Joe's Plumbing", "joes-plumbing", "12345", "Main St 1", 0)
	copy1 := mk("joe's plumbing", "joes-plumbing-2", "12345", "Main Street 1", 2)
	copy2 := mk("Joe's Plumbing", "joes-plumbing-3", "12345", "Main St 1", 1)
	mk("Joe's Plumbing", "joes-plumbing-4", "", "", 3)
	mk("Other", "other", "12345", "Main St 1", 0)

	svc := NewService(repos.Business)
	deleted := false
	svc.OnDeleted = func() { deleted = true }

	groups, err := svc.Scan(context.Background(), ModeTitlePostcode)
	require.NoError(t, err)
	require.Len(t, groups, 1, "rows with an empty postcode are not grouped")
	require.Len(t, groups[0].Rows, 3)
	assert.Equal(t, original.ID, groups[0].Rows[0].ID)
	assert.True(t, groups[0].Rows[0].Oldest)
	assert.Equal(t, copy2.ID, groups[0].Rows[1].ID)
	assert.Equal(t, copy1.ID, groups[0].Rows[2].ID)

	groups, err = svc.Scan(context.Background(), ModeTitlePostcodeStreet)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Rows, 2, "street differs for one copy")

	groups, err = svc.Scan(context.Background(), ModeTitle)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Rows, 4)

	_, err = svc.Delete(context.Background(), []uint{copy1.ID}, false)
	assert.ErrorIs(t, err, ErrNotConfirmed)

	n, err := svc.Delete(context.Background(), []uint{copy1.ID, copy2.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, deleted)

	_, err = repos.Business.GetByIDUnscoped(copy1.ID)
	assert.Error(t, err, "deletion is permanent")
}
