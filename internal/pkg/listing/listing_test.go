package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/testutil"
)

func seed(t *testing.T) (*repository.Repositories, *models.Term, []models.Term) {
	t.Helper()
	repos := repository.NewRepositories(testutil.NewDB(t))
	area := &models.Term{Taxonomy: models.TAXONOMY_AREA, Name: "Springfield", Slug: "springfield"}
	require.NoError(t, repos.Term.Create(area))
	cats := []models.Term{
		{Taxonomy: models.TAXONOMY_CATEGORY, Name: "Bars", Slug: "bars"},
		{Taxonomy: models.TAXONOMY_CATEGORY, Name: "Food", Slug: "food"},
	}
	for i := range cats {
		require.NoError(t, repos.Term.Create(&cats[i]))
	}
	return repos, area, cats
}

func TestCreate(t *testing.T) {
	repos, area, cats := seed(t)

	b := &models.Business{Title: "  Moe's Tavern "}
	require.NoError(t, Create(repos, b, area.ID, []uint{cats[1].ID, cats[0].ID, cats[1].ID, 0}))
	assert.Equal(t, "Moe's Tavern", b.Title)
	assert.Equal(t, "moe-s-tavern", b.Slug)
	assert.Equal(t, models.BUSINESS_STATUS_PUBLISH, b.Status)
	require.NotNil(t, b.Area)
	assert.Equal(t, area.ID, b.Area.ID)

	got, err := repos.Business.GetByID(b.ID)
	require.NoError(t, err)
	require.Len(t, got.Categories, 2)
	assert.Equal(t, "bars", got.PrimaryCategory().Slug)
}

func TestCreateKeepsSlugsUnique(t *testing.T) {
	repos, _, _ := seed(t)

	first := &models.Business{Title: "Kwik-E-Mart"}
	require.NoError(t, Create(repos, first, 0, nil))
	require.NoError(t, repos.Business.Trash(first.ID))

	// trashed listings keep their slug
	second := &models.Business{Title: "Kwik E Mart"}
	require.NoError(t, Create(repos, second, 0, nil))
	assert.Equal(t, "kwik-e-mart-2", second.Slug)

	explicit := &models.Business{Title: "Anything", Slug: "Kwik E Mart"}
	require.NoError(t, Create(repos, explicit, 0, nil))
	assert.Equal(t, "kwik-e-mart-3", explicit.Slug)
}

func TestCreateRejectsWrongTaxonomy(t *testing.T) {
	repos, area, cats := seed(t)

	err := Create(repos, &models.Business{Title: "Lard Lad"}, cats[0].ID, nil)
	assert.ErrorIs(t, err, ErrInvalidArea)

	err = Create(repos, &models.Business{Title: "Lard Lad"}, 0, []uint{area.ID})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	err = Create(repos, &models.Business{Title: "Lard Lad"}, 0, []uint{999})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	err = Create(repos, &models.Business{Title: "   "}, 0, nil)
	assert.Error(t, err)

	n, err := repos.Business.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSave(t *testing.T) {
	repos, area, cats := seed(t)
	b := &models.Business{Title: "Moe's Tavern"}
	require.NoError(t, Create(repos, b, area.ID, []uint{cats[0].ID}))

	b.Phone = "555-0142"
	require.NoError(t, Save(repos, b, area.ID, nil))
	got, err := repos.Business.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0142", got.Phone)
	require.Len(t, got.Categories, 1, "nil category ids keep the links")

	require.NoError(t, Save(repos, got, 0, []uint{cats[1].ID}))
	got, err = repos.Business.GetByID(b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AreaID)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "food", got.Categories[0].Slug)
}
