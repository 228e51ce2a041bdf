package permalink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/listing"
	"github.com/ManuelReschke/bizdir/internal/pkg/taxonomy"
	"github.com/ManuelReschke/bizdir/internal/pkg/testutil"
)

func TestBusinessURL(t *testing.T) {
	area := &models.Term{Slug: "springfield"}
	cat := models.Term{Slug: "bars"}

	tests := []struct {
		name string
		b    *models.Business
		want string
	}{
		{"nil", nil, ""},
		{"full", &models.Business{Slug: "moes", Area: area, Categories: []models.Term{cat, {Slug: "food"}}}, "/directory/springfield/bars/moes/"},
		{"no area", &models.Business{Slug: "moes", Categories: []models.Term{cat}}, "/business/moes/"},
		{"no category", &models.Business{Slug: "moes", Area: area}, "/business/moes/"},
		{"empty area slug", &models.Business{Slug: "moes", Area: &models.Term{}, Categories: []models.Term{cat}}, "/business/moes/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BusinessURL(tt.b))
		})
	}
}

func TestArchiveURLs(t *testing.T) {
	area := &models.Term{Slug: "springfield"}
	cat := &models.Term{Slug: "bars"}

	assert.Equal(t, "/directory/springfield/", AreaURL(area))
	assert.Equal(t, "/directory/springfield/bars/", CategoryURL(cat, area))
	assert.Equal(t, "/directory/categories/bars/", CategoryURL(cat, nil))
}

type world struct {
	resolver *Resolver
	repos    *repository.Repositories
	terms    *taxonomy.Service
	area     *models.Term
	other    *models.Term
	bars     *models.Term
	food     *models.Term
}

func newWorld(t *testing.T) *world {
	t.Helper()
	repos := repository.NewRepositories(testutil.NewDB(t))
	testutil.NewCache(t)
	terms := taxonomy.NewService(repos.Term, time.Hour)

	w := &world{repos: repos, terms: terms, resolver: NewResolver(terms, repos.Business)}
	var err error
	w.area, err = terms.Create(models.TAXONOMY_AREA, "Springfield", "", "", nil)
	require.NoError(t, err)
	w.other, err = terms.Create(models.TAXONOMY_AREA, "Shelbyville", "", "", nil)
	require.NoError(t, err)
	w.bars, err = terms.Create(models.TAXONOMY_CATEGORY, "Bars", "", "", nil)
	require.NoError(t, err)
	w.food, err = terms.Create(models.TAXONOMY_CATEGORY, "Food", "", "", nil)
	require.NoError(t, err)
	return w
}

func TestResolveArchives(t *testing.T) {
	w := newWorld(t)

	r, err := w.resolver.Area("springfield")
	require.NoError(t, err)
	assert.Equal(t, KindArea, r.Kind)
	assert.Equal(t, w.area.ID, r.Area.ID)

	r, err = w.resolver.AreaCategory("springfield", "bars")
	require.NoError(t, err)
	assert.Equal(t, KindAreaCategory, r.Kind)
	assert.Equal(t, w.bars.ID, r.Category.ID)

	r, err = w.resolver.Category("food")
	require.NoError(t, err)
	assert.Equal(t, KindCategory, r.Kind)
	assert.Nil(t, r.Area)

	for _, tc := range [][2]string{{"ogdenville", "bars"}, {"springfield", "florists"}, {"bars", "springfield"}, {taxonomy.ReservedAreaSlug, "bars"}} {
		_, err := w.resolver.AreaCategory(tc[0], tc[1])
		assert.ErrorIs(t, err, ErrNotFound, "%v", tc)
	}
	_, err = w.resolver.Area("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveBusiness(t *testing.T) {
	w := newWorld(t)
	b := &models.Business{Title: "Moe's Tavern"}
	require.NoError(t, listing.Create(w.repos, b, w.area.ID, []uint{w.bars.ID, w.food.ID}))

	r, err := w.resolver.Business("springfield", "bars", "moe-s-tavern")
	require.NoError(t, err)
	assert.Equal(t, KindBusiness, r.Kind)
	assert.Equal(t, b.ID, r.Business.ID)
	assert.Empty(t, r.Canonical)

	// secondary category and another valid area both point to the canonical link
	for _, path := range [][2]string{{"springfield", "food"}, {"shelbyville", "bars"}} {
		r, err = w.resolver.Business(path[0], path[1], "moe-s-tavern")
		require.NoError(t, err)
		assert.Equal(t, "/directory/springfield/bars/moe-s-tavern/", r.Canonical)
	}

	_, err = w.resolver.Business("ogdenville", "bars", "moe-s-tavern")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = w.resolver.Business("springfield", "bars", "krusty-burger")
	assert.ErrorIs(t, err, ErrNotFound)

	r, err = w.resolver.BusinessBySlug("Moe-S-Tavern")
	require.NoError(t, err)
	assert.Equal(t, "/directory/springfield/bars/moe-s-tavern/", r.Canonical)
}

func TestFlatLinkWithoutTerms(t *testing.T) {
	w := newWorld(t)
	b := &models.Business{Title: "Bait Shop"}
	require.NoError(t, listing.Create(w.repos, b, 0, nil))

	r, err := w.resolver.BusinessBySlug("bait-shop")
	require.NoError(t, err)
	assert.Empty(t, r.Canonical)
	assert.Equal(t, "/business/bait-shop/", BusinessURL(r.Business))
}

func TestDraftsDoNotResolve(t *testing.T) {
	w := newWorld(t)
	b := &models.Business{Title: "Secret Lab", Status: models.BUSINESS_STATUS_DRAFT}
	require.NoError(t, listing.Create(w.repos, b, w.area.ID, []uint{w.bars.ID}))

	_, err := w.resolver.Business("springfield", "bars", "secret-lab")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = w.resolver.BusinessBySlug("secret-lab")
	assert.ErrorIs(t, err, ErrNotFound)
}
