package taxonomy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/testutil"
)

func newService(t *testing.T) (*Service, repository.TermRepository) {
	t.Helper()
	repo := repository.NewRepositories(testutil.NewDB(t)).Term
	testutil.NewCache(t)
	return NewService(repo, time.Hour), repo
}

func TestCreateAssignsUniqueSlugs(t *testing.T) {
	s, _ := newService(t)

	first, err := s.Create(models.TAXONOMY_CATEGORY, "Cafés & Bars", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "cafes-and-bars", first.Slug)

	second, err := s.Create(models.TAXONOMY_CATEGORY, "Cafes and Bars", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "cafes-and-bars-2", second.Slug)

	// slugs are unique per taxonomy only
	area, err := s.Create(models.TAXONOMY_AREA, "Cafes and Bars", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "cafes-and-bars", area.Slug)

	explicit, err := s.Create(models.TAXONOMY_AREA, "North Haverbrook", "NH", " monorail town ", nil)
	require.NoError(t, err)
	assert.Equal(t, "nh", explicit.Slug)
	assert.Equal(t, "monorail town", explicit.Description)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	s, _ := newService(t)

	_, err := s.Create("post_tag", "News", "", "", nil)
	assert.ErrorIs(t, err, ErrInvalidTaxonomy)

	_, err = s.Create(models.TAXONOMY_AREA, "   ", "", "", nil)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = s.Terms("post_tag")
	assert.ErrorIs(t, err, ErrInvalidTaxonomy)
}

func TestReservedAreaSlug(t *testing.T) {
	s, _ := newService(t)

	area, err := s.Create(models.TAXONOMY_AREA, "Categories", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "categories-area", area.Slug)

	cat, err := s.Create(models.TAXONOMY_CATEGORY, "Categories", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "categories", cat.Slug)

	_, err = s.BySlug(models.TAXONOMY_AREA, ReservedAreaSlug)
	assert.ErrorIs(t, err, ErrTermNotFound)

	got, err := s.BySlug(models.TAXONOMY_AREA, " Categories-Area ")
	require.NoError(t, err)
	assert.Equal(t, area.ID, got.ID)
}

func TestTermsAreCachedUntilFlush(t *testing.T) {
	s, repo := newService(t)

	_, err := s.Create(models.TAXONOMY_AREA, "Springfield", "", "", nil)
	require.NoError(t, err)
	terms, err := s.Terms(models.TAXONOMY_AREA)
	require.NoError(t, err)
	require.Len(t, terms, 1)

	// a write that bypasses the service is invisible until the cache is flushed
	require.NoError(t, repo.Create(&models.Term{Taxonomy: models.TAXONOMY_AREA, Name: "Shelbyville", Slug: "shelbyville"}))
	_, err = s.BySlug(models.TAXONOMY_AREA, "shelbyville")
	assert.ErrorIs(t, err, ErrTermNotFound)

	s.Flush()
	got, err := s.BySlug(models.TAXONOMY_AREA, "shelbyville")
	require.NoError(t, err)
	assert.Equal(t, "Shelbyville", got.Name)

	byID, err := s.ByID(models.TAXONOMY_AREA, got.ID)
	require.NoError(t, err)
	assert.Equal(t, "shelbyville", byID.Slug)
}

func TestEnsure(t *testing.T) {
	s, _ := newService(t)

	term, created, err := s.Ensure(models.TAXONOMY_CATEGORY, " Plumbers ", nil)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := s.Ensure(models.TAXONOMY_CATEGORY, "Plumbers", nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, term.ID, again.ID)

	_, _, err = s.Ensure(models.TAXONOMY_CATEGORY, "", nil)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestUpdateAndDelete(t *testing.T) {
	s, _ := newService(t)

	a, err := s.Create(models.TAXONOMY_CATEGORY, "Florists", "", "", nil)
	require.NoError(t, err)
	b, err := s.Create(models.TAXONOMY_CATEGORY, "Garden", "", "", nil)
	require.NoError(t, err)

	b.Name = "Florists"
	b.Slug = ""
	require.NoError(t, s.Update(b))
	assert.Equal(t, "florists-2", b.Slug)

	_, err = s.BySlug(models.TAXONOMY_CATEGORY, "garden")
	assert.ErrorIs(t, err, ErrTermNotFound)

	require.NoError(t, s.Delete(a.ID))
	_, err = s.BySlug(models.TAXONOMY_CATEGORY, "florists")
	assert.ErrorIs(t, err, ErrTermNotFound)

	area, err := s.Create(models.TAXONOMY_AREA, "Downtown", "", "", nil)
	require.NoError(t, err)
	area.Slug = ReservedAreaSlug
	require.NoError(t, s.Update(area))
	assert.Equal(t, "categories-area", area.Slug)
	got, err := s.BySlug(models.TAXONOMY_AREA, "categories-area")
	require.NoError(t, err)
	assert.Equal(t, area.ID, got.ID)
}
