package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/bizdir/app/models"
)

func TestBusinessCardLinks(t *testing.T) {
	area := &models.Term{ID: 1, Name: "Springfield", Slug: "springfield", Taxonomy: models.TAXONOMY_AREA}
	b := &models.Business{
		ID:         7,
		Title:      "Joe's Bakery",
		Slug:       "joes-bakery",
		Excerpt:    "Bread",
		City:       "Springfield",
		ImageURL:   "/uploads/businesses/a.jpg",
		Area:       area,
		Categories: []models.Term{{ID: 2, Name: "Bakeries", Slug: "bakeries"}},
	}

	card := NewBusinessCard(b, area)
	assert.Equal(t, "/directory/springfield/bakeries/joes-bakery/", card.URL)
	assert.Equal(t, "/uploads/businesses/a_thumb.jpg", card.Thumbnail)
	assert.Equal(t, "/directory/springfield/bakeries/", card.Categories[0].URL)
	assert.Equal(t, "/directory/springfield/", card.Area.URL)

	unscoped := NewBusinessCard(b, nil)
	assert.Equal(t, "/directory/categories/bakeries/", unscoped.Categories[0].URL)
}

func TestBusinessCardWithoutTerms(t *testing.T) {
	card := NewBusinessCard(&models.Business{Title: "Loose", Slug: "loose"}, nil)
	assert.Equal(t, "/business/loose/", card.URL)
	assert.Nil(t, card.Area)
	assert.Empty(t, card.Categories)
}
