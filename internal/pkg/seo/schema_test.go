package seo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/bizdir/app/models"
)

func decode(t *testing.T, js string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(js), &out))
	return out
}

func TestLocalBusinessWithRating(t *testing.T) {
	b := &models.Business{
		Title:       "Joe's <Plumbing>",
		Excerpt:     "Pipes fixed fast",
		Phone:       "555-1234",
		Street:      "1 Main St",
		City:        "Springfield",
		Postcode:    "12345",
		Website:     "https://joe.example.com",
		Facebook:    "joes-page",
		ImageURL:    "/uploads/businesses/a.jpg",
		HoursMonday: "09:00-17:00",
	}
	js := LocalBusiness(b, "https://dir.example.com/directory/springfield/plumbers/joes-plumbing/",
		"https://dir.example.com/", Rating{Average: 4.5, HasAverage: true, Count: 2})

	assert.NotContains(t, string(js), "<Plumbing>")
	doc := decode(t, string(js))
	assert.Equal(t, "LocalBusiness", doc["@type"])
	assert.Equal(t, "Joe's <Plumbing>", doc["name"])
	assert.Equal(t, "https://dir.example.com/uploads/businesses/a.jpg", doc["image"])
	assert.Equal(t, []interface{}{"https://joe.example.com"}, doc["sameAs"])
	assert.Equal(t, []interface{}{"Mo 09:00-17:00"}, doc["openingHours"])

	rating := doc["aggregateRating"].(map[string]interface{})
	assert.Equal(t, 4.5, rating["ratingValue"])
	assert.Equal(t, float64(2), rating["reviewCount"])

	addr := doc["address"].(map[string]interface{})
	assert.Equal(t, "Springfield", addr["addressLocality"])
}

func TestLocalBusinessWithoutReviews(t *testing.T) {
	doc := decode(t, string(LocalBusiness(&models.Business{Title: "Quiet Shop"}, "https://x/", "https://x", Rating{})))
	_, hasRating := doc["aggregateRating"]
	assert.False(t, hasRating)
	_, hasAddress := doc["address"]
	assert.False(t, hasAddress)
}
