// Package viewmodel holds the display data of directory pages.
package viewmodel

import (
	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/internal/pkg/permalink"
	"github.com/ManuelReschke/bizdir/internal/pkg/sideload"
	"github.com/ManuelReschke/bizdir/internal/pkg/utils"
)

const excerptLength = 160

// TermLink is an area or category rendered as a link.
type TermLink struct {
	ID    uint
	Name  string
	Slug  string
	URL   string
	Count int64
}

// BusinessCard is a listing in an archive or on the home page.
type BusinessCard struct {
	ID         uint
	Title      string
	URL        string
	Excerpt    string
	Address    string
	Phone      string
	Thumbnail  string
	Area       *TermLink
	Categories []TermLink
	Premium    bool
	Verified   bool
	Claimed    bool
}

// AreaLinks links area archives.
func AreaLinks(areas []models.Term) []TermLink {
	links := make([]TermLink, 0, len(areas))
	for i := range areas {
		a := &areas[i]
		links = append(links, TermLink{ID: a.ID, Name: a.Name, Slug: a.Slug, URL: permalink.AreaURL(a), Count: a.Count})
	}
	return links
}

// CategoryLinks links category archives inside area when it is set and across
// all areas otherwise.
func CategoryLinks(categories []models.Term, area *models.Term) []TermLink {
	links := make([]TermLink, 0, len(categories))
	for i := range categories {
		cat := &categories[i]
		links = append(links, TermLink{ID: cat.ID, Name: cat.Name, Slug: cat.Slug, URL: permalink.CategoryURL(cat, area), Count: cat.Count})
	}
	return links
}

// NewBusinessCard builds the card of b. areaContext scopes the category links.
func NewBusinessCard(b *models.Business, areaContext *models.Term) BusinessCard {
	card := BusinessCard{
		ID:        b.ID,
		Title:     b.Title,
		URL:       permalink.BusinessURL(b),
		Excerpt:   utils.Truncate(firstNonEmpty(b.Excerpt, b.Content), excerptLength),
		Address:   b.FullAddress(),
		Phone:     b.Phone,
		Thumbnail: sideload.ThumbnailURL(b.ImageURL),
		Premium:   b.Premium,
		Verified:  b.Verified,
		Claimed:   b.Claimed,
	}
	if b.Area != nil {
		card.Area = &TermLink{ID: b.Area.ID, Name: b.Area.Name, Slug: b.Area.Slug, URL: permalink.AreaURL(b.Area)}
	}
	card.Categories = CategoryLinks(b.Categories, areaContext)
	return card
}

// BusinessCards maps NewBusinessCard over businesses.
func BusinessCards(businesses []models.Business, areaContext *models.Term) []BusinessCard {
	cards := make([]BusinessCard, 0, len(businesses))
	for i := range businesses {
		cards = append(cards, NewBusinessCard(&businesses[i], areaContext))
	}
	return cards
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
