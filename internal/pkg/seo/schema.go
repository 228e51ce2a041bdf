// Package seo renders structured data for listing pages.
package seo

import (
	"encoding/json"
	"html/template"
	"strings"

	"github.com/ManuelReschke/bizdir/app/models"
)

type postalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress,omitempty"`
	AddressLocality string `json:"addressLocality,omitempty"`
	AddressRegion   string `json:"addressRegion,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
}

type aggregateRating struct {
	Type        string  `json:"@type"`
	RatingValue float64 `json:"ratingValue"`
	ReviewCount int64   `json:"reviewCount"`
	BestRating  int     `json:"bestRating"`
	WorstRating int     `json:"worstRating"`
}

type localBusiness struct {
	Context         string           `json:"@context"`
	Type            string           `json:"@type"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	URL             string           `json:"url"`
	Image           string           `json:"image,omitempty"`
	Telephone       string           `json:"telephone,omitempty"`
	Email           string           `json:"email,omitempty"`
	Address         *postalAddress   `json:"address,omitempty"`
	SameAs          []string         `json:"sameAs,omitempty"`
	OpeningHours    []string         `json:"openingHours,omitempty"`
	AggregateRating *aggregateRating `json:"aggregateRating,omitempty"`
}

// Rating is the approved review aggregate of a listing.
type Rating struct {
	Average    float64
	HasAverage bool
	Count      int64
}

// LocalBusiness returns the JSON-LD document for b. url is absolute.
func LocalBusiness(b *models.Business, url, baseURL string, rating Rating) template.JS {
	doc := localBusiness{
		Context:     "https://schema.org",
		Type:        "LocalBusiness",
		Name:        b.Title,
		Description: firstNonEmpty(b.Excerpt, b.Content),
		URL:         url,
		Telephone:   b.Phone,
		Email:       b.Email,
	}
	if b.ImageURL != "" {
		doc.Image = b.ImageURL
		if strings.HasPrefix(b.ImageURL, "/") {
			doc.Image = strings.TrimRight(baseURL, "/") + b.ImageURL
		}
	}
	if b.Street != "" || b.City != "" || b.Postcode != "" || b.State != "" {
		doc.Address = &postalAddress{
			Type:            "PostalAddress",
			StreetAddress:   b.Street,
			AddressLocality: b.City,
			AddressRegion:   b.State,
			PostalCode:      b.Postcode,
		}
	}
	for _, s := range []string{b.Website, b.Facebook, b.Instagram, b.Twitter, b.LinkedIn} {
		if strings.HasPrefix(s, "http") {
			doc.SameAs = append(doc.SameAs, s)
		}
	}
	for _, day := range b.OpeningHours() {
		doc.OpeningHours = append(doc.OpeningHours, day[0][:2]+" "+day[1])
	}
	if rating.HasAverage && rating.Count > 0 {
		doc.AggregateRating = &aggregateRating{
			Type:        "AggregateRating",
			RatingValue: rating.Average,
			ReviewCount: rating.Count,
			BestRating:  5,
			WorstRating: 1,
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	// json.Marshal escapes <, > and & so the result is safe inside a script tag
	return template.JS(data)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
