package models

import (
	"strconv"
	"strings"
)

// BusinessField maps one flat listing attribute to its CSV column / form key.
// Owner-editable fields are the ones a revision may change.
type BusinessField struct {
	Key           string
	Label         string
	Aliases       []string
	OwnerEditable bool
	Get           func(b *Business) string
	Set           func(b *Business, v string)
}

var businessFields = []BusinessField{
	{Key: "business_name", Label: "Business name", Aliases: []string{"name", "title"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Title }, Set: func(b *Business, v string) { b.Title = v }},
	{Key: "business_description", Label: "Description", Aliases: []string{"description", "content"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Content }, Set: func(b *Business, v string) { b.Content = v }},
	{Key: "business_excerpt", Label: "Short description", Aliases: []string{"excerpt"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Excerpt }, Set: func(b *Business, v string) { b.Excerpt = v }},
	{Key: "business_phone", Label: "Phone", Aliases: []string{"phone"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Phone }, Set: func(b *Business, v string) { b.Phone = v }},
	{Key: "business_email", Label: "Email", Aliases: []string{"email"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Email }, Set: func(b *Business, v string) { b.Email = v }},
	{Key: "business_website", Label: "Website", Aliases: []string{"website", "url"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Website }, Set: func(b *Business, v string) { b.Website = v }},
	{Key: "business_street_address", Label: "Street address", Aliases: []string{"street_address", "street", "address"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Street }, Set: func(b *Business, v string) { b.Street = v }},
	{Key: "business_city", Label: "City", Aliases: []string{"city"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.City }, Set: func(b *Business, v string) { b.City = v }},
	{Key: "business_state", Label: "State", Aliases: []string{"state"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.State }, Set: func(b *Business, v string) { b.State = v }},
	{Key: "business_zip", Label: "Postcode", Aliases: []string{"zip", "postcode", "postal_code"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Postcode }, Set: func(b *Business, v string) { b.Postcode = v }},
	{Key: "business_facebook", Label: "Facebook", Aliases: []string{"facebook"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Facebook }, Set: func(b *Business, v string) { b.Facebook = v }},
	{Key: "business_instagram", Label: "Instagram", Aliases: []string{"instagram"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Instagram }, Set: func(b *Business, v string) { b.Instagram = v }},
	{Key: "business_twitter", Label: "Twitter", Aliases: []string{"twitter"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Twitter }, Set: func(b *Business, v string) { b.Twitter = v }},
	{Key: "business_linkedin", Label: "LinkedIn", Aliases: []string{"linkedin"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.LinkedIn }, Set: func(b *Business, v string) { b.LinkedIn = v }},
	{Key: "business_hours_monday", Label: "Hours Monday", Aliases: []string{"hours_monday"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.HoursMonday }, Set: func(b *Business, v string) { b.HoursMonday = v }},
	{Key: "business_hours_tuesday", Label: "Hours Tuesday", Aliases: []string{"hours_tuesday"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.HoursTuesday }, Set: func(b *Business, v string) { b.HoursTuesday = v }},
	{Key: "business_hours_wednesday", Label: "Hours Wednesday", Aliases: []string{"hours_wednesday"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.HoursWednesday }, Set: func(b *Business, v string) { b.HoursWednesday = v }},
	{Key: "business_hours_thursday", Label: "Hours Thursday", Aliases: []string{"hours_thursday"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.HoursThursday }, Set: func(b *Business, v string) { b.HoursThursday = v }},
	{Key: "business_hours_friday", Label: "Hours Friday", Aliases: []string{"hours_friday"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.HoursFriday }, Set: func(b *Business, v string) { b.HoursFriday = v }},
	{Key: "business_hours_saturday", Label: "Hours Saturday", Aliases: []string{"hours_saturday"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.HoursSaturday }, Set: func(b *Business, v string) { b.HoursSaturday = v }},
	{Key: "business_hours_sunday", Label: "Hours Sunday", Aliases: []string{"hours_sunday"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.HoursSunday }, Set: func(b *Business, v string) { b.HoursSunday = v }},
	{Key: "business_payment_methods", Label: "Payment methods", Aliases: []string{"payment_methods"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.PaymentMethods }, Set: func(b *Business, v string) { b.PaymentMethods = v }},
	{Key: "business_parking", Label: "Parking", Aliases: []string{"parking"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Parking }, Set: func(b *Business, v string) { b.Parking = v }},
	{Key: "business_amenities", Label: "Amenities", Aliases: []string{"amenities"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Amenities }, Set: func(b *Business, v string) { b.Amenities = v }},
	{Key: "business_accessibility", Label: "Accessibility", Aliases: []string{"accessibility"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.Accessibility }, Set: func(b *Business, v string) { b.Accessibility = v }},
	{Key: "business_premium", Label: "Premium", Aliases: []string{"premium"},
		Get: func(b *Business) string { return formatFlag(b.Premium) }, Set: func(b *Business, v string) { b.Premium = ParseFlag(v) }},
	{Key: "business_owner_name", Label: "Owner name", Aliases: []string{"owner_name"}, OwnerEditable: true,
		Get: func(b *Business) string { return b.OwnerName }, Set: func(b *Business, v string) { b.OwnerName = v }},
	{Key: "business_family_owned", Label: "Family owned", Aliases: []string{"family_owned"}, OwnerEditable: true,
		Get: func(b *Business) string { return formatFlag(b.FamilyOwned) }, Set: func(b *Business, v string) { b.FamilyOwned = ParseFlag(v) }},
	{Key: "business_women_owned", Label: "Women owned", Aliases: []string{"women_owned"}, OwnerEditable: true,
		Get: func(b *Business) string { return formatFlag(b.WomenOwned) }, Set: func(b *Business, v string) { b.WomenOwned = ParseFlag(v) }},
	{Key: "business_minority_owned", Label: "Minority owned", Aliases: []string{"minority_owned"}, OwnerEditable: true,
		Get: func(b *Business) string { return formatFlag(b.MinorityOwned) }, Set: func(b *Business, v string) { b.MinorityOwned = ParseFlag(v) }},
	{Key: "business_google_rating", Label: "Google rating", Aliases: []string{"google_rating", "rating"},
		Get: func(b *Business) string {
			if b.GoogleRating == 0 {
				return ""
			}
			return strconv.FormatFloat(b.GoogleRating, 'f', 1, 64)
		},
		Set: func(b *Business, v string) {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f >= 0 && f <= 5 {
				b.GoogleRating = f
			}
		}},
	{Key: "business_google_review_count", Label: "Google review count", Aliases: []string{"google_review_count", "review_count"},
		Get: func(b *Business) string {
			if b.GoogleReviewCount == 0 {
				return ""
			}
			return strconv.Itoa(b.GoogleReviewCount)
		},
		Set: func(b *Business, v string) {
			if n, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(v, ",", ""))); err == nil && n >= 0 {
				b.GoogleReviewCount = n
			}
		}},
	{Key: "business_google_place_id", Label: "Google place ID", Aliases: []string{"google_place_id", "place_id"},
		Get: func(b *Business) string { return b.GooglePlaceID }, Set: func(b *Business, v string) { b.GooglePlaceID = v }},
}

var businessFieldIndex = func() map[string]*BusinessField {
	idx := make(map[string]*BusinessField, len(businessFields)*3)
	for i := range businessFields {
		f := &businessFields[i]
		idx[f.Key] = f
		for _, a := range f.Aliases {
			idx[a] = f
		}
	}
	return idx
}()

// BusinessFields returns the flat listing fields in display and export order.
func BusinessFields() []BusinessField {
	return businessFields
}

// LookupBusinessField resolves a canonical key or alias (case-insensitive).
func LookupBusinessField(key string) (*BusinessField, bool) {
	f, ok := businessFieldIndex[NormalizeColumn(key)]
	return f, ok
}

// NormalizeColumn lowercases a header and turns spaces and dashes into underscores.
func NormalizeColumn(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

// FieldValues returns all flat field values of b keyed by canonical key.
func (b *Business) FieldValues() map[string]string {
	out := make(map[string]string, len(businessFields))
	for _, f := range businessFields {
		out[f.Key] = f.Get(b)
	}
	return out
}

// ApplyFields sets every recognised key of values on b and returns the keys applied.
func (b *Business) ApplyFields(values map[string]string) []string {
	applied := make([]string, 0, len(values))
	for k, v := range values {
		f, ok := LookupBusinessField(k)
		if !ok {
			continue
		}
		f.Set(b, strings.TrimSpace(v))
		applied = append(applied, f.Key)
	}
	return applied
}

// ParseFlag interprets the usual spreadsheet truthy values.
func ParseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "x", "on":
		return true
	}
	return false
}

func formatFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
