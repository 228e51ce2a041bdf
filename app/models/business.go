package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	BUSINESS_STATUS_PUBLISH = "publish"
	BUSINESS_STATUS_DRAFT   = "draft"
)

// Business is a directory listing. Trashed listings keep their row (soft delete);
// the duplicate manager removes them permanently.
type Business struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"type:varchar(255);index" json:"title" validate:"required,min=2,max=255"`
	Slug       string `gorm:"uniqueIndex;type:varchar(191)" json:"slug"`
	Content    string `gorm:"type:text" json:"content"`
	Excerpt    string `gorm:"type:text" json:"excerpt"`
	Status     string `gorm:"type:varchar(20);default:'publish';index" json:"status" validate:"oneof=publish draft"`
	AreaID     *uint  `gorm:"index;default:null" json:"area_id,omitempty"`
	Area       *Term  `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	Categories []Term `gorm:"many2many:business_categories;" json:"categories,omitempty"`

	Phone    string `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Email    string `gorm:"type:varchar(200)" json:"email,omitempty" validate:"omitempty,email"`
	Website  string `gorm:"type:varchar(255)" json:"website,omitempty"`
	Street   string `gorm:"type:varchar(255);index" json:"street,omitempty"`
	City     string `gorm:"type:varchar(120)" json:"city,omitempty"`
	State    string `gorm:"type:varchar(120)" json:"state,omitempty"`
	Postcode string `gorm:"type:varchar(20);index" json:"postcode,omitempty"`

	Facebook  string `gorm:"type:varchar(255)" json:"facebook,omitempty"`
	Instagram string `gorm:"type:varchar(255)" json:"instagram,omitempty"`
	Twitter   string `gorm:"type:varchar(255)" json:"twitter,omitempty"`
	LinkedIn  string `gorm:"type:varchar(255)" json:"linkedin,omitempty"`

	HoursMonday    string `gorm:"type:varchar(100)" json:"hours_monday,omitempty"`
	HoursTuesday   string `gorm:"type:varchar(100)" json:"hours_tuesday,omitempty"`
	HoursWednesday string `gorm:"type:varchar(100)" json:"hours_wednesday,omitempty"`
	HoursThursday  string `gorm:"type:varchar(100)" json:"hours_thursday,omitempty"`
	HoursFriday    string `gorm:"type:varchar(100)" json:"hours_friday,omitempty"`
	HoursSaturday  string `gorm:"type:varchar(100)" json:"hours_saturday,omitempty"`
	HoursSunday    string `gorm:"type:varchar(100)" json:"hours_sunday,omitempty"`

	PaymentMethods string `gorm:"type:varchar(255)" json:"payment_methods,omitempty"`
	Parking        string `gorm:"type:varchar(255)" json:"parking,omitempty"`
	Amenities      string `gorm:"type:text" json:"amenities,omitempty"`
	Accessibility  string `gorm:"type:text" json:"accessibility,omitempty"`
	Premium        bool   `gorm:"default:false" json:"premium"`

	ImageURL       string `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	ImageSourceURL string `gorm:"type:varchar(191);index" json:"-"`

	OwnerUserID   *uint  `gorm:"index;default:null" json:"-"`
	OwnerName     string `gorm:"type:varchar(150)" json:"owner_name,omitempty"`
	OwnerEmail    string `gorm:"type:varchar(200)" json:"-"`
	OwnerPhone    string `gorm:"type:varchar(50)" json:"-"`
	FamilyOwned   bool   `gorm:"default:false" json:"family_owned"`
	WomenOwned    bool   `gorm:"default:false" json:"women_owned"`
	MinorityOwned bool   `gorm:"default:false" json:"minority_owned"`

	GoogleRating      float64 `gorm:"default:0" json:"google_rating,omitempty"`
	GoogleReviewCount int     `gorm:"default:0" json:"google_review_count,omitempty"`
	GooglePlaceID     string  `gorm:"type:varchar(191)" json:"google_place_id,omitempty"`

	Verified       bool       `gorm:"default:false;index" json:"verified"`
	Claimed        bool       `gorm:"default:false;index" json:"claimed"`
	ClaimedAt      *time.Time `gorm:"type:timestamp;default:null" json:"claimed_at,omitempty"`
	LastRevisionAt *time.Time `gorm:"type:timestamp;default:null" json:"last_revision_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Business) TableName() string {
	return "businesses"
}

func (b *Business) Validate() error {
	return validator.New().Struct(b)
}

// IsOwnedBy reports whether userID is the approved owner of the listing.
func (b *Business) IsOwnedBy(userID uint) bool {
	return b.Claimed && b.OwnerUserID != nil && *b.OwnerUserID == userID
}

// IsClaimable reports whether a new claim may be opened for the listing.
func (b *Business) IsClaimable() bool {
	return !b.Verified && !b.Claimed
}

// PrimaryCategory returns the first assigned category or nil.
func (b *Business) PrimaryCategory() *Term {
	if len(b.Categories) == 0 {
		return nil
	}
	return &b.Categories[0]
}

// FullAddress joins the address parts that are set.
func (b *Business) FullAddress() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{b.Street, b.City, b.State, b.Postcode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// OpeningHours returns the configured hours keyed by English weekday name, in week order.
func (b *Business) OpeningHours() [][2]string {
	days := [][2]string{
		{"Monday", b.HoursMonday},
		{"Tuesday", b.HoursTuesday},
		{"Wednesday", b.HoursWednesday},
		{"Thursday", b.HoursThursday},
		{"Friday", b.HoursFriday},
		{"Saturday", b.HoursSaturday},
		{"Sunday", b.HoursSunday},
	}
	out := days[:0]
	for _, d := range days {
		if strings.TrimSpace(d[1]) != "" {
			out = append(out, d)
		}
	}
	return out
}
