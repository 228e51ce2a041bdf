package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	REVIEW_SOURCE_WEBSITE = "website"
	REVIEW_SOURCE_ADMIN   = "admin"
	REVIEW_SOURCE_IMPORT  = "import"
)

// Review is a customer rating. BusinessID is a weak reference without a foreign key.
type Review struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BusinessID    uint      `gorm:"index;not null" json:"business_id" validate:"required"`
	ReviewerName  string    `gorm:"type:varchar(100)" json:"reviewer_name" validate:"required,min=2,max=100"`
	ReviewerEmail string    `gorm:"type:varchar(100)" json:"-" validate:"omitempty,email,max=100"`
	ReviewText    string    `gorm:"type:text" json:"review_text" validate:"required,min=10,max=5000"`
	Rating        int       `gorm:"type:tinyint;not null" json:"rating" validate:"required,min=1,max=5"`
	ReviewDate    time.Time `gorm:"index" json:"review_date"`
	Source        string    `gorm:"type:varchar(50);default:'website'" json:"source"`
	SourceID      string    `gorm:"type:varchar(100)" json:"-"`
	Approved      bool      `gorm:"default:false;index" json:"approved"`
}

func (Review) TableName() string {
	return "lbd_reviews"
}

func (r *Review) Validate() error {
	return validator.New().Struct(r)
}

// Stars renders the rating as filled and empty star characters.
func (r *Review) Stars() string {
	out := make([]rune, 0, 5)
	for i := 1; i <= 5; i++ {
		if i <= r.Rating {
			out = append(out, '★')
		} else {
			out = append(out, '☆')
		}
	}
	return string(out)
}
