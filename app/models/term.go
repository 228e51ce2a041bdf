package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	TAXONOMY_AREA     = "business_area"
	TAXONOMY_CATEGORY = "business_category"
)

// Term is an entry of one of the two directory taxonomies (areas and categories).
// Slugs are unique per taxonomy.
type Term struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Taxonomy    string    `gorm:"type:varchar(32);uniqueIndex:idx_terms_taxonomy_slug;index" json:"taxonomy" validate:"required,oneof=business_area business_category"`
	Name        string    `gorm:"type:varchar(200)" json:"name" validate:"required,min=1,max=200"`
	Slug        string    `gorm:"type:varchar(191);uniqueIndex:idx_terms_taxonomy_slug" json:"slug" validate:"required,max=191"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ParentID    *uint     `gorm:"index;default:null" json:"parent_id,omitempty"`
	Count       int64     `gorm:"-" json:"count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Term) TableName() string {
	return "terms"
}

func (t *Term) Validate() error {
	return validator.New().Struct(t)
}

func (t *Term) IsArea() bool {
	return t.Taxonomy == TAXONOMY_AREA
}
