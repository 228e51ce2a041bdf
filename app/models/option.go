package models

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	OPTION_VERSION               = "lbd_version"
	OPTION_FLUSH_REWRITE_RULES   = "lbd_flush_rewrite_rules"
	OPTION_CATEGORY_MAPPING_PREF = "lbd_category_mapping_"

	OPTION_SITE_TITLE          = "site_title"
	OPTION_SITE_DESCRIPTION    = "site_description"
	OPTION_SUBMISSIONS_ENABLED = "submissions_enabled"
	OPTION_REVIEWS_ENABLED     = "reviews_enabled"
	OPTION_ADMIN_EMAIL         = "admin_email"
)

// Option is a long lived key/value pair. Category mapping overrides, the schema
// version marker and the directory settings all live here.
type Option struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:option_key;size:191;not null;uniqueIndex" json:"key" validate:"required,min=1,max=191"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Option) TableName() string {
	return "options"
}

// DirectorySettings are the admin editable settings.
type DirectorySettings struct {
	SiteTitle          string `json:"site_title" validate:"required,min=1,max=255"`
	SiteDescription    string `json:"site_description" validate:"max=500"`
	AdminEmail         string `json:"admin_email" validate:"omitempty,email"`
	SubmissionsEnabled bool   `json:"submissions_enabled"`
	ReviewsEnabled     bool   `json:"reviews_enabled"`
}

var (
	directorySettings *DirectorySettings
	settingsMu        sync.RWMutex
)

func defaultDirectorySettings() *DirectorySettings {
	return &DirectorySettings{
		SiteTitle:          "Local Business Directory",
		SiteDescription:    "Find local businesses in your area",
		SubmissionsEnabled: true,
		ReviewsEnabled:     true,
	}
}

// GetDirectorySettings returns the loaded settings, or the defaults before LoadSettings ran.
func GetDirectorySettings() *DirectorySettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if directorySettings == nil {
		return defaultDirectorySettings()
	}
	cp := *directorySettings
	return &cp
}

// LoadSettings reads the settings options into memory.
func LoadSettings(db *gorm.DB) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	s := defaultDirectorySettings()

	var options []Option
	keys := []string{OPTION_SITE_TITLE, OPTION_SITE_DESCRIPTION, OPTION_ADMIN_EMAIL, OPTION_SUBMISSIONS_ENABLED, OPTION_REVIEWS_ENABLED}
	if err := db.Where("option_key IN ?", keys).Find(&options).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	for _, o := range options {
		switch o.Key {
		case OPTION_SITE_TITLE:
			s.SiteTitle = o.Value
		case OPTION_SITE_DESCRIPTION:
			s.SiteDescription = o.Value
		case OPTION_ADMIN_EMAIL:
			s.AdminEmail = o.Value
		case OPTION_SUBMISSIONS_ENABLED:
			s.SubmissionsEnabled = o.Value == "true"
		case OPTION_REVIEWS_ENABLED:
			s.ReviewsEnabled = o.Value == "true"
		}
	}

	directorySettings = s
	return nil
}

// SaveSettings validates and persists s, then replaces the in-memory copy.
func SaveSettings(db *gorm.DB, s *DirectorySettings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	values := map[string]string{
		OPTION_SITE_TITLE:          s.SiteTitle,
		OPTION_SITE_DESCRIPTION:    s.SiteDescription,
		OPTION_ADMIN_EMAIL:         s.AdminEmail,
		OPTION_SUBMISSIONS_ENABLED: strconv.FormatBool(s.SubmissionsEnabled),
		OPTION_REVIEWS_ENABLED:     strconv.FormatBool(s.ReviewsEnabled),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			if err := UpsertOption(tx, key, value); err != nil {
				return fmt.Errorf("failed to save setting %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	settingsMu.Lock()
	cp := *s
	directorySettings = &cp
	settingsMu.Unlock()
	return nil
}

// UpsertOption creates or updates a single option row.
func UpsertOption(db *gorm.DB, key, value string) error {
	var o Option
	err := db.Where("option_key = ?", key).First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(&Option{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&o).Update("value", value).Error
}

func (s *DirectorySettings) Validate() error {
	return validator.New().Struct(s)
}
