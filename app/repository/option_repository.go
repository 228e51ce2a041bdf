package repository

import (
	"github.com/ManuelReschke/bizdir/app/models"
	"gorm.io/gorm"
)

// optionRepository implements the OptionRepository interface
type optionRepository struct {
	db *gorm.DB
}

// NewOptionRepository creates a new option repository instance
func NewOptionRepository(db *gorm.DB) OptionRepository {
	return &optionRepository{db: db}
}

// GetSettings retrieves the current directory settings
func (r *optionRepository) GetSettings() (*models.DirectorySettings, error) {
	return models.GetDirectorySettings(), nil
}

// SaveSettings saves the directory settings to the database
func (r *optionRepository) SaveSettings(settings *models.DirectorySettings) error {
	return models.SaveSettings(r.db, settings)
}

// GetValue retrieves an option value by key, empty when missing
func (r *optionRepository) GetValue(key string) (string, error) {
	var option models.Option
	err := r.db.Where("option_key = ?", key).First(&option).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return option.Value, nil
}

// SetValue creates or updates an option
func (r *optionRepository) SetValue(key, value string) error {
	return models.UpsertOption(r.db, key, value)
}

func (r *optionRepository) Delete(key string) error {
	return r.db.Where("option_key = ?", key).Delete(&models.Option{}).Error
}

// ListByPrefix returns all options whose key starts with prefix
func (r *optionRepository) ListByPrefix(prefix string) ([]models.Option, error) {
	var options []models.Option
	err := r.db.Where("option_key LIKE ?", prefix+"%").Order("option_key ASC").Find(&options).Error
	return options, err
}
