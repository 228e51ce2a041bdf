package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/bizdir/app/models"
	"gorm.io/gorm"
)

const exportBatchSize = 200

// businessRepository implements the BusinessRepository interface
type businessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository creates a new business repository instance
func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) withTerms(db *gorm.DB) *gorm.DB {
	return db.Preload("Area").Preload("Categories", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("terms.id ASC")
	})
}

// Create inserts the business together with its category links
func (r *businessRepository) Create(business *models.Business) error {
	return r.db.Create(business).Error
}

// GetByID retrieves a business with its area and categories
func (r *businessRepository) GetByID(id uint) (*models.Business, error) {
	var b models.Business
	if err := r.withTerms(r.db).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByIDUnscoped also finds trashed businesses
func (r *businessRepository) GetByIDUnscoped(id uint) (*models.Business, error) {
	var b models.Business
	if err := r.withTerms(r.db.Unscoped()).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBySlug retrieves a published business by slug
func (r *businessRepository) GetBySlug(slug string) (*models.Business, error) {
	var b models.Business
	err := r.withTerms(r.db).
		Where("slug = ? AND status = ?", slug, models.BUSINESS_STATUS_PUBLISH).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByImageSourceURL finds the listing an image URL was already sideloaded for
func (r *businessRepository) GetByImageSourceURL(url string) (*models.Business, error) {
	var b models.Business
	err := r.db.Unscoped().Where("image_source_url = ? AND image_url <> ''", url).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Update saves all columns of the business but leaves category links untouched
func (r *businessRepository) Update(business *models.Business) error {
	return r.db.Omit("Categories", "Area").Save(business).Error
}

func (r *businessRepository) UpdateColumns(id uint, values map[string]interface{}) error {
	return r.db.Model(&models.Business{}).Where("id = ?", id).Updates(values).Error
}

// ReplaceCategories swaps the category links of the business
func (r *businessRepository) ReplaceCategories(business *models.Business, categoryIDs []uint) error {
	terms := make([]models.Term, 0, len(categoryIDs))
	if len(categoryIDs) > 0 {
		if err := r.db.Where("taxonomy = ? AND id IN ?", models.TAXONOMY_CATEGORY, categoryIDs).
			Order("id ASC").Find(&terms).Error; err != nil {
			return err
		}
	}
	if err := r.db.Model(business).Association("Categories").Replace(terms); err != nil {
		return fmt.Errorf("failed to replace categories: %w", err)
	}
	business.Categories = terms
	return nil
}

// Trash soft deletes a business
func (r *businessRepository) Trash(id uint) error {
	return r.db.Delete(&models.Business{}, id).Error
}

// Restore brings a trashed business back
func (r *businessRepository) Restore(id uint) error {
	return r.db.Unscoped().Model(&models.Business{}).Where("id = ?", id).Update("deleted_at", nil).Error
}

// HardDelete permanently removes businesses and their category links.
// Reviews keep their weak reference.
func (r *businessRepository) HardDelete(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM business_categories WHERE business_id IN ?", ids).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Delete(&models.Business{}, ids)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

func (r *businessRepository) applyFilter(db *gorm.DB, f BusinessFilter) *gorm.DB {
	if f.OnlyTrashed {
		db = db.Unscoped().Where("businesses.deleted_at IS NOT NULL")
	}
	if f.AreaID != 0 {
		db = db.Where("businesses.area_id = ?", f.AreaID)
	}
	if f.CategoryID != 0 {
		sub := r.db.Table("business_categories").Select("business_id").Where("term_id = ?", f.CategoryID)
		db = db.Where("businesses.id IN (?)", sub)
	}
	if f.OwnerUserID != 0 {
		db = db.Where("businesses.owner_user_id = ? AND businesses.claimed = ?", f.OwnerUserID, true)
	}
	if f.Status != "" {
		db = db.Where("businesses.status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := "%" + s + "%"
		db = db.Where("businesses.title LIKE ? OR businesses.city LIKE ? OR businesses.postcode LIKE ?", p, p, p)
	}
	return db
}

// List returns a page of businesses plus the total count for the filter
func (r *businessRepository) List(filter BusinessFilter, offset, limit int) ([]models.Business, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.Model(&models.Business{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var businesses []models.Business
	q := r.withTerms(r.applyFilter(r.db.Model(&models.Business{}), filter)).
		Order("businesses.premium DESC, businesses.title ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&businesses).Error; err != nil {
		return nil, 0, err
	}
	return businesses, total, nil
}

// ListAll streams every non-trashed business in id order
func (r *businessRepository) ListAll(fn func(batch []models.Business) error) error {
	var batch []models.Business
	return r.withTerms(r.db).FindInBatches(&batch, exportBatchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}

// ListMissingTerms returns businesses whose canonical link cannot resolve
func (r *businessRepository) ListMissingTerms(limit int) ([]models.Business, error) {
	var businesses []models.Business
	areas := r.db.Model(&models.Term{}).Select("id").Where("taxonomy = ?", models.TAXONOMY_AREA)
	linked := r.db.Table("business_categories").Select("business_id")
	q := r.withTerms(r.db).
		Where("area_id IS NULL OR area_id NOT IN (?) OR id NOT IN (?)", areas, linked).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&businesses).Error
	return businesses, err
}

// ListSlugProblems returns businesses without a usable slug
func (r *businessRepository) ListSlugProblems() ([]models.Business, error) {
	var businesses []models.Business
	err := r.db.Unscoped().Where("slug = '' OR slug IS NULL").Order("id ASC").Find(&businesses).Error
	return businesses, err
}

// ListForDuplicateScan returns the key columns of every non-trashed business
// ordered by the normalised keys, then created_at. Rows with an empty key
// column other than title are left out.
func (r *businessRepository) ListForDuplicateScan(columns []string) ([]models.Business, error) {
	q := r.db.Model(&models.Business{}).
		Select("id, title, slug, street, city, postcode, status, created_at")
	for _, col := range columns {
		if col != "title" {
			q = q.Where("TRIM(COALESCE(" + col + ", '')) <> ''")
		}
	}
	for _, col := range columns {
		q = q.Order("LOWER(TRIM(" + col + "))")
	}
	var businesses []models.Business
	err := q.Order("created_at ASC").Order("id ASC").Find(&businesses).Error
	return businesses, err
}

// SlugExists checks trashed rows too, the unique index covers them
func (r *businessRepository) SlugExists(slug string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.Business{}).Where("slug = ? AND id <> ?", slug, exceptID).Count(&count).Error
	return count > 0, err
}

func (r *businessRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Business{}).Count(&count).Error
	return count, err
}

func (r *businessRepository) CountClaimed() (int64, error) {
	var count int64
	err := r.db.Model(&models.Business{}).Where("claimed = ?", true).Count(&count).Error
	return count, err
}

// GetDailyStats returns daily listing creation counts for a date range
func (r *businessRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string
		Count int64
	}

	err := r.db.Model(&models.Business{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Order("date").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily business stats: %w", err)
	}

	dailyStats := make([]models.DailyStats, len(results))
	for i, result := range results {
		dailyStats[i] = models.DailyStats{
			Date:  result.Date,
			Count: int(result.Count),
		}
	}
	return dailyStats, nil
}
