package repository

import (
	"github.com/ManuelReschke/bizdir/app/models"
	"gorm.io/gorm"
)

// termRepository implements the TermRepository interface
type termRepository struct {
	db *gorm.DB
}

// NewTermRepository creates a new term repository instance
func NewTermRepository(db *gorm.DB) TermRepository {
	return &termRepository{db: db}
}

func (r *termRepository) Create(term *models.Term) error {
	return r.db.Create(term).Error
}

func (r *termRepository) GetByID(id uint) (*models.Term, error) {
	var t models.Term
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByIDs returns the terms of one taxonomy for the given ids, in id order
func (r *termRepository) GetByIDs(taxonomy string, ids []uint) ([]models.Term, error) {
	var terms []models.Term
	if len(ids) == 0 {
		return terms, nil
	}
	err := r.db.Where("taxonomy = ? AND id IN ?", taxonomy, ids).Order("id ASC").Find(&terms).Error
	return terms, err
}

func (r *termRepository) GetBySlug(taxonomy, slug string) (*models.Term, error) {
	var t models.Term
	if err := r.db.Where("taxonomy = ? AND slug = ?", taxonomy, slug).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByName matches the exact term name within a taxonomy. A nil parentID matches any parent.
func (r *termRepository) GetByName(taxonomy, name string, parentID *uint) (*models.Term, error) {
	var t models.Term
	q := r.db.Where("taxonomy = ? AND name = ?", taxonomy, name)
	if parentID != nil {
		q = q.Where("parent_id = ?", *parentID)
	}
	if err := q.Order("id ASC").First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *termRepository) List(taxonomy string) ([]models.Term, error) {
	var terms []models.Term
	err := r.db.Where("taxonomy = ?", taxonomy).Order("name ASC").Find(&terms).Error
	return terms, err
}

// ListWithCounts fills Count with the number of non-trashed businesses per term
func (r *termRepository) ListWithCounts(taxonomy string) ([]models.Term, error) {
	terms, err := r.List(taxonomy)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		TermID uint
		Total  int64
	}
	if taxonomy == models.TAXONOMY_AREA {
		err = r.db.Model(&models.Business{}).
			Select("area_id AS term_id, COUNT(*) AS total").
			Where("area_id IS NOT NULL").
			Group("area_id").
			Scan(&rows).Error
	} else {
		err = r.db.Table("business_categories").
			Select("business_categories.term_id AS term_id, COUNT(*) AS total").
			Joins("JOIN businesses ON businesses.id = business_categories.business_id AND businesses.deleted_at IS NULL").
			Group("business_categories.term_id").
			Scan(&rows).Error
	}
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.TermID] = row.Total
	}
	for i := range terms {
		terms[i].Count = counts[terms[i].ID]
	}
	return terms, nil
}

func (r *termRepository) Update(term *models.Term) error {
	return r.db.Save(term).Error
}

// Delete removes the term and its category links
func (r *termRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM business_categories WHERE term_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Business{}).Unscoped().Where("area_id = ?", id).Update("area_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Term{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Term{}, id).Error
	})
}

func (r *termRepository) SlugExists(taxonomy, slug string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Term{}).
		Where("taxonomy = ? AND slug = ? AND id <> ?", taxonomy, slug, exceptID).
		Count(&count).Error
	return count > 0, err
}
