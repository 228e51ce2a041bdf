package repository

import (
	"database/sql"
	"strings"

	"github.com/ManuelReschke/bizdir/app/models"
	"gorm.io/gorm"
)

var reviewSortColumns = map[string]string{
	"business": "businesses.title",
	"reviewer": "lbd_reviews.reviewer_name",
	"rating":   "lbd_reviews.rating",
	"date":     "lbd_reviews.review_date",
	"source":   "lbd_reviews.source",
	"status":   "lbd_reviews.approved",
}

// reviewRepository implements the ReviewRepository interface
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository instance
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

func (r *reviewRepository) GetByID(id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ListForBusiness returns reviews newest first
func (r *reviewRepository) ListForBusiness(businessID uint, approvedOnly bool) ([]models.Review, error) {
	var reviews []models.Review
	q := r.db.Where("business_id = ?", businessID)
	if approvedOnly {
		q = q.Where("approved = ?", true)
	}
	err := q.Order("review_date DESC, id DESC").Find(&reviews).Error
	return reviews, err
}

// AverageRating returns the approved average rounded to one decimal.
// ok is false when the business has no approved reviews.
func (r *reviewRepository) AverageRating(businessID uint) (float64, bool, error) {
	var avg sql.NullFloat64
	err := r.db.Model(&models.Review{}).
		Select("ROUND(AVG(rating), 1)").
		Where("business_id = ? AND approved = ?", businessID, true).
		Row().Scan(&avg)
	if err != nil {
		return 0, false, err
	}
	if !avg.Valid {
		return 0, false, nil
	}
	return avg.Float64, true, nil
}

func (r *reviewRepository) ApprovedCount(businessID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Review{}).Where("business_id = ? AND approved = ?", businessID, true).Count(&count).Error
	return count, err
}

// List powers the admin review table. Unknown sort keys fall back to date.
func (r *reviewRepository) List(opts ReviewListOptions) ([]ReviewRow, int64, error) {
	base := func() *gorm.DB {
		q := r.db.Table("lbd_reviews").
			Joins("LEFT JOIN businesses ON businesses.id = lbd_reviews.business_id")
		switch opts.Status {
		case "approved":
			q = q.Where("lbd_reviews.approved = ?", true)
		case "pending":
			q = q.Where("lbd_reviews.approved = ?", false)
		}
		if opts.BusinessID != 0 {
			q = q.Where("lbd_reviews.business_id = ?", opts.BusinessID)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := reviewSortColumns[opts.OrderBy]
	if !ok {
		column = reviewSortColumns["date"]
	}
	direction := "DESC"
	if strings.EqualFold(opts.Order, "asc") {
		direction = "ASC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	var rows []ReviewRow
	err := base().Select("lbd_reviews.*, businesses.title AS business_title").
		Order(column + " " + direction).
		Order("lbd_reviews.id DESC").
		Offset(opts.Offset).Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

func (r *reviewRepository) SetApproved(ids []uint, approved bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.Model(&models.Review{}).Where("id IN ?", ids).Update("approved", approved)
	return res.RowsAffected, res.Error
}

func (r *reviewRepository) DeleteByIDs(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.Delete(&models.Review{}, ids)
	return res.RowsAffected, res.Error
}

func (r *reviewRepository) CountByApproved(approved bool) (int64, error) {
	var count int64
	err := r.db.Model(&models.Review{}).Where("approved = ?", approved).Count(&count).Error
	return count, err
}
