package repository

import (
	"github.com/ManuelReschke/bizdir/app/models"
	"gorm.io/gorm"
)

// submissionRepository implements the SubmissionRepository interface
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository instance
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(submission *models.Submission) error {
	return r.db.Create(submission).Error
}

func (r *submissionRepository) GetByID(id uint) (*models.Submission, error) {
	var s models.Submission
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepository) GetByVerificationToken(token string) (*models.Submission, error) {
	var s models.Submission
	if err := r.db.Where("verification_token = ? AND verification_token <> ''", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepository) Update(submission *models.Submission) error {
	return r.db.Save(submission).Error
}

// TransitionStatus moves a submission from one status to another only if it is
// still in the expected status. It reports false when another request won.
func (r *submissionRepository) TransitionStatus(id uint, from, to string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"status": to}
	for k, v := range updates {
		values[k] = v
	}
	res := r.db.Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// HasActiveClaim reports a pending or approved claim for the business
func (r *submissionRepository) HasActiveClaim(businessID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Submission{}).
		Where("type = ? AND claimed_business_id = ? AND status IN ?",
			models.SUBMISSION_TYPE_CLAIM, businessID,
			[]string{models.SUBMISSION_STATUS_PENDING, models.SUBMISSION_STATUS_APPROVED}).
		Count(&count).Error
	return count > 0, err
}

// HasPendingForEmail detects a resubmitted pending listing from the same address
func (r *submissionRepository) HasPendingForEmail(submissionType, email, businessName string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Submission{}).
		Where("type = ? AND submitter_email = ? AND business_name = ? AND status = ?",
			submissionType, email, businessName, models.SUBMISSION_STATUS_PENDING).
		Count(&count).Error
	return count > 0, err
}

func (r *submissionRepository) List(status, submissionType string, offset, limit int) ([]models.Submission, int64, error) {
	base := func() *gorm.DB {
		q := r.db.Model(&models.Submission{})
		if status != "" {
			q = q.Where("status = ?", status)
		}
		if submissionType != "" {
			q = q.Where("type = ?", submissionType)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var submissions []models.Submission
	err := base().Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&submissions).Error
	return submissions, total, err
}

func (r *submissionRepository) ListByBusiness(businessID uint, submissionType string) ([]models.Submission, error) {
	var submissions []models.Submission
	q := r.db.Where("claimed_business_id = ?", businessID)
	if submissionType != "" {
		q = q.Where("type = ?", submissionType)
	}
	err := q.Order("created_at DESC, id DESC").Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) ListBySubmitter(userID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.Where("submitter_user_id = ?", userID).Order("created_at DESC, id DESC").Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Submission{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
