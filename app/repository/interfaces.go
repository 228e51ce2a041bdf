package repository

import (
	"time"

	"github.com/ManuelReschke/bizdir/app/models"
	"gorm.io/gorm"
)

// BusinessFilter narrows business listings. Zero values are ignored.
type BusinessFilter struct {
	AreaID      uint
	CategoryID  uint
	OwnerUserID uint
	Status      string
	Search      string
	OnlyTrashed bool
}

// BusinessRepository defines the interface for business listing operations
type BusinessRepository interface {
	Create(business *models.Business) error
	GetByID(id uint) (*models.Business, error)
	GetByIDUnscoped(id uint) (*models.Business, error)
	GetBySlug(slug string) (*models.Business, error)
	GetByImageSourceURL(url string) (*models.Business, error)
	Update(business *models.Business) error
	UpdateColumns(id uint, values map[string]interface{}) error
	ReplaceCategories(business *models.Business, categoryIDs []uint) error
	Trash(id uint) error
	Restore(id uint) error
	HardDelete(ids []uint) (int64, error)
	List(filter BusinessFilter, offset, limit int) ([]models.Business, int64, error)
	ListAll(fn func(batch []models.Business) error) error
	ListMissingTerms(limit int) ([]models.Business, error)
	ListSlugProblems() ([]models.Business, error)
	ListForDuplicateScan(columns []string) ([]models.Business, error)
	SlugExists(slug string, exceptID uint) (bool, error)
	Count() (int64, error)
	CountClaimed() (int64, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// TermRepository defines the interface for area and category terms
type TermRepository interface {
	Create(term *models.Term) error
	GetByID(id uint) (*models.Term, error)
	GetByIDs(taxonomy string, ids []uint) ([]models.Term, error)
	GetBySlug(taxonomy, slug string) (*models.Term, error)
	GetByName(taxonomy, name string, parentID *uint) (*models.Term, error)
	List(taxonomy string) ([]models.Term, error)
	ListWithCounts(taxonomy string) ([]models.Term, error)
	Update(term *models.Term) error
	Delete(id uint) error
	SlugExists(taxonomy, slug string, exceptID uint) (bool, error)
}

// SubmissionRepository defines the interface for submission rows
type SubmissionRepository interface {
	Create(submission *models.Submission) error
	GetByID(id uint) (*models.Submission, error)
	GetByVerificationToken(token string) (*models.Submission, error)
	Update(submission *models.Submission) error
	TransitionStatus(id uint, from, to string, updates map[string]interface{}) (bool, error)
	HasActiveClaim(businessID uint) (bool, error)
	HasPendingForEmail(submissionType, email, businessName string) (bool, error)
	List(status, submissionType string, offset, limit int) ([]models.Submission, int64, error)
	ListByBusiness(businessID uint, submissionType string) ([]models.Submission, error)
	ListBySubmitter(userID uint) ([]models.Submission, error)
	CountByStatus(status string) (int64, error)
}

// ReviewListOptions drives the admin review table.
type ReviewListOptions struct {
	Status     string // "", "approved", "pending"
	BusinessID uint
	OrderBy    string
	Order      string
	Offset     int
	Limit      int
}

// ReviewRow is a review joined with its business title.
type ReviewRow struct {
	models.Review
	BusinessTitle string
}

// ReviewRepository defines the interface for review operations
type ReviewRepository interface {
	Create(review *models.Review) error
	GetByID(id uint) (*models.Review, error)
	ListForBusiness(businessID uint, approvedOnly bool) ([]models.Review, error)
	AverageRating(businessID uint) (float64, bool, error)
	ApprovedCount(businessID uint) (int64, error)
	List(opts ReviewListOptions) ([]ReviewRow, int64, error)
	SetApproved(ids []uint, approved bool) (int64, error)
	DeleteByIDs(ids []uint) (int64, error)
	CountByApproved(approved bool) (int64, error)
}

// OptionRepository defines the interface for key/value options
type OptionRepository interface {
	GetSettings() (*models.DirectorySettings, error)
	SaveSettings(settings *models.DirectorySettings) error
	GetValue(key string) (string, error)
	SetValue(key, value string) error
	Delete(key string) error
	ListByPrefix(prefix string) ([]models.Option, error)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdateRole(id uint, role string) error
	Delete(id uint) error
	List(f UserFilter, offset, limit int) ([]models.User, int64, error)
	Count() (int64, error)
}

// UserFilter narrows the admin account list
type UserFilter struct {
	Query string
	Role  string
}

// ProviderAccountRepository links OAuth identities to users
type ProviderAccountRepository interface {
	GetByProvider(provider, providerUserID string) (*models.ProviderAccount, error)
	Save(account *models.ProviderAccount) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Business        BusinessRepository
	Term            TermRepository
	Submission      SubmissionRepository
	Review          ReviewRepository
	Option          OptionRepository
	User            UserRepository
	ProviderAccount ProviderAccountRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Business:        NewBusinessRepository(db),
		Term:            NewTermRepository(db),
		Submission:      NewSubmissionRepository(db),
		Review:          NewReviewRepository(db),
		Option:          NewOptionRepository(db),
		User:            NewUserRepository(db),
		ProviderAccount: NewProviderAccountRepository(db),
	}
}
