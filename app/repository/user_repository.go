package repository

import (
	"strings"

	"github.com/ManuelReschke/bizdir/app/models"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create stores a new account. Emails are kept lowercase so logins match.
func (r *userRepository) Create(user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.db.Create(user).Error
}

func (r *userRepository) first(query interface{}, args ...interface{}) (*models.User, error) {
	var u models.User
	if err := r.db.Where(query, args...).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	return r.first("id = ?", id)
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	return r.first("email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) Update(user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.db.Save(user).Error
}

// UpdateRole promotes or demotes a user. Admins are never demoted.
func (r *userRepository) UpdateRole(id uint, role string) error {
	return r.db.Model(&models.User{}).
		Where("id = ? AND role <> ?", id, models.ROLE_ADMIN).
		Update("role", role).Error
}

// Delete soft deletes the account and drops its provider links. Claimed
// listings keep their owner columns.
func (r *userRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.ProviderAccount{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}

// List pages through the accounts matching f, newest first
func (r *userRepository) List(f UserFilter, offset, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + term + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *userRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.User{}).Count(&n).Error
	return n, err
}

type providerAccountRepository struct {
	db *gorm.DB
}

func NewProviderAccountRepository(db *gorm.DB) ProviderAccountRepository {
	return &providerAccountRepository{db: db}
}

func (r *providerAccountRepository) GetByProvider(provider, providerUserID string) (*models.ProviderAccount, error) {
	var pa models.ProviderAccount
	err := r.db.Where("provider = ? AND provider_user_id = ?", provider, providerUserID).First(&pa).Error
	if err != nil {
		return nil, err
	}
	return &pa, nil
}

// Save inserts or refreshes the tokens of a linked identity
func (r *providerAccountRepository) Save(account *models.ProviderAccount) error {
	return r.db.Save(account).Error
}
