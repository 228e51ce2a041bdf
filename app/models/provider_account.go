package models

import "time"

// ProviderAccount links an external login (Google) to a directory user. Email
// is what the provider reported on the last login.
type ProviderAccount struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"index" json:"user_id"`
	Provider       string     `gorm:"index:provider_uid,unique;type:varchar(50)" json:"provider"`
	ProviderUserID string     `gorm:"index:provider_uid,unique;type:varchar(191)" json:"provider_user_id"`
	Email          string     `gorm:"type:varchar(200)" json:"email,omitempty"`
	AccessToken    string     `gorm:"type:text" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	ExpiresAt      *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	LastUsedAt     *time.Time `gorm:"type:timestamp;default:null" json:"last_used_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Refresh copies the tokens of a completed login onto the link.
func (pa *ProviderAccount) Refresh(email, access, refresh string, expires *time.Time, now time.Time) {
	if email != "" {
		pa.Email = email
	}
	pa.AccessToken = access
	pa.RefreshToken = refresh
	pa.ExpiresAt = expires
	pa.LastUsedAt = &now
}
