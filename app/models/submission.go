package models

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	SUBMISSION_STATUS_PENDING  = "pending"
	SUBMISSION_STATUS_APPROVED = "approved"
	SUBMISSION_STATUS_REJECTED = "rejected"

	SUBMISSION_TYPE_NEW      = "new_business"
	SUBMISSION_TYPE_CLAIM    = "claim_business"
	SUBMISSION_TYPE_REVISION = "revision"
)

// Submission is a pending change to the directory: a new listing, a claim on an
// existing listing or an owner revision. Approved and rejected are terminal.
//
// ActiveClaimBusinessID mirrors ClaimedBusinessID while a claim is pending or
// approved and is cleared on rejection; its unique index keeps one active claim
// per business.
type Submission struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	Type                   string     `gorm:"type:varchar(32);index" json:"type" validate:"required,oneof=new_business claim_business revision"`
	Status                 string     `gorm:"type:varchar(20);default:'pending';index" json:"status" validate:"required,oneof=pending approved rejected"`
	BusinessName           string     `gorm:"type:varchar(255)" json:"business_name" validate:"required,max=255"`
	ClaimedBusinessID      *uint      `gorm:"index;default:null" json:"claimed_business_id,omitempty"`
	ActiveClaimBusinessID  *uint      `gorm:"uniqueIndex;default:null" json:"-"`
	CreatedBusinessID      *uint      `gorm:"default:null" json:"created_business_id,omitempty"`
	SubmitterUserID        *uint      `gorm:"index;default:null" json:"submitter_user_id,omitempty"`
	SubmitterName          string     `gorm:"type:varchar(150)" json:"submitter_name" validate:"required,max=150"`
	SubmitterEmail         string     `gorm:"type:varchar(200);index" json:"submitter_email" validate:"required,email,max=200"`
	SubmitterPhone         string     `gorm:"type:varchar(50)" json:"submitter_phone,omitempty"`
	Message                string     `gorm:"type:text" json:"message,omitempty"`
	OriginalSubmissionData string     `gorm:"type:longtext" json:"-"`
	VerificationToken      string     `gorm:"type:varchar(100);index" json:"-"`
	VerificationSentAt     *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	EmailVerifiedAt        *time.Time `gorm:"type:timestamp;default:null" json:"email_verified_at,omitempty"`
	ReviewerNotes          string     `gorm:"type:text" json:"reviewer_notes,omitempty"`
	ReviewedByID           *uint      `gorm:"default:null" json:"reviewed_by_id,omitempty"`
	ReviewedAt             *time.Time `gorm:"type:timestamp;default:null" json:"reviewed_at,omitempty"`
	IP                     string     `gorm:"type:varchar(45)" json:"-"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Submission) TableName() string {
	return "business_submissions"
}

// SubmissionPayload is the JSON stored in OriginalSubmissionData. For revisions
// Fields only carries the changed values.
type SubmissionPayload struct {
	Fields      map[string]string `json:"fields"`
	AreaID      uint              `json:"area_id,omitempty"`
	CategoryIDs []uint            `json:"category_ids,omitempty"`
}

func (s *Submission) Validate() error {
	return validator.New().Struct(s)
}

func (s *Submission) IsPending() bool {
	return s.Status == SUBMISSION_STATUS_PENDING
}

// Payload decodes the stored submission data. An empty column yields an empty payload.
func (s *Submission) Payload() (SubmissionPayload, error) {
	p := SubmissionPayload{Fields: map[string]string{}}
	if s.OriginalSubmissionData == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(s.OriginalSubmissionData), &p); err != nil {
		return p, err
	}
	if p.Fields == nil {
		p.Fields = map[string]string{}
	}
	return p, nil
}

// SetPayload encodes p into OriginalSubmissionData.
func (s *Submission) SetPayload(p SubmissionPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.OriginalSubmissionData = string(data)
	return nil
}

// TypeLabel is the human readable submission type.
func (s *Submission) TypeLabel() string {
	switch s.Type {
	case SUBMISSION_TYPE_NEW:
		return "New listing"
	case SUBMISSION_TYPE_CLAIM:
		return "Claim"
	case SUBMISSION_TYPE_REVISION:
		return "Revision"
	}
	return s.Type
}
