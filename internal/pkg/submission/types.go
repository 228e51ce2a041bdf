package submission

import (
	"github.com/ManuelReschke/bizdir/app/models"
)

// Submitter identifies who filed a submission.
type Submitter struct {
	UserID uint
	Name   string
	Email  string
	Phone  string
	IP     string
}

// NewBusinessInput is a public request for a new listing. Fields uses the
// listing field keys (business_name, business_phone, ...).
type NewBusinessInput struct {
	Submitter
	Fields      map[string]string
	AreaID      uint
	CategoryIDs []uint
	Message     string
}

// ClaimInput asks for ownership of an existing listing.
type ClaimInput struct {
	Submitter
	BusinessID uint
	Message    string
}

// RevisionInput carries the proposed values of an owner edit.
type RevisionInput struct {
	BusinessID uint
	UserID     uint
	Values     map[string]string
	Message    string
	IP         string
}

// Notifier is told about submission events after they are committed.
type Notifier interface {
	SubmissionReceived(s *models.Submission)
	ClaimVerification(s *models.Submission, verifyURL string)
	SubmissionApproved(s *models.Submission, b *models.Business)
	SubmissionRejected(s *models.Submission, reason string)
}

// NopNotifier drops all events.
type NopNotifier struct{}

func (NopNotifier) SubmissionReceived(*models.Submission)                   {}
func (NopNotifier) ClaimVerification(*models.Submission, string)            {}
func (NopNotifier) SubmissionApproved(*models.Submission, *models.Business) {}
func (NopNotifier) SubmissionRejected(*models.Submission, string)           {}
