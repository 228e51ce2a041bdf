package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/config"
	"github.com/ManuelReschke/bizdir/internal/pkg/listing"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service runs the submission workflow: new listings, claims and owner
// revisions all wait as pending submissions until approved or rejected.
type Service struct {
	db     *gorm.DB
	notify Notifier
	cfg    *config.Directory
	now    func() time.Time
	// OnBusinessChanged runs after a committed approval touched a listing.
	OnBusinessChanged func()
}

// NewService creates the workflow service. A nil notifier discards events.
func NewService(db *gorm.DB, notify Notifier, cfg *config.Directory) *Service {
	if notify == nil {
		notify = NopNotifier{}
	}
	if cfg == nil {
		cfg = config.Defaults()
	}
	return &Service{db: db, notify: notify, cfg: cfg, now: time.Now}
}

func (s *Service) repos() *repository.Repositories {
	return repository.NewRepositories(s.db)
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

func normaliseFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		f, ok := models.LookupBusinessField(k)
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			out[f.Key] = v
		}
	}
	return out
}

// SubmitNew stores a request for a new listing.
func (s *Service) SubmitNew(ctx context.Context, in NewBusinessInput) (*models.Submission, error) {
	_ = ctx
	fields := normaliseFields(in.Fields)
	name := fields["business_name"]
	if name == "" {
		return nil, ErrMissingBusinessName
	}

	repos := s.repos()
	if _, _, err := listing.ResolveTerms(repos.Term, in.AreaID, in.CategoryIDs); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	dup, err := repos.Submission.HasPendingForEmail(models.SUBMISSION_TYPE_NEW, email, name)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateSubmission
	}

	sub := &models.Submission{
		Type:            models.SUBMISSION_TYPE_NEW,
		Status:          models.SUBMISSION_STATUS_PENDING,
		BusinessName:    name,
		SubmitterUserID: optionalID(in.UserID),
		SubmitterName:   strings.TrimSpace(in.Name),
		SubmitterEmail:  email,
		SubmitterPhone:  strings.TrimSpace(in.Phone),
		Message:         strings.TrimSpace(in.Message),
		IP:              in.IP,
	}
	if err := sub.SetPayload(models.SubmissionPayload{
		Fields:      fields,
		AreaID:      in.AreaID,
		CategoryIDs: in.CategoryIDs,
	}); err != nil {
		return nil, err
	}
	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("invalid submission: %w", err)
	}
	if err := repos.Submission.Create(sub); err != nil {
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	log.Infof("[Submission] new listing %q submitted (#%d)", name, sub.ID)
	s.notify.SubmissionReceived(sub)
	return sub, nil
}

// Claim opens a claim on an unverified, unclaimed listing. The guard and the
// insert share a transaction, and the unique active claim column rejects a
// concurrent second claim.
func (s *Service) Claim(ctx context.Context, in ClaimInput) (*models.Submission, error) {
	_ = ctx
	var sub *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		b, err := repos.Business.GetByID(in.BusinessID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBusinessNotFound
		}
		if err != nil {
			return err
		}
		switch {
		case b.Verified:
			return ErrAlreadyVerified
		case b.Claimed:
			return ErrAlreadyClaimed
		}
		active, err := repos.Submission.HasActiveClaim(b.ID)
		if err != nil {
			return err
		}
		if active {
			return ErrClaimPending
		}

		now := s.now()
		sub = &models.Submission{
			Type:                  models.SUBMISSION_TYPE_CLAIM,
			Status:                models.SUBMISSION_STATUS_PENDING,
			BusinessName:          b.Title,
			ClaimedBusinessID:     &b.ID,
			ActiveClaimBusinessID: &b.ID,
			SubmitterUserID:       optionalID(in.UserID),
			SubmitterName:         strings.TrimSpace(in.Name),
			SubmitterEmail:        strings.ToLower(strings.TrimSpace(in.Email)),
			SubmitterPhone:        strings.TrimSpace(in.Phone),
			Message:               strings.TrimSpace(in.Message),
			VerificationToken:     uuid.NewString(),
			VerificationSentAt:    &now,
			IP:                    in.IP,
		}
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("invalid claim: %w", err)
		}
		if err := repos.Submission.Create(sub); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrClaimPending
			}
			return fmt.Errorf("failed to store claim: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infof("[Submission] claim #%d opened for business %d", sub.ID, in.BusinessID)
	s.notify.ClaimVerification(sub, s.VerifyURL(sub.VerificationToken))
	s.notify.SubmissionReceived(sub)
	return sub, nil
}

// VerifyURL is the link mailed to a claimant.
func (s *Service) VerifyURL(token string) string {
	return strings.TrimRight(s.cfg.PublicDomain, "/") + "/claim/verify?token=" + token
}

// VerifyClaim confirms the claimant's email address. When that address is the
// listing's public email the claim is approved right away; the bool result
// reports this.
func (s *Service) VerifyClaim(ctx context.Context, token string) (*models.Submission, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false, ErrInvalidToken
	}
	repos := s.repos()
	sub, err := repos.Submission.GetByVerificationToken(token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, ErrInvalidToken
	}
	if err != nil {
		return nil, false, err
	}
	if sub.Type != models.SUBMISSION_TYPE_CLAIM {
		return nil, false, ErrInvalidToken
	}
	if sub.EmailVerifiedAt != nil {
		return sub, false, ErrEmailVerified
	}
	if !sub.IsPending() {
		return sub, false, ErrNotPending
	}
	now := s.now()
	if sub.VerificationSentAt != nil && now.Sub(*sub.VerificationSentAt) > s.cfg.ClaimTokenTTL {
		return sub, false, ErrTokenExpired
	}

	sub.EmailVerifiedAt = &now
	if err := repos.Submission.Update(sub); err != nil {
		return nil, false, err
	}

	if sub.ClaimedBusinessID == nil {
		return sub, false, nil
	}
	b, err := repos.Business.GetByID(*sub.ClaimedBusinessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sub, false, nil
		}
		return nil, false, err
	}
	if b.Email == "" || !strings.EqualFold(strings.TrimSpace(b.Email), sub.SubmitterEmail) {
		return sub, false, nil
	}

	approved, err := s.Approve(ctx, sub.ID, 0, "Automatically approved: claimant verified the listing email address.")
	if err != nil {
		return sub, false, err
	}
	return approved, true, nil
}

// Approve applies a pending submission. Effects and the conditional status
// update share one transaction.
func (s *Service) Approve(ctx context.Context, id uint, reviewerID uint, notes string) (*models.Submission, error) {
	_ = ctx
	var (
		sub      *models.Submission
		business *models.Business
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		var err error
		sub, err = repos.Submission.GetByID(id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !sub.IsPending() {
			return ErrNotPending
		}

		now := s.now()
		switch sub.Type {
		case models.SUBMISSION_TYPE_NEW:
			business, err = s.applyNewBusiness(repos, sub)
		case models.SUBMISSION_TYPE_CLAIM:
			business, err = s.applyClaim(repos, sub, now)
		case models.SUBMISSION_TYPE_REVISION:
			business, err = s.applyRevision(repos, sub, now)
		default:
			err = ErrUnknownType
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"reviewed_at":    now,
			"reviewed_by_id": optionalID(reviewerID),
			"reviewer_notes": strings.TrimSpace(notes),
		}
		if sub.Type == models.SUBMISSION_TYPE_NEW {
			updates["created_business_id"] = business.ID
		}
		// a concurrent decision makes this match no row and rolls the effects back
		ok, err := repos.Submission.TransitionStatus(sub.ID, models.SUBMISSION_STATUS_PENDING, models.SUBMISSION_STATUS_APPROVED, updates)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotPending
		}

		sub, err = repos.Submission.GetByID(sub.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Infof("[Submission] #%d (%s) approved, business %d", sub.ID, sub.Type, business.ID)
	if s.OnBusinessChanged != nil {
		s.OnBusinessChanged()
	}
	s.notify.SubmissionApproved(sub, business)
	return sub, nil
}

func (s *Service) applyNewBusiness(repos *repository.Repositories, sub *models.Submission) (*models.Business, error) {
	payload, err := sub.Payload()
	if err != nil {
		return nil, fmt.Errorf("corrupt submission data: %w", err)
	}
	b := &models.Business{Status: models.BUSINESS_STATUS_PUBLISH, Verified: true}
	b.ApplyFields(payload.Fields)
	if b.Title == "" {
		b.Title = sub.BusinessName
	}
	if err := listing.Create(repos, b, payload.AreaID, payload.CategoryIDs); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) applyClaim(repos *repository.Repositories, sub *models.Submission, now time.Time) (*models.Business, error) {
	if sub.ClaimedBusinessID == nil {
		return nil, ErrBusinessNotFound
	}
	b, err := repos.Business.GetByID(*sub.ClaimedBusinessID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.Claimed {
		return nil, ErrAlreadyClaimed
	}

	err = repos.Business.UpdateColumns(b.ID, map[string]interface{}{
		"owner_user_id": sub.SubmitterUserID,
		"owner_name":    sub.SubmitterName,
		"owner_email":   sub.SubmitterEmail,
		"owner_phone":   sub.SubmitterPhone,
		"claimed":       true,
		"verified":      true,
		"claimed_at":    now,
	})
	if err != nil {
		return nil, err
	}
	if sub.SubmitterUserID != nil {
		if err := repos.User.UpdateRole(*sub.SubmitterUserID, models.ROLE_OWNER); err != nil {
			return nil, err
		}
	}
	return repos.Business.GetByID(b.ID)
}

func (s *Service) applyRevision(repos *repository.Repositories, sub *models.Submission, now time.Time) (*models.Business, error) {
	if sub.ClaimedBusinessID == nil {
		return nil, ErrBusinessNotFound
	}
	b, err := repos.Business.GetByID(*sub.ClaimedBusinessID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, err
	}
	payload, err := sub.Payload()
	if err != nil {
		return nil, fmt.Errorf("corrupt submission data: %w", err)
	}

	b.ApplyFields(payload.Fields)
	b.LastRevisionAt = &now
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid revision: %w", err)
	}
	if err := repos.Business.Update(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Reject closes a pending submission without touching any listing and frees
// the business for new claims.
func (s *Service) Reject(ctx context.Context, id uint, reviewerID uint, reason string) (*models.Submission, error) {
	_ = ctx
	repos := s.repos()
	now := s.now()
	ok, err := repos.Submission.TransitionStatus(id, models.SUBMISSION_STATUS_PENDING, models.SUBMISSION_STATUS_REJECTED, map[string]interface{}{
		"reviewed_at":              now,
		"reviewed_by_id":           optionalID(reviewerID),
		"reviewer_notes":           strings.TrimSpace(reason),
		"active_claim_business_id": nil,
	})
	if err != nil {
		return nil, err
	}

	sub, err := repos.Submission.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPending
	}

	log.Infof("[Submission] #%d (%s) rejected", sub.ID, sub.Type)
	s.notify.SubmissionRejected(sub, strings.TrimSpace(reason))
	return sub, nil
}

// SubmitRevision stores the changed fields of an owner edit for review.
func (s *Service) SubmitRevision(ctx context.Context, in RevisionInput) (*models.Submission, map[string]string, error) {
	_ = ctx
	repos := s.repos()
	b, err := repos.Business.GetByID(in.BusinessID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if !b.IsOwnedBy(in.UserID) {
		return nil, nil, ErrNotOwner
	}

	diff := Diff(b, in.Values)
	if len(diff) == 0 {
		return nil, nil, ErrEmptyRevision
	}

	user, err := repos.User.GetByID(in.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load owner: %w", err)
	}

	sub := &models.Submission{
		Type:              models.SUBMISSION_TYPE_REVISION,
		Status:            models.SUBMISSION_STATUS_PENDING,
		BusinessName:      b.Title,
		ClaimedBusinessID: &b.ID,
		SubmitterUserID:   &user.ID,
		SubmitterName:     user.Name,
		SubmitterEmail:    user.Email,
		SubmitterPhone:    user.Phone,
		Message:           strings.TrimSpace(in.Message),
		IP:                in.IP,
	}
	if err := sub.SetPayload(models.SubmissionPayload{Fields: diff}); err != nil {
		return nil, nil, err
	}
	if err := sub.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid revision: %w", err)
	}
	if err := repos.Submission.Create(sub); err != nil {
		return nil, nil, fmt.Errorf("failed to store revision: %w", err)
	}

	log.Infof("[Submission] revision #%d for business %d with %d changed fields", sub.ID, b.ID, len(diff))
	s.notify.SubmissionReceived(sub)
	return sub, diff, nil
}

// Changes returns the displayable diff of a revision or the proposed fields of
// a new listing.
func (s *Service) Changes(sub *models.Submission) ([]Change, error) {
	payload, err := sub.Payload()
	if err != nil {
		return nil, err
	}
	var current *models.Business
	if sub.Type == models.SUBMISSION_TYPE_REVISION && sub.ClaimedBusinessID != nil {
		current, err = s.repos().Business.GetByIDUnscoped(*sub.ClaimedBusinessID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return Changes(current, payload.Fields), nil
}
