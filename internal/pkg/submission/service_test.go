package submission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/config"
	"github.com/ManuelReschke/bizdir/internal/pkg/listing"
	"github.com/ManuelReschke/bizdir/internal/pkg/testutil"
)

type recorder struct {
	NopNotifier
	received []uint
	verify   []string
	approved []uint
	rejected []string
}

func (r *recorder) SubmissionReceived(s *models.Submission) { r.received = append(r.received, s.ID) }
func (r *recorder) ClaimVerification(_ *models.Submission, url string) {
	r.verify = append(r.verify, url)
}
func (r *recorder) SubmissionApproved(s *models.Submission, _ *models.Business) {
	r.approved = append(r.approved, s.ID)
}
func (r *recorder) SubmissionRejected(_ *models.Submission, reason string) {
	r.rejected = append(r.rejected, reason)
}

type env struct {
	db    *gorm.DB
	repos *repository.Repositories
	svc   *Service
	notes *recorder
	area  *models.Term
	cat   *models.Term
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)

	area := &models.Term{Taxonomy: models.TAXONOMY_AREA, Name: "Springfield", Slug: "springfield"}
	require.NoError(t, repos.Term.Create(area))
	cat := &models.Term{Taxonomy: models.TAXONOMY_CATEGORY, Name: "Bakeries", Slug: "bakeries"}
	require.NoError(t, repos.Term.Create(cat))

	cfg := config.Defaults()
	cfg.PublicDomain = "https://dir.example.com/"
	notes := &recorder{}
	return &env{db: db, repos: repos, svc: NewService(db, notes, cfg), notes: notes, area: area, cat: cat}
}

func (e *env) business(t *testing.T, b *models.Business) *models.Business {
	t.Helper()
	require.NoError(t, listing.Create(e.repos, b, e.area.ID, []uint{e.cat.ID}))
	return b
}

func (e *env) user(t *testing.T, name, email string) *models.User {
	t.Helper()
	u, err := models.CreateUser(name, email, "secret123")
	require.NoError(t, err)
	require.NoError(t, e.repos.User.Create(u))
	return u
}

func newInput(name string) NewBusinessInput {
	return NewBusinessInput{
		Submitter: Submitter{Name: "Ned Flanders", Email: "Ned@Example.com ", IP: "127.0.0.1"},
		Fields: map[string]string{
			"business_name":  name,
			"business_phone": " 555-0199 ",
			"not_a_field":    "dropped",
		},
	}
}

func TestSubmitNewAndApproveCreatesListing(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	in := newInput("Leftorium")
	in.AreaID = e.area.ID
	in.CategoryIDs = []uint{e.cat.ID}
	sub, err := e.svc.SubmitNew(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.SUBMISSION_STATUS_PENDING, sub.Status)
	assert.Equal(t, "ned@example.com", sub.SubmitterEmail)
	payload, err := sub.Payload()
	require.NoError(t, err)
	assert.Equal(t, "555-0199", payload.Fields["business_phone"])
	assert.NotContains(t, payload.Fields, "not_a_field")

	changed := 0
	e.svc.OnBusinessChanged = func() { changed++ }
	approved, err := e.svc.Approve(ctx, sub.ID, 7, " looks good ")
	require.NoError(t, err)
	assert.Equal(t, models.SUBMISSION_STATUS_APPROVED, approved.Status)
	assert.Equal(t, "looks good", approved.ReviewerNotes)
	require.NotNil(t, approved.CreatedBusinessID)
	require.NotNil(t, approved.ReviewedAt)
	assert.Equal(t, 1, changed)

	b, err := e.repos.Business.GetByID(*approved.CreatedBusinessID)
	require.NoError(t, err)
	assert.Equal(t, "Leftorium", b.Title)
	assert.Equal(t, "leftorium", b.Slug)
	assert.Equal(t, models.BUSINESS_STATUS_PUBLISH, b.Status)
	assert.True(t, b.Verified)
	assert.Equal(t, "555-0199", b.Phone)
	require.NotNil(t, b.AreaID)
	assert.Equal(t, e.area.ID, *b.AreaID)
	require.Len(t, b.Categories, 1)

	assert.Equal(t, []uint{sub.ID}, e.notes.received)
	assert.Equal(t, []uint{sub.ID}, e.notes.approved)
}

func TestSubmitNewRejectsBadInput(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.SubmitNew(ctx, newInput("  "))
	assert.ErrorIs(t, err, ErrMissingBusinessName)

	in := newInput("Kwik-E-Mart")
	in.AreaID = e.cat.ID
	_, err = e.svc.SubmitNew(ctx, in)
	assert.ErrorIs(t, err, listing.ErrInvalidArea)

	in = newInput("Kwik-E-Mart")
	in.CategoryIDs = []uint{e.area.ID}
	_, err = e.svc.SubmitNew(ctx, in)
	assert.ErrorIs(t, err, listing.ErrInvalidCategory)

	_, err = e.svc.SubmitNew(ctx, newInput("Kwik-E-Mart"))
	require.NoError(t, err)
	_, err = e.svc.SubmitNew(ctx, newInput("Kwik-E-Mart"))
	assert.ErrorIs(t, err, ErrDuplicateSubmission)
}

func TestApproveTwiceIsRefused(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	sub, err := e.svc.SubmitNew(ctx, newInput("Moe's Tavern"))
	require.NoError(t, err)
	_, err = e.svc.Approve(ctx, sub.ID, 1, "")
	require.NoError(t, err)

	_, err = e.svc.Approve(ctx, sub.ID, 1, "")
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = e.svc.Reject(ctx, sub.ID, 1, "too late")
	assert.ErrorIs(t, err, ErrNotPending)

	var n int64
	require.NoError(t, e.db.Model(&models.Business{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	_, err = e.svc.Approve(ctx, 999, 1, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectLeavesDirectoryUntouched(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	sub, err := e.svc.SubmitNew(ctx, newInput("Frying Dutchman"))
	require.NoError(t, err)

	rejected, err := e.svc.Reject(ctx, sub.ID, 3, " duplicate ")
	require.NoError(t, err)
	assert.Equal(t, models.SUBMISSION_STATUS_REJECTED, rejected.Status)
	assert.Equal(t, "duplicate", rejected.ReviewerNotes)
	assert.Equal(t, []string{"duplicate"}, e.notes.rejected)

	var n int64
	require.NoError(t, e.db.Model(&models.Business{}).Count(&n).Error)
	assert.Zero(t, n)

	_, err = e.svc.Reject(ctx, 999, 3, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClaimVerifyAndApprove(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	b := e.business(t, &models.Business{Title: "Android's Dungeon", Email: "shop@example.com"})
	owner := e.user(t, "Comic Book Guy", "cbg@example.com")

	sub, err := e.svc.Claim(ctx, ClaimInput{
		Submitter:  Submitter{UserID: owner.ID, Name: "Comic Book Guy", Email: "cbg@example.com"},
		BusinessID: b.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, sub.VerificationToken)
	require.Len(t, e.notes.verify, 1)
	assert.Equal(t, "https://dir.example.com/claim/verify?token="+sub.VerificationToken, e.notes.verify[0])

	_, err = e.svc.Claim(ctx, ClaimInput{
		Submitter:  Submitter{Name: "Someone Else", Email: "else@example.com"},
		BusinessID: b.ID,
	})
	assert.ErrorIs(t, err, ErrClaimPending)

	verified, auto, err := e.svc.VerifyClaim(ctx, sub.VerificationToken)
	require.NoError(t, err)
	assert.False(t, auto, "claimant email differs from the listing email")
	assert.NotNil(t, verified.EmailVerifiedAt)
	assert.True(t, verified.IsPending())

	_, _, err = e.svc.VerifyClaim(ctx, sub.VerificationToken)
	assert.ErrorIs(t, err, ErrEmailVerified)

	_, err = e.svc.Approve(ctx, sub.ID, 1, "")
	require.NoError(t, err)

	got, err := e.repos.Business.GetByID(b.ID)
	require.NoError(t, err)
	assert.True(t, got.Claimed)
	assert.True(t, got.Verified)
	assert.True(t, got.IsOwnedBy(owner.ID))
	assert.Equal(t, "cbg@example.com", got.OwnerEmail)

	u, err := e.repos.User.GetByID(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ROLE_OWNER, u.Role)

	_, err = e.svc.Claim(ctx, ClaimInput{
		Submitter:  Submitter{Name: "Late Claimant", Email: "late@example.com"},
		BusinessID: b.ID,
	})
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestClaimAutoApprovesMatchingEmail(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	b := e.business(t, &models.Business{Title: "Krusty Burger", Email: "Krusty@Example.com"})

	sub, err := e.svc.Claim(ctx, ClaimInput{
		Submitter:  Submitter{Name: "Krusty", Email: "krusty@example.com"},
		BusinessID: b.ID,
	})
	require.NoError(t, err)

	approved, auto, err := e.svc.VerifyClaim(ctx, sub.VerificationToken)
	require.NoError(t, err)
	assert.True(t, auto)
	assert.Equal(t, models.SUBMISSION_STATUS_APPROVED, approved.Status)
	assert.Nil(t, approved.ReviewedByID)

	got, err := e.repos.Business.GetByID(b.ID)
	require.NoError(t, err)
	assert.True(t, got.Claimed)
}

func TestRejectedClaimFreesListing(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	b := e.business(t, &models.Business{Title: "Lard Lad Donuts"})

	first, err := e.svc.Claim(ctx, ClaimInput{Submitter: Submitter{Name: "Homer", Email: "homer@example.com"}, BusinessID: b.ID})
	require.NoError(t, err)
	_, err = e.svc.Reject(ctx, first.ID, 1, "not the owner")
	require.NoError(t, err)

	second, err := e.svc.Claim(ctx, ClaimInput{Submitter: Submitter{Name: "Lard Lad", Email: "lad@example.com"}, BusinessID: b.ID})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestVerifyClaimTokens(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	b := e.business(t, &models.Business{Title: "Springfield Tire Yard"})

	_, _, err := e.svc.VerifyClaim(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, _, err = e.svc.VerifyClaim(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	sub, err := e.svc.Claim(ctx, ClaimInput{Submitter: Submitter{Name: "Tire Guy", Email: "tires@example.com"}, BusinessID: b.ID})
	require.NoError(t, err)

	e.svc.now = func() time.Time { return time.Now().Add(e.svc.cfg.ClaimTokenTTL + time.Hour) }
	_, _, err = e.svc.VerifyClaim(ctx, sub.VerificationToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestClaimUnknownBusiness(t *testing.T) {
	e := setup(t)

	_, err := e.svc.Claim(context.Background(), ClaimInput{Submitter: Submitter{Name: "Nobody", Email: "nobody@example.com"}, BusinessID: 42})
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestClaimOnClaimedListingIsRefused(t *testing.T) {
	e := setup(t)
	b := e.business(t, &models.Business{Title: "Kwik-E-Mart", Claimed: true})
	require.False(t, b.Verified)

	_, err := e.svc.Claim(context.Background(), ClaimInput{
		Submitter:  Submitter{Name: "Snake", Email: "snake@example.com"},
		BusinessID: b.ID,
	})
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	active, err := e.repos.Submission.HasActiveClaim(b.ID)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Empty(t, e.notes.verify)
}

func TestSubmitRevisionAndApprove(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	owner := e.user(t, "Apu Nahasapeemapetilon", "apu@example.com")
	b := e.business(t, &models.Business{
		Title:       "Kwik-E-Mart",
		Phone:       "555-0101",
		Claimed:     true,
		Verified:    true,
		OwnerUserID: &owner.ID,
	})

	_, _, err := e.svc.SubmitRevision(ctx, RevisionInput{BusinessID: b.ID, UserID: owner.ID + 1, Values: map[string]string{"business_phone": "555-0102"}})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, _, err = e.svc.SubmitRevision(ctx, RevisionInput{BusinessID: b.ID, UserID: owner.ID, Values: map[string]string{"business_phone": "555-0101"}})
	assert.ErrorIs(t, err, ErrEmptyRevision)

	sub, diff, err := e.svc.SubmitRevision(ctx, RevisionInput{
		BusinessID: b.ID,
		UserID:     owner.ID,
		Values: map[string]string{
			"business_phone":          "555-0102",
			"business_name":           "Kwik-E-Mart",
			"business_hours_saturday": "0:00 - 24:00",
			"business_premium":        "1",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"business_phone":          "555-0102",
		"business_hours_saturday": "0:00 - 24:00",
	}, diff)
	assert.Equal(t, "apu@example.com", sub.SubmitterEmail)

	changes, err := e.svc.Changes(sub)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "business_phone", changes[0].Key)
	assert.Equal(t, "555-0101", changes[0].Old)
	assert.Equal(t, "555-0102", changes[0].New)

	unchanged, err := e.repos.Business.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0101", unchanged.Phone, "a revision waits for approval")

	_, err = e.svc.Approve(ctx, sub.ID, 1, "")
	require.NoError(t, err)
	got, err := e.repos.Business.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0102", got.Phone)
	assert.Equal(t, "0:00 - 24:00", got.HoursSaturday)
	assert.False(t, got.Premium)
	assert.NotNil(t, got.LastRevisionAt)
}

func TestDiffIgnoresAdminFields(t *testing.T) {
	b := &models.Business{Title: "Lisa's Stand", Premium: false}

	diff := Diff(b, map[string]string{
		"business_premium": "yes",
		"unknown":          "x",
		"business_name":    " Lisa's Stand ",
		"business_city":    "Springfield",
	})
	assert.Equal(t, map[string]string{"business_city": "Springfield"}, diff)
}
