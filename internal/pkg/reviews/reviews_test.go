package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/testutil"
)

func setup(t *testing.T) (*Service, *repository.Repositories, *models.Business) {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.NewCache(t)
	repos := repository.NewRepositories(db)
	b := &models.Business{Title: "Main Street Bakery", Slug: "main-street-bakery", Status: models.BUSINESS_STATUS_PUBLISH}
	require.NoError(t, repos.Business.Create(b))
	return NewService(repos.Review, repos.Business, time.Minute), repos, b
}

func validInput(businessID uint, ip string) Input {
	return Input{
		BusinessID: businessID,
		Name:       "Marge",
		Email:      "marge@example.com",
		Text:       "Lovely bread and friendly staff.",
		Rating:     5,
		IP:         ip,
	}
}

func TestSubmitHoneypotReportsSuccessWithoutInsert(t *testing.T) {
	svc, repos, b := setup(t)

	in := validInput(b.ID, "203.0.113.1")
	in.Website = "http://spam.example.com"
	review, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, review)

	rows, total, err := repos.Review.List(repository.ReviewListOptions{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}

func TestSubmitStoresUnapprovedAndThrottles(t *testing.T) {
	svc, repos, b := setup(t)

	review, err := svc.Submit(context.Background(), validInput(b.ID, "203.0.113.2"))
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.False(t, review.Approved)
	assert.Equal(t, models.REVIEW_SOURCE_WEBSITE, review.Source)

	_, err = svc.Submit(context.Background(), validInput(b.ID, "203.0.113.2"))
	assert.ErrorIs(t, err, ErrThrottled)

	pending, err := repos.Review.CountByApproved(false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
}

func TestSubmitValidation(t *testing.T) {
	svc, _, b := setup(t)

	tests := []struct {
		name   string
		mutate func(*Input)
		want   error
	}{
		{"missing email", func(in *Input) { in.Email = "" }, ErrInvalid},
		{"bad email", func(in *Input) { in.Email = "marge" }, ErrInvalid},
		{"rating too high", func(in *Input) { in.Rating = 6 }, ErrInvalid},
		{"short text", func(in *Input) { in.Text = "ok" }, ErrInvalid},
		{"unknown business", func(in *Input) { in.BusinessID = b.ID + 100 }, ErrBusinessNotFound},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(b.ID, "198.51.100."+string(rune('1'+i)))
			tt.mutate(&in)
			_, err := svc.Submit(context.Background(), in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSummaryWithoutApprovedReviews(t *testing.T) {
	svc, repos, b := setup(t)

	_, err := svc.Submit(context.Background(), validInput(b.ID, "203.0.113.3"))
	require.NoError(t, err)

	sum, err := svc.Summary(b.ID)
	require.NoError(t, err)
	assert.False(t, sum.HasAverage)
	assert.Zero(t, sum.Count)
	assert.Equal(t, "0 reviews", sum.Label)

	require.NoError(t, svc.Add(context.Background(), &models.Review{
		BusinessID: b.ID, ReviewerName: "Admin", ReviewText: "Entered from the phone call.", Rating: 4, Approved: true,
	}))
	require.NoError(t, svc.Add(context.Background(), &models.Review{
		BusinessID: b.ID, ReviewerName: "Admin", ReviewText: "Another approved entry here.", Rating: 5, Approved: true,
	}))

	sum, err = svc.Summary(b.ID)
	require.NoError(t, err)
	assert.True(t, sum.HasAverage)
	assert.Equal(t, 4.5, sum.Average)
	assert.Equal(t, int64(2), sum.Count)

	approved, err := repos.Review.ListForBusiness(b.ID, true)
	require.NoError(t, err)
	assert.Len(t, approved, 2)
}

func TestModerate(t *testing.T) {
	svc, repos, b := setup(t)
	r1, err := svc.Submit(context.Background(), validInput(b.ID, "203.0.113.4"))
	require.NoError(t, err)
	r2, err := svc.Submit(context.Background(), validInput(b.ID, "203.0.113.5"))
	require.NoError(t, err)

	n, err := svc.Moderate("approve", []uint{r1.ID, r2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.Moderate("unapprove", []uint{r2.ID})
	require.NoError(t, err)
	_, err = svc.Moderate("delete", []uint{r1.ID})
	require.NoError(t, err)

	count, err := svc.Summary(b.ID)
	require.NoError(t, err)
	assert.Zero(t, count.Count)

	_, err = repos.Review.GetByID(r2.ID)
	require.NoError(t, err)

	_, err = svc.Moderate("archive", []uint{r2.ID})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestCountLabel(t *testing.T) {
	assert.Equal(t, "1 review", CountLabel(1))
	assert.Equal(t, "3 reviews", CountLabel(3))
}
