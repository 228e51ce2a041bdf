package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/jinzhu/inflection"
	"gorm.io/gorm"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/ratelimit"
)

const throttleAction = "review"

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrThrottled        = errors.New("please wait a moment before submitting another review")
	ErrInvalid          = errors.New("invalid review")
	ErrUnknownAction    = errors.New("unknown review action")
)

// Input is a review sent through the public form. Website is the honeypot
// field and must stay empty.
type Input struct {
	BusinessID uint   `validate:"required"`
	Name       string `validate:"required,min=2,max=100"`
	Email      string `validate:"required,email,max=100"`
	Text       string `validate:"required,min=10,max=5000"`
	Rating     int    `validate:"required,min=1,max=5"`
	Website    string
	IP         string
}

// Summary is the aggregate shown next to a listing.
type Summary struct {
	Average    float64
	HasAverage bool
	Count      int64
	Label      string
}

type Service struct {
	reviews    repository.ReviewRepository
	businesses repository.BusinessRepository
	throttle   time.Duration
	validate   *validator.Validate
	now        func() time.Time
}

func NewService(reviews repository.ReviewRepository, businesses repository.BusinessRepository, throttle time.Duration) *Service {
	return &Service{
		reviews:    reviews,
		businesses: businesses,
		throttle:   throttle,
		validate:   validator.New(),
		now:        time.Now,
	}
}

// Submit stores a public review as unapproved. A filled honeypot reports
// success without storing anything; the returned review is nil then.
func (s *Service) Submit(ctx context.Context, in Input) (*models.Review, error) {
	_ = ctx
	if strings.TrimSpace(in.Website) != "" {
		log.Infof("[Reviews] honeypot triggered from %s", in.IP)
		return nil, nil
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Text = strings.TrimSpace(in.Text)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, message(err))
	}

	if _, err := s.businesses.GetByID(in.BusinessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	if !ratelimit.Allow(throttleAction, in.IP, s.throttle) {
		return nil, ErrThrottled
	}

	review := &models.Review{
		BusinessID:    in.BusinessID,
		ReviewerName:  in.Name,
		ReviewerEmail: in.Email,
		ReviewText:    in.Text,
		Rating:        in.Rating,
		ReviewDate:    s.now(),
		Source:        models.REVIEW_SOURCE_WEBSITE,
		Approved:      false,
	}
	if err := s.reviews.Create(review); err != nil {
		ratelimit.Reset(throttleAction, in.IP)
		return nil, fmt.Errorf("failed to store review: %w", err)
	}
	return review, nil
}

// Add stores a review entered by an admin, approved as requested.
func (s *Service) Add(ctx context.Context, review *models.Review) error {
	_ = ctx
	if review.ReviewDate.IsZero() {
		review.ReviewDate = s.now()
	}
	if review.Source == "" {
		review.Source = models.REVIEW_SOURCE_ADMIN
	}
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, message(err))
	}
	if _, err := s.businesses.GetByIDUnscoped(review.BusinessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBusinessNotFound
		}
		return err
	}
	return s.reviews.Create(review)
}

// Summary aggregates the approved reviews of a business.
func (s *Service) Summary(businessID uint) (Summary, error) {
	avg, ok, err := s.reviews.AverageRating(businessID)
	if err != nil {
		return Summary{}, err
	}
	count, err := s.reviews.ApprovedCount(businessID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Average: avg, HasAverage: ok, Count: count, Label: CountLabel(count)}, nil
}

// Approved lists the approved reviews, newest first.
func (s *Service) Approved(businessID uint) ([]models.Review, error) {
	return s.reviews.ListForBusiness(businessID, true)
}

// Moderate applies approve, unapprove or delete to the given reviews.
func (s *Service) Moderate(action string, ids []uint) (int64, error) {
	switch action {
	case "approve":
		return s.reviews.SetApproved(ids, true)
	case "unapprove":
		return s.reviews.SetApproved(ids, false)
	case "delete":
		return s.reviews.DeleteByIDs(ids)
	}
	return 0, ErrUnknownAction
}

// CountLabel renders "1 review" / "3 reviews".
func CountLabel(n int64) string {
	word := "review"
	if n != 1 {
		word = inflection.Plural(word)
	}
	return fmt.Sprintf("%d %s", n, word)
}

func message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "please enter a valid email address"
	case "min", "max":
		if fe.Field() == "Rating" {
			return "rating must be between 1 and 5"
		}
		return fmt.Sprintf("%s must be between the allowed length (%s %s)", field, fe.Tag(), fe.Param())
	}
	return field + " is invalid"
}
