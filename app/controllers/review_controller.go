package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/permalink"
	"github.com/ManuelReschke/bizdir/internal/pkg/reviews"
)

const reviewThanks = "Thank you for your review! It will appear once it has been approved."

// ReviewController accepts public reviews
type ReviewController struct {
	svc *directory.Services
}

func NewReviewController(svc *directory.Services) *ReviewController {
	return &ReviewController{svc: svc}
}

func (rc *ReviewController) submit(c *fiber.Ctx, businessID uint) error {
	rating, _ := strconv.Atoi(c.FormValue("rating"))
	_, err := rc.svc.Reviews.Submit(c.UserContext(), reviews.Input{
		BusinessID: businessID,
		Name:       c.FormValue("reviewer_name"),
		Email:      c.FormValue("reviewer_email"),
		Text:       c.FormValue("review_text"),
		Rating:     rating,
		Website:    c.FormValue("website"),
		IP:         GetClientIP(c),
	})
	return err
}

// HandleSubmit is the form post of the listing page.
func (rc *ReviewController) HandleSubmit(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return notFound(c)
	}
	b, err := rc.svc.Repos.Business.GetByID(id)
	if err != nil {
		return notFound(c)
	}
	back := permalink.BusinessURL(b) + "#reviews"
	if !models.GetDirectorySettings().ReviewsEnabled {
		return flash.Error(c, back, "Reviews are currently closed")
	}

	if err := rc.submit(c, b.ID); err != nil {
		return flash.Error(c, back, reviewMessage(err))
	}
	return flash.Success(c, back, reviewThanks)
}

// HandleSubmitAjax answers {success, message}.
func (rc *ReviewController) HandleSubmitAjax(c *fiber.Ctx) error {
	if !models.GetDirectorySettings().ReviewsEnabled {
		return jsonError(c, fiber.StatusForbidden, "Reviews are currently closed")
	}
	err := rc.submit(c, parseID(c.FormValue("business_id")))
	switch {
	case err == nil:
		return jsonSuccess(c, reviewThanks, nil)
	case errors.Is(err, reviews.ErrThrottled):
		return jsonError(c, fiber.StatusTooManyRequests, reviewMessage(err))
	case errors.Is(err, reviews.ErrBusinessNotFound), errors.Is(err, reviews.ErrInvalid):
		return jsonError(c, fiber.StatusBadRequest, reviewMessage(err))
	default:
		return jsonError(c, fiber.StatusInternalServerError, reviewMessage(err))
	}
}

func reviewMessage(err error) string {
	switch {
	case errors.Is(err, reviews.ErrThrottled), errors.Is(err, reviews.ErrInvalid):
		return err.Error()
	case errors.Is(err, reviews.ErrBusinessNotFound):
		return "This business does not exist"
	}
	log.Errorf("[Review] %v", err)
	return "Your review could not be saved. Please try again later."
}
