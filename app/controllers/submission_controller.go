package controllers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/bizdir/internal/pkg/listing"
	"github.com/ManuelReschke/bizdir/internal/pkg/permalink"
	"github.com/ManuelReschke/bizdir/internal/pkg/ratelimit"
	"github.com/ManuelReschke/bizdir/internal/pkg/submission"
	"github.com/ManuelReschke/bizdir/internal/pkg/usercontext"
)

const (
	// honeypot input, hidden with CSS
	honeypotField       = "contact_fax"
	submitThrottleKey   = "submission"
	submissionReceived  = "Thank you! Your submission was received and will be reviewed shortly."
	submissionForbidden = "New submissions are currently closed"
	claimReceived       = "Thank you! Please confirm your email address with the link we just sent you."
)

var (
	errCaptcha         = errors.New("please solve the captcha")
	errSubmitThrottled = errors.New("please wait a few minutes before sending another request")
)

// SubmissionController handles the public new listing and claim forms
type SubmissionController struct {
	svc *directory.Services
}

func NewSubmissionController(svc *directory.Services) *SubmissionController {
	return &SubmissionController{svc: svc}
}

func (sc *SubmissionController) HandleNew(c *fiber.Ctx) error {
	if !models.GetDirectorySettings().SubmissionsEnabled {
		return flash.Error(c, "/", submissionForbidden)
	}
	areas, err := sc.svc.Terms.Terms(models.TAXONOMY_AREA)
	if err != nil {
		return err
	}
	categories, err := sc.svc.Terms.Terms(models.TAXONOMY_CATEGORY)
	if err != nil {
		return err
	}
	return render(c, "submission/new", fiber.Map{
		"Title":      "Add your business",
		"Fields":     models.BusinessFields(),
		"Areas":      areas,
		"Categories": categories,
		"Honeypot":   honeypotField,
	})
}

func (sc *SubmissionController) HandleNewPost(c *fiber.Ctx) error {
	if !models.GetDirectorySettings().SubmissionsEnabled {
		return flash.Error(c, "/", submissionForbidden)
	}
	// bots get the success message
	if c.FormValue(honeypotField) != "" {
		log.Infof("[Submission] honeypot triggered from %s", GetClientIP(c))
		return flash.Success(c, "/", submissionReceived)
	}
	if !captchaOK(c) {
		return flash.Error(c, "/submit", "Please solve the captcha")
	}

	ip := GetClientIP(c)
	if !ratelimit.Allow(submitThrottleKey, ip, sc.svc.Config.SubmissionThrottle) {
		return flash.Error(c, "/submit", "Please wait a few minutes before sending another submission")
	}

	fields := make(map[string]string)
	for _, f := range models.BusinessFields() {
		if !f.OwnerEditable {
			continue
		}
		if v := strings.TrimSpace(c.FormValue(f.Key)); v != "" {
			fields[f.Key] = v
		}
	}

	_, err := sc.svc.Submissions.SubmitNew(c.UserContext(), submission.NewBusinessInput{
		Submitter:   submitterFrom(c, ip),
		Fields:      fields,
		AreaID:      parseID(c.FormValue("area_id")),
		CategoryIDs: formIDs(c, "category_ids"),
		Message:     c.FormValue("message"),
	})
	if err != nil {
		ratelimit.Reset(submitThrottleKey, ip)
		return flash.Error(c, "/submit", submissionMessage(err))
	}
	return flash.Success(c, "/", submissionReceived)
}

func (sc *SubmissionController) HandleClaim(c *fiber.Ctx) error {
	b, ok := sc.claimTarget(c)
	if !ok {
		return notFound(c)
	}
	return render(c, "submission/claim", fiber.Map{
		"Title":     "Claim " + b.Title,
		"Business":  b,
		"URL":       permalink.BusinessURL(b),
		"Claimable": b.IsClaimable(),
		"Honeypot":  honeypotField,
	})
}

func (sc *SubmissionController) HandleClaimPost(c *fiber.Ctx) error {
	b, ok := sc.claimTarget(c)
	if !ok {
		return notFound(c)
	}
	back := fmt.Sprintf("/claim/%d", b.ID)
	if c.FormValue(honeypotField) != "" {
		return flash.Success(c, permalink.BusinessURL(b), submissionReceived)
	}
	if _, err := sc.openClaim(c, b.ID); err != nil {
		return flash.Error(c, back, submissionMessage(err))
	}
	return flash.Success(c, permalink.BusinessURL(b), claimReceived)
}

// HandleClaimAjax answers {success, message, submission_id}.
func (sc *SubmissionController) HandleClaimAjax(c *fiber.Ctx) error {
	if c.FormValue(honeypotField) != "" {
		return jsonSuccess(c, claimReceived, nil)
	}
	sub, err := sc.openClaim(c, parseID(c.FormValue("business_id")))
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return jsonSuccess(c, claimReceived, fiber.Map{"submission_id": sub.ID})
	case errors.Is(err, submission.ErrAlreadyVerified), errors.Is(err, submission.ErrAlreadyClaimed),
		errors.Is(err, submission.ErrClaimPending):
		return jsonError(c, fiber.StatusConflict, submissionMessage(err))
	case errors.Is(err, submission.ErrBusinessNotFound):
		return jsonError(c, fiber.StatusNotFound, submissionMessage(err))
	case errors.Is(err, errSubmitThrottled):
		return jsonError(c, fiber.StatusTooManyRequests, submissionMessage(err))
	case errors.Is(err, errCaptcha), errors.As(err, &verrs):
		return jsonError(c, fiber.StatusBadRequest, submissionMessage(err))
	default:
		return jsonError(c, fiber.StatusInternalServerError, submissionMessage(err))
	}
}

// openClaim runs the captcha and throttle checks before opening the claim.
// A refused claim does not count against the throttle.
func (sc *SubmissionController) openClaim(c *fiber.Ctx, businessID uint) (*models.Submission, error) {
	if !captchaOK(c) {
		return nil, errCaptcha
	}
	ip := GetClientIP(c)
	if !ratelimit.Allow(submitThrottleKey, ip, sc.svc.Config.SubmissionThrottle) {
		return nil, errSubmitThrottled
	}
	sub, err := sc.svc.Submissions.Claim(c.UserContext(), submission.ClaimInput{
		Submitter:  submitterFrom(c, ip),
		BusinessID: businessID,
		Message:    c.FormValue("message"),
	})
	if err != nil {
		ratelimit.Reset(submitThrottleKey, ip)
		return nil, err
	}
	return sub, nil
}

// HandleVerifyClaim is the link mailed to claimants.
func (sc *SubmissionController) HandleVerifyClaim(c *fiber.Ctx) error {
	sub, approved, err := sc.svc.Submissions.VerifyClaim(c.UserContext(), c.Query("token"))
	switch {
	case err == nil && approved:
		return flash.Success(c, "/owner", "Your email address is confirmed and your claim for "+sub.BusinessName+" was approved.")
	case err == nil:
		return flash.Success(c, "/", "Your email address is confirmed. We will review your claim shortly.")
	case errors.Is(err, submission.ErrEmailVerified):
		return flash.Success(c, "/", "Your email address was already confirmed.")
	default:
		return flash.Error(c, "/", submissionMessage(err))
	}
}

func (sc *SubmissionController) claimTarget(c *fiber.Ctx) (*models.Business, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	b, err := sc.svc.Repos.Business.GetByID(id)
	if err != nil {
		return nil, false
	}
	return b, true
}

func submitterFrom(c *fiber.Ctx, ip string) submission.Submitter {
	s := submission.Submitter{
		Name:  strings.TrimSpace(c.FormValue("submitter_name")),
		Email: strings.TrimSpace(c.FormValue("submitter_email")),
		Phone: strings.TrimSpace(c.FormValue("submitter_phone")),
		IP:    ip,
	}
	if u := usercontext.GetUserContext(c); u.IsLoggedIn {
		s.UserID = u.UserID
		if s.Name == "" {
			s.Name = u.Username
		}
		if s.Email == "" {
			s.Email = u.Email
		}
	}
	return s
}

func captchaOK(c *fiber.Ctx) bool {
	if !hcaptcha.Enabled() {
		return true
	}
	ok, err := hcaptcha.Verify(c.FormValue("h-captcha-response"))
	if err != nil {
		log.Infof("[Submission] captcha rejected: %v", err)
	}
	return ok
}

// submissionMessage turns workflow errors into a message for the submitter.
func submissionMessage(err error) string {
	for _, known := range []error{
		submission.ErrNotFound, submission.ErrBusinessNotFound, submission.ErrNotPending,
		submission.ErrAlreadyVerified, submission.ErrAlreadyClaimed, submission.ErrClaimPending,
		submission.ErrEmptyRevision, submission.ErrNotOwner, submission.ErrDuplicateSubmission,
		submission.ErrMissingBusinessName, submission.ErrInvalidToken, submission.ErrTokenExpired,
		listing.ErrInvalidArea, listing.ErrInvalidCategory, errCaptcha, errSubmitThrottled,
	} {
		if errors.Is(err, known) {
			msg := known.Error()
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("Please check the field %s", fieldLabel(verrs[0].Field()))
	}
	log.Errorf("[Submission] %v", err)
	return "Your request could not be saved. Please try again later."
}

func fieldLabel(structField string) string {
	switch structField {
	case "SubmitterName":
		return "name"
	case "SubmitterEmail":
		return "email"
	case "BusinessName", "Title":
		return "business name"
	case "Email":
		return "business email"
	}
	return strings.ToLower(structField)
}
