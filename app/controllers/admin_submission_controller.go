package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/internal/pkg/submission"
	"github.com/ManuelReschke/bizdir/internal/pkg/usercontext"
)

// HandleSubmissions lists submissions filtered by status and type.
func (ac *AdminController) HandleSubmissions(c *fiber.Ctx) error {
	status := c.Query("status", models.SUBMISSION_STATUS_PENDING)
	if status == "all" {
		status = ""
	}
	subType := c.Query("type")

	page := pageNumber(c)
	base := fmt.Sprintf("/admin/submissions?status=%s&type=%s", c.Query("status", models.SUBMISSION_STATUS_PENDING), subType)
	pager := newPagination(page, adminPageSize, 0, base)
	subs, total, err := ac.svc.Repos.Submission.List(status, subType, pager.Offset(), adminPageSize)
	if err != nil {
		return ac.handleError(c, "Failed to load submissions", err)
	}

	pendingCount, _ := ac.svc.Repos.Submission.CountByStatus(models.SUBMISSION_STATUS_PENDING)
	return render(c, "admin/submissions", fiber.Map{
		"Title":        "Submissions",
		"Submissions":  subs,
		"Status":       c.Query("status", models.SUBMISSION_STATUS_PENDING),
		"Type":         subType,
		"PendingCount": pendingCount,
		"Pagination":   newPagination(page, adminPageSize, total, base),
	})
}

// HandleSubmissionShow shows one submission with its proposed changes.
func (ac *AdminController) HandleSubmissionShow(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Redirect("/admin/submissions")
	}
	sub, err := ac.svc.Repos.Submission.GetByID(id)
	if err != nil {
		return ac.handleError(c, "Submission not found", err)
	}
	changes, err := ac.svc.Submissions.Changes(sub)
	if err != nil {
		return ac.handleError(c, "Failed to read submission data", err)
	}

	data := fiber.Map{
		"Title":      "Submission #" + c.Params("id"),
		"Submission": sub,
		"Changes":    changes,
	}
	target := sub.ClaimedBusinessID
	if target == nil {
		target = sub.CreatedBusinessID
	}
	if target != nil {
		if b, err := ac.svc.Repos.Business.GetByIDUnscoped(*target); err == nil {
			data["Business"] = b
		}
	}
	return render(c, "admin/submission_show", data)
}

// HandleSubmissionApprove is the ajax approve action.
func (ac *AdminController) HandleSubmissionApprove(c *fiber.Ctx) error {
	id := parseID(c.FormValue("submission_id"))
	if id == 0 {
		return jsonError(c, fiber.StatusBadRequest, "Missing submission id")
	}
	sub, err := ac.svc.Submissions.Approve(c.UserContext(), id, usercontext.GetUserID(c), c.FormValue("notes"))
	if err != nil {
		return ac.transitionError(c, err)
	}
	extra := fiber.Map{"status": sub.Status}
	if sub.CreatedBusinessID != nil {
		extra["business_id"] = *sub.CreatedBusinessID
	}
	return jsonSuccess(c, sub.TypeLabel()+" approved", extra)
}

// HandleSubmissionReject is the ajax reject action.
func (ac *AdminController) HandleSubmissionReject(c *fiber.Ctx) error {
	id := parseID(c.FormValue("submission_id"))
	if id == 0 {
		return jsonError(c, fiber.StatusBadRequest, "Missing submission id")
	}
	sub, err := ac.svc.Submissions.Reject(c.UserContext(), id, usercontext.GetUserID(c), c.FormValue("reason"))
	if err != nil {
		return ac.transitionError(c, err)
	}
	return jsonSuccess(c, sub.TypeLabel()+" rejected", fiber.Map{"status": sub.Status})
}

func (ac *AdminController) transitionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, submission.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, submissionMessage(err))
	case errors.Is(err, submission.ErrNotPending):
		return jsonError(c, fiber.StatusConflict, submissionMessage(err))
	case errors.Is(err, submission.ErrBusinessNotFound),
		errors.Is(err, submission.ErrAlreadyClaimed),
		errors.Is(err, submission.ErrAlreadyVerified),
		errors.Is(err, submission.ErrMissingBusinessName):
		return jsonError(c, fiber.StatusUnprocessableEntity, submissionMessage(err))
	}
	return jsonError(c, fiber.StatusInternalServerError, submissionMessage(err))
}
