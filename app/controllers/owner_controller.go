package controllers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/submission"
	"github.com/ManuelReschke/bizdir/internal/pkg/usercontext"
	"github.com/ManuelReschke/bizdir/internal/pkg/viewmodel"
)

// OwnerController is the dashboard of business owners
type OwnerController struct {
	svc *directory.Services
}

func NewOwnerController(svc *directory.Services) *OwnerController {
	return &OwnerController{svc: svc}
}

// HandleDashboard lists the claimed businesses and the user's requests.
func (oc *OwnerController) HandleDashboard(c *fiber.Ctx) error {
	uid := usercontext.GetUserID(c)
	owned, _, err := oc.svc.Repos.Business.List(repository.BusinessFilter{OwnerUserID: uid}, 0, 0)
	if err != nil {
		return err
	}
	subs, err := oc.svc.Repos.Submission.ListBySubmitter(uid)
	if err != nil {
		return err
	}
	return render(c, "owner/dashboard", fiber.Map{
		"Title":       "My businesses",
		"Cards":       viewmodel.BusinessCards(owned, nil),
		"Submissions": subs,
	})
}

func (oc *OwnerController) ownedBusiness(c *fiber.Ctx) (*models.Business, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, submission.ErrBusinessNotFound
	}
	b, err := oc.svc.Repos.Business.GetByID(id)
	if err != nil {
		return nil, submission.ErrBusinessNotFound
	}
	if !b.IsOwnedBy(usercontext.GetUserID(c)) {
		return nil, submission.ErrNotOwner
	}
	return b, nil
}

func ownerEditableFields() []models.BusinessField {
	var out []models.BusinessField
	for _, f := range models.BusinessFields() {
		if f.OwnerEditable {
			out = append(out, f)
		}
	}
	return out
}

// HandleEdit shows the revision form.
func (oc *OwnerController) HandleEdit(c *fiber.Ctx) error {
	b, err := oc.ownedBusiness(c)
	if errors.Is(err, submission.ErrNotOwner) {
		return flash.Error(c, "/owner", err.Error())
	}
	if err != nil {
		return notFound(c)
	}
	pending, err := oc.svc.Repos.Submission.ListByBusiness(b.ID, models.SUBMISSION_TYPE_REVISION)
	if err != nil {
		return err
	}
	return render(c, "owner/edit", fiber.Map{
		"Title":     "Edit " + b.Title,
		"Business":  b,
		"Fields":    ownerEditableFields(),
		"Values":    b.FieldValues(),
		"Revisions": pending,
	})
}

// HandleEditPost stores the changed fields as a revision for review.
func (oc *OwnerController) HandleEditPost(c *fiber.Ctx) error {
	b, err := oc.ownedBusiness(c)
	if errors.Is(err, submission.ErrNotOwner) {
		return flash.Error(c, "/owner", err.Error())
	}
	if err != nil {
		return notFound(c)
	}
	back := fmt.Sprintf("/owner/businesses/%d/edit", b.ID)

	values := make(map[string]string)
	for _, f := range ownerEditableFields() {
		// unchecked boxes are absent from the form
		values[f.Key] = strings.TrimSpace(c.FormValue(f.Key))
	}

	_, diff, err := oc.svc.Submissions.SubmitRevision(c.UserContext(), submission.RevisionInput{
		BusinessID: b.ID,
		UserID:     usercontext.GetUserID(c),
		Values:     values,
		Message:    c.FormValue("message"),
		IP:         GetClientIP(c),
	})
	if err != nil {
		return flash.Error(c, back, submissionMessage(err))
	}
	return flash.Success(c, "/owner", fmt.Sprintf("Your changes to %d field(s) were sent for review.", len(diff)))
}
