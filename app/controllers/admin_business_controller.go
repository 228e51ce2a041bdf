package controllers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/listing"
	"github.com/ManuelReschke/bizdir/internal/pkg/permalink"
	"github.com/ManuelReschke/bizdir/internal/pkg/statistics"
)

// HandleBusinesses lists, searches and filters the listings. ?trashed=1 shows the trash.
func (ac *AdminController) HandleBusinesses(c *fiber.Ctx) error {
	filter := repository.BusinessFilter{
		Search:      strings.TrimSpace(c.Query("q")),
		Status:      c.Query("status"),
		AreaID:      parseID(c.Query("area_id")),
		CategoryID:  parseID(c.Query("category_id")),
		OnlyTrashed: c.Query("trashed") == "1",
	}

	query := url.Values{}
	for _, k := range []string{"q", "status", "area_id", "category_id", "trashed"} {
		if v := c.Query(k); v != "" {
			query.Set(k, v)
		}
	}
	base := "/admin/businesses"
	if enc := query.Encode(); enc != "" {
		base += "?" + enc
	}

	page := pageNumber(c)
	offset := newPagination(page, adminPageSize, 0, base).Offset()
	list, total, err := ac.svc.Repos.Business.List(filter, offset, adminPageSize)
	if err != nil {
		return ac.handleError(c, "Failed to load businesses", err)
	}
	areas, _ := ac.svc.Terms.Terms(models.TAXONOMY_AREA)
	cats, _ := ac.svc.Terms.Terms(models.TAXONOMY_CATEGORY)

	links := make(map[uint]string, len(list))
	for i := range list {
		links[list[i].ID] = permalink.BusinessURL(&list[i])
	}
	return render(c, "admin/businesses", fiber.Map{
		"Title":      "Businesses",
		"Businesses": list,
		"Links":      links,
		"Filter":     filter,
		"Areas":      areas,
		"Categories": cats,
		"Trashed":    filter.OnlyTrashed,
		"Pagination": newPagination(page, adminPageSize, total, base),
	})
}

func (ac *AdminController) renderBusinessForm(c *fiber.Ctx, b *models.Business) error {
	areas, err := ac.svc.Terms.Terms(models.TAXONOMY_AREA)
	if err != nil {
		return ac.handleError(c, "Failed to load areas", err)
	}
	cats, err := ac.svc.Terms.Terms(models.TAXONOMY_CATEGORY)
	if err != nil {
		return ac.handleError(c, "Failed to load categories", err)
	}
	selected := make(map[uint]bool, len(b.Categories))
	for _, t := range b.Categories {
		selected[t.ID] = true
	}
	var areaID uint
	if b.AreaID != nil {
		areaID = *b.AreaID
	}

	title := "New business"
	action := "/admin/businesses"
	if b.ID != 0 {
		title = "Edit " + b.Title
		action = fmt.Sprintf("/admin/businesses/%d", b.ID)
	}
	return render(c, "admin/business_form", fiber.Map{
		"Title":      title,
		"Action":     action,
		"Business":   b,
		"Fields":     models.BusinessFields(),
		"Values":     b.FieldValues(),
		"Areas":      areas,
		"Categories": cats,
		"AreaID":     areaID,
		"Selected":   selected,
		"Statuses":   []string{models.BUSINESS_STATUS_PUBLISH, models.BUSINESS_STATUS_DRAFT},
	})
}

// HandleBusinessNew renders the empty editor.
func (ac *AdminController) HandleBusinessNew(c *fiber.Ctx) error {
	return ac.renderBusinessForm(c, &models.Business{Status: models.BUSINESS_STATUS_PUBLISH})
}

// applyBusinessForm copies every listing field plus status and slug from the form.
func applyBusinessForm(c *fiber.Ctx, b *models.Business) {
	values := make(map[string]string, len(models.BusinessFields()))
	for _, f := range models.BusinessFields() {
		values[f.Key] = c.FormValue(f.Key)
	}
	b.ApplyFields(values)
	if s := c.FormValue("status"); s != "" {
		b.Status = s
	}
	b.Slug = strings.TrimSpace(c.FormValue("slug"))
	b.Verified = c.FormValue("verified") == "on"
}

// HandleBusinessCreate inserts a listing from the editor.
func (ac *AdminController) HandleBusinessCreate(c *fiber.Ctx) error {
	b := &models.Business{}
	applyBusinessForm(c, b)
	err := listing.Create(ac.svc.Repos, b, parseID(c.FormValue("area_id")), formIDs(c, "category_ids"))
	if err != nil {
		return flash.Error(c, "/admin/businesses/new", businessMessage(err))
	}
	statistics.Invalidate()
	return flash.Success(c, fmt.Sprintf("/admin/businesses/%d/edit", b.ID), "Business created")
}

// HandleBusinessEdit renders the editor of an existing listing, trashed ones included.
func (ac *AdminController) HandleBusinessEdit(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Redirect("/admin/businesses")
	}
	b, err := ac.svc.Repos.Business.GetByIDUnscoped(id)
	if err != nil {
		return flash.Error(c, "/admin/businesses", "Business not found")
	}
	return ac.renderBusinessForm(c, b)
}

// HandleBusinessUpdate saves the editor.
func (ac *AdminController) HandleBusinessUpdate(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Redirect("/admin/businesses")
	}
	b, err := ac.svc.Repos.Business.GetByIDUnscoped(id)
	if err != nil {
		return flash.Error(c, "/admin/businesses", "Business not found")
	}
	back := fmt.Sprintf("/admin/businesses/%d/edit", id)

	applyBusinessForm(c, b)
	if b.Slug != "" {
		// re-run the uniqueness check on hand edited slugs
		if err := listing.AssignSlug(ac.svc.Repos.Business, b); err != nil {
			return ac.handleError(c, "Failed to update slug", err)
		}
	}
	catIDs := formIDs(c, "category_ids")
	if catIDs == nil {
		catIDs = []uint{}
	}
	if err := listing.Save(ac.svc.Repos, b, parseID(c.FormValue("area_id")), catIDs); err != nil {
		return flash.Error(c, back, businessMessage(err))
	}
	return flash.Success(c, back, "Business updated")
}

// HandleBusinessTrash moves a listing to the trash.
func (ac *AdminController) HandleBusinessTrash(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Redirect("/admin/businesses")
	}
	if err := ac.svc.Repos.Business.Trash(id); err != nil {
		return ac.handleError(c, "Failed to trash business", err)
	}
	statistics.Invalidate()
	return flash.Success(c, "/admin/businesses", "Business moved to trash")
}

// HandleBusinessRestore takes a listing out of the trash.
func (ac *AdminController) HandleBusinessRestore(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Redirect("/admin/businesses?trashed=1")
	}
	if err := ac.svc.Repos.Business.Restore(id); err != nil {
		return ac.handleError(c, "Failed to restore business", err)
	}
	statistics.Invalidate()
	return flash.Success(c, "/admin/businesses?trashed=1", "Business restored")
}

func businessMessage(err error) string {
	switch {
	case errors.Is(err, listing.ErrInvalidArea), errors.Is(err, listing.ErrInvalidCategory):
		msg := err.Error()
		return strings.ToUpper(msg[:1]) + msg[1:]
	}
	return submissionMessage(err)
}
