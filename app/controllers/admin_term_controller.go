package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/permalink"
	"github.com/ManuelReschke/bizdir/internal/pkg/taxonomy"
)

// HandleTerms lists areas and categories with their listing counts.
func (ac *AdminController) HandleTerms(c *fiber.Ctx) error {
	areas, err := ac.svc.Repos.Term.ListWithCounts(models.TAXONOMY_AREA)
	if err != nil {
		return ac.handleError(c, "Failed to load areas", err)
	}
	cats, err := ac.svc.Repos.Term.ListWithCounts(models.TAXONOMY_CATEGORY)
	if err != nil {
		return ac.handleError(c, "Failed to load categories", err)
	}
	links := make(map[uint]string, len(areas)+len(cats))
	for i := range areas {
		links[areas[i].ID] = permalink.AreaURL(&areas[i])
	}
	for i := range cats {
		links[cats[i].ID] = permalink.CategoryURL(&cats[i], nil)
	}
	return render(c, "admin/terms", fiber.Map{
		"Title":      "Areas & categories",
		"Areas":      areas,
		"Categories": cats,
		"Links":      links,
	})
}

// HandleTermCreate adds an area or a category.
func (ac *AdminController) HandleTermCreate(c *fiber.Ctx) error {
	var parentID *uint
	if id := parseID(c.FormValue("parent_id")); id != 0 {
		parentID = &id
	}
	term, err := ac.svc.Terms.Create(
		c.FormValue("taxonomy"),
		c.FormValue("name"),
		c.FormValue("slug"),
		c.FormValue("description"),
		parentID,
	)
	if err != nil {
		return flash.Error(c, "/admin/terms", termMessage(err))
	}
	return flash.Success(c, "/admin/terms", "Created "+term.Name+" ("+term.Slug+")")
}

// HandleTermUpdate renames a term or changes its slug.
func (ac *AdminController) HandleTermUpdate(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Redirect("/admin/terms")
	}
	term, err := ac.svc.Repos.Term.GetByID(id)
	if err != nil {
		return flash.Error(c, "/admin/terms", "Term not found")
	}
	term.Name = strings.TrimSpace(c.FormValue("name"))
	term.Slug = c.FormValue("slug")
	term.Description = strings.TrimSpace(c.FormValue("description"))
	if err := ac.svc.Terms.Update(term); err != nil {
		return flash.Error(c, "/admin/terms", termMessage(err))
	}
	return flash.Success(c, "/admin/terms", "Updated "+term.Name)
}

// HandleTermDelete removes a term; listings lose the link.
func (ac *AdminController) HandleTermDelete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Redirect("/admin/terms")
	}
	if err := ac.svc.Terms.Delete(id); err != nil {
		return ac.handleError(c, "Failed to delete term", err)
	}
	return flash.Success(c, "/admin/terms", "Term deleted")
}

func termMessage(err error) string {
	switch {
	case errors.Is(err, taxonomy.ErrInvalidTaxonomy):
		return "Please choose area or category"
	case errors.Is(err, taxonomy.ErrEmptyName):
		return "Please enter a name"
	}
	return "Failed to save term: " + err.Error()
}
