package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/listing"
	"github.com/ManuelReschke/bizdir/internal/pkg/permalink"
)

const repairListLimit = 200

// HandlePermalinks lists listings whose canonical link cannot be built and
// listings without a slug.
func (ac *AdminController) HandlePermalinks(c *fiber.Ctx) error {
	missing, err := ac.svc.Repos.Business.ListMissingTerms(repairListLimit)
	if err != nil {
		return ac.handleError(c, "Failed to check permalinks", err)
	}
	noSlug, err := ac.svc.Repos.Business.ListSlugProblems()
	if err != nil {
		return ac.handleError(c, "Failed to check slugs", err)
	}
	links := make(map[uint]string, len(missing))
	for i := range missing {
		links[missing[i].ID] = permalink.BusinessURL(&missing[i])
	}
	return render(c, "admin/permalinks", fiber.Map{
		"Title":   "Permalink repair",
		"Missing": missing,
		"Links":   links,
		"NoSlug":  noSlug,
		"Limit":   repairListLimit,
	})
}

// HandlePermalinksFlush drops the cached term lists right away.
func (ac *AdminController) HandlePermalinksFlush(c *fiber.Ctx) error {
	ac.svc.Terms.Flush()
	if _, err := ac.svc.ConsumeFlushFlag(); err != nil {
		log.Warnf("[Admin] clearing flush flag: %v", err)
	}
	return flash.Success(c, "/admin/permalinks", "Term cache flushed")
}

// HandlePermalinksRegenerate gives every listing without a slug a unique one.
func (ac *AdminController) HandlePermalinksRegenerate(c *fiber.Ctx) error {
	list, err := ac.svc.Repos.Business.ListSlugProblems()
	if err != nil {
		return ac.handleError(c, "Failed to check slugs", err)
	}
	fixed := 0
	for i := range list {
		b := &list[i]
		if err := listing.AssignSlug(ac.svc.Repos.Business, b); err != nil {
			log.Errorf("[Admin] slug for business %d: %v", b.ID, err)
			continue
		}
		if err := ac.svc.Repos.Business.UpdateColumns(b.ID, map[string]interface{}{"slug": b.Slug}); err != nil {
			log.Errorf("[Admin] saving slug for business %d: %v", b.ID, err)
			continue
		}
		fixed++
	}
	return flash.Success(c, "/admin/permalinks", fmt.Sprintf("%d of %d slug(s) regenerated", fixed, len(list)))
}
