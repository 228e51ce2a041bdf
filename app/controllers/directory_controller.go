package controllers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
	"github.com/ManuelReschke/bizdir/internal/pkg/permalink"
	"github.com/ManuelReschke/bizdir/internal/pkg/seo"
	"github.com/ManuelReschke/bizdir/internal/pkg/statistics"
	"github.com/ManuelReschke/bizdir/internal/pkg/usercontext"
	"github.com/ManuelReschke/bizdir/internal/pkg/viewmodel"
)

const homeListingCount = 12

// DirectoryController serves the public archives and listing pages
type DirectoryController struct {
	svc *directory.Services
}

func NewDirectoryController(svc *directory.Services) *DirectoryController {
	return &DirectoryController{svc: svc}
}

// FlushMiddleware consumes a pending term cache flush before directory routes resolve.
func (dc *DirectoryController) FlushMiddleware(c *fiber.Ctx) error {
	if flushed, err := dc.svc.ConsumeFlushFlag(); err != nil {
		log.Warnf("[Directory] flush flag: %v", err)
	} else if flushed {
		log.Info("[Directory] term cache flushed")
	}
	return c.Next()
}

func (dc *DirectoryController) HandleHome(c *fiber.Ctx) error {
	areas, err := dc.svc.Repos.Term.ListWithCounts(models.TAXONOMY_AREA)
	if err != nil {
		return err
	}
	categories, err := dc.svc.Repos.Term.ListWithCounts(models.TAXONOMY_CATEGORY)
	if err != nil {
		return err
	}
	latest, _, err := dc.svc.Repos.Business.List(repository.BusinessFilter{Status: models.BUSINESS_STATUS_PUBLISH}, 0, homeListingCount)
	if err != nil {
		return err
	}

	return render(c, "home", fiber.Map{
		"Areas":      viewmodel.AreaLinks(areas),
		"Categories": viewmodel.CategoryLinks(categories, nil),
		"Cards":      viewmodel.BusinessCards(latest, nil),
		"Stats":      statistics.GetStatisticsData(dc.svc.Repos),
	})
}

// HandleCategoryArchive serves /directory/categories/:category
func (dc *DirectoryController) HandleCategoryArchive(c *fiber.Ctx) error {
	route, err := dc.svc.Resolver.Category(c.Params("category"))
	return dc.archive(c, route, err)
}

// HandleAreaCategoryArchive serves /directory/:area/:category
func (dc *DirectoryController) HandleAreaCategoryArchive(c *fiber.Ctx) error {
	route, err := dc.svc.Resolver.AreaCategory(c.Params("area"), c.Params("category"))
	return dc.archive(c, route, err)
}

// HandleAreaArchive serves /directory/:area
func (dc *DirectoryController) HandleAreaArchive(c *fiber.Ctx) error {
	route, err := dc.svc.Resolver.Area(c.Params("area"))
	return dc.archive(c, route, err)
}

func (dc *DirectoryController) archive(c *fiber.Ctx, route *permalink.Route, err error) error {
	if errors.Is(err, permalink.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}

	filter := repository.BusinessFilter{Status: models.BUSINESS_STATUS_PUBLISH}
	var heading, description, baseURL string
	switch route.Kind {
	case permalink.KindCategory:
		filter.CategoryID = route.Category.ID
		heading = route.Category.Name
		description = route.Category.Description
		baseURL = permalink.CategoryURL(route.Category, nil)
	case permalink.KindAreaCategory:
		filter.AreaID = route.Area.ID
		filter.CategoryID = route.Category.ID
		heading = fmt.Sprintf("%s in %s", route.Category.Name, route.Area.Name)
		description = route.Category.Description
		baseURL = permalink.CategoryURL(route.Category, route.Area)
	case permalink.KindArea:
		filter.AreaID = route.Area.ID
		heading = "Businesses in " + route.Area.Name
		description = route.Area.Description
		baseURL = permalink.AreaURL(route.Area)
	}

	perPage := dc.svc.Config.BusinessesPerPage
	page := pageNumber(c)
	pager := newPagination(page, perPage, 0, baseURL)
	businesses, total, err := dc.svc.Repos.Business.List(filter, pager.Offset(), perPage)
	if err != nil {
		return err
	}
	pager = newPagination(page, perPage, total, baseURL)

	data := fiber.Map{
		"Title":       heading,
		"Heading":     heading,
		"Description": description,
		"Cards":       viewmodel.BusinessCards(businesses, route.Area),
		"Pagination":  pager,
		"Canonical":   strings.TrimRight(dc.svc.Config.PublicDomain, "/") + baseURL,
	}
	if route.Area != nil {
		// sibling categories stay inside the area
		cats, err := dc.svc.Terms.Terms(models.TAXONOMY_CATEGORY)
		if err != nil {
			return err
		}
		data["Area"] = route.Area
		data["AreaCategories"] = viewmodel.CategoryLinks(cats, route.Area)
	}
	if route.Category != nil {
		data["Category"] = route.Category
	}
	return render(c, "directory/archive", data)
}

// HandleBusiness serves /directory/:area/:category/:business
func (dc *DirectoryController) HandleBusiness(c *fiber.Ctx) error {
	route, err := dc.svc.Resolver.Business(c.Params("area"), c.Params("category"), c.Params("business"))
	return dc.business(c, route, err)
}

// HandleBusinessBySlug serves the flat /business/:business link
func (dc *DirectoryController) HandleBusinessBySlug(c *fiber.Ctx) error {
	route, err := dc.svc.Resolver.BusinessBySlug(c.Params("business"))
	return dc.business(c, route, err)
}

func (dc *DirectoryController) business(c *fiber.Ctx, route *permalink.Route, err error) error {
	if errors.Is(err, permalink.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}
	if route.Canonical != "" {
		return c.Redirect(route.Canonical, fiber.StatusMovedPermanently)
	}

	b := route.Business
	summary, err := dc.svc.Reviews.Summary(b.ID)
	if err != nil {
		return err
	}
	approved, err := dc.svc.Reviews.Approved(b.ID)
	if err != nil {
		return err
	}

	base := strings.TrimRight(dc.svc.Config.PublicDomain, "/")
	canonical := base + permalink.BusinessURL(b)
	areaContext := route.Area
	if areaContext == nil {
		areaContext = b.Area
	}

	return render(c, "directory/business", fiber.Map{
		"Title":      b.Title,
		"Business":   b,
		"Card":       viewmodel.NewBusinessCard(b, areaContext),
		"Categories": viewmodel.CategoryLinks(b.Categories, areaContext),
		"Hours":      b.OpeningHours(),
		"Reviews":    approved,
		"Summary":    summary,
		"Canonical":  canonical,
		"Schema": seo.LocalBusiness(b, canonical, base, seo.Rating{
			Average:    summary.Average,
			HasAverage: summary.HasAverage,
			Count:      summary.Count,
		}),
		"Claimable": b.IsClaimable(),
		"IsOwner":   b.IsOwnedBy(usercontext.GetUserID(c)),
	})
}

// HandleNotFound is the catch-all for unmatched routes.
func (dc *DirectoryController) HandleNotFound(c *fiber.Ctx) error {
	return notFound(c)
}
