package permalink

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/taxonomy"
	"gorm.io/gorm"
)

const (
	DirectoryBase = "/directory"
	BusinessBase  = "/business"
)

var ErrNotFound = errors.New("not found")

// Kind identifies which directory archive or page a path resolved to.
type Kind int

const (
	KindCategory Kind = iota + 1
	KindAreaCategory
	KindArea
	KindBusiness
)

// Route is a validated directory request.
type Route struct {
	Kind     Kind
	Area     *models.Term
	Category *models.Term
	Business *models.Business
	// Canonical is set when the request should be redirected to another URL.
	Canonical string
}

// BusinessURL builds the canonical link of a listing. Listings without an area
// or category get the flat /business/{slug}/ link.
func BusinessURL(b *models.Business) string {
	if b == nil {
		return ""
	}
	cat := b.PrimaryCategory()
	if b.Area == nil || b.Area.Slug == "" || cat == nil || cat.Slug == "" {
		return fmt.Sprintf("%s/%s/", BusinessBase, b.Slug)
	}
	return fmt.Sprintf("%s/%s/%s/%s/", DirectoryBase, b.Area.Slug, cat.Slug, b.Slug)
}

// AreaURL links an area archive.
func AreaURL(area *models.Term) string {
	return fmt.Sprintf("%s/%s/", DirectoryBase, area.Slug)
}

// CategoryURL links a category archive, scoped to area when one is given.
func CategoryURL(category *models.Term, area *models.Term) string {
	if area != nil && area.Slug != "" {
		return fmt.Sprintf("%s/%s/%s/", DirectoryBase, area.Slug, category.Slug)
	}
	return fmt.Sprintf("%s/%s/%s/", DirectoryBase, taxonomy.ReservedAreaSlug, category.Slug)
}

// Resolver validates directory path segments against the taxonomies.
type Resolver struct {
	terms      *taxonomy.Service
	businesses repository.BusinessRepository
}

func NewResolver(terms *taxonomy.Service, businesses repository.BusinessRepository) *Resolver {
	return &Resolver{terms: terms, businesses: businesses}
}

func (r *Resolver) term(taxonomyName, termSlug string) (*models.Term, error) {
	t, err := r.terms.BySlug(taxonomyName, termSlug)
	if errors.Is(err, taxonomy.ErrTermNotFound) {
		return nil, ErrNotFound
	}
	return t, err
}

// Category resolves /directory/categories/{category}/.
func (r *Resolver) Category(categorySlug string) (*Route, error) {
	cat, err := r.term(models.TAXONOMY_CATEGORY, categorySlug)
	if err != nil {
		return nil, err
	}
	return &Route{Kind: KindCategory, Category: cat}, nil
}

// AreaCategory resolves /directory/{area}/{category}/. Both slugs must exist.
func (r *Resolver) AreaCategory(areaSlug, categorySlug string) (*Route, error) {
	area, err := r.term(models.TAXONOMY_AREA, areaSlug)
	if err != nil {
		return nil, err
	}
	cat, err := r.term(models.TAXONOMY_CATEGORY, categorySlug)
	if err != nil {
		return nil, err
	}
	return &Route{Kind: KindAreaCategory, Area: area, Category: cat}, nil
}

// Area resolves /directory/{area}/.
func (r *Resolver) Area(areaSlug string) (*Route, error) {
	area, err := r.term(models.TAXONOMY_AREA, areaSlug)
	if err != nil {
		return nil, err
	}
	return &Route{Kind: KindArea, Area: area}, nil
}

// Business resolves /directory/{area}/{category}/{business}/. The listing must
// exist and the segments must be valid terms; a listing reached through the
// wrong area or category gets its canonical URL set.
func (r *Resolver) Business(areaSlug, categorySlug, businessSlug string) (*Route, error) {
	route, err := r.AreaCategory(areaSlug, categorySlug)
	if err != nil {
		return nil, err
	}
	b, err := r.lookupBusiness(businessSlug)
	if err != nil {
		return nil, err
	}
	route.Kind = KindBusiness
	route.Business = b

	canonical := BusinessURL(b)
	requested := fmt.Sprintf("%s/%s/%s/%s/", DirectoryBase, route.Area.Slug, route.Category.Slug, b.Slug)
	if canonical != requested {
		route.Canonical = canonical
	}
	return route, nil
}

// BusinessBySlug resolves the flat /business/{slug}/ link, pointing to the
// directory URL when the listing has one.
func (r *Resolver) BusinessBySlug(businessSlug string) (*Route, error) {
	b, err := r.lookupBusiness(businessSlug)
	if err != nil {
		return nil, err
	}
	route := &Route{Kind: KindBusiness, Business: b, Area: b.Area, Category: b.PrimaryCategory()}
	if canonical := BusinessURL(b); !strings.HasPrefix(canonical, BusinessBase+"/") {
		route.Canonical = canonical
	}
	return route, nil
}

func (r *Resolver) lookupBusiness(businessSlug string) (*models.Business, error) {
	businessSlug = strings.ToLower(strings.TrimSpace(businessSlug))
	if businessSlug == "" {
		return nil, ErrNotFound
	}
	b, err := r.businesses.GetBySlug(businessSlug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
