package taxonomy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/cache"
	"github.com/ManuelReschke/bizdir/internal/pkg/slug"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

const (
	cacheKeyPrefix = "lbd:terms:"

	// ReservedAreaSlug is the path segment of the all-areas category archive.
	ReservedAreaSlug = "categories"
)

var (
	ErrInvalidTaxonomy = errors.New("invalid taxonomy")
	ErrEmptyName       = errors.New("term name is required")
	ErrTermNotFound    = errors.New("term not found")
)

// Service reads terms through a Redis cached list and writes them through the repository.
type Service struct {
	repo repository.TermRepository
	ttl  time.Duration
}

func NewService(repo repository.TermRepository, ttl time.Duration) *Service {
	return &Service{repo: repo, ttl: ttl}
}

func validTaxonomy(taxonomy string) bool {
	return taxonomy == models.TAXONOMY_AREA || taxonomy == models.TAXONOMY_CATEGORY
}

// baseSlug keeps areas off the reserved all-areas segment.
func baseSlug(taxonomy, base string) string {
	if taxonomy == models.TAXONOMY_AREA && base == ReservedAreaSlug {
		return ReservedAreaSlug + "-area"
	}
	return base
}

func cacheKey(taxonomy string) string {
	return cacheKeyPrefix + taxonomy
}

// Terms returns every term of the taxonomy ordered by name. A cache failure
// falls through to the database.
func (s *Service) Terms(taxonomy string) ([]models.Term, error) {
	if !validTaxonomy(taxonomy) {
		return nil, ErrInvalidTaxonomy
	}

	var terms []models.Term
	err := cache.GetJSON(cacheKey(taxonomy), &terms)
	if err == nil {
		return terms, nil
	}
	if !cache.IsMiss(err) {
		log.Warnf("[Taxonomy] cache read failed for %s: %v", taxonomy, err)
	}

	terms, err = s.repo.ListWithCounts(taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s terms: %w", taxonomy, err)
	}
	if err := cache.SetJSON(cacheKey(taxonomy), terms, s.ttl); err != nil {
		log.Warnf("[Taxonomy] cache write failed for %s: %v", taxonomy, err)
	}
	return terms, nil
}

// Flush drops the cached term lists.
func (s *Service) Flush() {
	for _, tax := range []string{models.TAXONOMY_AREA, models.TAXONOMY_CATEGORY} {
		if err := cache.Delete(cacheKey(tax)); err != nil {
			log.Warnf("[Taxonomy] cache delete failed for %s: %v", tax, err)
		}
	}
}

// BySlug resolves a slug within one taxonomy. The area taxonomy never resolves
// the reserved slug.
func (s *Service) BySlug(taxonomy, termSlug string) (*models.Term, error) {
	termSlug = strings.ToLower(strings.TrimSpace(termSlug))
	if termSlug == "" {
		return nil, ErrTermNotFound
	}
	if taxonomy == models.TAXONOMY_AREA && termSlug == ReservedAreaSlug {
		return nil, ErrTermNotFound
	}
	terms, err := s.Terms(taxonomy)
	if err != nil {
		return nil, err
	}
	for i := range terms {
		if terms[i].Slug == termSlug {
			return &terms[i], nil
		}
	}
	return nil, ErrTermNotFound
}

// ByID finds a cached term of either taxonomy.
func (s *Service) ByID(taxonomy string, id uint) (*models.Term, error) {
	terms, err := s.Terms(taxonomy)
	if err != nil {
		return nil, err
	}
	for i := range terms {
		if terms[i].ID == id {
			return &terms[i], nil
		}
	}
	return nil, ErrTermNotFound
}

// Create adds a term with a unique slug derived from termSlug or the name.
func (s *Service) Create(taxonomy, name, termSlug, description string, parentID *uint) (*models.Term, error) {
	if !validTaxonomy(taxonomy) {
		return nil, ErrInvalidTaxonomy
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	base := slug.Make(termSlug)
	if base == "" {
		base = slug.Make(name)
	}
	unique, err := slug.Unique(baseSlug(taxonomy, base), func(c string) (bool, error) {
		return s.repo.SlugExists(taxonomy, c, 0)
	})
	if err != nil {
		return nil, err
	}

	term := &models.Term{
		Taxonomy:    taxonomy,
		Name:        name,
		Slug:        unique,
		Description: strings.TrimSpace(description),
		ParentID:    parentID,
	}
	if err := term.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(term); err != nil {
		return nil, fmt.Errorf("failed to create term %q: %w", name, err)
	}
	s.Flush()
	return term, nil
}

// Ensure returns the term with exactly this name, creating it when missing.
// The second return value reports creation.
func (s *Service) Ensure(taxonomy, name string, parentID *uint) (*models.Term, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, ErrEmptyName
	}
	term, err := s.repo.GetByName(taxonomy, name, parentID)
	if err == nil {
		return term, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	term, err = s.Create(taxonomy, name, "", "", parentID)
	if err != nil {
		return nil, false, err
	}
	return term, true, nil
}

// Update renames a term and keeps its slug unique.
func (s *Service) Update(term *models.Term) error {
	term.Slug = slug.Make(term.Slug)
	if term.Slug == "" {
		term.Slug = slug.Make(term.Name)
	}
	unique, err := slug.Unique(baseSlug(term.Taxonomy, term.Slug), func(c string) (bool, error) {
		return s.repo.SlugExists(term.Taxonomy, c, term.ID)
	})
	if err != nil {
		return err
	}
	term.Slug = unique
	if err := term.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(term); err != nil {
		return err
	}
	s.Flush()
	return nil
}

func (s *Service) Delete(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.Flush()
	return nil
}
