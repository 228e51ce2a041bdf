// Package listing holds the write path shared by every way a business enters
// the directory: approvals, CSV import and the admin editor.
package listing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/slug"
	"gorm.io/gorm"
)

var (
	ErrInvalidArea     = errors.New("unknown business area")
	ErrInvalidCategory = errors.New("unknown business category")
)

// AssignSlug derives a unique slug from the explicit slug or the title.
func AssignSlug(repo repository.BusinessRepository, b *models.Business) error {
	base := slug.Make(b.Slug)
	if base == "" {
		base = slug.Make(b.Title)
	}
	unique, err := slug.Unique(base, func(c string) (bool, error) {
		return repo.SlugExists(c, b.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to generate slug: %w", err)
	}
	b.Slug = unique
	return nil
}

// ResolveTerms loads the area and categories and rejects ids of the wrong taxonomy.
func ResolveTerms(repo repository.TermRepository, areaID uint, categoryIDs []uint) (*models.Term, []models.Term, error) {
	var area *models.Term
	if areaID != 0 {
		t, err := repo.GetByID(areaID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && t.Taxonomy != models.TAXONOMY_AREA) {
			return nil, nil, ErrInvalidArea
		}
		if err != nil {
			return nil, nil, err
		}
		area = t
	}

	ids := dedupe(categoryIDs)
	cats, err := repo.GetByIDs(models.TAXONOMY_CATEGORY, ids)
	if err != nil {
		return nil, nil, err
	}
	if len(cats) != len(ids) {
		return nil, nil, ErrInvalidCategory
	}
	return area, cats, nil
}

// Create validates b, assigns its slug and terms and inserts it.
func Create(repos *repository.Repositories, b *models.Business, areaID uint, categoryIDs []uint) error {
	b.Title = strings.TrimSpace(b.Title)
	if b.Status == "" {
		b.Status = models.BUSINESS_STATUS_PUBLISH
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid business: %w", err)
	}

	area, cats, err := ResolveTerms(repos.Term, areaID, categoryIDs)
	if err != nil {
		return err
	}
	if area != nil {
		b.AreaID = &area.ID
	}
	b.Area = nil
	b.Categories = cats

	if err := AssignSlug(repos.Business, b); err != nil {
		return err
	}
	if err := repos.Business.Create(b); err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}
	b.Area = area
	return nil
}

// Save persists edits of an existing business. A nil categoryIDs keeps the current links.
func Save(repos *repository.Repositories, b *models.Business, areaID uint, categoryIDs []uint) error {
	b.Title = strings.TrimSpace(b.Title)
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid business: %w", err)
	}

	area, cats, err := ResolveTerms(repos.Term, areaID, categoryIDs)
	if err != nil {
		return err
	}
	if area != nil {
		b.AreaID = &area.ID
	} else {
		b.AreaID = nil
	}
	if b.Slug == "" {
		if err := AssignSlug(repos.Business, b); err != nil {
			return err
		}
	}
	if err := repos.Business.Update(b); err != nil {
		return fmt.Errorf("failed to update business: %w", err)
	}
	b.Area = area
	if categoryIDs != nil {
		if err := repos.Business.ReplaceCategories(b, idsOf(cats)); err != nil {
			return err
		}
	}
	return nil
}

func idsOf(terms []models.Term) []uint {
	ids := make([]uint, len(terms))
	for i, t := range terms {
		ids[i] = t.ID
	}
	return ids
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
