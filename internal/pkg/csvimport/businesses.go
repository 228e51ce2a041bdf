package csvimport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/listing"
	"github.com/ManuelReschke/bizdir/internal/pkg/taxonomy"
)

// ImageFetcher downloads a remote image and returns the public URL of the stored copy.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Result summarises one import run.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   int      `json:"errors"`
	Created  int      `json:"terms_created"`
	Messages []string `json:"messages"`
}

func (r *Result) addf(format string, args ...interface{}) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

// Importer creates businesses and terms from CSV files.
type Importer struct {
	repos    *repository.Repositories
	terms    *taxonomy.Service
	mappings *Mappings
	images   ImageFetcher
	validate *validator.Validate
}

// NewImporter wires an importer. images may be nil to ignore image_url.
func NewImporter(repos *repository.Repositories, terms *taxonomy.Service, mappings *Mappings, images ImageFetcher) *Importer {
	return &Importer{
		repos:    repos,
		terms:    terms,
		mappings: mappings,
		images:   images,
		validate: validator.New(),
	}
}

// ImportBusinesses creates one business per valid row. Row level problems are
// counted and reported in the result; only unreadable files return an error.
func (im *Importer) ImportBusinesses(ctx context.Context, r io.Reader) (*Result, error) {
	t, err := readTable(r, RequiredBusinessColumns)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i, row := range t.rows {
		if err := ctx.Err(); err != nil {
			res.addf("Import cancelled after %d rows", i)
			break
		}
		line := i + 2
		im.importRow(ctx, t, row, line, res)
	}
	log.Infof("[Import] businesses: imported=%d skipped=%d errors=%d", res.Imported, res.Skipped, res.Errors)
	return res, nil
}

func (im *Importer) importRow(ctx context.Context, t *table, row []string, line int, res *Result) {
	name := t.value(row, ColName)
	areaName := t.value(row, ColArea)
	categories := splitCategories(t.value(row, ColCategory))

	var missing []string
	if name == "" {
		missing = append(missing, ColName)
	}
	if areaName == "" {
		missing = append(missing, ColArea)
	}
	if len(categories) == 0 {
		missing = append(missing, ColCategory)
	}
	if len(missing) > 0 {
		res.Skipped++
		res.addf("Row %d skipped: missing %v", line, missing)
		return
	}

	area, created, err := im.terms.Ensure(models.TAXONOMY_AREA, areaName, nil)
	if err != nil {
		res.Errors++
		res.addf("Row %d: area %q: %v", line, areaName, err)
		return
	}
	if created {
		res.Created++
	}

	var categoryIDs []uint
	for _, raw := range categories {
		id, err := im.resolveCategory(raw, t.value(row, ColParent), res)
		if err != nil {
			res.Errors++
			res.addf("Row %d: category %q: %v", line, raw, err)
			return
		}
		categoryIDs = append(categoryIDs, id)
	}

	b := &models.Business{}
	b.ApplyFields(t.fields(row))
	if b.Email != "" {
		if err := im.validate.Var(b.Email, "email"); err != nil {
			res.addf("Row %d: invalid email %q removed", line, b.Email)
			b.Email = ""
		}
	}

	if imageURL := t.value(row, ColImageURL); imageURL != "" && im.images != nil {
		stored, err := im.sideload(ctx, imageURL)
		if err != nil {
			res.Errors++
			res.addf("Row %d: image %s: %v", line, imageURL, err)
			log.Warnf("[Import] row %d image download failed: %v", line, err)
			return
		}
		b.ImageURL = stored
		b.ImageSourceURL = imageURL
	}

	if err := listing.Create(im.repos, b, area.ID, categoryIDs); err != nil {
		res.Errors++
		res.addf("Row %d: %s: %v", line, name, err)
		log.Errorf("[Import] row %d failed: %v", line, err)
		return
	}
	res.Imported++
}

// resolveCategory honours a stored mapping first, then reuses or creates the
// term by exact name under its parent.
func (im *Importer) resolveCategory(raw, parentColumn string, res *Result) (uint, error) {
	if im.mappings != nil {
		id, ok, err := im.mappings.Lookup(raw)
		if err != nil {
			return 0, err
		}
		if ok {
			if _, err := im.repos.Term.GetByID(id); err == nil {
				return id, nil
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, err
			}
		}
	}

	parentName, name := splitHierarchy(raw)
	if parentName == "" {
		parentName = parentColumn
	}

	var parentID *uint
	if parentName != "" && parentName != name {
		parent, created, err := im.terms.Ensure(models.TAXONOMY_CATEGORY, parentName, nil)
		if err != nil {
			return 0, err
		}
		if created {
			res.Created++
		}
		parentID = &parent.ID
	}

	term, created, err := im.terms.Ensure(models.TAXONOMY_CATEGORY, name, parentID)
	if err != nil {
		return 0, err
	}
	if created {
		res.Created++
	}
	return term.ID, nil
}

// sideload reuses the stored copy of an image already downloaded for another listing.
func (im *Importer) sideload(ctx context.Context, url string) (string, error) {
	existing, err := im.repos.Business.GetByImageSourceURL(url)
	if err == nil && existing.ImageURL != "" {
		return existing.ImageURL, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return im.images.Fetch(ctx, url)
}
