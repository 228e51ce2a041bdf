package csvimport

import (
	"context"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/bizdir/app/models"
)

// ImportCategories creates category terms. Existing names under the same
// parent are skipped; missing parents are created on the fly.
func (im *Importer) ImportCategories(ctx context.Context, r io.Reader) (*Result, error) {
	t, err := readTable(r, []string{ColCatName})
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i, row := range t.rows {
		if ctx.Err() != nil {
			res.addf("Import cancelled after %d rows", i)
			break
		}
		line := i + 2
		name := t.value(row, ColCatName)
		if name == "" {
			res.Skipped++
			res.addf("Row %d skipped: missing %s", line, ColCatName)
			continue
		}

		var parentID *uint
		if parentName := t.value(row, ColCatParent); parentName != "" && parentName != name {
			parent, created, err := im.terms.Ensure(models.TAXONOMY_CATEGORY, parentName, nil)
			if err != nil {
				res.Errors++
				res.addf("Row %d: parent %q: %v", line, parentName, err)
				continue
			}
			if created {
				res.Created++
			}
			parentID = &parent.ID
		}

		lookupParent := parentID
		if lookupParent == nil {
			zero := uint(0)
			lookupParent = &zero
		}
		if existing, err := im.repos.Term.GetByName(models.TAXONOMY_CATEGORY, name, parentID); err == nil && sameParent(existing, lookupParent) {
			res.Skipped++
			res.addf("Row %d skipped: category %q already exists", line, name)
			continue
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			res.Errors++
			res.addf("Row %d: %v", line, err)
			continue
		}

		if _, err := im.terms.Create(models.TAXONOMY_CATEGORY, name, t.value(row, ColCatSlug), t.value(row, ColCatDesc), parentID); err != nil {
			res.Errors++
			res.addf("Row %d: %s: %v", line, name, err)
			continue
		}
		res.Imported++
	}
	log.Infof("[Import] categories: imported=%d skipped=%d errors=%d", res.Imported, res.Skipped, res.Errors)
	return res, nil
}

// sameParent compares a term's parent with want, where 0 stands for top level.
func sameParent(t *models.Term, want *uint) bool {
	var have uint
	if t.ParentID != nil {
		have = *t.ParentID
	}
	return have == *want
}
