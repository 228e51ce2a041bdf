package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
)

// ExportBusinesses writes every non-trashed business in the import format, so
// the file can be imported again.
func ExportBusinesses(repos *repository.Repositories, w io.Writer) (int, error) {
	cats, err := repos.Term.List(models.TAXONOMY_CATEGORY)
	if err != nil {
		return 0, err
	}
	byID := make(map[uint]models.Term, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	cw := csv.NewWriter(w)
	header := BusinessHeader()
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	n := 0
	err = repos.Business.ListAll(func(batch []models.Business) error {
		for i := range batch {
			if err := cw.Write(exportRow(&batch[i], header, byID)); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("failed to export businesses: %w", err)
	}
	cw.Flush()
	return n, cw.Error()
}

func exportRow(b *models.Business, header []string, cats map[uint]models.Term) []string {
	values := b.FieldValues()
	row := make([]string, len(header))
	for i, col := range header {
		switch col {
		case ColArea:
			if b.Area != nil {
				row[i] = b.Area.Name
			}
		case ColCategory:
			row[i] = categoryCell(b.Categories, cats)
		case ColImageURL:
			row[i] = b.ImageSourceURL
			if row[i] == "" {
				row[i] = b.ImageURL
			}
		default:
			row[i] = values[col]
		}
	}
	return row
}

func categoryCell(terms []models.Term, all map[uint]models.Term) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		name := t.Name
		if t.ParentID != nil {
			if parent, ok := all[*t.ParentID]; ok {
				name = parent.Name + " " + HierarchySeparator + " " + name
			}
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, CategorySeparator)
}
