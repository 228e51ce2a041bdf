// Package csvimport reads and writes the directory's CSV formats: businesses,
// categories and the category mapping worksheet.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ManuelReschke/bizdir/app/models"
)

const (
	ColName      = "business_name"
	ColArea      = "business_area"
	ColCategory  = "business_category"
	ColParent    = "parent_category"
	ColImageURL  = "image_url"
	ColCatName   = "category_name"
	ColCatParent = "parent_category_name"
	ColCatDesc   = "description"
	ColCatSlug   = "slug"

	// CategorySeparator splits several categories in one cell.
	CategorySeparator = "|"
	// HierarchySeparator splits "Parent > Child".
	HierarchySeparator = ">"
)

var (
	ErrEmptyFile      = errors.New("the file is empty")
	ErrMissingColumns = errors.New("missing required columns")
)

// RequiredBusinessColumns must be present in every business import header.
var RequiredBusinessColumns = []string{ColName, ColArea, ColCategory}

var columnAliases = map[string]string{
	"area":            ColArea,
	"areas":           ColArea,
	"category":        ColCategory,
	"categories":      ColCategory,
	"business_parent": ColParent,
	"parent":          ColParent,
	"image":           ColImageURL,
	"featured_image":  ColImageURL,
	"parent_category": ColParent,
}

// canonicalColumn maps a raw header cell onto a known column name. Business
// field aliases resolve through the field registry.
func canonicalColumn(raw string) string {
	col := models.NormalizeColumn(raw)
	if alias, ok := columnAliases[col]; ok {
		return alias
	}
	if f, ok := models.LookupBusinessField(col); ok {
		return f.Key
	}
	return col
}

// BusinessHeader is the column order of the business export.
func BusinessHeader() []string {
	header := []string{ColName, "business_description", "business_excerpt", ColArea, ColCategory}
	for _, f := range models.BusinessFields() {
		switch f.Key {
		case ColName, "business_description", "business_excerpt":
			continue
		}
		header = append(header, f.Key)
	}
	return append(header, ColImageURL)
}

// CategoryHeader is the column order of the category import.
func CategoryHeader() []string {
	return []string{ColCatName, ColCatParent, ColCatDesc, ColCatSlug}
}

// table is a CSV file read into memory with canonical column names.
type table struct {
	index map[string]int
	rows  [][]string
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return cr
}

func readTable(r io.Reader, required []string) (*table, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &table{index: make(map[string]int, len(header))}
	for i, h := range header {
		col := canonicalColumn(h)
		if _, dup := t.index[col]; !dup {
			t.index[col] = i
		}
	}

	var missing []string
	for _, col := range required {
		if !t.has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", len(t.rows)+2, err)
		}
		if blank(rec) {
			continue
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.index[col]
	return ok
}

func (t *table) value(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// fields returns the registry-backed columns of row keyed by canonical key.
func (t *table) fields(row []string) map[string]string {
	out := make(map[string]string)
	for col := range t.index {
		if _, ok := models.LookupBusinessField(col); ok {
			out[col] = t.value(row, col)
		}
	}
	return out
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// splitCategories splits a category cell on the category separator.
func splitCategories(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, CategorySeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitHierarchy turns "Parent > Child" into ("Parent", "Child").
func splitHierarchy(s string) (parent, child string) {
	parts := strings.Split(s, HierarchySeparator)
	if len(parts) < 2 {
		return "", strings.TrimSpace(s)
	}
	child = strings.TrimSpace(parts[len(parts)-1])
	parent = strings.TrimSpace(parts[len(parts)-2])
	return parent, child
}
