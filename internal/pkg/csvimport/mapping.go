package csvimport

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/similarity"
	"github.com/ManuelReschke/bizdir/internal/pkg/slug"
	"gorm.io/gorm"
)

// Candidate is one distinct category string found in an import file.
type Candidate struct {
	Raw           string
	Name          string
	Parent        string
	Key           string
	Rows          int
	SuggestedID   uint
	SuggestedName string
	Score         float64
	MappedID      uint
}

// Mappings persists the operator's decisions about which existing category a
// CSV category string stands for.
type Mappings struct {
	options   repository.OptionRepository
	terms     repository.TermRepository
	threshold float64
}

func NewMappings(options repository.OptionRepository, terms repository.TermRepository, threshold float64) *Mappings {
	return &Mappings{options: options, terms: terms, threshold: threshold}
}

// MappingKey sanitises a CSV category string into its option key suffix.
func MappingKey(raw string) string {
	return strings.ReplaceAll(slug.Make(raw), "-", "_")
}

func optionKey(raw string) string {
	return models.OPTION_CATEGORY_MAPPING_PREF + MappingKey(raw)
}

// Lookup returns the mapped term id for raw, if any.
func (m *Mappings) Lookup(raw string) (uint, bool, error) {
	if MappingKey(raw) == "" {
		return 0, false, nil
	}
	v, err := m.options.GetValue(optionKey(raw))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil || id == 0 {
		return 0, false, nil
	}
	return uint(id), true, nil
}

// Save stores a mapping. A zero termID removes it.
func (m *Mappings) Save(raw string, termID uint) error {
	if MappingKey(raw) == "" {
		return fmt.Errorf("empty category string")
	}
	if termID == 0 {
		return m.options.Delete(optionKey(raw))
	}
	term, err := m.terms.GetByID(termID)
	if err != nil {
		return fmt.Errorf("category %d: %w", termID, err)
	}
	if term.Taxonomy != models.TAXONOMY_CATEGORY {
		return fmt.Errorf("term %d is not a category", termID)
	}
	return m.options.SetValue(optionKey(raw), strconv.FormatUint(uint64(termID), 10))
}

// All returns every stored mapping keyed by sanitised string.
func (m *Mappings) All() (map[string]uint, error) {
	opts, err := m.options.ListByPrefix(models.OPTION_CATEGORY_MAPPING_PREF)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint, len(opts))
	for _, o := range opts {
		id, err := strconv.ParseUint(o.Value, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		out[strings.TrimPrefix(o.Key, models.OPTION_CATEGORY_MAPPING_PREF)] = uint(id)
	}
	return out, nil
}

// Extract collects the distinct category strings of a business or category
// CSV, with a suggestion for each.
func (m *Mappings) Extract(r io.Reader) ([]Candidate, error) {
	t, err := readTable(r, nil)
	if err != nil {
		return nil, err
	}
	col := ColCategory
	parentCol := ColParent
	if !t.has(ColCategory) {
		if !t.has(ColCatName) {
			return nil, fmt.Errorf("%w: %s or %s", ErrMissingColumns, ColCategory, ColCatName)
		}
		col, parentCol = ColCatName, ColCatParent
	}

	byKey := make(map[string]*Candidate)
	var order []string
	for _, row := range t.rows {
		for _, raw := range splitCategories(t.value(row, col)) {
			parent, name := splitHierarchy(raw)
			if parent == "" {
				parent = t.value(row, parentCol)
			}
			key := MappingKey(raw)
			if key == "" {
				continue
			}
			if c, ok := byKey[key]; ok {
				c.Rows++
				continue
			}
			byKey[key] = &Candidate{Raw: raw, Name: name, Parent: parent, Key: key, Rows: 1}
			order = append(order, key)
		}
	}

	terms, err := m.terms.List(models.TAXONOMY_CATEGORY)
	if err != nil {
		return nil, err
	}
	stored, err := m.All()
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(order))
	for _, key := range order {
		c := byKey[key]
		c.SuggestedID, c.Score = BestMatch(c.Name, terms, m.threshold)
		for i := range terms {
			if terms[i].ID == c.SuggestedID {
				c.SuggestedName = terms[i].Name
			}
		}
		c.MappedID = stored[key]
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool { return strings.ToLower(out[i].Raw) < strings.ToLower(out[j].Raw) })
	return out, nil
}

// BestMatch returns the term closest to name and its similarity score. The id
// is 0 when the best score is below threshold.
func BestMatch(name string, terms []models.Term, threshold float64) (uint, float64) {
	needle := strings.ToLower(strings.TrimSpace(name))
	var bestID uint
	best := 0.0
	for _, t := range terms {
		score := similarity.Percent(needle, strings.ToLower(t.Name))
		if score > best {
			best, bestID = score, t.ID
		}
	}
	if best < threshold {
		return 0, best
	}
	return bestID, best
}
