// Package duplicates finds listings that share a title and address key so an
// admin can remove the copies.
package duplicates

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
)

type Mode string

const (
	ModeTitlePostcode       Mode = "title_postcode"
	ModeTitlePostcodeStreet Mode = "title_postcode_street"
	ModeTitle               Mode = "title"
)

var (
	ErrUnknownMode  = errors.New("unknown duplicate mode")
	ErrNotConfirmed = errors.New("deletion must be confirmed")
	ErrNothing      = errors.New("no listings selected")
)

// Modes lists the supported modes in menu order.
func Modes() []Mode {
	return []Mode{ModeTitlePostcode, ModeTitlePostcodeStreet, ModeTitle}
}

func (m Mode) Label() string {
	switch m {
	case ModeTitlePostcode:
		return "Title + postcode"
	case ModeTitlePostcodeStreet:
		return "Title + postcode + street"
	case ModeTitle:
		return "Title only"
	}
	return string(m)
}

// ParseMode accepts a mode name and falls back to title_postcode for "".
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeTitlePostcode, nil
	}
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", ErrUnknownMode
}

func (m Mode) columns() []string {
	switch m {
	case ModeTitlePostcodeStreet:
		return []string{"title", "postcode", "street"}
	case ModeTitle:
		return []string{"title"}
	}
	return []string{"title", "postcode"}
}

// Row is one listing inside a duplicate group.
type Row struct {
	ID        uint
	Title     string
	Slug      string
	Street    string
	City      string
	Postcode  string
	Status    string
	CreatedAt time.Time
	// Oldest marks the probable original; it is not selected for deletion.
	Oldest   bool
	Selected bool
}

type Group struct {
	Key  string
	Rows []Row
}

func key(r *Row, mode Mode) string {
	parts := []string{norm(r.Title)}
	switch mode {
	case ModeTitlePostcode:
		parts = append(parts, norm(r.Postcode))
	case ModeTitlePostcodeStreet:
		parts = append(parts, norm(r.Postcode), norm(r.Street))
	}
	return strings.Join(parts, " | ")
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type keyedRow struct {
	key string
	Row
}

// sortRows orders rows by key, then age. The database orders by the column
// collation, which may fold accents the key keeps.
func sortRows(rows []Row, mode Mode) []keyedRow {
	keyed := make([]keyedRow, len(rows))
	for i := range rows {
		keyed[i] = keyedRow{key: key(&rows[i], mode), Row: rows[i]}
	}
	slices.SortStableFunc(keyed, func(a, b keyedRow) int {
		return cmp.Or(
			strings.Compare(a.key, b.key),
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return keyed
}

// GroupRows folds rows into groups of equal keys in one pass over the sorted
// rows. Single rows are dropped. The first row of every group is the oldest.
func GroupRows(rows []Row, mode Mode) []Group {
	var (
		groups  []Group
		current *Group
	)
	flush := func() {
		if current != nil && len(current.Rows) > 1 {
			groups = append(groups, *current)
		}
	}
	for _, kr := range sortRows(rows, mode) {
		r, k := kr.Row, kr.key
		if current == nil || current.Key != k {
			flush()
			r.Oldest, r.Selected = true, false
			current = &Group{Key: k, Rows: []Row{r}}
			continue
		}
		r.Oldest, r.Selected = false, true
		current.Rows = append(current.Rows, r)
	}
	flush()
	return groups
}

// Service scans for and removes duplicate listings.
type Service struct {
	repo repository.BusinessRepository
	// OnDeleted runs after listings were removed, e.g. to flush term counts.
	OnDeleted func()
}

func NewService(repo repository.BusinessRepository) *Service {
	return &Service{repo: repo}
}

// Scan returns the duplicate groups for mode.
func (s *Service) Scan(ctx context.Context, mode Mode) ([]Group, error) {
	_ = ctx
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	businesses, err := s.repo.ListForDuplicateScan(mode.columns())
	if err != nil {
		return nil, fmt.Errorf("failed to scan for duplicates: %w", err)
	}
	return GroupRows(toRows(businesses), mode), nil
}

// Delete permanently removes the given listings. confirmed must reflect the
// explicit confirmation field of the form.
func (s *Service) Delete(ctx context.Context, ids []uint, confirmed bool) (int64, error) {
	_ = ctx
	if !confirmed {
		return 0, ErrNotConfirmed
	}
	if len(ids) == 0 {
		return 0, ErrNothing
	}
	n, err := s.repo.HardDelete(ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete duplicates: %w", err)
	}
	log.Infof("[Duplicates] permanently deleted %d listings", n)
	if s.OnDeleted != nil {
		s.OnDeleted()
	}
	return n, nil
}

func toRows(businesses []models.Business) []Row {
	rows := make([]Row, len(businesses))
	for i, b := range businesses {
		rows[i] = Row{
			ID:        b.ID,
			Title:     b.Title,
			Slug:      b.Slug,
			Street:    b.Street,
			City:      b.City,
			Postcode:  b.Postcode,
			Status:    b.Status,
			CreatedAt: b.CreatedAt,
		}
	}
	return rows
}
