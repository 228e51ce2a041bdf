package submission

import (
	"sort"
	"strings"

	"github.com/ManuelReschke/bizdir/app/models"
)

// Change is one field of a revision, for display.
type Change struct {
	Key   string
	Label string
	Old   string
	New   string
}

// Diff returns the owner editable fields whose proposed value differs from b.
// Values are normalised through the field setter, so "yes" and "1" compare equal
// for flags. Unknown and admin-only keys are ignored.
func Diff(b *models.Business, proposed map[string]string) map[string]string {
	out := make(map[string]string)
	for key, value := range proposed {
		f, ok := models.LookupBusinessField(key)
		if !ok || !f.OwnerEditable {
			continue
		}
		next := *b
		f.Set(&next, strings.TrimSpace(value))
		if nv := f.Get(&next); nv != f.Get(b) {
			out[f.Key] = nv
		}
	}
	return out
}

// Changes pairs a stored diff with the current values of b, in field order.
func Changes(b *models.Business, diff map[string]string) []Change {
	changes := make([]Change, 0, len(diff))
	for _, f := range models.BusinessFields() {
		nv, ok := diff[f.Key]
		if !ok {
			continue
		}
		old := ""
		if b != nil {
			old = f.Get(b)
		}
		changes = append(changes, Change{Key: f.Key, Label: f.Label, Old: old, New: nv})
	}
	// keys that are no longer registered still show up, after the known ones
	var extra []string
	for k := range diff {
		if _, ok := models.LookupBusinessField(k); !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		changes = append(changes, Change{Key: k, Label: k, New: diff[k]})
	}
	return changes
}
