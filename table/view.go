// Package table implements the interactive behavior of a parsed
// table: sorting, searching, highlight bands, rank badges and CSV
// export. It holds no terminal state; the tui package renders it.
package table

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sathvik-kandimala-2003/major-project/model"
)

// Band is the highlight band of a single cell.
type Band int

const (
	BandNone Band = iota
	BandSuccess
	BandWarning
	BandError
)

// Badge is the rank tier of a cell in a cutoff/rank column.
type Badge int

const (
	BadgeNone Badge = iota
	BadgeTop         // rank <= 1000
	BadgeSecond      // rank <= 5000
	BadgeThird       // rank <= 20000
)

// Rank badge thresholds.
const (
	badgeTopMax    = 1000
	badgeSecondMax = 5000
	badgeThirdMax  = 20000
)

// View is the interactive state over one parsed table. Each view
// owns its sort and search state independently.
type View struct {
	Title   string
	columns []model.Column
	rows    []model.Row // original order, never mutated
	rules   []model.HighlightRule

	sortField string
	sortAsc   bool
	query     string

	visible []model.Row // sorted then filtered
}

// NewView builds a view over a parsed table. rules may be nil.
func NewView(t *model.ParsedTable, rules []model.HighlightRule) *View {
	v := &View{
		Title:   t.Title,
		columns: t.Columns,
		rows:    t.Rows,
		rules:   rules,
	}
	v.recompute()
	return v
}

// Columns returns the ordered column set.
func (v *View) Columns() []model.Column { return v.columns }

// Rows returns the currently visible rows: the full set sorted by
// the active column, then filtered by the active query.
func (v *View) Rows() []model.Row { return v.visible }

// Counts returns visible and total row counts for the footer.
func (v *View) Counts() (shown, total int) {
	return len(v.visible), len(v.rows)
}

// Query returns the active search text.
func (v *View) Query() string { return v.query }

// SortState returns the active sort column ("" when unsorted) and
// direction.
func (v *View) SortState() (field string, asc bool) {
	return v.sortField, v.sortAsc
}

// SortBy toggles sorting on field. A new column starts ascending; a
// repeated column flips direction. There is no unsorted state once a
// column has been chosen.
func (v *View) SortBy(field string) {
	if v.sortField == field {
		v.sortAsc = !v.sortAsc
	} else {
		v.sortField = field
		v.sortAsc = true
	}
	v.recompute()
}

// SetQuery filters rows to those where any field's stringified value
// contains q, case-insensitively.
func (v *View) SetQuery(q string) {
	v.query = q
	v.recompute()
}

// recompute sorts the full row set, then filters. Sorting before
// filtering keeps the display order stable when the query clears.
func (v *View) recompute() {
	sorted := make([]model.Row, len(v.rows))
	copy(sorted, v.rows)

	if v.sortField != "" {
		field, asc := v.sortField, v.sortAsc
		sort.SliceStable(sorted, func(i, j int) bool {
			less := lessValue(sorted[i][field], sorted[j][field])
			if asc {
				return less
			}
			return lessValue(sorted[j][field], sorted[i][field])
		})
	}

	if v.query == "" {
		v.visible = sorted
		return
	}
	needle := strings.ToLower(v.query)
	var filtered []model.Row
	for _, row := range sorted {
		if rowMatches(row, v.columns, needle) {
			filtered = append(filtered, row)
		}
	}
	v.visible = filtered
}

// lessValue orders two cell values: numerically when both are
// numbers, otherwise by lowercased string comparison. Non-numeric
// values in a numeric column degrade to string order.
func lessValue(a, b any) bool {
	an, aok := a.(float64)
	bn, bok := b.(float64)
	if aok && bok {
		return an < bn
	}
	return strings.ToLower(Stringify(a)) < strings.ToLower(Stringify(b))
}

func rowMatches(row model.Row, columns []model.Column, needle string) bool {
	for _, c := range columns {
		val, ok := row[c.Field]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(Stringify(val)), needle) {
			return true
		}
	}
	return false
}

// Stringify renders a cell value for display, matching and export.
// Missing values render empty. Numeric values drop a trailing .0.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// CellBand returns the highlight band for a cell. Only the first
// rule for the column applies: value at or under the threshold is
// the success band; warning and error bands exist only when a caller
// supplies rules with those colors.
func (v *View) CellBand(field string, value any) Band {
	n, ok := value.(float64)
	if !ok {
		return BandNone
	}
	for _, r := range v.rules {
		if r.Column != field {
			continue
		}
		switch {
		case n <= r.Threshold:
			if r.Color == model.ColorSuccess {
				return BandSuccess
			}
		case n <= 2*r.Threshold:
			if r.Color == model.ColorWarning {
				return BandWarning
			}
		default:
			if r.Color == model.ColorError {
				return BandError
			}
		}
		return BandNone // first matching rule wins
	}
	return BandNone
}

// CellBadge returns the rank tier badge for a cell. Badges apply to
// any cutoff/rank column, independent of highlight rules.
func (v *View) CellBadge(field string, value any) Badge {
	if !strings.Contains(field, "cutoff") && !strings.Contains(field, "rank") {
		return BadgeNone
	}
	n, ok := value.(float64)
	if !ok {
		return BadgeNone
	}
	switch {
	case n <= badgeTopMax:
		return BadgeTop
	case n <= badgeSecondMax:
		return BadgeSecond
	case n <= badgeThirdMax:
		return BadgeThird
	default:
		return BadgeNone
	}
}
