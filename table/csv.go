package table

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// CSV serializes the currently visible (sorted and filtered) rows.
// Every field is double-quoted with internal quotes doubled; the
// header row carries the display names. encoding/csv is not used
// because it refuses to quote fields that need no quoting, and the
// export format quotes unconditionally.
func (v *View) CSV() []byte {
	var b strings.Builder

	headers := make([]string, len(v.columns))
	for i, c := range v.columns {
		headers[i] = csvQuote(c.HeaderName)
	}
	b.WriteString(strings.Join(headers, ","))

	for _, row := range v.visible {
		b.WriteByte('\n')
		cells := make([]string, len(v.columns))
		for i, c := range v.columns {
			cells[i] = csvQuote(Stringify(row[c.Field]))
		}
		b.WriteString(strings.Join(cells, ","))
	}

	return []byte(b.String())
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Filename builds the export file name from the table title and a
// millisecond timestamp: {slug(title)}_{epoch-ms}.csv.
func (v *View) Filename(now time.Time) string {
	slug := titleSlug(v.Title)
	if slug == "" {
		slug = "table_data"
	}
	return slug + "_" + strconv.FormatInt(now.UnixMilli(), 10) + ".csv"
}

func titleSlug(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
