// Package markdown extracts structured tables from AI-authored
// message text. Every function is total: malformed input degrades to
// nil or empty results, never an error. The backend's responses are
// untrusted and must not be able to break the view.
package markdown

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/sathvik-kandimala-2003/major-project/model"
)

// Header keywords that mark a column as numeric.
var numericKeywords = []string{"rank", "cutoff", "count", "total"}

// Cutoff-style columns get a single success highlight rule at this
// threshold; the renderer derives the warning/error bands from it.
const highlightThreshold = 5000

// HasTable reports whether text contains a pipe-delimited row
// immediately followed by a separator line of colons, dashes and
// pipes. Fast pre-check only; ParseTable does not depend on it.
func HasTable(text string) bool {
	lines := strings.Split(text, "\n")
	for i := 0; i+1 < len(lines); i++ {
		if strings.Contains(lines[i], "|") && isSeparatorLine(lines[i+1]) {
			return true
		}
	}
	return false
}

func isSeparatorLine(line string) bool {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "-") {
		return false
	}
	for _, r := range line {
		switch r {
		case '|', ':', '-', ' ':
		default:
			return false
		}
	}
	return true
}

// ParseTable parses the first markdown pipe table in text. A heading
// line immediately above the table becomes the title. Returns nil
// when text holds no table with at least a header, a separator and
// one data row.
//
// When two headers slugify to the same field the later column wins;
// callers that need both must rename a header.
func ParseTable(text string) *model.ParsedTable {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	start := -1
	for i, l := range lines {
		if strings.Contains(l, "|") {
			start = i
			break
		}
	}
	if start == -1 {
		return nil
	}

	title := ""
	if start > 0 {
		title = headingTitle(lines[start-1])
	}

	end := start
	for end < len(lines) && strings.Contains(lines[end], "|") {
		end++
	}
	block := lines[start:end]
	// header + separator + at least one data row
	if len(block) < 3 {
		return nil
	}

	headers := splitCells(block[0])
	if len(headers) == 0 {
		return nil
	}

	columns := make([]model.Column, len(headers))
	for i, h := range headers {
		columns[i] = model.Column{
			Field:      slugField(h, i),
			HeaderName: h,
			Sortable:   true,
			Type:       inferType(h),
		}
	}

	var rows []model.Row
	for _, line := range block[2:] {
		cells := splitCells(line)
		row := model.Row{}
		for i, cell := range cells {
			if i >= len(columns) {
				break // extra cells beyond the header are dropped
			}
			row[columns[i].Field] = coerce(cell, columns[i].Type)
		}
		rows = append(rows, row)
	}

	return &model.ParsedTable{Title: title, Columns: columns, Rows: rows}
}

// headingTitle extracts a title from a markdown heading line,
// stripping the markers and a single leading decorative glyph.
func headingTitle(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return ""
	}
	trimmed = strings.TrimLeft(trimmed, "#")
	trimmed = strings.TrimSpace(trimmed)
	runes := []rune(trimmed)
	if len(runes) > 0 && !unicode.IsLetter(runes[0]) && !unicode.IsDigit(runes[0]) {
		trimmed = strings.TrimSpace(string(runes[1:]))
	}
	return trimmed
}

// splitCells splits a table line on pipes, trims each cell and drops
// the empty edge cells produced by leading/trailing pipes. Interior
// empty cells are kept.
func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	for len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// slugField derives a row-map key from a header label: lowercase,
// runs of non-alphanumerics collapsed to one underscore.
func slugField(header string, index int) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(header) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	field := strings.Trim(b.String(), "_")
	if field == "" {
		return "col_" + strconv.Itoa(index)
	}
	return field
}

func inferType(header string) string {
	lower := strings.ToLower(header)
	for _, kw := range numericKeywords {
		if strings.Contains(lower, kw) {
			return model.ColumnNumber
		}
	}
	return model.ColumnString
}

// coerce converts a cell for a numeric column when it parses as a
// float after stripping thousands separators. Anything else stays a
// raw string, even in a numeric column.
func coerce(cell, colType string) any {
	if colType != model.ColumnNumber {
		return cell
	}
	cleaned := strings.ReplaceAll(cell, ",", "")
	if n, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return n
	}
	return cell
}

// HighlightRules derives cell-coloring rules from the parsed
// columns: every numeric cutoff/rank column gets one success rule at
// the fixed threshold.
func HighlightRules(columns []model.Column) []model.HighlightRule {
	var rules []model.HighlightRule
	for _, c := range columns {
		if c.Type != model.ColumnNumber {
			continue
		}
		if strings.Contains(c.Field, "cutoff") || strings.Contains(c.Field, "rank") {
			rules = append(rules, model.HighlightRule{
				Column:    c.Field,
				Threshold: highlightThreshold,
				Color:     model.ColorSuccess,
			})
		}
	}
	return rules
}
