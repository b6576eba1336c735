package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/sathvik-kandimala-2003/major-project/markdown"
	"github.com/sathvik-kandimala-2003/major-project/model"
	"github.com/sathvik-kandimala-2003/major-project/stream"
	"github.com/sathvik-kandimala-2003/major-project/table"
)

// tableEntry is one table found in the transcript, keyed by message
// id and position so a rebuild can hand back the same view with its
// sort and search state intact.
type tableEntry struct {
	key   string
	block string
	view  *table.View
}

// rebuildTranscript renders all messages into lines and re-collects
// the embedded tables. Views for unchanged tables are carried over
// from the previous build.
func (m *Model) rebuildTranscript() {
	m.dirty = false
	m.lines = nil

	prev := make(map[string]*tableEntry, len(m.tables))
	for _, e := range m.tables {
		prev[e.key] = e
	}
	m.tables = nil

	maxWidth := m.width - 2
	if maxWidth < 40 {
		maxWidth = 40
	}

	for _, msg := range m.red.Messages() {
		switch msg.Role {
		case model.RoleUser:
			m.lines = append(m.lines, userRoleStyle.Render(pad(" YOU", maxWidth)))
			for _, wl := range wrapLines(msg.Content, maxWidth-2) {
				m.lines = append(m.lines, " "+wl)
			}
		case model.RoleAssistant:
			m.lines = append(m.lines, assistantRoleStyle.Render(pad(" COUNSELOR", maxWidth)))
			m.lines = append(m.lines, m.renderBody(msg, maxWidth, prev)...)
		default:
			// system/thinking roles from persisted history are skipped
			continue
		}
		m.lines = append(m.lines, "")
	}

	if m.follow {
		m.scrollToBottom()
	}
	m.computeSearchMatches()
}

// renderBody splits an assistant message around its tables: text
// parts go through the markdown renderer, table parts become a
// compact preview plus a hint to open the interactive view.
func (m *Model) renderBody(msg model.ChatMessage, maxWidth int, prev map[string]*tableEntry) []string {
	var lines []string
	parts := markdown.SplitContent(msg.Content)
	ordinal := 0

	for i, part := range parts {
		if part.Type == model.PartText {
			lines = append(lines, m.renderMarkdown(part.Content, maxWidth)...)
			continue
		}

		// carry a heading just above the table in as its title
		block := part.Content
		if i > 0 {
			if h := trailingHeading(parts[i-1].Content); h != "" {
				block = h + "\n" + block
			}
		}
		parsed := markdown.ParseTable(block)
		if parsed == nil {
			// not actually a table; fall back to plain text
			lines = append(lines, wrapLines(part.Content, maxWidth-2)...)
			continue
		}

		key := fmt.Sprintf("%s#%d", msg.MessageID, ordinal)
		ordinal++
		entry := prev[key]
		if entry == nil || entry.block != block {
			rules := markdown.HighlightRules(parsed.Columns)
			entry = &tableEntry{key: key, block: block, view: table.NewView(parsed, rules)}
		}
		m.tables = append(m.tables, entry)
		n := len(m.tables)

		lines = append(lines, previewTable(parsed, maxWidth)...)
		lines = append(lines, tableHintStyle.Render(
			fmt.Sprintf(" [table %d — ctrl+t to sort, search, export]", n)))
	}
	return lines
}

// renderMarkdown renders a text part with glamour, falling back to
// plain word wrapping if the renderer is unavailable.
func (m *Model) renderMarkdown(text string, maxWidth int) []string {
	if m.mdRenderer == nil || m.mdWidth != maxWidth {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(maxWidth-2),
		)
		if err == nil {
			m.mdRenderer = r
			m.mdWidth = maxWidth
		}
	}
	if m.mdRenderer != nil {
		if out, err := m.mdRenderer.Render(text); err == nil {
			return strings.Split(strings.Trim(out, "\n"), "\n")
		}
	}
	return wrapLines(text, maxWidth-2)
}

// previewTable renders the first rows of a table statically for the
// transcript. The interactive overlay shows the full set.
func previewTable(t *model.ParsedTable, maxWidth int) []string {
	const previewRows = 5

	colWidth := (maxWidth - 1) / len(t.Columns)
	if colWidth < 6 {
		colWidth = 6
	}

	var lines []string
	if t.Title != "" {
		lines = append(lines, " "+titleStyle.Render(t.Title))
	}

	var hdr strings.Builder
	for _, c := range t.Columns {
		hdr.WriteString(pad(c.HeaderName, colWidth))
	}
	lines = append(lines, " "+tableHeaderStyle.Render(hdr.String()))

	shown := t.Rows
	if len(shown) > previewRows {
		shown = shown[:previewRows]
	}
	for _, row := range shown {
		var b strings.Builder
		for _, c := range t.Columns {
			b.WriteString(pad(table.Stringify(row[c.Field]), colWidth))
		}
		lines = append(lines, " "+b.String())
	}
	if len(t.Rows) > previewRows {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("  … %d more rows", len(t.Rows)-previewRows)))
	}
	return lines
}

// trailingHeading returns the last non-blank line of text if it is a
// markdown heading, so it can title the table that follows.
func trailingHeading(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			return trimmed
		}
		return ""
	}
	return ""
}

// wrapLines splits text into lines that fit within maxWidth.
func wrapLines(text string, maxWidth int) []string {
	if maxWidth < 10 {
		maxWidth = 10
	}
	wrapped := wordwrap.String(text, maxWidth)
	return strings.Split(wrapped, "\n")
}

// Transcript scrolling with a manually clamped offset.

func (m *Model) visibleRows() int {
	// title bar, thinking area, input, status bar
	rows := m.height - 4 - len(m.red.Thinking())
	if m.red.Phase() == stream.PhaseAwaiting {
		rows-- // spinner line
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) scrollUp(n int) {
	m.offset -= n
	if m.offset < 0 {
		m.offset = 0
	}
	m.follow = false
}

func (m *Model) scrollDown(n int) {
	m.offset += n
	maxOffset := len(m.lines) - m.visibleRows()
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.offset >= maxOffset {
		m.offset = maxOffset
		m.follow = true
	}
}

func (m *Model) scrollToBottom() {
	maxOffset := len(m.lines) - m.visibleRows()
	if maxOffset < 0 {
		maxOffset = 0
	}
	m.offset = maxOffset
	m.follow = true
}

// Transcript search, adapted from the session detail view.

func (m *Model) computeSearchMatches() {
	m.matches = nil
	m.matchIdx = 0
	query := strings.ToLower(m.searchQuery)
	if query == "" {
		return
	}
	for i, line := range m.lines {
		if strings.Contains(strings.ToLower(line), query) {
			m.matches = append(m.matches, i)
		}
	}
	if len(m.matches) > 0 {
		m.scrollToMatch(0)
	}
}

func (m *Model) nextMatch() {
	if len(m.matches) == 0 {
		return
	}
	m.matchIdx = (m.matchIdx + 1) % len(m.matches)
	m.scrollToMatch(m.matchIdx)
}

func (m *Model) prevMatch() {
	if len(m.matches) == 0 {
		return
	}
	m.matchIdx--
	if m.matchIdx < 0 {
		m.matchIdx = len(m.matches) - 1
	}
	m.scrollToMatch(m.matchIdx)
}

func (m *Model) scrollToMatch(idx int) {
	lineNum := m.matches[idx]
	visible := m.visibleRows()
	m.offset = lineNum - visible/2
	if m.offset < 0 {
		m.offset = 0
	}
	maxOffset := len(m.lines) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	m.follow = false
}

func (m *Model) highlightLine(line string, lineIdx int) string {
	for i, matchLine := range m.matches {
		if matchLine == lineIdx && i == m.matchIdx {
			return searchHighlightStyle.Render(line)
		}
	}
	return line
}
