package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sathvik-kandimala-2003/major-project/table"
)

// exportDoneMsg reports the result of a CSV export.
type exportDoneMsg struct {
	filename string
	err      error
}

// enterTable opens the interactive overlay on the most recent table.
func (m Model) enterTable() (Model, tea.Cmd) {
	if len(m.tables) == 0 {
		return m, nil
	}
	m.tableIdx = len(m.tables) - 1
	m.colCursor = 0
	m.rowOffset = 0
	m.tableSearch = textinput.New()
	m.tableSearch.Placeholder = "search..."
	m.tableSearch.CharLimit = 100
	m.mode = modeTable
	return m, nil
}

func (m Model) activeTable() *table.View {
	if len(m.tables) == 0 {
		return nil
	}
	// the transcript rebuild may have shrunk the table list
	idx := m.tableIdx
	if idx >= len(m.tables) {
		idx = len(m.tables) - 1
	}
	return m.tables[idx].view
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.activeTable()
	if v == nil {
		m.mode = modeChat
		return m, nil
	}

	switch msg.String() {
	case "esc", "q":
		m.mode = modeChat
		return m, nil

	case "tab":
		m.tableIdx = (m.tableIdx + 1) % len(m.tables)
		m.colCursor = 0
		m.rowOffset = 0

	case "left", "h":
		if m.colCursor > 0 {
			m.colCursor--
		}

	case "right", "l":
		if m.colCursor < len(v.Columns())-1 {
			m.colCursor++
		}

	case "enter", "s":
		cols := v.Columns()
		if m.colCursor < len(cols) && cols[m.colCursor].Sortable {
			v.SortBy(cols[m.colCursor].Field)
			m.rowOffset = 0
		}

	case "up", "k":
		if m.rowOffset > 0 {
			m.rowOffset--
		}

	case "down", "j":
		if m.rowOffset < m.maxRowOffset(v) {
			m.rowOffset++
		}

	case "pgup", "u":
		m.rowOffset -= m.tableVisibleRows()
		if m.rowOffset < 0 {
			m.rowOffset = 0
		}

	case "pgdown", "d":
		m.rowOffset += m.tableVisibleRows()
		if max := m.maxRowOffset(v); m.rowOffset > max {
			m.rowOffset = max
		}

	case "/":
		m.tableSearch.SetValue(v.Query())
		m.tableSearch.Focus()
		m.tableSearch.CursorEnd()
		m.mode = modeTableSearch

	case "x":
		// clear the active query chip
		v.SetQuery("")
		m.rowOffset = 0

	case "e":
		return m, exportCSV(v)
	}

	return m, nil
}

func (m Model) updateTableSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.tableSearch.Blur()
		m.mode = modeTable
		return m, nil
	}

	var cmd tea.Cmd
	m.tableSearch, cmd = m.tableSearch.Update(msg)
	if v := m.activeTable(); v != nil {
		v.SetQuery(m.tableSearch.Value())
		m.rowOffset = 0
	}
	return m, cmd
}

// exportCSV writes the currently sorted and filtered rows to a file
// in the working directory.
func exportCSV(v *table.View) tea.Cmd {
	data := v.CSV()
	name := v.Filename(time.Now())
	return func() tea.Msg {
		err := os.WriteFile(name, data, 0o644)
		return exportDoneMsg{filename: name, err: err}
	}
}

func (m Model) maxRowOffset(v *table.View) int {
	max := len(v.Rows()) - m.tableVisibleRows()
	if max < 0 {
		return 0
	}
	return max
}

func (m Model) tableVisibleRows() int {
	// title, header, footer, help/search bar
	rows := m.height - 4
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) viewTable() string {
	v := m.activeTable()
	if v == nil {
		return ""
	}

	var b strings.Builder

	title := v.Title
	if title == "" {
		title = "Table"
	}
	if len(m.tables) > 1 {
		title += fmt.Sprintf("  (%d/%d)", m.tableIdx+1, len(m.tables))
	}
	b.WriteString(titleStyle.Render(title) + "\n")

	cols := v.Columns()
	colWidth := (m.width - 2) / len(cols)
	if colWidth < 8 {
		colWidth = 8
	}

	// header with sort indicator and column cursor
	sortField, asc := v.SortState()
	var hdr strings.Builder
	for i, c := range cols {
		label := c.HeaderName
		if c.Field == sortField {
			if asc {
				label += " ▲"
			} else {
				label += " ▼"
			}
		}
		cell := pad(label, colWidth)
		if i == m.colCursor {
			cell = pickedColStyle.Render(cell)
		} else if c.Field == sortField {
			cell = sortedColStyle.Render(cell)
		} else {
			cell = tableHeaderStyle.Render(cell)
		}
		hdr.WriteString(cell)
	}
	b.WriteString(" " + hdr.String() + "\n")

	rows := v.Rows()
	visible := m.tableVisibleRows()
	end := m.rowOffset + visible
	if end > len(rows) {
		end = len(rows)
	}

	if len(rows) == 0 {
		b.WriteString(dimStyle.Render(pad("  No matching entries", m.width-2)) + "\n")
		for i := 1; i < visible; i++ {
			b.WriteString("\n")
		}
	} else {
		for _, row := range rows[m.rowOffset:end] {
			var line strings.Builder
			for _, c := range cols {
				val := row[c.Field]
				cell := table.Stringify(val)
				if badge := badgeText(v.CellBadge(c.Field, val)); badge != "" {
					cell = fitBadgeCell(cell, badge, colWidth, v.CellBadge(c.Field, val))
					line.WriteString(cell)
					continue
				}
				line.WriteString(styleBand(v.CellBand(c.Field, val), pad(cell, colWidth)))
			}
			b.WriteString(" " + line.String() + "\n")
		}
		for i := end - m.rowOffset; i < visible; i++ {
			b.WriteString("\n")
		}
	}

	// footer: counts, query chip, key help
	shown, total := v.Counts()
	footer := dimStyle.Render(fmt.Sprintf("  %d of %d entries", shown, total))
	if q := v.Query(); q != "" {
		footer += "  " + chipStyle.Render("filter: "+q+" (x)")
	}
	if m.notice != "" {
		footer += "  " + dimStyle.Render(m.notice)
	}
	b.WriteString(footer + "\n")

	if m.mode == modeTableSearch {
		b.WriteString(statusBarStyle.Render("Search: ") + m.tableSearch.View())
	} else {
		b.WriteString(helpStyle.Render("  ←→: column  Enter: sort  /: search  e: export CSV  Tab: next table  Esc: back"))
	}

	return b.String()
}

func badgeText(b table.Badge) string {
	switch b {
	case table.BadgeTop:
		return "TOP"
	case table.BadgeSecond:
		return "GOOD"
	case table.BadgeThird:
		return "FAIR"
	default:
		return ""
	}
}

func badgeStyleFor(b table.Badge) lipgloss.Style {
	switch b {
	case table.BadgeTop:
		return badgeTopStyle
	case table.BadgeSecond:
		return badgeSecondStyle
	default:
		return badgeThirdStyle
	}
}

// fitBadgeCell renders a value followed by its rank badge inside one
// column width.
func fitBadgeCell(value, badge string, width int, b table.Badge) string {
	avail := width - len(badge) - 2
	if avail < 1 {
		return pad(value, width)
	}
	return pad(value, avail) + badgeStyleFor(b).Render(badge) + pad("", width-avail-len(badge))
}

func styleBand(band table.Band, cell string) string {
	switch band {
	case table.BandSuccess:
		return bandSuccessStyle.Render(cell)
	case table.BandWarning:
		return bandWarningStyle.Render(cell)
	case table.BandError:
		return bandErrorStyle.Render(cell)
	default:
		return cell
	}
}
