package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sathvik-kandimala-2003/major-project/client"
	"github.com/sathvik-kandimala-2003/major-project/model"
)

// sessionForm field indices
const (
	fieldAction = iota
	fieldID
	fieldCount
)

type sessionForm struct {
	action  int // 0 = new session, 1 = resume by id
	idInput textinput.Model
	focus   int
}

// sessionSwitchedMsg carries the freshly dialed session.
type sessionSwitchedMsg struct {
	info    model.SessionInfo
	conn    *client.Conn
	resumed bool
}

type sessionErrMsg struct {
	err error
}

func newSessionForm() *sessionForm {
	ti := textinput.New()
	ti.Placeholder = "session id"
	ti.CharLimit = 64

	return &sessionForm{
		action:  0,
		idInput: ti,
		focus:   fieldAction,
	}
}

func (m Model) enterSessionForm() (Model, tea.Cmd) {
	m.sessForm = newSessionForm()
	m.mode = modeSession
	return m, nil
}

func (m Model) updateSessionForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.sessForm
	key := msg.String()

	switch key {
	case "esc":
		m.sessForm = nil
		m.mode = modeChat
		return m, nil

	case "tab", "down":
		f.blurCurrent()
		f.focus = (f.focus + 1) % fieldCount
		f.focusCurrent()
		return m, nil

	case "shift+tab", "up":
		f.blurCurrent()
		f.focus = (f.focus - 1 + fieldCount) % fieldCount
		f.focusCurrent()
		return m, nil

	case "enter":
		resume := f.action == 1
		id := strings.TrimSpace(f.idInput.Value())
		if resume && id == "" {
			return m, nil
		}
		m.sessForm = nil
		m.mode = modeChat
		return m, m.switchSession(resume, id)
	}

	switch f.focus {
	case fieldAction:
		switch key {
		case "left", "h":
			f.action = 0
		case "right", "l":
			f.action = 1
		}
	case fieldID:
		var cmd tea.Cmd
		f.idInput, cmd = f.idInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// switchSession tears down the current socket and dials the chosen
// session. The old connection is released before the new dial so no
// exit path leaks a socket or its retry timer.
func (m *Model) switchSession(resume bool, id string) tea.Cmd {
	if m.conn != nil {
		m.conn.Close()
	}
	rest := m.rest
	cfg := m.cfg

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		var info model.SessionInfo
		var err error
		if resume {
			info, err = rest.GetSession(ctx, id)
		} else {
			info, err = rest.CreateSession(ctx)
		}
		if err != nil {
			return sessionErrMsg{err: err}
		}

		conn, err := client.DialSession(cfg.ServerURL, info.SessionID, client.ConnOptions{
			MaxRetries: cfg.ReconnectMax,
			BaseDelay:  cfg.ReconnectDelay,
			Logger:     m.log,
		})
		if err != nil {
			return sessionErrMsg{err: err}
		}
		return sessionSwitchedMsg{info: info, conn: conn, resumed: resume}
	}
}

func (f *sessionForm) blurCurrent() {
	if f.focus == fieldID {
		f.idInput.Blur()
	}
}

func (f *sessionForm) focusCurrent() {
	if f.focus == fieldID {
		f.idInput.Focus()
		f.idInput.CursorEnd()
	}
}

func (m Model) viewSessionForm() string {
	f := m.sessForm

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("39")).
		Padding(1, 2).
		Width(56)

	titleStr := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Render("Switch Session")

	actionLabel := m.fieldLabel("What:", f.focus == fieldAction)
	actionValue := m.renderRadio([]string{"New session", "Resume"}, f.action, f.focus == fieldAction)

	idLabel := m.fieldLabel("ID:", f.focus == fieldID)
	idValue := f.idInput.View()

	content := fmt.Sprintf(
		"%s\n\n%s  %s\n\n%s  %s\n\n%s",
		titleStr,
		actionLabel, actionValue,
		idLabel, idValue,
		dimStyle.Render("Enter: go  Esc: cancel  Tab: next  ←→: toggle"),
	)

	box := boxStyle.Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) fieldLabel(label string, focused bool) string {
	style := lipgloss.NewStyle().Width(6)
	if focused {
		style = style.Bold(true).Foreground(lipgloss.Color("39"))
	} else {
		style = style.Foreground(lipgloss.Color("252"))
	}
	return style.Render(label)
}

func (m Model) renderRadio(options []string, selected int, focused bool) string {
	var parts []string
	for i, opt := range options {
		if i == selected {
			style := lipgloss.NewStyle().Bold(true)
			if focused {
				style = style.Foreground(lipgloss.Color("39"))
			} else {
				style = style.Foreground(lipgloss.Color("255"))
			}
			parts = append(parts, style.Render("● "+opt))
		} else {
			parts = append(parts, dimStyle.Render("○ "+opt))
		}
	}
	return strings.Join(parts, "   ")
}
