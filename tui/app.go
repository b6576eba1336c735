package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/sathvik-kandimala-2003/major-project/client"
	"github.com/sathvik-kandimala-2003/major-project/config"
	"github.com/sathvik-kandimala-2003/major-project/model"
	"github.com/sathvik-kandimala-2003/major-project/stream"
)

type mode int

const (
	modeChat mode = iota
	modeChatSearch
	modeTable
	modeTableSearch
	modeSession
)

// Stream bridge messages. Each carries the connection it came from
// so results from a replaced connection can be discarded.
type eventMsg struct {
	conn *client.Conn
	ev   client.Event
}

type statusMsg struct {
	conn *client.Conn
	st   client.Status
}

type streamClosedMsg struct {
	conn *client.Conn
}

// Model is the chat application state.
type Model struct {
	cfg     *config.Config
	rest    *client.REST
	conn    *client.Conn
	log     *slog.Logger
	red     *stream.Reducer
	session model.SessionInfo

	width  int
	height int
	mode   mode

	input textinput.Model
	spin  spinner.Model

	// transcript, rendered to lines on change
	lines  []string
	offset int
	follow bool
	dirty  bool

	searchInput textinput.Model
	searchQuery string
	matches     []int
	matchIdx    int

	mdRenderer *glamour.TermRenderer
	mdWidth    int

	// tables embedded in the transcript
	tables      []*tableEntry
	tableIdx    int
	colCursor   int
	rowOffset   int
	tableSearch textinput.Model

	sessForm *sessionForm

	notice   string
	quitting bool
}

// NewModel wires the chat view to an already-dialed session.
func NewModel(cfg *config.Config, rest *client.REST, session model.SessionInfo, conn *client.Conn, log *slog.Logger) Model {
	in := textinput.New()
	in.Placeholder = "Ask about colleges, branches, cutoffs..."
	in.CharLimit = 2000
	in.Focus()

	si := textinput.New()
	si.Placeholder = "search transcript..."
	si.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	red := stream.New()
	if len(session.Messages) > 0 {
		red.Apply(client.History{Messages: session.Messages})
	}

	m := Model{
		cfg:         cfg,
		rest:        rest,
		conn:        conn,
		log:         log,
		red:         red,
		session:     session,
		input:       in,
		searchInput: si,
		spin:        sp,
		width:       120,
		height:      30,
		follow:      true,
		dirty:       true,
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spin.Tick,
		waitForEvent(m.conn),
		waitForStatus(m.conn),
	)
}

// waitForEvent blocks on the connection's event channel and re-arms
// from Update after each delivery.
func waitForEvent(c *client.Conn) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-c.Events()
		if !ok {
			return streamClosedMsg{conn: c}
		}
		return eventMsg{conn: c, ev: ev}
	}
}

func waitForStatus(c *client.Conn) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-c.Status()
		if !ok {
			return streamClosedMsg{conn: c}
		}
		return statusMsg{conn: c, st: st}
	}
}

// syncHistoryCmd asks the server to replay the transcript whenever
// the socket comes up. The greeting seeded into a new session lives
// server-side only, so the first connect needs the replay as much as
// a reconnect does; history replaces local state wholesale.
func (m Model) syncHistoryCmd(st client.Status) tea.Cmd {
	if st.State != client.StateConnected {
		return nil
	}
	conn := m.conn
	log := m.log
	return func() tea.Msg {
		if err := conn.RequestHistory(); err != nil {
			log.Warn("history request failed", "err", err)
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.mdRenderer = nil
		m.rebuildTranscript()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		if msg.conn != m.conn {
			return m, nil // stale connection
		}
		m.red.Apply(msg.ev)
		switch msg.ev.(type) {
		case client.Welcome, client.ResponseChunk, client.ResponseComplete, client.History:
			m.rebuildTranscript()
		case client.ErrorEvent:
			m.log.Warn("server error event", "message", m.red.LastError())
		}
		return m, waitForEvent(m.conn)

	case statusMsg:
		if msg.conn != m.conn {
			return m, nil
		}
		m.red.ApplyStatus(msg.st)
		cmds := []tea.Cmd{waitForStatus(m.conn)}
		if cmd := m.syncHistoryCmd(msg.st); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case streamClosedMsg:
		if msg.conn != m.conn {
			return m, nil
		}
		m.red.ApplyStatus(client.Status{State: client.StateDisconnected})
		return m, nil

	case sessionSwitchedMsg:
		m.conn = msg.conn
		m.session = msg.info
		m.red = stream.New()
		if msg.resumed && len(msg.info.Messages) > 0 {
			m.red.Apply(client.History{Messages: msg.info.Messages})
		}
		m.notice = ""
		m.rebuildTranscript()
		m.scrollToBottom()
		return m, tea.Batch(waitForEvent(m.conn), waitForStatus(m.conn))

	case sessionErrMsg:
		m.notice = "session error: " + msg.err.Error()
		m.log.Error("session switch failed", "err", msg.err)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.notice = "export failed: " + msg.err.Error()
			m.log.Error("csv export failed", "err", msg.err)
		} else {
			m.notice = "saved " + msg.filename
			m.log.Info("csv exported", "file", msg.filename)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeChat:
			return m.updateChat(msg)
		case modeChatSearch:
			return m.updateChatSearch(msg)
		case modeTable:
			return m.updateTable(msg)
		case modeTableSearch:
			return m.updateTableSearch(msg)
		case modeSession:
			return m.updateSessionForm(msg)
		}
	}
	return m, nil
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		return m.sendMessage()

	case "esc":
		if m.red.LastError() != "" {
			m.red.ClearError()
			return m, nil
		}
		m.notice = ""
		return m, nil

	case "ctrl+f":
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.mode = modeChatSearch
		return m, nil

	case "ctrl+n":
		m.nextMatch()
		return m, nil

	case "ctrl+p":
		m.prevMatch()
		return m, nil

	case "ctrl+t":
		return m.enterTable()

	case "ctrl+s":
		return m.enterSessionForm()

	case "up":
		m.scrollUp(1)
		return m, nil

	case "down":
		m.scrollDown(1)
		return m, nil

	case "pgup":
		m.scrollUp(m.visibleRows())
		return m, nil

	case "pgdown":
		m.scrollDown(m.visibleRows())
		return m, nil
	}

	// composing is disabled while a response is in flight or the
	// socket is down
	if !m.red.CanSend() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) sendMessage() (tea.Model, tea.Cmd) {
	if !m.red.CanSend() {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	m.red.SendUser(text)
	m.input.SetValue("")
	m.rebuildTranscript()
	m.scrollToBottom()

	conn := m.conn
	log := m.log
	return m, func() tea.Msg {
		if err := conn.SendChat(text); err != nil {
			log.Error("send failed", "err", err)
		}
		return nil
	}
}

func (m Model) updateChatSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput.Blur()
		m.searchQuery = ""
		m.computeSearchMatches()
		m.mode = modeChat
		m.input.Focus()
		return m, nil
	case "enter":
		m.searchInput.Blur()
		m.searchQuery = m.searchInput.Value()
		m.computeSearchMatches()
		m.mode = modeChat
		m.input.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.mode {
	case modeSession:
		return m.viewSessionForm()
	case modeTable, modeTableSearch:
		return m.viewTable()
	}

	var b strings.Builder

	// title bar
	title := titleStyle.Render("Rank Predictor")
	info := dimStyle.Render(fmt.Sprintf("  session %s  [%s]", m.session.ShortID(), m.red.Phase()))
	b.WriteString(title + info + "\n")

	// transcript
	visible := m.visibleRows()
	end := m.offset + visible
	if end > len(m.lines) {
		end = len(m.lines)
	}
	for i := m.offset; i < end; i++ {
		line := m.lines[i]
		if m.searchQuery != "" {
			line = m.highlightLine(line, i)
		}
		b.WriteString(line + "\n")
	}
	for i := end - m.offset; i < visible; i++ {
		b.WriteString("\n")
	}

	// thinking steps with spinner while awaiting
	for _, step := range m.red.Thinking() {
		mark := "…"
		if step.Completed {
			mark = "✓"
		} else if step.Failed {
			mark = "✗"
		}
		b.WriteString(thinkingStyle.Render(fmt.Sprintf("  %s %s", mark, step.Step)) + "\n")
	}
	if m.red.Phase() == stream.PhaseAwaiting {
		b.WriteString(m.spin.View() + thinkingStyle.Render(" waiting for response") + "\n")
	}

	// error banner, notice, or input line
	switch {
	case m.red.LastError() != "":
		b.WriteString(errorBarStyle.Render(" "+m.red.LastError()+"  (Esc to dismiss)") + "\n")
	case m.notice != "":
		b.WriteString(statusBarStyle.Render(m.notice) + "\n")
	default:
		b.WriteString(m.viewInput() + "\n")
	}

	// bottom bar
	if m.mode == modeChatSearch {
		b.WriteString(statusBarStyle.Render("Search: ") + m.searchInput.View())
	} else {
		b.WriteString(m.renderHelp())
	}

	return b.String()
}

func (m Model) viewInput() string {
	if !m.red.CanSend() {
		return dimStyle.Render(" input disabled while " + m.red.Phase().String())
	}
	return " " + m.input.View()
}

func (m Model) renderHelp() string {
	help := "  Enter: send  Ctrl+F: search  Ctrl+T: tables  Ctrl+S: session  Ctrl+C: quit"
	if m.searchQuery != "" {
		if len(m.matches) > 0 {
			help += dimStyle.Render(fmt.Sprintf("  match %d/%d (Ctrl+N/P)", m.matchIdx+1, len(m.matches)))
		} else {
			help += dimStyle.Render("  no matches")
		}
	}
	return helpStyle.Render(help)
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
