package tui

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/swishreport/swish/internal/session"
	"github.com/swishreport/swish/pkg/client"
	"github.com/swishreport/swish/pkg/domain"
)

// -- messages --

// Every dashboard message carries the loadID of the activate call that
// started it; responses from an earlier load (or an earlier user) are dropped.

type dashProfileMsg struct {
	loadID   string
	username string
	err      error
}

type dashLineupsMsg struct {
	loadID  string
	lineups []domain.Lineup
	err     error
}

type dashTakesMsg struct {
	loadID string
	takes  []domain.HotTake
	err    error
}

// -- model --

type dashTab int

const (
	dashLineups dashTab = iota
	dashTakes
)

type dashboardModel struct {
	client   *client.Client
	guard    *session.Guard
	logger   *slog.Logger
	timeout  time.Duration
	loadID   string
	identity string
	username string
	tab      dashTab
	lineups  []domain.Lineup
	takes    []domain.HotTake
	cursor   int
	err      string
	loading  bool
	width    int
	height   int
}

func newDashboardModel(c *client.Client, g *session.Guard, logger *slog.Logger, timeout time.Duration) dashboardModel {
	if logger == nil {
		logger = slog.Default()
	}
	return dashboardModel{client: c, guard: g, logger: logger, timeout: timeout}
}

// activate reloads everything; the dashboard always shows fresh data.
func (m dashboardModel) activate() (dashboardModel, tea.Cmd) {
	creds, lost := checkSession(m.guard, m.logger)
	if lost != nil {
		return m, lost
	}
	if creds.Identity != m.identity {
		m.username = ""
		m.lineups = nil
		m.takes = nil
		m.cursor = 0
	}
	m.identity = creds.Identity
	m.loadID = uuid.NewString()
	m.loading = true
	m.err = ""
	return m, m.load(creds)
}

func (m dashboardModel) load(creds session.Credentials) tea.Cmd {
	c := m.client.WithToken(creds.Token)
	email := creds.Identity
	id := m.loadID
	timeout := m.timeout
	run := func(f func(ctx context.Context) tea.Msg) tea.Cmd {
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return f(ctx)
		}
	}
	return tea.Batch(
		run(func(ctx context.Context) tea.Msg {
			name, err := c.GetUsername(ctx, email)
			return dashProfileMsg{loadID: id, username: name, err: err}
		}),
		run(func(ctx context.Context) tea.Msg {
			lineups, err := c.ListUserLineups(ctx, email)
			return dashLineupsMsg{loadID: id, lineups: lineups, err: err}
		}),
		run(func(ctx context.Context) tea.Msg {
			takes, err := c.ListUserHotTakes(ctx, email)
			return dashTakesMsg{loadID: id, takes: takes, err: err}
		}),
	)
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case dashProfileMsg:
		if !m.current(msg.loadID) {
			return m, nil
		}
		if msg.err == nil {
			m.username = msg.username
		}

	case dashLineupsMsg:
		if !m.current(msg.loadID) {
			return m, nil
		}
		m.loading = false
		if client.IsStatus(msg.err, http.StatusUnauthorized) {
			return m, rejectSession(m.guard, m.logger, msg.err)
		}
		if msg.err != nil {
			m.err = client.UserMessage(msg.err)
		} else {
			m.lineups = msg.lineups
		}
		m.cursor = clampCursor(m.cursor, m.rowCount())

	case dashTakesMsg:
		if !m.current(msg.loadID) {
			return m, nil
		}
		if msg.err != nil {
			if m.tab == dashTakes {
				m.err = client.UserMessage(msg.err)
			}
		} else {
			m.takes = msg.takes
		}
		m.cursor = clampCursor(m.cursor, m.rowCount())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m dashboardModel) current(loadID string) bool {
	if loadID != m.loadID {
		m.logger.Debug("dropping stale dashboard response", "load_id", loadID)
		return false
	}
	return true
}

func (m dashboardModel) rowCount() int {
	if m.tab == dashTakes {
		return len(m.takes)
	}
	return len(m.lineups)
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "t":
		if m.tab == dashLineups {
			m.tab = dashTakes
		} else {
			m.tab = dashLineups
		}
		m.cursor = 0
		m.err = ""
	case "r":
		return m.activate()
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder

	name := m.username
	if name == "" {
		name = m.identity
	}
	header := " " + selectedStyle.Render(name)
	if m.username != "" && m.identity != "" {
		header += "  " + metaStyle.Render(m.identity)
	}
	b.WriteString(header + "\n")

	lineupsLabel := fmt.Sprintf("Lineups (%d)", len(m.lineups))
	takesLabel := fmt.Sprintf("Hot takes (%d)", len(m.takes))
	if m.tab == dashLineups {
		b.WriteString(" " + accentStyle.Underline(true).Render(lineupsLabel) + "  " + dimStyle.Render(takesLabel) + "\n\n")
	} else {
		b.WriteString(" " + dimStyle.Render(lineupsLabel) + "  " + accentStyle.Underline(true).Render(takesLabel) + "\n\n")
	}

	if m.loading && len(m.lineups) == 0 && len(m.takes) == 0 {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}

	if m.tab == dashTakes {
		m.renderTakes(&b)
	} else {
		m.renderLineups(&b)
	}
	return b.String()
}

func (m dashboardModel) textWidth() int {
	w := m.width - 24
	if w < 20 {
		w = 20
	}
	return w
}

func (m dashboardModel) renderLineups(b *strings.Builder) {
	if len(m.lineups) == 0 {
		b.WriteString(" " + dimStyle.Render("no lineups yet, build one on the Lineup tab") + "\n")
		return
	}
	start, end := window(m.cursor, len(m.lineups), m.height-4)
	for i := start; i < end; i++ {
		l := m.lineups[i]
		cursor := " "
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
		}
		score := scoreStyle(l.ScoutingReport.OverallScore).Render(fmt.Sprintf("%5.1f", l.ScoutingReport.OverallScore))
		mode := metaStyle.Render(padRight(string(l.Mode), 10))
		analysis := dimStyle.Render(truncStr(cleanText(l.ScoutingReport.OverallAnalysis), m.textWidth()))
		fmt.Fprintf(b, " %s %s %s %s\n", cursor, mode, score, analysis)
	}
}

func (m dashboardModel) renderTakes(b *strings.Builder) {
	if len(m.takes) == 0 {
		b.WriteString(" " + dimStyle.Render("no hot takes yet") + "\n")
		return
	}
	start, end := window(m.cursor, len(m.takes), m.height-4)
	for i := start; i < end; i++ {
		t := m.takes[i]
		cursor := " "
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
		}
		score := scoreStyle(t.TruthfulnessScore).Render(fmt.Sprintf("%5.1f%%", t.TruthfulnessScore))
		content := normalStyle.Render(truncStr(cleanText(t.Content), m.textWidth()))
		fmt.Fprintf(b, " %s %s %s\n", cursor, score, content)
	}
}

func (m dashboardModel) helpKeys() string {
	return helpBar("1-6", "tabs", "j/k", "nav", "t", "lineups/takes", "r", "refresh", "L", "sign out", "h", "help", "q", "quit")
}
