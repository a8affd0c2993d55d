package tui

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/swishreport/swish/internal/session"
	"github.com/swishreport/swish/pkg/client"
	"github.com/swishreport/swish/pkg/domain"
)

type communityListMsg struct {
	loadID  string
	lineups []domain.Lineup
	err     error
}

type communityDetailMsg struct {
	id     int
	lineup *domain.Lineup
	err    error
}

// communityModel lists every user's saved lineups; enter opens one with
// its players and the full scouting report.
type communityModel struct {
	client  *client.Client
	guard   *session.Guard
	logger  *slog.Logger
	timeout time.Duration

	loadID  string
	lineups []domain.Lineup
	loaded  bool
	loading bool
	err     string
	cursor  int

	detailID  int // 0 while the list is showing
	detail    *domain.Lineup
	detailErr string

	width  int
	height int
}

func newCommunityModel(c *client.Client, g *session.Guard, logger *slog.Logger, timeout time.Duration) communityModel {
	if logger == nil {
		logger = slog.Default()
	}
	return communityModel{client: c, guard: g, logger: logger, timeout: timeout}
}

func (m communityModel) activate() (communityModel, tea.Cmd) {
	if _, lost := checkSession(m.guard, m.logger); lost != nil {
		return m, lost
	}
	if m.loaded || m.loading {
		return m, nil
	}
	return m.load()
}

func (m communityModel) load() (communityModel, tea.Cmd) {
	m.loadID = uuid.NewString()
	m.loading = true
	m.err = ""

	c := m.client
	id := m.loadID
	timeout := m.timeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		lineups, err := c.ListCommunityLineups(ctx)
		return communityListMsg{loadID: id, lineups: lineups, err: err}
	}
}

// openDetail shows the selected lineup's summary and fetches the rest.
func (m communityModel) openDetail() (communityModel, tea.Cmd) {
	if m.cursor >= len(m.lineups) {
		return m, nil
	}
	creds, lost := checkSession(m.guard, m.logger)
	if lost != nil {
		return m, lost
	}
	summary := m.lineups[m.cursor]
	m.detailID = summary.LineupID
	m.detail = &summary
	m.detailErr = ""

	c := m.client.WithToken(creds.Token)
	id := summary.LineupID
	timeout := m.timeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		l, err := c.GetCommunityLineup(ctx, id)
		return communityDetailMsg{id: id, lineup: l, err: err}
	}
}

func (m communityModel) Update(msg tea.Msg) (communityModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case communityListMsg:
		if msg.loadID != m.loadID {
			m.logger.Debug("dropping stale community response", "load_id", msg.loadID)
			return m, nil
		}
		m.loading = false
		if client.IsStatus(msg.err, http.StatusUnauthorized) {
			return m, rejectSession(m.guard, m.logger, msg.err)
		}
		if msg.err != nil {
			m.err = client.UserMessage(msg.err)
			m.logger.Warn("community lineups fetch failed", "error", msg.err)
			return m, nil
		}
		m.loaded = true
		m.lineups = msg.lineups
		m.cursor = clampCursor(m.cursor, len(m.lineups))

	case communityDetailMsg:
		if msg.id != m.detailID {
			return m, nil
		}
		if client.IsStatus(msg.err, http.StatusUnauthorized) {
			return m, rejectSession(m.guard, m.logger, msg.err)
		}
		if msg.err != nil {
			m.detailErr = client.UserMessage(msg.err)
			m.logger.Warn("community lineup fetch failed", "lineup_id", msg.id, "error", msg.err)
			return m, nil
		}
		if msg.lineup != nil {
			m.detail = msg.lineup
		}

	case tea.KeyMsg:
		if m.detailID != 0 {
			switch msg.String() {
			case "esc", "enter":
				m.detailID = 0
				m.detail = nil
				m.detailErr = ""
			}
			return m, nil
		}
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.lineups)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			return m.openDetail()
		case "r":
			return m.load()
		}
	}
	return m, nil
}

func (m communityModel) textWidth() int {
	w := m.width - 24
	if w < 20 {
		w = 20
	}
	return w
}

func (m communityModel) View() string {
	if m.detailID != 0 && m.detail != nil {
		return m.viewDetail()
	}

	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("COMMUNITY LINEUPS"))
	if m.loaded {
		b.WriteString("  " + metaStyle.Render(fmt.Sprintf("%d", len(m.lineups))))
	}
	b.WriteString("\n\n")

	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading lineups...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.err) + "\n")
		b.WriteString(" " + dimStyle.Render("r to retry") + "\n")
		return b.String()
	}
	if len(m.lineups) == 0 {
		b.WriteString(" " + dimStyle.Render("no lineups shared yet") + "\n")
		return b.String()
	}

	start, end := window(m.cursor, len(m.lineups), m.height-4)
	for i := start; i < end; i++ {
		l := m.lineups[i]
		cursor := " "
		label := normalStyle.Render(padRight(fmt.Sprintf("#%d", l.LineupID), 6))
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
			label = selectedStyle.Render(padRight(fmt.Sprintf("#%d", l.LineupID), 6))
		}
		mode := metaStyle.Render(padRight(string(l.Mode), 10))
		score := scoreStyle(l.ScoutingReport.OverallScore).Render(fmt.Sprintf("%5.1f", l.ScoutingReport.OverallScore))
		analysis := dimStyle.Render(truncStr(cleanText(l.ScoutingReport.OverallAnalysis), m.textWidth()))
		fmt.Fprintf(&b, " %s %s %s %s %s\n", cursor, label, mode, score, analysis)
	}
	return b.String()
}

func (m communityModel) viewDetail() string {
	l := m.detail
	r := l.ScoutingReport
	w := m.width - 4
	if w < 30 {
		w = 30
	}
	wrap := lipgloss.NewStyle().Width(w)

	var b strings.Builder
	fmt.Fprintf(&b, " %s  %s  %s\n",
		selectedStyle.Render(fmt.Sprintf("Lineup #%d", l.LineupID)),
		metaStyle.Render(string(l.Mode)),
		scoreStyle(r.OverallScore).Render(fmt.Sprintf("%.1f", r.OverallScore)))

	if len(l.Players) > 0 {
		b.WriteString("\n " + sectionHeaderStyle.Render("── PLAYERS ──") + "\n")
		for _, slot := range l.Players.Slots() {
			name := l.Players[slot]
			if name == "" {
				name = dimStyle.Render("(empty)")
			} else {
				name = normalStyle.Render(name)
			}
			fmt.Fprintf(&b, " %s %s\n", PositionStyle(slot).Render(padRight(slot, 7)), name)
		}
	}
	if r.SynergyNotes != "" {
		b.WriteString("\n " + sectionHeaderStyle.Render("── SYNERGY ──") + "\n")
		b.WriteString(analysisStyle.Render(wrap.Render(cleanText(r.SynergyNotes))) + "\n")
	}
	if r.Floor != "" || r.Ceiling != "" {
		b.WriteString("\n")
		if r.Floor != "" {
			b.WriteString(" " + metaStyle.Render("floor:   ") + normalStyle.Render(cleanText(r.Floor)) + "\n")
		}
		if r.Ceiling != "" {
			b.WriteString(" " + metaStyle.Render("ceiling: ") + normalStyle.Render(cleanText(r.Ceiling)) + "\n")
		}
	}
	if len(r.Strengths) > 0 {
		b.WriteString("\n " + sectionHeaderStyle.Render("── STRENGTHS ──") + "\n")
		for _, s := range r.Strengths {
			b.WriteString(" " + successStyle.Render("+ ") + normalStyle.Render(cleanText(s)) + "\n")
		}
	}
	if len(r.Weaknesses) > 0 {
		b.WriteString("\n " + sectionHeaderStyle.Render("── WEAKNESSES ──") + "\n")
		for _, s := range r.Weaknesses {
			b.WriteString(" " + errorStyle.Render("- ") + normalStyle.Render(cleanText(s)) + "\n")
		}
	}
	if r.OverallAnalysis != "" {
		b.WriteString("\n " + sectionHeaderStyle.Render("── ANALYSIS ──") + "\n")
		b.WriteString(analysisStyle.Render(wrap.Render(cleanText(r.OverallAnalysis))) + "\n")
	}
	if m.detailErr != "" {
		b.WriteString("\n " + errorStyle.Render("error: "+m.detailErr) + "\n")
	}
	return b.String()
}

func (m communityModel) helpKeys() string {
	if m.detailID != 0 {
		return helpBar("esc", "back to list", "q", "quit")
	}
	return helpBar("1-6", "tabs", "j/k", "nav", "enter", "open", "r", "refresh", "L", "sign out", "h", "help", "q", "quit")
}
