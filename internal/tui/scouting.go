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

// scoutPageSize is the NBA page length; the prospect list is not paged.
const scoutPageSize = 50

type scoutLevel int

const (
	levelNBA scoutLevel = iota
	levelHighSchool
)

func (l scoutLevel) String() string {
	if l == levelHighSchool {
		return "High school"
	}
	return "NBA"
}

type scoutLoadedMsg struct {
	loadID  string
	players []domain.Player
	err     error
}

// scoutingModel browses scouting reports for NBA players (paged) and
// high-school prospects. Selecting a row opens the profile overlay.
type scoutingModel struct {
	client  *client.Client
	guard   *session.Guard
	logger  *slog.Logger
	timeout time.Duration

	level     scoutLevel
	page      int
	loadID    string
	players   []domain.Player
	loaded    bool
	loading   bool
	err       string
	query     string
	searching bool
	cursor    int
	width     int
	height    int
}

func newScoutingModel(c *client.Client, g *session.Guard, logger *slog.Logger, timeout time.Duration) scoutingModel {
	if logger == nil {
		logger = slog.Default()
	}
	return scoutingModel{client: c, guard: g, logger: logger, timeout: timeout, page: 1}
}

// activate loads the current level the first time the view is shown.
func (m scoutingModel) activate() (scoutingModel, tea.Cmd) {
	if _, lost := checkSession(m.guard, m.logger); lost != nil {
		return m, lost
	}
	if m.loaded || m.loading {
		return m, nil
	}
	return m.load()
}

func (m scoutingModel) load() (scoutingModel, tea.Cmd) {
	m.loadID = uuid.NewString()
	m.loading = true
	m.err = ""

	c := m.client
	id := m.loadID
	level := m.level
	page := m.page
	timeout := m.timeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var players []domain.Player
		var err error
		if level == levelHighSchool {
			players, err = c.ListHighSchoolProspects(ctx)
		} else {
			players, err = c.ListNBAPlayers(ctx, page, scoutPageSize)
		}
		return scoutLoadedMsg{loadID: id, players: players, err: err}
	}
}

func (m scoutingModel) editing() bool {
	return m.searching
}

func (m scoutingModel) Update(msg tea.Msg) (scoutingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case scoutLoadedMsg:
		if msg.loadID != m.loadID {
			m.logger.Debug("dropping stale scouting response", "load_id", msg.loadID)
			return m, nil
		}
		m.loading = false
		if client.IsStatus(msg.err, http.StatusUnauthorized) {
			return m, rejectSession(m.guard, m.logger, msg.err)
		}
		if msg.err != nil {
			m.err = client.UserMessage(msg.err)
			m.logger.Warn("scouting fetch failed", "level", m.level.String(), "page", m.page, "error", msg.err)
			return m, nil
		}
		m.loaded = true
		m.players = msg.players
		m.cursor = clampCursor(m.cursor, len(m.visible()))

	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "enter", "esc":
				m.searching = false
			default:
				m.query = editRune(m.query, msg.String())
				m.cursor = 0
			}
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m scoutingModel) handleKey(msg tea.KeyMsg) (scoutingModel, tea.Cmd) {
	rows := m.visible()
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.searching = true
	case "esc":
		m.query = ""
		m.cursor = 0
	case "l":
		if m.level == levelNBA {
			m.level = levelHighSchool
		} else {
			m.level = levelNBA
		}
		m.page = 1
		return m.reset()
	case "]":
		if m.level == levelNBA && m.loaded && len(m.players) >= scoutPageSize {
			m.page++
			return m.reset()
		}
	case "[":
		if m.level == levelNBA && m.page > 1 {
			m.page--
			return m.reset()
		}
	case "r":
		return m.load()
	case "enter", "p":
		if m.cursor < len(rows) {
			p := rows[m.cursor]
			complete := m.level == levelHighSchool
			return m, func() tea.Msg { return showPeekMsg{player: p, complete: complete} }
		}
	}
	return m, nil
}

// reset drops the current list and loads the selected level and page.
func (m scoutingModel) reset() (scoutingModel, tea.Cmd) {
	m.players = nil
	m.loaded = false
	m.query = ""
	m.cursor = 0
	return m.load()
}

// visible is the loaded list narrowed by the search query.
func (m scoutingModel) visible() []domain.Player {
	if m.query == "" {
		return m.players
	}
	var out []domain.Player
	for _, p := range m.players {
		if p.MatchesName(m.query) {
			out = append(out, p)
		}
	}
	return out
}

func (m scoutingModel) View() string {
	var b strings.Builder

	var levels []string
	for _, l := range []scoutLevel{levelNBA, levelHighSchool} {
		if l == m.level {
			levels = append(levels, accentStyle.Underline(true).Render(l.String()))
		} else {
			levels = append(levels, dimStyle.Render(l.String()))
		}
	}
	header := " " + sectionHeaderStyle.Render("SCOUTING REPORTS") + "  " + strings.Join(levels, "  ")
	if m.level == levelNBA {
		header += "  " + metaStyle.Render(fmt.Sprintf("page %d", m.page))
	}
	switch {
	case m.searching:
		header += "  " + inputPromptStyle.Render("/") + searchStyle.Render(m.query) + accentStyle.Render("█")
	case m.query != "":
		header += "  " + dimStyle.Render("/"+m.query)
	}
	b.WriteString(header + "\n\n")

	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading reports...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.err) + "\n")
		b.WriteString(" " + dimStyle.Render("r to retry") + "\n")
		return b.String()
	}

	rows := m.visible()
	if len(rows) == 0 {
		switch {
		case m.query != "":
			b.WriteString(" " + dimStyle.Render("no players match \""+m.query+"\"") + "\n")
		case m.level == levelNBA && m.page > 1:
			b.WriteString(" " + dimStyle.Render("no players on this page, [ to go back") + "\n")
		default:
			b.WriteString(" " + dimStyle.Render("no reports yet") + "\n")
		}
		return b.String()
	}

	start, end := window(m.cursor, len(rows), m.height-4)
	for i := start; i < end; i++ {
		p := rows[i]
		cursor := " "
		name := normalStyle.Render(padRight(p.FullName, 24))
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
			name = selectedStyle.Render(padRight(p.FullName, 24))
		}
		row := fmt.Sprintf(" %s %s %s", cursor, name, PositionStyle(p.Position).Render(padRight(p.Position, 5)))
		if m.level == levelHighSchool {
			row += " " + metaStyle.Render(padRight(truncStr(p.SchoolName, 22), 22)) + " " + dimStyle.Render(padRight(p.ClassYear, 4))
			if s := stars(p.Stars); s != "" {
				row += " " + s
			}
		} else {
			row += " " + metaStyle.Render(padRight(p.Experience(), 14))
		}
		if p.OverallRating > 0 {
			row += " " + scoreStyle(float64(p.OverallRating)).Render(fmt.Sprintf("%3d", p.OverallRating))
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

func (m scoutingModel) helpKeys() string {
	if m.searching {
		return helpBar("type", "search", "enter", "done", "esc", "done")
	}
	keys := []string{"1-6", "tabs", "j/k", "nav", "enter", "report", "l", "nba/high school"}
	if m.level == levelNBA {
		keys = append(keys, "[/]", "page")
	}
	keys = append(keys, "/", "search", "r", "refresh", "h", "help", "q", "quit")
	return helpBar(keys...)
}
