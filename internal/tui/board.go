package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/swishreport/swish/internal/roster"
	"github.com/swishreport/swish/internal/session"
	"github.com/swishreport/swish/pkg/client"
	"github.com/swishreport/swish/pkg/domain"
)

// boardKind selects which board preset a page drives.
type boardKind int

const (
	kindLineup boardKind = iota
	kindCompare
	kindMatchup
)

func (k boardKind) String() string {
	switch k {
	case kindCompare:
		return "comparison"
	case kindMatchup:
		return "matchup"
	default:
		return "lineup"
	}
}

// pageMsg is a message addressed to one board page regardless of which
// view is on screen.
type pageMsg interface {
	page() boardKind
}

type poolLoadedMsg struct {
	kind    boardKind
	players []domain.Player
	err     error
}

type submittedMsg struct {
	kind         boardKind
	submissionID string
	report       *domain.AnalysisReport
	err          error
}

type copiedMsg struct {
	kind boardKind
	err  error
}

func (m poolLoadedMsg) page() boardKind { return m.kind }
func (m submittedMsg) page() boardKind  { return m.kind }
func (m copiedMsg) page() boardKind     { return m.kind }

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

type boardFocus int

const (
	focusSlots boardFocus = iota
	focusPool
)

// boardPage is the slot board view shared by lineup, comparison and matchup.
type boardPage struct {
	kind    boardKind
	client  *client.Client
	guard   *session.Guard
	logger  *slog.Logger
	timeout time.Duration

	mode    domain.LineupMode
	board   *roster.Board
	players []domain.Player
	loaded  bool
	loading bool
	loadErr string

	focus      boardFocus
	slotCursor int
	poolCursor int
	searching  bool

	status     string
	statusErr  bool
	report     *domain.AnalysisReport
	showReport bool

	width  int
	height int
}

func newBoardPage(kind boardKind, c *client.Client, g *session.Guard, logger *slog.Logger, timeout time.Duration) boardPage {
	if logger == nil {
		logger = slog.Default()
	}
	m := boardPage{
		kind:    kind,
		client:  c,
		guard:   g,
		logger:  logger,
		timeout: timeout,
		mode:    domain.ModeStarting5,
	}
	m.board = mustBoard(m.config())
	return m
}

func (m boardPage) config() roster.Config {
	switch m.kind {
	case kindCompare:
		return roster.ComparisonConfig()
	case kindMatchup:
		return roster.MatchupConfig()
	default:
		return roster.LineupConfig(m.mode)
	}
}

// mustBoard builds a board from one of the package presets, which are
// valid by construction.
func mustBoard(cfg roster.Config) *roster.Board {
	b, err := roster.NewBoard(cfg)
	if err != nil {
		panic(err)
	}
	return b
}

// activate is called when the page comes on screen. The pool is fetched
// once; later visits reuse it.
func (m boardPage) activate() (boardPage, tea.Cmd) {
	if m.loaded || m.loading {
		return m, nil
	}
	m.loading = true
	return m, m.loadPool()
}

func (m boardPage) loadPool() tea.Cmd {
	c := m.client
	kind := m.kind
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		players, err := c.ListNBAPlayers(ctx, 0, poolPageSize)
		return poolLoadedMsg{kind: kind, players: players, err: err}
	}
}

// editing reports whether keystrokes are text input.
func (m boardPage) editing() bool {
	return m.searching
}

func (m boardPage) Update(msg tea.Msg) (boardPage, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case poolLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = client.UserMessage(msg.err)
			m.logger.Warn("pool fetch failed", "board", m.kind.String(), "error", msg.err)
			return m, nil
		}
		m.loaded = true
		m.loadErr = ""
		m.players = msg.players
		m.board.SetCandidates(msg.players)
		m.poolCursor = clampCursor(m.poolCursor, len(m.board.Pool()))

	case submittedMsg:
		if !m.board.EndSubmit(msg.submissionID) {
			m.logger.Debug("dropping stale submission response", "board", m.kind.String(), "submission_id", msg.submissionID)
			return m, nil
		}
		if client.IsStatus(msg.err, http.StatusUnauthorized) {
			m.setStatus("", false)
			return m, rejectSession(m.guard, m.logger, msg.err)
		}
		if msg.err != nil {
			m.setStatus(client.UserMessage(msg.err), true)
			m.logger.Warn("submission failed", "board", m.kind.String(), "submission_id", msg.submissionID, "error", msg.err)
			return m, nil
		}
		m.report = msg.report
		m.showReport = true
		m.setStatus("analysis ready", false)

	case copiedMsg:
		if msg.err != nil {
			m.setStatus("copy failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("report copied to clipboard", false)
		}

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.showReport {
			return m.updateReport(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *boardPage) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m boardPage) updateSearch(msg tea.KeyMsg) (boardPage, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
	default:
		m.board.SetQuery(editRune(m.board.Query(), msg.String()))
		m.poolCursor = 0
	}
	return m, nil
}

func (m boardPage) updateReport(msg tea.KeyMsg) (boardPage, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.showReport = false
	case "c":
		return m, m.copyReport()
	}
	return m, nil
}

func (m boardPage) handleKey(msg tea.KeyMsg) (boardPage, tea.Cmd) {
	m.status = ""
	slots := m.board.Slots()
	pool := m.board.Pool()

	switch msg.String() {
	case "tab":
		if m.focus == focusSlots {
			m.focus = focusPool
		} else {
			m.focus = focusSlots
		}
	case "j", "down":
		if m.focus == focusSlots && m.slotCursor < len(slots)-1 {
			m.slotCursor++
		} else if m.focus == focusPool && m.poolCursor < len(pool)-1 {
			m.poolCursor++
		}
	case "k", "up":
		if m.focus == focusSlots && m.slotCursor > 0 {
			m.slotCursor--
		} else if m.focus == focusPool && m.poolCursor > 0 {
			m.poolCursor--
		}
	case "/":
		m.searching = true
		m.focus = focusPool
	case " ", "enter":
		m.gesture(slots, pool)
	case "esc":
		if st, id := m.board.State(); st == roster.Dragging {
			m.drop(id, "")
		} else if m.board.Query() != "" {
			m.board.SetQuery("")
		}
	case "x":
		if m.focus == focusSlots && m.slotCursor < len(slots) {
			if occ := slots[m.slotCursor].Occupant; occ != "" {
				if err := m.board.OnDragStart(occ); err == nil {
					m.drop(occ, roster.LibraryTarget)
				}
			}
		}
	case "ctrl+s":
		return m.submit()
	case "m":
		if m.kind == kindLineup {
			m.switchMode()
		}
	case "r":
		m.loading = true
		return m, m.loadPool()
	case "v":
		if m.report != nil {
			m.showReport = true
		}
	case "c":
		return m, m.copyReport()
	case "p":
		if p, ok := m.playerUnderCursor(slots, pool); ok {
			return m, func() tea.Msg { return showPeekMsg{player: p} }
		}
	}
	m.poolCursor = clampCursor(m.poolCursor, len(m.board.Pool()))
	return m, nil
}

// gesture maps space/enter onto the drag capability: pick up when idle,
// drop on the focused slot or on the pool when carrying.
func (m *boardPage) gesture(slots []roster.SlotView, pool []domain.Player) {
	st, carried := m.board.State()
	if st == roster.Idle {
		var id string
		switch {
		case m.focus == focusSlots && m.slotCursor < len(slots):
			id = slots[m.slotCursor].Occupant
		case m.focus == focusPool && m.poolCursor < len(pool):
			id = pool[m.poolCursor].ID
		}
		if id == "" {
			return
		}
		if err := pickUp(m.board, id); err != nil {
			m.setStatus(err.Error(), true)
		}
		return
	}

	target := roster.LibraryTarget
	if m.focus == focusSlots && m.slotCursor < len(slots) {
		target = slots[m.slotCursor].Target
	}
	m.drop(carried, target)
}

func (m *boardPage) drop(id, target string) {
	if err := dropOn(m.board, id, target); err != nil {
		m.setStatus(err.Error(), true)
	}
}

func pickUp(h roster.DragHandler, id string) error {
	return h.OnDragStart(id)
}

func dropOn(h roster.DragHandler, id, target string) error {
	return h.OnDragEnd(id, target)
}

func (m *boardPage) switchMode() {
	next := m.mode.Next()
	m.board.AbandonSubmit()
	m.mode = next
	m.board = mustBoard(m.config())
	m.board.SetCandidates(m.players)
	m.slotCursor = 0
	m.poolCursor = 0
	m.report = nil
	m.setStatus("mode: "+string(next), false)
}

func (m boardPage) playerUnderCursor(slots []roster.SlotView, pool []domain.Player) (domain.Player, bool) {
	if m.focus == focusPool {
		if m.poolCursor < len(pool) {
			return pool[m.poolCursor], true
		}
		return domain.Player{}, false
	}
	if m.slotCursor < len(slots) && slots[m.slotCursor].Occupant != "" {
		id := slots[m.slotCursor].Occupant
		if p, ok := m.board.Candidate(id); ok {
			return p, true
		}
		return domain.Player{ID: id}, true
	}
	return domain.Player{}, false
}

func (m boardPage) copyReport() tea.Cmd {
	if m.report == nil {
		return nil
	}
	text := m.report.Pretty()
	kind := m.kind
	return func() tea.Msg {
		return copiedMsg{kind: kind, err: copyToClipboard(text)}
	}
}

func (m boardPage) submit() (boardPage, tea.Cmd) {
	creds, lost := checkSession(m.guard, m.logger)
	if lost != nil {
		return m, lost
	}

	id, err := m.board.BeginSubmit()
	if err != nil {
		var inc *roster.IncompleteError
		switch {
		case errors.As(err, &inc):
			m.setStatus(inc.Error(), true)
		case errors.Is(err, roster.ErrSubmitInFlight):
			m.setStatus("already analyzing…", false)
		default:
			m.setStatus(err.Error(), true)
		}
		return m, nil
	}
	m.setStatus("analyzing…", false)
	m.logger.Info("submitting", "board", m.kind.String(), "submission_id", id, "filled", m.board.Filled())

	c := m.client.WithToken(creds.Token)
	kind := m.kind
	timeout := m.timeout
	var send func(ctx context.Context) (*domain.AnalysisReport, error)
	switch kind {
	case kindCompare:
		sub := domain.ComparisonSubmission{Comparison: m.board.SlotMap(""), UserEmail: creds.Identity, SubmissionID: id}
		send = func(ctx context.Context) (*domain.AnalysisReport, error) { return c.SubmitComparison(ctx, sub) }
	case kindMatchup:
		sub := domain.MatchupSubmission{TeamA: m.board.SlotMap("A"), TeamB: m.board.SlotMap("B"), UserEmail: creds.Identity, SubmissionID: id}
		send = func(ctx context.Context) (*domain.AnalysisReport, error) { return c.SubmitMatchup(ctx, sub) }
	default:
		sub := domain.LineupSubmission{Mode: m.mode, Lineup: m.board.SlotMap(""), UserEmail: creds.Identity, SubmissionID: id}
		send = func(ctx context.Context) (*domain.AnalysisReport, error) { return c.SubmitLineup(ctx, sub) }
	}

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		report, err := send(ctx)
		return submittedMsg{kind: kind, submissionID: id, report: report, err: err}
	}
}

func (m boardPage) title() string {
	cfg := m.board.Config()
	if m.kind == kindLineup {
		return "Lineup Builder · " + cfg.Name
	}
	return cfg.Name
}

func (m boardPage) View() string {
	var b strings.Builder

	header := " " + selectedStyle.Render(m.title())
	header += "  " + metaStyle.Render(fmt.Sprintf("%d/%d filled", m.board.Filled(), m.board.Config().SlotCount()))
	if m.board.Submitting() {
		header += "  " + accentStyle.Render("analyzing…")
	}
	if st, id := m.board.State(); st == roster.Dragging {
		header += "  " + carryStyle.Render(" carrying "+m.playerName(id)+" ")
	}
	b.WriteString(header + "\n\n")

	if m.showReport && m.report != nil {
		b.WriteString(renderReport(m.report, m.width))
		b.WriteString("\n" + m.statusLine())
		return b.String()
	}

	rows := m.height - 6
	if rows < 5 {
		rows = 5
	}
	left := m.renderSlots(rows)
	right := m.renderPool(rows)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", right))
	b.WriteString("\n" + m.statusLine())
	return b.String()
}

func (m boardPage) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return " " + errorStyle.Render(m.status) + "\n"
	}
	return " " + successStyle.Render(m.status) + "\n"
}

func (m boardPage) playerName(id string) string {
	if p, ok := m.board.Candidate(id); ok && p.FullName != "" {
		return p.FullName
	}
	return id
}

func (m boardPage) renderSlots(rows int) string {
	var b strings.Builder
	slots := m.board.Slots()
	_, carried := m.board.State()

	label := "SLOTS"
	if m.focus == focusSlots {
		label = accentStyle.Render(label)
	} else {
		label = sectionHeaderStyle.Render(label)
	}
	b.WriteString(" " + label + "\n")

	team := ""
	start, end := window(m.slotCursor, len(slots), rows)
	for i := start; i < end; i++ {
		s := slots[i]
		if s.Team != team {
			team = s.Team
			b.WriteString(" " + sectionHeaderStyle.Render("── Team "+team+" ──") + "\n")
		}
		cursor := " "
		if m.focus == focusSlots && i == m.slotCursor {
			cursor = accentStyle.Render("▸")
		}
		slotLabel := PositionStyle(s.Slot).Render(padRight(s.Slot, 8))
		occ := dimStyle.Render("empty")
		if s.Occupant != "" {
			name := padRight(m.playerName(s.Occupant), 22)
			if s.Occupant == carried {
				occ = carryStyle.Render(name)
			} else {
				occ = normalStyle.Render(name)
			}
		}
		fmt.Fprintf(&b, " %s %s %s\n", cursor, slotLabel, occ)
	}
	return b.String()
}

func (m boardPage) renderPool(rows int) string {
	var b strings.Builder

	label := "POOL"
	if m.focus == focusPool {
		label = accentStyle.Render(label)
	} else {
		label = sectionHeaderStyle.Render(label)
	}
	q := m.board.Query()
	switch {
	case m.searching:
		label += "  " + inputPromptStyle.Render("/") + searchStyle.Render(q) + accentStyle.Render("█")
	case q != "":
		label += "  " + dimStyle.Render("/"+q)
	}
	b.WriteString(label + "\n")

	if m.loading && !m.loaded {
		b.WriteString(dimStyle.Render("loading players...") + "\n")
		return b.String()
	}
	if m.loadErr != "" {
		b.WriteString(errorStyle.Render("error: "+m.loadErr) + "\n")
		b.WriteString(dimStyle.Render("r to retry") + "\n")
		return b.String()
	}

	pool := m.board.Pool()
	if len(pool) == 0 {
		if q != "" {
			b.WriteString(dimStyle.Render("no players match \""+q+"\"") + "\n")
		} else {
			b.WriteString(dimStyle.Render("every player is on the board") + "\n")
		}
		return b.String()
	}

	start, end := window(m.poolCursor, len(pool), rows)
	for i := start; i < end; i++ {
		p := pool[i]
		cursor := " "
		name := normalStyle.Render(padRight(p.FullName, 24))
		if m.focus == focusPool && i == m.poolCursor {
			cursor = accentStyle.Render("▸")
			name = selectedStyle.Render(padRight(p.FullName, 24))
		}
		row := fmt.Sprintf("%s %s %s", cursor, name, PositionStyle(p.Position).Render(padRight(p.Position, 5)))
		if p.OverallRating > 0 {
			row += " " + scoreStyle(float64(p.OverallRating)).Render(fmt.Sprintf("%3d", p.OverallRating))
		}
		b.WriteString(row + "\n")
	}
	if len(pool) > end-start {
		b.WriteString(metaStyle.Render(fmt.Sprintf("%d players", len(pool))) + "\n")
	}
	return b.String()
}

// renderReport shows the known fields of an analysis report and falls
// back to the raw body for shapes it does not know.
func renderReport(r *domain.AnalysisReport, width int) string {
	w := width - 4
	if w < 30 {
		w = 30
	}
	wrap := lipgloss.NewStyle().Width(w)

	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("── SCOUTING REPORT ──") + "\n")
	known := false
	if r.Winner != "" {
		known = true
		line := "Winner: " + selectedStyle.Render(cleanText(r.Winner))
		if r.Score != "" {
			line += "  " + goldStyle.Render(cleanText(r.Score))
		}
		b.WriteString(" " + line + "\n")
	}
	if r.Message != "" {
		known = true
		b.WriteString(" " + dimStyle.Render(cleanText(r.Message)) + "\n")
	}
	if len(r.Players) > 0 {
		known = true
		names := make([]string, 0, len(r.Players))
		for _, p := range r.Players {
			names = append(names, p.FullName)
		}
		b.WriteString(" " + metaStyle.Render("players: ") + normalStyle.Render(strings.Join(names, ", ")) + "\n")
	}
	if r.Analysis != "" {
		known = true
		b.WriteString("\n" + analysisStyle.Render(wrap.Render(cleanText(r.Analysis))) + "\n")
	}
	if !known {
		b.WriteString(normalStyle.Render(r.Pretty()) + "\n")
	}
	b.WriteString("\n " + helpEntry("c", "copy") + "  " + helpEntry("esc", "back to board") + "\n")
	return b.String()
}

func (m boardPage) helpKeys() string {
	if m.searching {
		return helpBar("type", "search", "enter", "done", "esc", "done")
	}
	if m.showReport {
		return helpBar("c", "copy", "esc", "board", "q", "quit")
	}
	if st, _ := m.board.State(); st == roster.Dragging {
		return helpBar("j/k", "aim", "tab", "slots/pool", "enter", "drop", "esc", "cancel")
	}
	keys := []string{"1-6", "tabs", "j/k", "nav", "tab", "slots/pool", "enter", "pick up", "x", "unassign", "/", "search", "ctrl+s", "submit"}
	if m.kind == kindLineup {
		keys = append(keys, "m", "mode")
	}
	keys = append(keys, "p", "peek", "h", "help", "q", "quit")
	return helpBar(keys...)
}
