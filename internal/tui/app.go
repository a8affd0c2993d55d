package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/swishreport/swish/internal/browser"
	"github.com/swishreport/swish/internal/session"
	"github.com/swishreport/swish/pkg/client"
	"github.com/swishreport/swish/pkg/domain"
)

type view int

const (
	viewLineup view = iota
	viewCompare
	viewMatchup
	viewDashboard
	viewScouting
	viewCommunity
	viewAuth
)

// showPeekMsg opens the profile overlay for a player. complete skips the
// profile fetch.
type showPeekMsg struct {
	player   domain.Player
	complete bool
}

// sessionLostMsg reports that the guard rejected the session mid-view.
// notice overrides the default line for signal when set.
type sessionLostMsg struct {
	signal session.Signal
	notice string
}

const rejectedNotice = "the server rejected your session, sign in again"

// checkSession runs the guard. On anything but Valid it returns a command
// that sends the App back to the auth view.
func checkSession(g *session.Guard, logger *slog.Logger) (session.Credentials, tea.Cmd) {
	res, err := g.Check()
	if err != nil {
		logger.Warn("session check failed", "error", err)
	}
	if res.Signal != session.Valid {
		sig := res.Signal
		return session.Credentials{}, func() tea.Msg { return sessionLostMsg{signal: sig} }
	}
	return res.Credentials, nil
}

// rejectSession handles a 401 from the API: the stored session passed the
// local guard but the backend refused it, so it is cleared like an
// unreadable one.
func rejectSession(g *session.Guard, logger *slog.Logger, err error) tea.Cmd {
	logger.Warn("server rejected session", "error", err)
	if g != nil {
		if cerr := g.Store().Clear(); cerr != nil {
			logger.Error("clear rejected session", "error", cerr)
		}
	}
	return func() tea.Msg {
		return sessionLostMsg{signal: session.InvalidSession, notice: rejectedNotice}
	}
}

// signalNotice is the line shown above the sign-in form.
func signalNotice(sig session.Signal) string {
	switch sig {
	case session.Expired:
		return "your session expired, sign in again"
	case session.InvalidSession:
		return "your saved session was unreadable, sign in again"
	default:
		return "sign in to continue"
	}
}

// Options wires the App to its collaborators.
type Options struct {
	Client  *client.Client
	Guard   *session.Guard
	WebURL  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// App is the root Bubbletea model.
type App struct {
	client  *client.Client
	guard   *session.Guard
	logger  *slog.Logger
	timeout time.Duration
	links   []helpItem

	view      view
	next      view // where to go after signing in
	lineup    boardPage
	compare   boardPage
	matchup   boardPage
	dash      dashboardModel
	scout     scoutingModel
	community communityModel
	auth      authModel
	peek      peekModel
	cache     *peekCache
	peekOpen  bool

	helpOpen   bool
	helpCursor int
	identity   string
	width      int
	height     int
	frame      int
	pending    tea.Cmd
}

// NewApp creates the TUI and runs the session guard once to pick the
// first view.
func NewApp(opts Options) App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	a := App{
		client:  opts.Client,
		guard:   opts.Guard,
		logger:  opts.Logger,
		timeout: opts.Timeout,
		links:   helpLinks(opts.WebURL),
		cache:   newPeekCache(),
	}
	a.resetPages()
	a, a.pending = a.enter(viewLineup)
	return a
}

func (a *App) resetPages() {
	a.lineup = newBoardPage(kindLineup, a.client, a.guard, a.logger, a.timeout)
	a.compare = newBoardPage(kindCompare, a.client, a.guard, a.logger, a.timeout)
	a.matchup = newBoardPage(kindMatchup, a.client, a.guard, a.logger, a.timeout)
	a.dash = newDashboardModel(a.client, a.guard, a.logger, a.timeout)
	a.scout = newScoutingModel(a.client, a.guard, a.logger, a.timeout)
	a.community = newCommunityModel(a.client, a.guard, a.logger, a.timeout)
	a.peek = newPeekModel(a.client, a.cache, a.timeout)
}

// NeedsLogin reports whether the App is showing the sign-in form.
func (a App) NeedsLogin() bool {
	return a.view == viewAuth
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.pending)
}

// enter runs the guard and switches to v, or to the auth view when the
// session is not usable.
func (a App) enter(v view) (App, tea.Cmd) {
	res, err := a.guard.Check()
	if err != nil {
		a.logger.Warn("session check failed", "error", err)
	}
	if res.Signal.NeedsLogin() {
		return a.toAuth(v, res.Signal, signalNotice(res.Signal)), nil
	}

	a.identity = res.Credentials.Identity
	a.view = v
	var cmd tea.Cmd
	switch v {
	case viewLineup:
		a.lineup, cmd = a.lineup.activate()
	case viewCompare:
		a.compare, cmd = a.compare.activate()
	case viewMatchup:
		a.matchup, cmd = a.matchup.activate()
	case viewDashboard:
		a.dash, cmd = a.dash.activate()
	case viewScouting:
		a.scout, cmd = a.scout.activate()
	case viewCommunity:
		a.community, cmd = a.community.activate()
	}
	return a, cmd
}

func (a App) toAuth(next view, sig session.Signal, notice string) App {
	if a.view != viewAuth {
		a.next = next
	}
	a.view = viewAuth
	a.identity = ""
	a.peekOpen = false
	a.auth = newAuthModel(a.client, a.timeout, notice)
	a.logger.Info("sign-in required", "signal", sig.String())
	return a
}

func (a App) logout() (App, tea.Cmd) {
	if err := a.guard.Store().Clear(); err != nil {
		a.logger.Error("logout failed", "error", err)
	}
	a.logger.Info("signed out")
	a.resetPages()
	return a.enter(viewLineup)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1)
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.lineup, _ = a.lineup.Update(bodyMsg)
		a.compare, _ = a.compare.Update(bodyMsg)
		a.matchup, _ = a.matchup.Update(bodyMsg)
		a.dash, _ = a.dash.Update(bodyMsg)
		a.scout, _ = a.scout.Update(bodyMsg)
		a.community, _ = a.community.Update(bodyMsg)
		a.peek, _ = a.peek.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionLostMsg:
		notice := msg.notice
		if notice == "" {
			notice = signalNotice(msg.signal)
		}
		return a.toAuth(a.view, msg.signal, notice), nil

	case signedInMsg:
		if err := a.guard.Store().Set(msg.creds); err != nil {
			a.auth.statusMsg = "could not save session: " + err.Error()
			return a, nil
		}
		a.logger.Info("signed in", "identity", msg.creds.Identity)
		return a.enter(a.next)

	case authResultMsg:
		var cmd tea.Cmd
		a.auth, cmd = a.auth.Update(msg)
		return a, cmd

	case pageMsg:
		var cmd tea.Cmd
		switch msg.page() {
		case kindLineup:
			a.lineup, cmd = a.lineup.Update(msg)
		case kindCompare:
			a.compare, cmd = a.compare.Update(msg)
		case kindMatchup:
			a.matchup, cmd = a.matchup.Update(msg)
		}
		return a, cmd

	case dashProfileMsg, dashLineupsMsg, dashTakesMsg:
		var cmd tea.Cmd
		a.dash, cmd = a.dash.Update(msg)
		return a, cmd

	case scoutLoadedMsg:
		var cmd tea.Cmd
		a.scout, cmd = a.scout.Update(msg)
		return a, cmd

	case communityListMsg, communityDetailMsg:
		var cmd tea.Cmd
		a.community, cmd = a.community.Update(msg)
		return a, cmd

	case showPeekMsg:
		var cmd tea.Cmd
		a.peekOpen = true
		if msg.complete {
			a.peek = a.peek.show(msg.player)
			return a, nil
		}
		a.peek, cmd = a.peek.open(msg.player)
		return a, cmd

	case peekLoadedMsg:
		var cmd tea.Cmd
		a.peek, cmd = a.peek.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// Help overlay captures all keys when open
	if a.helpOpen {
		switch key {
		case "h", "esc":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		case "j", "down":
			if a.helpCursor < len(a.links)-1 {
				a.helpCursor++
			}
		case "k", "up":
			if a.helpCursor > 0 {
				a.helpCursor--
			}
		case "enter":
			if a.helpCursor < len(a.links) {
				if err := browser.Open(a.links[a.helpCursor].url); err != nil {
					a.logger.Warn("open link failed", "error", err)
				}
			}
		}
		return a, nil
	}

	// Peek overlay captures all keys when open
	if a.peekOpen {
		var cmd tea.Cmd
		a.peek, cmd = a.peek.Update(msg)
		if a.peek.closed {
			a.peekOpen = false
		}
		return a, cmd
	}

	if a.view == viewAuth {
		var cmd tea.Cmd
		a.auth, cmd = a.auth.Update(msg)
		return a, cmd
	}

	if !a.isEditing() {
		switch key {
		case "h":
			a.helpOpen = true
			a.helpCursor = 0
			return a, nil
		case "q":
			return a, tea.Quit
		case "1":
			return a.enter(viewLineup)
		case "2":
			return a.enter(viewCompare)
		case "3":
			return a.enter(viewMatchup)
		case "4":
			return a.enter(viewDashboard)
		case "5":
			return a.enter(viewScouting)
		case "6":
			return a.enter(viewCommunity)
		case "L":
			return a.logout()
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLineup:
		a.lineup, cmd = a.lineup.Update(msg)
	case viewCompare:
		a.compare, cmd = a.compare.Update(msg)
	case viewMatchup:
		a.matchup, cmd = a.matchup.Update(msg)
	case viewDashboard:
		a.dash, cmd = a.dash.Update(msg)
	case viewScouting:
		a.scout, cmd = a.scout.Update(msg)
	case viewCommunity:
		a.community, cmd = a.community.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewLineup:
		return a.lineup.editing()
	case viewCompare:
		return a.compare.editing()
	case viewMatchup:
		return a.matchup.editing()
	case viewScouting:
		return a.scout.editing()
	case viewAuth:
		return true
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := center(logo, a.width) + "\n"
	if a.identity != "" {
		header += center(metaStyle.Render(a.identity), a.width)
	}

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Lineup", viewLineup},
		{"2", "Compare", viewCompare},
		{"3", "Matchup", viewMatchup},
		{"4", "Dashboard", viewDashboard},
		{"5", "Scouting", viewScouting},
		{"6", "Community", viewCommunity},
	}
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		cell := center(label, colWidth)
		tabBar.WriteString(cell + strings.Repeat(" ", max(0, colWidth-lipgloss.Width(cell))))
	}

	var body, help string
	switch a.view {
	case viewLineup:
		body, help = a.lineup.View(), a.lineup.helpKeys()
	case viewCompare:
		body, help = a.compare.View(), a.compare.helpKeys()
	case viewMatchup:
		body, help = a.matchup.View(), a.matchup.helpKeys()
	case viewDashboard:
		body, help = a.dash.View(), a.dash.helpKeys()
	case viewScouting:
		body, help = a.scout.View(), a.scout.helpKeys()
	case viewCommunity:
		body, help = a.community.View(), a.community.helpKeys()
	case viewAuth:
		body, help = a.auth.View(), a.auth.helpKeys()
	}

	if a.peekOpen {
		body = a.peek.View()
		help = helpBar("esc", "close")
	}
	if a.helpOpen {
		body = helpView(a.links, a.helpCursor)
		help = helpBar("j/k", "nav", "enter", "open", "esc", "close")
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}

// center left-pads s so it sits in the middle of width columns.
func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
