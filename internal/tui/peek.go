package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/swishreport/swish/pkg/client"
	"github.com/swishreport/swish/pkg/domain"
)

// peekCacheSize bounds the number of player profiles kept in memory.
const peekCacheSize = 256

type peekCache = lru.Cache[string, domain.Player]

func newPeekCache() *peekCache {
	c, err := lru.New[string, domain.Player](peekCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return c
}

type peekLoadedMsg struct {
	id     string
	player *domain.Player
	err    error
}

type peekModel struct {
	client  *client.Client
	cache   *peekCache
	timeout time.Duration
	player  domain.Player
	full    bool
	closed  bool
	err     string
	width   int
}

func newPeekModel(c *client.Client, cache *peekCache, timeout time.Duration) peekModel {
	return peekModel{client: c, cache: cache, timeout: timeout}
}

// open shows basic immediately and fetches the full profile unless it is
// cached.
func (m peekModel) open(basic domain.Player) (peekModel, tea.Cmd) {
	if basic.ID == "" {
		return m.show(basic), nil
	}
	m.player = basic
	m.full = false
	m.closed = false
	m.err = ""
	if p, ok := m.cache.Get(basic.ID); ok {
		m.player = p
		m.full = true
		return m, nil
	}

	c := m.client
	id := basic.ID
	timeout := m.timeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		p, err := c.GetNBAPlayer(ctx, id)
		return peekLoadedMsg{id: id, player: p, err: err}
	}
}

// show displays p as is. Prospect rows arrive with their full report.
func (m peekModel) show(p domain.Player) peekModel {
	m.player = p
	m.full = true
	m.closed = false
	m.err = ""
	return m
}

func (m peekModel) Update(msg tea.Msg) (peekModel, tea.Cmd) {
	switch msg := msg.(type) {
	case peekLoadedMsg:
		if msg.id != m.player.ID {
			return m, nil
		}
		if msg.err != nil {
			m.err = client.UserMessage(msg.err)
			return m, nil
		}
		if msg.player != nil {
			p := *msg.player
			if p.ID == "" {
				p.ID = msg.id
			}
			m.cache.Add(msg.id, p)
			m.player = p
			m.full = true
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "p":
			m.closed = true
		}
	}
	return m, nil
}

func (m peekModel) View() string {
	p := m.player
	cardWidth := min(60, m.width-4)
	if cardWidth < 36 {
		cardWidth = 36
	}
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(surfaceColor).
		Padding(1, 2).
		Width(cardWidth)
	wrap := lipgloss.NewStyle().Width(cardWidth - 4)

	var sb strings.Builder

	name := p.FullName
	if name == "" {
		name = p.ID
	}
	sb.WriteString(selectedStyle.Render(name))
	if p.Position != "" {
		sb.WriteString("  " + PositionStyle(p.Position).Render(p.Position))
	}
	if s := stars(p.Stars); s != "" {
		sb.WriteString("  " + s)
	}
	sb.WriteString("\n")

	var facts []string
	if p.Height != "" {
		facts = append(facts, p.Height)
	}
	if p.Weight != "" {
		facts = append(facts, p.Weight)
	}
	facts = append(facts, p.Experience())
	if p.OverallRating > 0 {
		facts = append(facts, scoreStyle(float64(p.OverallRating)).Render(fmt.Sprintf("OVR %d", p.OverallRating)))
	}
	sb.WriteString(metaStyle.Render(strings.Join(facts, " · ")) + "\n")

	if p.SchoolName != "" {
		sb.WriteString(dimStyle.Render("school: "+p.SchoolName) + "\n")
	}
	if len(p.TeamNames) > 0 {
		sb.WriteString(dimStyle.Render("teams: "+strings.Join(p.TeamNames, ", ")) + "\n")
	}
	if len(p.Colleges) > 0 {
		sb.WriteString(dimStyle.Render("college: "+strings.Join(p.Colleges, ", ")) + "\n")
	}
	if p.DraftYear > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("draft: %d R%d #%d", p.DraftYear, p.DraftRound, p.DraftPick)) + "\n")
	}

	if s := p.Stats; s != nil {
		sb.WriteString(metaStyle.Render("---") + "\n")
		sb.WriteString(normalStyle.Render(fmt.Sprintf("%.1f pts  %.1f reb  %.1f ast", s.Points, s.Rebounds, s.Assists)) + "\n")
		if s.FieldGoalPercentage > 0 || s.ThreePointPercentage > 0 {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("FG %.1f%%  3P %.1f%%  PER %.1f  WS %.1f",
				s.FieldGoalPercentage, s.ThreePointPercentage, s.PER, s.WinShares)) + "\n")
		}
	}

	if len(p.Strengths) > 0 {
		sb.WriteString("\n" + sectionHeaderStyle.Render("── STRENGTHS ──") + "\n")
		for _, s := range p.Strengths {
			sb.WriteString(successStyle.Render("+ ") + normalStyle.Render(cleanText(s)) + "\n")
		}
	}
	if len(p.Weaknesses) > 0 {
		sb.WriteString("\n" + sectionHeaderStyle.Render("── WEAKNESSES ──") + "\n")
		for _, s := range p.Weaknesses {
			sb.WriteString(errorStyle.Render("- ") + normalStyle.Render(cleanText(s)) + "\n")
		}
	}
	if p.AIAnalysis != "" {
		sb.WriteString("\n" + sectionHeaderStyle.Render("── SCOUTING ──") + "\n")
		sb.WriteString(analysisStyle.Render(wrap.Render(cleanText(p.AIAnalysis))) + "\n")
	}

	sb.WriteString("\n")
	switch {
	case m.err != "":
		sb.WriteString(errorStyle.Render("profile error: "+m.err) + "\n")
	case !m.full:
		sb.WriteString(dimStyle.Render("loading profile...") + "\n")
	}
	sb.WriteString(helpKeyStyle.Render("esc") + " " + helpLabelStyle.Render("close"))

	return "\n" + border.Render(sb.String())
}
