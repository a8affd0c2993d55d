package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the SWISH logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "SWISH" as a wave of hardwood orange running
// from a dark leather brown to a bright ball orange.
func renderShimmerLogo(frame int) string {
	const text = "SWISH"
	n := len(text)

	var out strings.Builder
	t := float64(frame)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.12 - x*2.6 + math.Sin(t*0.021)*1.5
		b := math.Pow(math.Sin(phase)*0.5+0.5, 1.4)
		b = b*0.8 + math.Sin(t*0.04)*0.1 + 0.15
		b = math.Max(0.05, math.Min(1, b))

		// Dark: (74, 38, 16) #4a2610  Bright: (251, 146, 60) #fb923c
		r := clampByte(74 + b*(251-74))
		g := clampByte(38 + b*(146-38))
		bl := clampByte(16 + b*(60-16))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(text[i])))
		if i < n-1 {
			out.WriteString("  ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Search / accent
	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fb923c")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f97316"))

	// A carried (picked up) player
	carryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111118")).
			Background(lipgloss.Color("#fb923c")).
			Bold(true)

	// Inline results
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	// AI voice
	analysisStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8a84c")).
			Italic(true)

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	// Surface colors
	borderColor  = lipgloss.Color("#2a2320")
	surfaceColor = lipgloss.Color("#111118")

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f97316")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Position colors, one per primary position.
	positionColors = map[string]lipgloss.Color{
		"PG": lipgloss.Color("#60a0e0"),
		"SG": lipgloss.Color("#3ecce4"),
		"SF": lipgloss.Color("#4ade80"),
		"PF": lipgloss.Color("#f0944a"),
		"C":  lipgloss.Color("#c084e0"),
		"G":  lipgloss.Color("#60a0e0"),
		"F":  lipgloss.Color("#4ade80"),
	}
)

// PositionStyle colors a position label by its first listed position.
func PositionStyle(pos string) lipgloss.Style {
	primary := strings.TrimSpace(strings.SplitN(pos, "-", 2)[0])
	primary = strings.ToUpper(strings.TrimRight(primary, "0123456789"))
	if c, ok := positionColors[primary]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// scoreStyle colors a 0-100 score (rating, truthfulness, report score).
func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 85:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	case score >= 70:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24"))
	case score >= 50:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#f0944a"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#b45555"))
	}
}

// stars renders a 0-5 star rating.
func stars(n int) string {
	if n <= 0 {
		return ""
	}
	if n > 5 {
		n = 5
	}
	return goldStyle.Render(strings.Repeat("★", n)) + metaStyle.Render(strings.Repeat("☆", 5-n))
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins key/label pairs with the standard spacing.
func helpBar(pairs ...string) string {
	entries := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		entries = append(entries, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(entries, "  ")
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

// helpLinks returns the web pages offered in the help overlay.
func helpLinks(webURL string) []helpItem {
	webURL = strings.TrimRight(webURL, "/")
	if webURL == "" {
		return nil
	}
	return []helpItem{
		{"Website", webURL, webURL},
		{"Player profiles", webURL + "/players", webURL + "/players"},
		{"Community lineups", webURL + "/community/player-lineups", webURL + "/community/player-lineups"},
		{"Hot takes", webURL + "/community/hot-takes", webURL + "/community/hot-takes"},
	}
}

// helpView renders the interactive help overlay with a cursor.
func helpView(items []helpItem, cursor int) string {
	title := searchStyle.Render("S W I S H   R E P O R T")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fb923c"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"swish", "Open the scouting board (interactive TUI)"},
		{"swish login", "Sign in with Google in the browser"},
		{"swish logout", "Clear your session"},
		{"swish status", "Show the stored session"},
		{"swish --version", "Show version"},
	}
	boardKeys := []struct{ key, desc string }{
		{"space/enter", "pick up a player, then drop on a slot or the pool"},
		{"esc", "drop without a target"},
		{"x", "send a slot's player back to the pool"},
		{"/", "search players by name"},
		{"tab", "switch between slots and pool"},
		{"ctrl+s", "submit for analysis"},
		{"p", "player profile"},
		{"c", "copy the last report"},
		{"L", "sign out"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Board keys"))
	for _, k := range boardKeys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", k.key)), descStyle.Render(k.desc))
	}

	if len(items) > 0 {
		fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
		for i, item := range items {
			label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix := "    "
			if i == cursor {
				label = cursorStyle.Render(fmt.Sprintf("%-20s", item.label))
				prefix = "  > "
			}
			fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
		}
	}
	return b.String()
}
