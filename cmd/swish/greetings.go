package main

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/lipgloss"

	"github.com/swishreport/swish/internal/session"
)

var tipOffGreetings = [...]string{
	"The ball is up. You're still in the locker room.",
	"Scouts don't wait. Neither does the shot clock.",
	"Five spots on the floor. Zero of them are yours yet.",
	"Somebody just put a center at point guard. Come tell them why that's wrong.",
	"The bench is warm. The starting five is empty.",
	"Film room's open. Bring your rotation.",
	"Every dynasty started with a lineup card. Where's yours?",
	"The matchup sim ran eleven games this hour. None of them were yours.",
	"Your hot takes are getting cold.",
	"Tip-off was a while ago. Check in at the scorer's table.",
}

func helpTitle() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fb923c")).
		Bold(true).
		Render("S W I S H   R E P O R T")
}

func printHelp() {
	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"swish", "Open the scouting board (interactive TUI)"},
		{"swish login", "Sign in with Google in the browser"},
		{"swish logout", "Clear your session"},
		{"swish status", "Show the stored session"},
		{"swish --version", "Show version"},
		{"swish help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  Commands:\n", helpTitle())
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	envStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	fmt.Printf("\n  Environment:\n")
	for _, e := range []string{"SWISH_API_URL", "SWISH_WEB_URL", "SWISH_HOME", "SWISH_TOKEN", "SWISH_USER_EMAIL", "SWISH_LOG_LEVEL"} {
		fmt.Printf("    %s\n", envStyle.Render(e))
	}
	fmt.Println()
}

// greetingHint is the line under the greeting telling the user how to get in.
func greetingHint(sig session.Signal) string {
	switch sig {
	case session.Expired:
		return "Your session expired. Sign in on the next screen or run: swish login"
	case session.InvalidSession:
		return "Your saved session was unreadable and has been cleared. Sign in to continue."
	default:
		return "Sign in on the next screen or run: swish login"
	}
}

func printGreeting(sig session.Signal) {
	msg := tipOffGreetings[rand.Intn(len(tipOffGreetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fb923c")).
		Bold(true).
		Render("SWISH")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render(greetingHint(sig))

	fmt.Printf("\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
