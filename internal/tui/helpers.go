package tui

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips every tag from backend-generated text.
var textPolicy = bluemonday.StrictPolicy()

// cleanText removes markup from AI-generated text and collapses whitespace.
func cleanText(raw string) string {
	s := html.UnescapeString(textPolicy.Sanitize(raw))
	return strings.Join(strings.Fields(s), " ")
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces to width runes, truncating when longer.
func padRight(s string, width int) string {
	s = truncStr(s, width)
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// window returns the [start, end) range of a list of n rows that keeps
// cursor visible in a viewport of size rows.
func window(cursor, n, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

// clampCursor keeps a cursor inside a list of n rows.
func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
