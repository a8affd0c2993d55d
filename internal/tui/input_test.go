package tui

import (
	"strings"
	"testing"
)

func TestEditRune(t *testing.T) {
	tests := []struct {
		name  string
		start string
		key   string
		want  string
	}{
		{"append to empty", "", "c", "c"},
		{"append letter", "cur", "r", "curr"},
		{"append space", "lebron", " ", "lebron "},
		{"append accented", "jokic", "ć", "jokicć"},
		{"backspace", "curry", "backspace", "curr"},
		{"backspace empty", "", "backspace", ""},
		{"backspace multibyte", "dončić", "backspace", "donči"},
		{"enter ignored", "tatum", "enter", "tatum"},
		{"tab ignored", "tatum", "tab", "tatum"},
		{"ctrl ignored", "tatum", "ctrl+s", "tatum"},
		{"arrow ignored", "tatum", "down", "tatum"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := editRune(tt.start, tt.key); got != tt.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tt.start, tt.key, got, tt.want)
			}
		})
	}
}

func TestEditRuneMaxInputLen(t *testing.T) {
	full := strings.Repeat("a", maxInputLen)
	if got := editRune(full, "b"); got != full {
		t.Errorf("input grew past maxInputLen: %d runes", len([]rune(got)))
	}
	if got := editRune(full, "backspace"); len([]rune(got)) != maxInputLen-1 {
		t.Errorf("backspace at limit: %d runes", len([]rune(got)))
	}
}

func TestTruncateToHeight(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"cuts extra lines", "a\nb\nc\nd\n", 2, "a\nb\n"},
		{"fits", "a\nb\n", 5, "a\nb\n"},
		{"exact", "a\nb\n", 2, "a\nb\n"},
		{"zero keeps all", "a\nb\n", 0, "a\nb\n"},
		{"negative keeps all", "a\nb\n", -3, "a\nb\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateToHeight(tt.s, tt.max); got != tt.want {
				t.Errorf("truncateToHeight(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
		})
	}
}
