package tui

import "testing"

func TestTruncStr(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"Curry", 10, "Curry"},
		{"Curry", 5, "Curry"},
		{"Giannis Antetokounmpo", 8, "Giannis…"},
		{"", 5, ""},
		{"ab", 1, "…"},
		{"Dončić", 4, "Don…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := truncStr(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("truncStr(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("PG", 5); got != "PG   " {
		t.Errorf("padRight short = %q", got)
	}
	if got := padRight("Bench10", 5); got != "Benc…" {
		t.Errorf("padRight long = %q", got)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name               string
		cursor, n, rows    int
		wantStart, wantEnd int
	}{
		{"fits", 2, 5, 10, 0, 5},
		{"top", 0, 50, 10, 0, 10},
		{"middle", 25, 50, 10, 20, 30},
		{"bottom", 49, 50, 10, 40, 50},
		{"no rows", 3, 50, 0, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := window(tt.cursor, tt.n, tt.rows)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("window(%d, %d, %d) = [%d,%d), want [%d,%d)",
					tt.cursor, tt.n, tt.rows, start, end, tt.wantStart, tt.wantEnd)
			}
			if tt.rows > 0 && (tt.cursor < start || tt.cursor >= end) {
				t.Errorf("cursor %d outside window", tt.cursor)
			}
		})
	}
}

func TestClampCursor(t *testing.T) {
	if got := clampCursor(7, 3); got != 2 {
		t.Errorf("clampCursor(7,3) = %d", got)
	}
	if got := clampCursor(4, 0); got != 0 {
		t.Errorf("clampCursor(4,0) = %d", got)
	}
	if got := clampCursor(-1, 3); got != 0 {
		t.Errorf("clampCursor(-1,3) = %d", got)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<b>Elite</b> spacing", "Elite spacing"},
		{"<script>alert(1)</script>Rim   protector", "Rim protector"},
		{"pick &amp; roll", "pick & roll"},
		{"line one\n\nline two", "line one line two"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := cleanText(tt.in); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
