package domain

import (
	"encoding/json"
	"testing"
)

func TestPlayerUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"player_uid number", `{"player_uid": 2544, "full_name": "LeBron James"}`, "2544"},
		{"player_uid string", `{"player_uid": "abc-1", "full_name": "LeBron James"}`, "abc-1"},
		{"id number", `{"id": 201939, "full_name": "Stephen Curry"}`, "201939"},
		{"id string", `{"id": "201939", "full_name": "Stephen Curry"}`, "201939"},
		{"player_uid wins over id", `{"id": 1, "player_uid": 2, "full_name": "X"}`, "2"},
		{"null player_uid falls back", `{"id": 7, "player_uid": null, "full_name": "X"}`, "7"},
		{"missing", `{"full_name": "Nobody"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Player
			if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if p.ID != tt.want {
				t.Errorf("ID = %q, want %q", p.ID, tt.want)
			}
		})
	}
}

func TestPlayerUnmarshalKeepsFields(t *testing.T) {
	body := `{
		"player_uid": 203999,
		"full_name": "Nikola Jokic",
		"position": "C",
		"height": "6-11",
		"years_pro": "9",
		"strengths": ["passing", "post scoring"],
		"overallRating": 97,
		"stats": {"points": 26.4, "rebounds": 12.4, "assists": 9.0}
	}`
	var p Player
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if p.FullName != "Nikola Jokic" || p.Position != "C" || p.Height != "6-11" {
		t.Errorf("unexpected identity fields: %+v", p)
	}
	if p.YearsPro != 9 {
		t.Errorf("YearsPro = %d, want 9", p.YearsPro)
	}
	if p.OverallRating != 97 {
		t.Errorf("OverallRating = %d, want 97", p.OverallRating)
	}
	if len(p.Strengths) != 2 {
		t.Errorf("Strengths = %v, want 2 entries", p.Strengths)
	}
	if p.Stats == nil || p.Stats.Assists != 9.0 {
		t.Errorf("Stats = %+v, want assists 9.0", p.Stats)
	}
}

func TestPlayerUnmarshalBadID(t *testing.T) {
	var p Player
	if err := json.Unmarshal([]byte(`{"id": {"nested": true}}`), &p); err == nil {
		t.Fatal("expected error for object id")
	}
}

func TestPlayerExperience(t *testing.T) {
	tests := []struct {
		years int
		want  string
	}{
		{0, "Rookie"},
		{1, "1 year pro"},
		{12, "12 years pro"},
	}
	for _, tt := range tests {
		if got := (Player{YearsPro: tt.years}).Experience(); got != tt.want {
			t.Errorf("Experience(%d) = %q, want %q", tt.years, got, tt.want)
		}
	}
}

func TestPlayerProspectFields(t *testing.T) {
	body := `{"player_uid": 88, "full_name": "AJ Dybantsa", "class_year": 2025, "school_name": "Prolific Prep", "stars": 5}`
	var p Player
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if p.ID != "88" || p.ClassYear != "2025" || p.SchoolName != "Prolific Prep" {
		t.Errorf("player = %+v", p)
	}
	if !p.Prospect() {
		t.Error("expected prospect")
	}
	if got := p.Experience(); got != "Class of 2025" {
		t.Errorf("Experience() = %q", got)
	}
	if (Player{SchoolName: "Montverde"}).Experience() != "Prospect" {
		t.Error("prospect without class")
	}
}

func TestPlayerMatchesName(t *testing.T) {
	p := Player{FullName: "Giannis Antetokounmpo"}
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"giannis", true},
		{"ANTETO", true},
		{"kounm", true},
		{"lebron", false},
	}
	for _, tt := range tests {
		if got := p.MatchesName(tt.query); got != tt.want {
			t.Errorf("MatchesName(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
