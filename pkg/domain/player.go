package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Player is a player record as returned by the NBA roster and high-school
// prospect endpoints. SchoolName and ClassYear are only set for prospects.
type Player struct {
	ID            string       `json:"id"`
	FullName      string       `json:"full_name"`
	Position      string       `json:"position"`
	Height        string       `json:"height,omitempty"`
	Weight        string       `json:"weight,omitempty"`
	TeamNames     []string     `json:"team_names,omitempty"`
	Colleges      []string     `json:"colleges,omitempty"`
	SchoolName    string       `json:"school_name,omitempty"`
	ClassYear     string       `json:"class_year,omitempty"`
	YearsPro      int          `json:"years_pro,omitempty"`
	DraftYear     int          `json:"draft_year,omitempty"`
	DraftRound    int          `json:"draft_round,omitempty"`
	DraftPick     int          `json:"draft_pick,omitempty"`
	Stars         int          `json:"stars,omitempty"`
	OverallRating int          `json:"overallRating,omitempty"`
	Strengths     []string     `json:"strengths,omitempty"`
	Weaknesses    []string     `json:"weaknesses,omitempty"`
	AIAnalysis    string       `json:"aiAnalysis,omitempty"`
	Stats         *PlayerStats `json:"stats,omitempty"`
}

// PlayerStats holds per-game averages.
type PlayerStats struct {
	Points               float64 `json:"points"`
	Rebounds             float64 `json:"rebounds"`
	Assists              float64 `json:"assists"`
	FieldGoalPercentage  float64 `json:"fieldGoalPercentage,omitempty"`
	ThreePointPercentage float64 `json:"threePointPercentage,omitempty"`
	PER                  float64 `json:"per,omitempty"`
	WinShares            float64 `json:"winShares,omitempty"`
}

// UnmarshalJSON accepts the id under either "player_uid" or "id", as a
// string or a number. The backend is not consistent between endpoints.
func (p *Player) UnmarshalJSON(data []byte) error {
	type plain Player
	var aux struct {
		plain
		ID        json.RawMessage `json:"id"`
		PlayerUID json.RawMessage `json:"player_uid"`
		YearsPro  json.RawMessage `json:"years_pro"`
		ClassYear json.RawMessage `json:"class_year"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Player(aux.plain)

	raw := aux.PlayerUID
	if len(raw) == 0 || string(raw) == "null" {
		raw = aux.ID
	}
	id, err := flexString(raw)
	if err != nil {
		return fmt.Errorf("player id: %w", err)
	}
	p.ID = id

	p.ClassYear, err = flexString(aux.ClassYear)
	if err != nil {
		return fmt.Errorf("player class_year: %w", err)
	}

	years, err := flexString(aux.YearsPro)
	if err != nil {
		return fmt.Errorf("player years_pro: %w", err)
	}
	if years != "" {
		n, convErr := strconv.ParseFloat(years, 64)
		if convErr == nil {
			p.YearsPro = int(n)
		}
	}
	return nil
}

// flexString decodes a JSON string or number into its string form.
func flexString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Prospect reports whether p is a high-school prospect rather than a pro.
func (p Player) Prospect() bool {
	return p.SchoolName != "" || p.ClassYear != ""
}

// Experience renders years in the league the way the web app did.
// Prospects show their class instead.
func (p Player) Experience() string {
	if p.Prospect() {
		if p.ClassYear == "" {
			return "Prospect"
		}
		return "Class of " + p.ClassYear
	}
	if p.YearsPro <= 0 {
		return "Rookie"
	}
	if p.YearsPro == 1 {
		return "1 year pro"
	}
	return strconv.Itoa(p.YearsPro) + " years pro"
}

// MatchesName reports whether query is a case-insensitive substring of the
// player's full name. An empty query matches everyone.
func (p Player) MatchesName(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.FullName), strings.ToLower(query))
}
