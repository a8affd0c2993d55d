package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// LineupMode selects the lineup builder's slot layout.
type LineupMode string

const (
	ModeStarting5 LineupMode = "starting5"
	ModeRotation  LineupMode = "rotation"
)

// LineupModes lists the modes in cycle order.
var LineupModes = []LineupMode{ModeStarting5, ModeRotation}

// Next returns the mode after m in LineupModes, wrapping around. Unknown
// modes restart the cycle.
func (m LineupMode) Next() LineupMode {
	for i, known := range LineupModes {
		if known == m {
			return LineupModes[(i+1)%len(LineupModes)]
		}
	}
	return LineupModes[0]
}

// SlotMap maps a slot name to the assigned player id, or nil when empty.
// It marshals empty slots as JSON null.
type SlotMap map[string]*string

// Filled returns the number of occupied slots.
func (s SlotMap) Filled() int {
	n := 0
	for _, id := range s {
		if id != nil {
			n++
		}
	}
	return n
}

// LineupSubmission is the body of POST /games/lineup-builder/submit-lineup.
type LineupSubmission struct {
	Mode         LineupMode `json:"mode"`
	Lineup       SlotMap    `json:"lineup"`
	UserEmail    string     `json:"user_email,omitempty"`
	SubmissionID string     `json:"submission_id,omitempty"`
}

// ComparisonSubmission is the body of POST /games/player-comparison/submit-comparison.
type ComparisonSubmission struct {
	Comparison   SlotMap `json:"comparison"`
	UserEmail    string  `json:"user_email,omitempty"`
	SubmissionID string  `json:"submission_id,omitempty"`
}

// MatchupSubmission is the body of POST /games/simulated-matchups/submit-matchup.
type MatchupSubmission struct {
	TeamA        SlotMap `json:"team_a"`
	TeamB        SlotMap `json:"team_b"`
	UserEmail    string  `json:"user_email,omitempty"`
	SubmissionID string  `json:"submission_id,omitempty"`
}

// ScoutingReport is the AI summary attached to a saved lineup. Only the
// single-lineup endpoint fills the synergy and range fields.
type ScoutingReport struct {
	OverallScore    float64  `json:"overallScore"`
	OverallAnalysis string   `json:"overallAnalysis"`
	Strengths       []string `json:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
	SynergyNotes    string   `json:"synergyNotes,omitempty"`
	Floor           string   `json:"floor,omitempty"`
	Ceiling         string   `json:"ceiling,omitempty"`
}

// UnmarshalJSON accepts the report either as an object or as a JSON string
// holding one; the lineups table stores it as text.
func (r *ScoutingReport) UnmarshalJSON(data []byte) error {
	type plain ScoutingReport
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*r = ScoutingReport{}
			return nil
		}
		data = []byte(s)
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("scouting report: %w", err)
	}
	*r = ScoutingReport(p)
	return nil
}

// LineupPlayers maps a slot name to the player placed there. Empty slots
// map to "".
type LineupPlayers map[string]string

// UnmarshalJSON accepts an object or a JSON string holding one, like
// ScoutingReport. Null slot values become "".
func (lp *LineupPlayers) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*lp = nil
			return nil
		}
		data = []byte(s)
	}
	var raw map[string]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("lineup players: %w", err)
	}
	if raw == nil {
		*lp = nil
		return nil
	}
	out := make(LineupPlayers, len(raw))
	for slot, name := range raw {
		if name != nil {
			out[slot] = *name
		} else {
			out[slot] = ""
		}
	}
	*lp = out
	return nil
}

// Slots returns the slot names in lineup order: the known slot layouts
// first, anything else alphabetically after them.
func (lp LineupPlayers) Slots() []string {
	order := map[string]int{}
	for _, pos := range []string{"PG", "SG", "SF", "PF", "C"} {
		for _, s := range []string{pos, pos + "1", pos + "2"} {
			order[s] = len(order) + 1
		}
	}
	for i := 1; i <= 5; i++ {
		order["Bench"+strconv.Itoa(i)] = len(order) + 1
	}
	slots := make([]string, 0, len(lp))
	for s := range lp {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool {
		oi, oj := order[slots[i]], order[slots[j]]
		switch {
		case oi != 0 && oj != 0:
			return oi < oj
		case oi != 0:
			return true
		case oj != 0:
			return false
		}
		return slots[i] < slots[j]
	})
	return slots
}

// Lineup is a saved lineup belonging to a user.
type Lineup struct {
	LineupID       int            `json:"lineup_id"`
	Mode           LineupMode     `json:"mode"`
	Players        LineupPlayers  `json:"players,omitempty"`
	ScoutingReport ScoutingReport `json:"scouting_report"`
}
