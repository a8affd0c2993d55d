// Package roster implements the slot assignment board shared by the lineup
// builder, the player comparison and the simulated matchup.
package roster

import (
	"fmt"
	"strings"

	"github.com/swishreport/swish/pkg/domain"
)

// Team is one slot-set on a board. ID is empty on single-team boards.
type Team struct {
	ID    string
	Label string
	Slots []string
}

// Config parameterises a board.
type Config struct {
	Name            string
	Teams           []Team
	RequireComplete bool
}

var (
	starting5Slots = []string{"PG", "SG", "SF", "PF", "C"}
	rotationSlots  = []string{"PG1", "PG2", "SG1", "SG2", "SF1", "SF2", "PF1", "PF2", "C1", "C2"}
	matchupSlots   = []string{"PG", "SG", "SF", "PF", "C", "Bench1", "Bench2", "Bench3", "Bench4", "Bench5"}
)

// LineupConfig returns the lineup builder board for mode. Partial lineups
// may be submitted.
func LineupConfig(mode domain.LineupMode) Config {
	slots := starting5Slots
	name := "Starting 5"
	if mode == domain.ModeRotation {
		slots = rotationSlots
		name = "Rotation"
	}
	return Config{
		Name:  name,
		Teams: []Team{{Label: "Lineup", Slots: append([]string(nil), slots...)}},
	}
}

// ComparisonConfig returns the two-player comparison board.
func ComparisonConfig() Config {
	return Config{
		Name:            "Player Comparison",
		Teams:           []Team{{Label: "Comparison", Slots: []string{"Player1", "Player2"}}},
		RequireComplete: true,
	}
}

// MatchupConfig returns the two-team simulated matchup board.
func MatchupConfig() Config {
	return Config{
		Name: "Simulated Matchup",
		Teams: []Team{
			{ID: "A", Label: "Team A", Slots: append([]string(nil), matchupSlots...)},
			{ID: "B", Label: "Team B", Slots: append([]string(nil), matchupSlots...)},
		},
		RequireComplete: true,
	}
}

// Validate checks that targets built from c are unambiguous.
func (c Config) Validate() error {
	if len(c.Teams) == 0 {
		return fmt.Errorf("roster: config %q has no teams", c.Name)
	}
	teams := make(map[string]bool, len(c.Teams))
	for _, t := range c.Teams {
		if len(c.Teams) > 1 && t.ID == "" {
			return fmt.Errorf("roster: config %q: multi-team boards need team ids", c.Name)
		}
		if teams[t.ID] {
			return fmt.Errorf("roster: config %q: duplicate team %q", c.Name, t.ID)
		}
		teams[t.ID] = true
		if strings.Contains(t.ID, targetSep) {
			return fmt.Errorf("roster: config %q: team id %q contains %q", c.Name, t.ID, targetSep)
		}
		if len(t.Slots) == 0 {
			return fmt.Errorf("roster: config %q: team %q has no slots", c.Name, t.ID)
		}
		slots := make(map[string]bool, len(t.Slots))
		for _, s := range t.Slots {
			switch {
			case s == "":
				return fmt.Errorf("roster: config %q: empty slot name", c.Name)
			case s == LibraryTarget:
				return fmt.Errorf("roster: config %q: slot name %q is reserved", c.Name, s)
			case strings.Contains(s, targetSep):
				return fmt.Errorf("roster: config %q: slot %q contains %q", c.Name, s, targetSep)
			case slots[s]:
				return fmt.Errorf("roster: config %q: duplicate slot %q", c.Name, s)
			}
			slots[s] = true
		}
	}
	return nil
}

// SlotCount is the total number of slots across all teams.
func (c Config) SlotCount() int {
	n := 0
	for _, t := range c.Teams {
		n += len(t.Slots)
	}
	return n
}
