package roster

import (
	"fmt"
	"strings"
)

// LibraryTarget is the drop target id of the candidate pool.
const LibraryTarget = "LIBRARY"

const targetSep = ":"

// Target is a resolved drop target.
type Target struct {
	Library bool
	Team    string
	Slot    string
}

// TargetID composes a slot target id: "A:PG" on team boards, "PG" when the
// team id is empty.
func TargetID(team, slot string) string {
	if team == "" {
		return slot
	}
	return team + targetSep + slot
}

// ParseTarget resolves id against the board's slot-sets.
func (c Config) ParseTarget(id string) (Target, error) {
	if id == LibraryTarget {
		return Target{Library: true}, nil
	}
	team, slot := "", id
	if i := strings.Index(id, targetSep); i >= 0 {
		team, slot = id[:i], id[i+1:]
	}
	for _, t := range c.Teams {
		if t.ID != team {
			continue
		}
		for _, s := range t.Slots {
			if s == slot {
				return Target{Team: team, Slot: slot}, nil
			}
		}
	}
	return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, id)
}

// Targets lists every slot target id in board order.
func (c Config) Targets() []string {
	ids := make([]string, 0, c.SlotCount())
	for _, t := range c.Teams {
		for _, s := range t.Slots {
			ids = append(ids, TargetID(t.ID, s))
		}
	}
	return ids
}
