package roster

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/swishreport/swish/pkg/domain"
)

var (
	ErrIncompleteRoster = errors.New("roster is incomplete")
	ErrUnknownTarget    = errors.New("unknown drop target")
	ErrUnknownCandidate = errors.New("unknown candidate")
	ErrNotDragging      = errors.New("no drag in progress")
	ErrSubmitInFlight   = errors.New("a submission is already in flight")
)

// IncompleteError lists the empty slots that block a submission.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("fill every slot before submitting (%d empty: %s)",
		len(e.Missing), strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Unwrap() error { return ErrIncompleteRoster }

// DragHandler is the gesture capability a front end drives. Any pointer or
// keyboard layer that can report a pick-up and a drop can sit on top of it.
type DragHandler interface {
	OnDragStart(id string) error
	OnDragEnd(sourceID, targetID string) error
}

var _ DragHandler = (*Board)(nil)

// State is the gesture state of a board.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// SlotView is a read-only view of one slot.
type SlotView struct {
	Target   string
	Team     string
	Slot     string
	Occupant string
}

// Board maps the slots of one or more teams to candidate ids. A candidate
// occupies at most one slot across all teams. Assignments only change in
// OnDragEnd.
type Board struct {
	mu  sync.Mutex
	cfg Config

	// team id -> slot -> candidate id; "" is empty.
	slots map[string]map[string]string

	candidates []domain.Player
	byID       map[string]int
	query      string

	dragging string

	pending string
}

// NewBoard returns an empty board for cfg.
func NewBoard(cfg Config) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		cfg:   cfg,
		slots: make(map[string]map[string]string, len(cfg.Teams)),
		byID:  map[string]int{},
	}
	for _, t := range cfg.Teams {
		m := make(map[string]string, len(t.Slots))
		for _, s := range t.Slots {
			m[s] = ""
		}
		b.slots[t.ID] = m
	}
	return b, nil
}

// Config returns the board's configuration.
func (b *Board) Config() Config {
	return b.cfg
}

// SetCandidates replaces the candidate pool. Existing assignments are kept.
func (b *Board) SetCandidates(players []domain.Player) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.candidates = append([]domain.Player(nil), players...)
	b.byID = make(map[string]int, len(players))
	for i, p := range b.candidates {
		if _, dup := b.byID[p.ID]; !dup {
			b.byID[p.ID] = i
		}
	}
}

// Candidate looks up a pool record by id.
func (b *Board) Candidate(id string) (domain.Player, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.byID[id]
	if !ok {
		return domain.Player{}, false
	}
	return b.candidates[i], true
}

// SetQuery sets the live name filter.
func (b *Board) SetQuery(q string) {
	b.mu.Lock()
	b.query = q
	b.mu.Unlock()
}

// Query returns the current name filter.
func (b *Board) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Pool returns the unassigned candidates matching the query, in fetch order.
func (b *Board) Pool() []domain.Player {
	b.mu.Lock()
	defer b.mu.Unlock()

	assigned := b.assignedLocked()
	pool := make([]domain.Player, 0, len(b.candidates))
	for _, p := range b.candidates {
		if assigned[p.ID] || !p.MatchesName(b.query) {
			continue
		}
		pool = append(pool, p)
	}
	return pool
}

// State returns the gesture state and, when dragging, the carried id.
func (b *Board) State() (State, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dragging == "" {
		return Idle, ""
	}
	return Dragging, b.dragging
}

// OnDragStart picks up id from the pool or from a slot.
func (b *Board) OnDragStart(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, known := b.byID[id]; !known && !b.assignedLocked()[id] {
		return fmt.Errorf("roster.OnDragStart: %w: %q", ErrUnknownCandidate, id)
	}
	b.dragging = id
	return nil
}

// OnDragEnd drops sourceID on targetID. A slot target removes the id from
// every slot first and then assigns it, replacing any occupant. The library
// target only removes. An empty target changes nothing. The board is Idle
// afterwards in every case, including errors.
func (b *Board) OnDragEnd(sourceID, targetID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dragging == "" || sourceID != b.dragging {
		b.dragging = ""
		return fmt.Errorf("roster.OnDragEnd: %w", ErrNotDragging)
	}
	b.dragging = ""

	if targetID == "" {
		return nil
	}
	target, err := b.cfg.ParseTarget(targetID)
	if err != nil {
		return fmt.Errorf("roster.OnDragEnd: %w", err)
	}

	for _, slots := range b.slots {
		for s, occ := range slots {
			if occ == sourceID {
				slots[s] = ""
			}
		}
	}
	if !target.Library {
		b.slots[target.Team][target.Slot] = sourceID
	}
	return nil
}

// Cancel drops whatever is carried with no target.
func (b *Board) Cancel() {
	b.mu.Lock()
	b.dragging = ""
	b.mu.Unlock()
}

// Occupant returns the id in the slot targetID, or "" when empty.
func (b *Board) Occupant(targetID string) (string, error) {
	t, err := b.cfg.ParseTarget(targetID)
	if err != nil {
		return "", err
	}
	if t.Library {
		return "", fmt.Errorf("%w: %q is not a slot", ErrUnknownTarget, targetID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slots[t.Team][t.Slot], nil
}

// Slots returns every slot in board order.
func (b *Board) Slots() []SlotView {
	b.mu.Lock()
	defer b.mu.Unlock()

	views := make([]SlotView, 0, b.cfg.SlotCount())
	for _, t := range b.cfg.Teams {
		for _, s := range t.Slots {
			views = append(views, SlotView{
				Target:   TargetID(t.ID, s),
				Team:     t.ID,
				Slot:     s,
				Occupant: b.slots[t.ID][s],
			})
		}
	}
	return views
}

// SlotMap snapshots one team's assignments for submission. Empty slots are
// nil and marshal as JSON null.
func (b *Board) SlotMap(team string) domain.SlotMap {
	b.mu.Lock()
	defer b.mu.Unlock()

	slots, ok := b.slots[team]
	if !ok {
		return nil
	}
	out := make(domain.SlotMap, len(slots))
	for s, occ := range slots {
		if occ == "" {
			out[s] = nil
			continue
		}
		id := occ
		out[s] = &id
	}
	return out
}

// Filled returns the number of occupied slots across all teams.
func (b *Board) Filled() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.assignedLocked())
}

// Validate applies the board's completeness policy.
func (b *Board) Validate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.validateLocked()
}

// BeginSubmit validates the board and marks a submission in flight. The
// returned id tags the request; pass it to EndSubmit with the response.
func (b *Board) BeginSubmit() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending != "" {
		return "", ErrSubmitInFlight
	}
	if err := b.validateLocked(); err != nil {
		return "", err
	}
	b.pending = uuid.NewString()
	return b.pending, nil
}

// EndSubmit closes the submission id. It returns false when id is not the
// one in flight, in which case the response is stale and must be dropped.
func (b *Board) EndSubmit(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id == "" || id != b.pending {
		return false
	}
	b.pending = ""
	return true
}

// AbandonSubmit forgets the in-flight submission so its response is stale.
func (b *Board) AbandonSubmit() {
	b.mu.Lock()
	b.pending = ""
	b.mu.Unlock()
}

// Submitting reports whether a submission is in flight.
func (b *Board) Submitting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending != ""
}

func (b *Board) validateLocked() error {
	if !b.cfg.RequireComplete {
		return nil
	}
	var missing []string
	for _, t := range b.cfg.Teams {
		for _, s := range t.Slots {
			if b.slots[t.ID][s] == "" {
				missing = append(missing, TargetID(t.ID, s))
			}
		}
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}

func (b *Board) assignedLocked() map[string]bool {
	assigned := make(map[string]bool)
	for _, slots := range b.slots {
		for _, occ := range slots {
			if occ != "" {
				assigned[occ] = true
			}
		}
	}
	return assigned
}
