package roster

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/swishreport/swish/pkg/domain"
)

func players(ids ...string) []domain.Player {
	out := make([]domain.Player, len(ids))
	for i, id := range ids {
		out[i] = domain.Player{ID: id, FullName: "Player " + id}
	}
	return out
}

func newBoard(t *testing.T, cfg Config, ids ...string) *Board {
	t.Helper()
	b, err := NewBoard(cfg)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	b.SetCandidates(players(ids...))
	return b
}

func drag(t *testing.T, b *Board, id, target string) {
	t.Helper()
	if err := b.OnDragStart(id); err != nil {
		t.Fatalf("OnDragStart(%q): %v", id, err)
	}
	if err := b.OnDragEnd(id, target); err != nil {
		t.Fatalf("OnDragEnd(%q, %q): %v", id, target, err)
	}
}

// dump renders the board as stable text for diffing.
func dump(b *Board) string {
	var sb strings.Builder
	for _, s := range b.Slots() {
		occ := s.Occupant
		if occ == "" {
			occ = "-"
		}
		fmt.Fprintf(&sb, "%s=%s\n", s.Target, occ)
	}
	ids := make([]string, 0)
	for _, p := range b.Pool() {
		ids = append(ids, p.ID)
	}
	fmt.Fprintf(&sb, "pool=%s\n", strings.Join(ids, ","))
	return sb.String()
}

func assertDump(t *testing.T, b *Board, want string) {
	t.Helper()
	got := dump(b)
	if got == want {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	t.Errorf("board mismatch:\n%s", diff)
}

func checkInvariants(t *testing.T, b *Board) {
	t.Helper()
	seen := map[string]string{}
	for _, s := range b.Slots() {
		if s.Occupant == "" {
			continue
		}
		if prev, dup := seen[s.Occupant]; dup {
			t.Fatalf("%q in both %s and %s", s.Occupant, prev, s.Target)
		}
		seen[s.Occupant] = s.Target
	}
	for _, p := range b.Pool() {
		if slot, ok := seen[p.ID]; ok {
			t.Fatalf("%q is in the pool and in %s", p.ID, slot)
		}
	}
}

func TestScenario_SingleSlotReassignAndReturn(t *testing.T) {
	b := newBoard(t, LineupConfig(domain.ModeStarting5), "P1", "P2", "P3")

	drag(t, b, "P1", "PG")
	assertDump(t, b, "PG=P1\nSG=-\nSF=-\nPF=-\nC=-\npool=P2,P3\n")

	drag(t, b, "P2", "PG")
	assertDump(t, b, "PG=P2\nSG=-\nSF=-\nPF=-\nC=-\npool=P1,P3\n")

	drag(t, b, "P2", LibraryTarget)
	assertDump(t, b, "PG=-\nSG=-\nSF=-\nPF=-\nC=-\npool=P1,P2,P3\n")
}

func TestOnDragEnd_MovesBetweenSlots(t *testing.T) {
	b := newBoard(t, LineupConfig(domain.ModeStarting5), "P1", "P2")
	drag(t, b, "P1", "PG")
	drag(t, b, "P1", "C")
	assertDump(t, b, "PG=-\nSG=-\nSF=-\nPF=-\nC=P1\npool=P2\n")
}

func TestOnDragEnd_Overwrite(t *testing.T) {
	b := newBoard(t, ComparisonConfig(), "A", "B", "C")
	drag(t, b, "A", "Player1")
	drag(t, b, "B", "Player1")

	occ, err := b.Occupant("Player1")
	if err != nil {
		t.Fatalf("Occupant: %v", err)
	}
	if occ != "B" {
		t.Errorf("Player1 = %q, want B", occ)
	}
	pool := b.Pool()
	if len(pool) != 2 || pool[0].ID != "A" || pool[1].ID != "C" {
		t.Errorf("pool = %v, want [A C]", pool)
	}
}

func TestOnDragEnd_AcrossTeams(t *testing.T) {
	b := newBoard(t, MatchupConfig(), "P1", "P2")
	drag(t, b, "P1", "A:PG")
	drag(t, b, "P1", "B:Bench3")

	if occ, _ := b.Occupant("A:PG"); occ != "" {
		t.Errorf("A:PG = %q, want empty", occ)
	}
	if occ, _ := b.Occupant("B:Bench3"); occ != "P1" {
		t.Errorf("B:Bench3 = %q, want P1", occ)
	}
	checkInvariants(t, b)
}

func TestOnDragEnd_NoTarget(t *testing.T) {
	b := newBoard(t, LineupConfig(domain.ModeStarting5), "P1", "P2")
	drag(t, b, "P1", "SF")
	before := dump(b)

	if err := b.OnDragStart("P1"); err != nil {
		t.Fatal(err)
	}
	if st, id := b.State(); st != Dragging || id != "P1" {
		t.Fatalf("State = %v %q", st, id)
	}
	if err := b.OnDragEnd("P1", ""); err != nil {
		t.Fatalf("OnDragEnd: %v", err)
	}
	if st, _ := b.State(); st != Idle {
		t.Errorf("State = %v, want idle", st)
	}
	assertDump(t, b, before)
}

func TestOnDragEnd_Errors(t *testing.T) {
	b := newBoard(t, MatchupConfig(), "P1")

	if err := b.OnDragEnd("P1", "A:PG"); !errors.Is(err, ErrNotDragging) {
		t.Errorf("idle drop: err = %v", err)
	}
	if err := b.OnDragStart("ghost"); !errors.Is(err, ErrUnknownCandidate) {
		t.Errorf("unknown start: err = %v", err)
	}

	before := dump(b)
	for _, target := range []string{"PG", "C:PG", "A:Bench9", "library"} {
		if err := b.OnDragStart("P1"); err != nil {
			t.Fatal(err)
		}
		if err := b.OnDragEnd("P1", target); !errors.Is(err, ErrUnknownTarget) {
			t.Errorf("target %q: err = %v", target, err)
		}
		if st, _ := b.State(); st != Idle {
			t.Errorf("target %q: state = %v", target, st)
		}
	}
	assertDump(t, b, before)

	if err := b.OnDragStart("P1"); err != nil {
		t.Fatal(err)
	}
	if err := b.OnDragEnd("P2", "A:PG"); !errors.Is(err, ErrNotDragging) {
		t.Errorf("mismatched source: err = %v", err)
	}
}

func TestOnDragStart_AssignedButNotInPool(t *testing.T) {
	b := newBoard(t, LineupConfig(domain.ModeStarting5), "P1", "P2")
	drag(t, b, "P1", "PG")

	// A refetch that no longer lists P1 must still let it be dragged out.
	b.SetCandidates(players("P2"))
	drag(t, b, "P1", LibraryTarget)
	if b.Filled() != 0 {
		t.Errorf("Filled = %d, want 0", b.Filled())
	}
}

func TestPool_SearchFilter(t *testing.T) {
	b, err := NewBoard(LineupConfig(domain.ModeStarting5))
	if err != nil {
		t.Fatal(err)
	}
	b.SetCandidates([]domain.Player{
		{ID: "1", FullName: "Stephen Curry"},
		{ID: "2", FullName: "Seth Curry"},
		{ID: "3", FullName: "LeBron James"},
	})
	drag(t, b, "2", "SG")

	b.SetQuery("CURRY")
	pool := b.Pool()
	if len(pool) != 1 || pool[0].ID != "1" {
		t.Errorf("pool = %v, want only Stephen", pool)
	}
	if occ, _ := b.Occupant("SG"); occ != "2" {
		t.Errorf("search changed slots: SG = %q", occ)
	}

	b.SetQuery("")
	if n := len(b.Pool()); n != 2 {
		t.Errorf("pool size = %d, want 2", n)
	}
}

func TestValidate_CompleteRosterGate(t *testing.T) {
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("P%02d", i)
	}
	b := newBoard(t, MatchupConfig(), ids...)
	targets := b.Config().Targets()
	if len(targets) != 20 {
		t.Fatalf("targets = %d, want 20", len(targets))
	}

	for i, target := range targets[:19] {
		drag(t, b, ids[i], target)
	}
	_, err := b.BeginSubmit()
	var inc *IncompleteError
	if !errors.As(err, &inc) {
		t.Fatalf("err = %v, want IncompleteError", err)
	}
	if !errors.Is(err, ErrIncompleteRoster) {
		t.Error("IncompleteError does not match ErrIncompleteRoster")
	}
	if len(inc.Missing) != 1 || inc.Missing[0] != "B:Bench5" {
		t.Errorf("Missing = %v", inc.Missing)
	}
	if b.Submitting() {
		t.Error("rejected submission left board submitting")
	}

	drag(t, b, ids[19], targets[19])
	id, err := b.BeginSubmit()
	if err != nil {
		t.Fatalf("BeginSubmit on full board: %v", err)
	}
	if id == "" {
		t.Error("empty submission id")
	}
	if a := b.SlotMap("A"); a.Filled() != 10 {
		t.Errorf("team A filled = %d", a.Filled())
	}
}

func TestValidate_PartialLineupAllowed(t *testing.T) {
	b := newBoard(t, LineupConfig(domain.ModeRotation), "P1")
	drag(t, b, "P1", "PG2")
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	m := b.SlotMap("")
	if len(m) != 10 {
		t.Fatalf("slot map size = %d", len(m))
	}
	if m["PG2"] == nil || *m["PG2"] != "P1" {
		t.Errorf("PG2 = %v", m["PG2"])
	}
	if m["PG1"] != nil {
		t.Errorf("PG1 = %v, want nil", *m["PG1"])
	}
}

func TestSubmit_InFlightAndStale(t *testing.T) {
	b := newBoard(t, LineupConfig(domain.ModeStarting5), "P1")

	first, err := b.BeginSubmit()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.BeginSubmit(); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("second BeginSubmit: err = %v", err)
	}
	if b.EndSubmit("other") {
		t.Error("EndSubmit accepted a foreign id")
	}
	if !b.EndSubmit(first) {
		t.Error("EndSubmit rejected the pending id")
	}
	if b.EndSubmit(first) {
		t.Error("EndSubmit accepted the same id twice")
	}

	second, _ := b.BeginSubmit()
	b.AbandonSubmit()
	if b.EndSubmit(second) {
		t.Error("abandoned submission was accepted")
	}
	if second == first {
		t.Error("submission ids repeat")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no teams", Config{Name: "x"}},
		{"missing team id", Config{Teams: []Team{{Slots: []string{"A"}}, {ID: "B", Slots: []string{"A"}}}}},
		{"duplicate team", Config{Teams: []Team{{ID: "A", Slots: []string{"PG"}}, {ID: "A", Slots: []string{"PG"}}}}},
		{"empty team", Config{Teams: []Team{{}}}},
		{"duplicate slot", Config{Teams: []Team{{Slots: []string{"PG", "PG"}}}}},
		{"reserved slot", Config{Teams: []Team{{Slots: []string{LibraryTarget}}}}},
		{"separator in slot", Config{Teams: []Team{{Slots: []string{"A:B"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected error")
			}
			if _, err := NewBoard(tt.cfg); err == nil {
				t.Error("NewBoard accepted invalid config")
			}
		})
	}

	for _, cfg := range []Config{
		LineupConfig(domain.ModeStarting5),
		LineupConfig(domain.ModeRotation),
		ComparisonConfig(),
		MatchupConfig(),
	} {
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", cfg.Name, err)
		}
	}
}

func TestParseTarget(t *testing.T) {
	single := LineupConfig(domain.ModeStarting5)
	if tg, err := single.ParseTarget("SF"); err != nil || tg.Slot != "SF" || tg.Team != "" {
		t.Errorf("SF = %+v, %v", tg, err)
	}
	if tg, err := single.ParseTarget(LibraryTarget); err != nil || !tg.Library {
		t.Errorf("LIBRARY = %+v, %v", tg, err)
	}

	two := MatchupConfig()
	tg, err := two.ParseTarget("B:Bench2")
	if err != nil {
		t.Fatal(err)
	}
	if tg.Team != "B" || tg.Slot != "Bench2" {
		t.Errorf("B:Bench2 = %+v", tg)
	}
	if _, err := two.ParseTarget("PG"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("bare slot on team board: err = %v", err)
	}
}

// Random drag sequences must never place one candidate twice or leave an
// assigned candidate in the pool.
func TestBoard_RandomSequences(t *testing.T) {
	ids := []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8"}
	for _, cfg := range []Config{LineupConfig(domain.ModeStarting5), ComparisonConfig(), MatchupConfig()} {
		t.Run(cfg.Name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			b := newBoard(t, cfg, ids...)
			targets := append(cfg.Targets(), LibraryTarget, "", "bogus")

			for step := 0; step < 2000; step++ {
				id := ids[rng.Intn(len(ids))]
				if err := b.OnDragStart(id); err != nil {
					t.Fatalf("step %d: %v", step, err)
				}
				if rng.Intn(10) == 0 {
					b.SetQuery(fmt.Sprint(rng.Intn(9)))
				}
				_ = b.OnDragEnd(id, targets[rng.Intn(len(targets))])
				checkInvariants(t, b)
			}
		})
	}
}
