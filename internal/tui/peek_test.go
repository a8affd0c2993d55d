package tui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/swishreport/swish/pkg/client"
	"github.com/swishreport/swish/pkg/domain"
)

func TestPeekFetchesAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/nba/players/203999" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":203999,"full_name":"Nikola Jokic","position":"C","stars":5,"strengths":["Passing"],"aiAnalysis":"Generational <b>hub</b>","stats":{"points":26.4,"rebounds":12.4,"assists":9}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	m := newPeekModel(client.New(srv.URL, ""), newPeekCache(), time.Second)
	m, cmd := m.open(domain.Player{ID: "203999", FullName: "Nikola Jokic"})
	if cmd == nil {
		t.Fatal("expected profile fetch")
	}
	if !strings.Contains(m.View(), "loading profile...") {
		t.Error("expected loading line before the profile arrives")
	}

	m, _ = m.Update(cmd())
	if !m.full {
		t.Fatal("expected full profile")
	}
	view := m.View()
	for _, want := range []string{"Nikola Jokic", "STRENGTHS", "Passing", "26.4 pts", "Generational hub"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "<b>") {
		t.Error("markup leaked into the profile")
	}

	m, cmd = m.open(domain.Player{ID: "203999"})
	if cmd != nil {
		t.Error("cached profile must not refetch")
	}
	if m.player.FullName != "Nikola Jokic" || !m.full {
		t.Errorf("player = %+v", m.player)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}

func TestPeekIgnoresOtherPlayersResponse(t *testing.T) {
	m := newPeekModel(unusedClient(), newPeekCache(), time.Second)
	m, _ = m.open(domain.Player{ID: "1", FullName: "First"})
	m, _ = m.Update(peekLoadedMsg{id: "2", player: &domain.Player{ID: "2", FullName: "Second"}})
	if m.player.FullName != "First" || m.full {
		t.Errorf("player = %+v full=%v", m.player, m.full)
	}
}

func TestPeekError(t *testing.T) {
	m := newPeekModel(unusedClient(), newPeekCache(), time.Second)
	m, _ = m.open(domain.Player{ID: "1", FullName: "First"})
	m, _ = m.Update(peekLoadedMsg{id: "1", err: errors.New("boom")})
	view := m.View()
	if !strings.Contains(view, "profile error:") || !strings.Contains(view, "First") {
		t.Errorf("view:\n%s", view)
	}
	if m.cache.Contains("1") {
		t.Error("failed fetch must not be cached")
	}
}

func TestPeekWithoutID(t *testing.T) {
	m := newPeekModel(unusedClient(), newPeekCache(), time.Second)
	m, cmd := m.open(domain.Player{FullName: "Mystery"})
	if cmd != nil || !m.full {
		t.Errorf("cmd=%v full=%v", cmd != nil, m.full)
	}
}

func TestPeekClose(t *testing.T) {
	for _, key := range []string{"esc", "q", "p"} {
		m := newPeekModel(unusedClient(), newPeekCache(), time.Second)
		m, _ = m.open(domain.Player{FullName: "Mystery"})
		msg := keyRunes(key)
		if key == "esc" {
			msg = keyEsc
		}
		m, _ = m.Update(msg)
		if !m.closed {
			t.Errorf("key %q did not close the overlay", key)
		}
	}
}
