package tui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/swishreport/swish/internal/session"
	"github.com/swishreport/swish/pkg/client"
	"github.com/swishreport/swish/pkg/domain"
)

func communityServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/community/lineups", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"lineup_id":3,"mode":"starting5","scouting_report":"{\"overallScore\":88,\"overallAnalysis\":\"spacing for days\"}"},
			{"lineup_id":4,"mode":"rotation","scouting_report":{"overallScore":64,"overallAnalysis":"thin frontcourt"}}
		]`)) //nolint:errcheck
	})
	mux.HandleFunc("/community/lineups/3", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			t.Error("lineup detail requested without a bearer token")
		}
		w.Write([]byte(`{"lineup_id":3,"mode":"starting5","players":{"PG":"Stephen Curry","C":"Nikola Jokic","SF":null},
			"scouting_report":{"overallScore":88,"overallAnalysis":"spacing for days","synergyNotes":"<b>pick and roll</b> heaven",
			"floor":"second round","ceiling":"champions","strengths":["shooting"],"weaknesses":["size"]}}`)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestCommunity(t *testing.T, c *client.Client) communityModel {
	t.Helper()
	if c == nil {
		c = unusedClient()
	}
	m := newCommunityModel(c, testGuard(session.NewMemoryStore(validCreds(t))), quietLogger(), time.Second)
	m.width, m.height = 120, 30
	return m
}

func TestCommunityListAndDetail(t *testing.T) {
	m := newTestCommunity(t, client.New(communityServer(t).URL, ""))
	m, cmd := m.activate()
	if cmd == nil {
		t.Fatal("expected list load")
	}
	m, _ = m.Update(cmd())

	view := m.View()
	for _, want := range []string{"COMMUNITY LINEUPS", "#3", "#4", "starting5", "88.0", "thin frontcourt"} {
		if !strings.Contains(view, want) {
			t.Errorf("list view missing %q:\n%s", want, view)
		}
	}

	m, cmd = m.Update(keyEnter)
	if cmd == nil || m.detailID != 3 {
		t.Fatalf("detailID=%d cmd=%v", m.detailID, cmd != nil)
	}
	// The summary shows while the detail loads.
	if !strings.Contains(m.View(), "Lineup #3") {
		t.Errorf("detail placeholder:\n%s", m.View())
	}
	m, _ = m.Update(cmd())

	view = m.View()
	for _, want := range []string{"Stephen Curry", "Nikola Jokic", "(empty)", "pick and roll heaven", "second round", "champions", "+ shooting", "- size"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q:\n%s", want, view)
		}
	}
	if strings.Index(view, "Stephen Curry") > strings.Index(view, "Nikola Jokic") {
		t.Error("players should be listed PG before C")
	}

	m, _ = m.Update(keyEsc)
	if m.detailID != 0 || !strings.Contains(m.View(), "COMMUNITY LINEUPS") {
		t.Error("esc should return to the list")
	}
}

func TestCommunityIgnoresStaleDetail(t *testing.T) {
	m := newTestCommunity(t, nil)
	m, _ = m.load()
	m, _ = m.Update(communityListMsg{loadID: m.loadID, lineups: []domain.Lineup{{LineupID: 1}, {LineupID: 2}}})

	m, _ = m.Update(keyEnter)
	m, _ = m.Update(keyEsc)
	m, _ = m.Update(keyRunes("j"))
	m, _ = m.Update(keyEnter)
	if m.detailID != 2 {
		t.Fatalf("detailID = %d", m.detailID)
	}

	m, _ = m.Update(communityDetailMsg{id: 1, lineup: &domain.Lineup{LineupID: 1, ScoutingReport: domain.ScoutingReport{SynergyNotes: "wrong lineup"}}})
	if strings.Contains(m.View(), "wrong lineup") {
		t.Error("response for a closed lineup was applied")
	}
}

func TestCommunityDetailError(t *testing.T) {
	m := newTestCommunity(t, nil)
	m, _ = m.load()
	m, _ = m.Update(communityListMsg{loadID: m.loadID, lineups: []domain.Lineup{{LineupID: 9, Mode: domain.ModeRotation}}})
	m, _ = m.Update(keyEnter)
	m, _ = m.Update(communityDetailMsg{id: 9, err: &client.HTTPError{StatusCode: 500, Message: "lineup lookup failed"}})

	view := m.View()
	if !strings.Contains(view, "Lineup #9") || !strings.Contains(view, "error: lineup lookup failed") {
		t.Errorf("view:\n%s", view)
	}
}

func TestCommunityEmptyAndErrors(t *testing.T) {
	m := newTestCommunity(t, nil)
	m, _ = m.load()
	stale := m.loadID
	m, _ = m.Update(communityListMsg{loadID: m.loadID})
	if !strings.Contains(m.View(), "no lineups shared yet") {
		t.Errorf("view:\n%s", m.View())
	}
	m, _ = m.load()
	m, _ = m.Update(communityListMsg{loadID: stale, lineups: []domain.Lineup{{LineupID: 1}}})
	if len(m.lineups) != 0 {
		t.Error("response from a superseded load was applied")
	}

	_, cmd := m.Update(communityListMsg{loadID: m.loadID, err: &client.HTTPError{StatusCode: http.StatusUnauthorized}})
	if cmd == nil {
		t.Fatal("expected session-lost command")
	}
	if msg, ok := cmd().(sessionLostMsg); !ok || msg.signal != session.InvalidSession {
		t.Errorf("msg = %#v", msg)
	}
}
