package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder(nil)

	r.GameStarted(4)
	r.GameStarted(4)
	r.GameStarted(6)
	r.TurnEvaluated(true)
	r.TurnEvaluated(false)
	r.TurnEvaluated(false)

	if got := testutil.ToFloat64(r.gamesStarted.WithLabelValues("4")); got != 2 {
		t.Errorf("games started at 4 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.gamesStarted.WithLabelValues("6")); got != 1 {
		t.Errorf("games started at 6 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.turns.WithLabelValues("match")); got != 1 {
		t.Errorf("matches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.turns.WithLabelValues("mismatch")); got != 2 {
		t.Errorf("mismatches = %v, want 2", got)
	}
}

func TestRecorder_GameWon(t *testing.T) {
	r := NewRecorder(nil)
	r.GameWon(8, 30)
	r.GameWon(12, 45)

	if got := testutil.ToFloat64(r.gamesWon); got != 2 {
		t.Errorf("games won = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(r.winMoves); n != 1 {
		t.Errorf("win moves histogram collected %d metrics, want 1", n)
	}

	expected := `
# HELP memorygame_games_won_total Games finished with every pair matched.
# TYPE memorygame_games_won_total counter
memorygame_games_won_total 2
`
	if err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "memorygame_games_won_total"); err != nil {
		t.Error(err)
	}
}

func TestRecorder_ActiveSessions(t *testing.T) {
	active := 3
	r := NewRecorder(func() int { return active })

	expected := `
# HELP memorygame_active_sessions Sessions currently held in memory.
# TYPE memorygame_active_sessions gauge
memorygame_active_sessions 3
`
	if err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "memorygame_active_sessions"); err != nil {
		t.Error(err)
	}

	active = 1
	expected = strings.Replace(expected, "memorygame_active_sessions 3", "memorygame_active_sessions 1", 1)
	if err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "memorygame_active_sessions"); err != nil {
		t.Error(err)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.GameStarted(4)
	r.TurnEvaluated(true)
	r.GameWon(1, 1)
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder(func() int { return 0 })
	r.GameStarted(2)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`memorygame_games_started_total{difficulty="2"} 1`,
		"memorygame_active_sessions 0",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
