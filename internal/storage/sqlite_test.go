package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/engine"
	"github.com/vovakirdan/snakelab/internal/sim"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	runs := []Run{
		{Strategy: "strong", Width: 10, Height: 10, Score: 30, Length: 33, Ticks: 400, Status: "game_over", FinalScore: 822},
		{Strategy: "strong", Width: 10, Height: 10, Score: 97, Length: 100, Ticks: 2000, Status: "passed", FinalScore: 499},
		{Strategy: "strong", Width: 10, Height: 10, Score: 12, Length: 15, Ticks: 90, Status: "game_over", FinalScore: 1648},
		{Strategy: "greedy", Width: 10, Height: 10, Score: 8, Length: 11, Ticks: 60, Status: "game_over", FinalScore: 1803},
	}
	for _, r := range runs {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	top, err := store.TopRuns("strong", 10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(top))
	}

	// Sorted by final score descending
	expected := []int{1648, 822, 499}
	for i, r := range top {
		if r.FinalScore != expected[i] {
			t.Errorf("top[%d].FinalScore = %d, expected %d", i, r.FinalScore, expected[i])
		}
		if r.Strategy != "strong" {
			t.Errorf("top[%d].Strategy = %q", i, r.Strategy)
		}
	}

	all, err := store.TopRuns("", 2)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(all) != 2 || all[0].Strategy != "greedy" {
		t.Errorf("TopRuns(all) = %+v", all)
	}
}

func TestStoreSaveRunAssignsID(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveRun(Run{Strategy: "safe", Width: 8, Height: 8, Status: "passed", Duration: 1500 * time.Millisecond})
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("id = %q, expected a UUID", id)
	}

	got, err := store.RunByID(id)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("RunByID() returned nil")
	}
	if got.Strategy != "safe" || got.Duration != 1500*time.Millisecond {
		t.Errorf("run = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not set")
	}

	if _, err := store.SaveRun(Run{ID: id, Strategy: "safe", Status: "passed"}); err == nil {
		t.Error("expected duplicate id to fail")
	}
	if _, err := store.SaveRun(Run{Status: "passed"}); err == nil {
		t.Error("expected missing strategy to fail")
	}

	missing, err := store.RunByID("does-not-exist")
	if err != nil || missing != nil {
		t.Errorf("RunByID(missing) = %v, %v", missing, err)
	}
}

func TestStoreTopRunsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 15; i++ {
		if _, err := store.SaveRun(Run{Strategy: "safe", Score: i, FinalScore: i * 10, Status: "game_over"}); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	top, err := store.TopRuns("safe", 5)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(top) != 5 {
		t.Errorf("Expected 5 runs, got %d", len(top))
	}
	if top[0].FinalScore != 140 {
		t.Errorf("Expected best final score 140, got %d", top[0].FinalScore)
	}

	// Zero limit falls back to the default
	top, err = store.TopRuns("safe", 0)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(top) != 10 {
		t.Errorf("Expected 10 runs with default limit, got %d", len(top))
	}

	recent, err := store.RecentRuns(3)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(recent) != 3 || recent[0].Score != 14 {
		t.Errorf("RecentRuns() = %+v", recent)
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	hs, err := store.HighScore("hamiltonian")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if hs != 0 {
		t.Errorf("Expected 0 for empty strategy, got %d", hs)
	}

	store.SaveRun(Run{Strategy: "hamiltonian", Score: 40, Status: "game_over"})
	store.SaveRun(Run{Strategy: "hamiltonian", Score: 61, Status: "passed"})

	hs, err = store.HighScore("hamiltonian")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if hs != 61 {
		t.Errorf("Expected high score 61, got %d", hs)
	}
}

func TestStoreClearRuns(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(Run{Strategy: "greedy", Score: 1, Status: "game_over"})
	store.SaveRun(Run{Strategy: "greedy", Score: 2, Status: "game_over"})
	store.SaveRun(Run{Strategy: "safe", Score: 3, Status: "game_over"})

	n, err := store.ClearRuns("greedy")
	if err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 deleted runs, got %d", n)
	}

	runs, _ := store.TopRuns("greedy", 10)
	if len(runs) != 0 {
		t.Errorf("Expected 0 greedy runs after clear, got %d", len(runs))
	}
	runs, _ = store.TopRuns("safe", 10)
	if len(runs) != 1 {
		t.Errorf("Expected safe runs to survive, got %d", len(runs))
	}

	n, err = store.ClearRuns("")
	if err != nil || n != 1 {
		t.Errorf("ClearRuns(all) = %d, %v", n, err)
	}
}

func TestStoreStrategyStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(Run{Strategy: "strong", Score: 10, FinalScore: 100, Ticks: 50, Status: "game_over"})
	store.SaveRun(Run{Strategy: "strong", Score: 30, FinalScore: 300, Ticks: 150, Status: "passed"})
	store.SaveRun(Run{Strategy: "greedy", Score: 5, FinalScore: 70, Ticks: 20, Status: "game_over"})

	all, err := store.AllStrategyStats()
	if err != nil {
		t.Fatalf("AllStrategyStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 strategies, got %d", len(all))
	}

	st := all["strong"]
	if st.Runs != 2 || st.Passed != 1 || st.HighScore != 30 || st.BestFinal != 300 {
		t.Errorf("strong stats = %+v", st)
	}
	if st.AvgScore != 20 || st.AvgFinalScore != 200 || st.AvgTicks != 100 {
		t.Errorf("strong averages = %+v", st)
	}
	if st.LastPlayed.IsZero() {
		t.Error("LastPlayed was not set")
	}

	empty, err := store.GetStrategyStats("custom")
	if err != nil {
		t.Fatalf("GetStrategyStats() failed: %v", err)
	}
	if empty.Runs != 0 || empty.Strategy != "custom" {
		t.Errorf("custom stats = %+v", empty)
	}
}

func TestRunFromResult(t *testing.T) {
	res := sim.Result{
		Strategy:   ai.StrategyHamiltonian,
		Width:      6,
		Height:     6,
		Seed:       9,
		Score:      33,
		Length:     36,
		Ticks:      700,
		Status:     engine.StatusPassed,
		FinalScore: engine.FinalScore(36, 700),
		Duration:   time.Second,
	}

	run := RunFromResult(res)
	if run.Strategy != "hamiltonian" || run.Status != "passed" || run.Ticks != 700 || run.FinalScore != res.FinalScore {
		t.Errorf("run = %+v", run)
	}
	if run.ID != "" {
		t.Error("RunFromResult should leave the ID to SaveRun")
	}

	res.Status = engine.StatusRunning
	res.Stalled = true
	if got := RunFromResult(res).Status; got != StatusStalled {
		t.Errorf("stalled run status = %q", got)
	}
}
