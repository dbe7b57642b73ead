package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/tui-tiles/internal/tiles"
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
	dbPath := filepath.Join(tmpDir, "test.db")

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

	runs := []RunEntry{
		{Mode: "normal", Score: 100, Rate: 5},
		{Mode: "normal", Score: 50, Rate: 2.5},
		{Mode: "normal", Score: 200, Rate: 10},
		{Mode: "normal", Score: 100, Rate: 6}, // Same score, better rate
		{Mode: "endless", Score: 500, Rate: 4},
	}
	ids := make(map[string]bool)
	for _, r := range runs {
		id, err := store.SaveRun(r)
		if err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
		if id == "" || ids[id] {
			t.Fatalf("SaveRun() returned empty or duplicate run ID %q", id)
		}
		ids[id] = true
	}

	scores, err := store.TopScores("normal", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 4 {
		t.Fatalf("Expected 4 scores, got %d", len(scores))
	}

	// Should be sorted by score, then rate, descending
	want := []struct {
		score int
		rate  float64
	}{{200, 10}, {100, 6}, {100, 5}, {50, 2.5}}
	for i, w := range want {
		if scores[i].Score != w.score || scores[i].Rate != w.rate {
			t.Errorf("scores[%d] = %d/%v, expected %d/%v", i, scores[i].Score, scores[i].Rate, w.score, w.rate)
		}
	}

	endless, err := store.TopScores("endless", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(endless) != 1 {
		t.Errorf("Expected 1 endless score, got %d", len(endless))
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveRun(RunEntry{Mode: "normal", Score: (i + 1) * 100})
	}

	scores, err := store.TopScores("normal", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Errorf("Expected 3 scores with limit, got %d", len(scores))
	}

	// Should be 500, 400, 300 (top 3)
	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreHighScoreAndClear(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("normal")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for an empty mode, got %d", high)
	}

	store.SaveRun(RunEntry{Mode: "normal", Score: 100})
	store.SaveRun(RunEntry{Mode: "normal", Score: 300})
	store.SaveRun(RunEntry{Mode: "endless", Score: 700})

	high, err = store.HighScore("normal")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}

	if err := store.ClearScores("normal"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}
	if normal, _ := store.TopScores("normal", 10); len(normal) != 0 {
		t.Errorf("Expected 0 normal scores after clear, got %d", len(normal))
	}
	if endless, _ := store.TopScores("endless", 10); len(endless) != 1 {
		t.Error("Endless scores should not be affected by clearing normal")
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(RunEntry{Mode: "normal", Score: 10, Rate: 1})
	store.SaveRun(RunEntry{Mode: "normal", Score: 30, Rate: 3})
	store.SaveRun(RunEntry{Mode: "endless", Score: 5, Rate: 0.5})

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	normal := stats["normal"]
	if normal == nil {
		t.Fatal("missing normal stats")
	}
	if normal.RunsCount != 2 || normal.HighScore != 30 || normal.BestRate != 3 || normal.AvgScore != 20 || normal.TotalTaps != 40 {
		t.Errorf("normal stats = %+v", normal)
	}
	if stats["endless"] == nil || stats["endless"].RunsCount != 1 {
		t.Errorf("endless stats = %+v", stats["endless"])
	}
}

func TestScopePreferences(t *testing.T) {
	store := openTestStore(t)
	local := store.Local()
	remote := store.Player("alice")

	if v, err := local.Get("gameTime"); err != nil || v != "" {
		t.Fatalf("Get() of a missing key = %q, %v", v, err)
	}

	if err := local.Set("gameTime", "30", 100); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := remote.Set("gameTime", "45", 100); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := local.Set("gameTime", "25", 100); err != nil {
		t.Fatalf("Set() overwrite failed: %v", err)
	}

	if v, _ := local.Get("gameTime"); v != "25" {
		t.Errorf("local gameTime = %q, expected 25", v)
	}
	if v, _ := remote.Get("gameTime"); v != "45" {
		t.Errorf("remote gameTime = %q, expected 45", v)
	}

	all, err := local.All()
	if err != nil || len(all) != 1 || all["gameTime"] != "25" {
		t.Errorf("All() = %v, %v", all, err)
	}

	if err := local.Delete("gameTime"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if v, _ := local.Get("gameTime"); v != "" {
		t.Errorf("deleted key still returns %q", v)
	}
}

func TestScopePreferenceExpiry(t *testing.T) {
	store := openTestStore(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	local := store.Local()
	local.Set("best-score", "42", 100)
	local.Set("soundMode", "off", 0) // Never expires

	now = now.Add(99 * 24 * time.Hour)
	if v, _ := local.Get("best-score"); v != "42" {
		t.Fatalf("value expired early: %q", v)
	}

	now = now.Add(2 * 24 * time.Hour)
	if all, _ := local.All(); all["best-score"] != "" || all["soundMode"] != "off" {
		t.Errorf("All() after expiry = %v", all)
	}
	n, err := store.PurgeExpired()
	if err != nil || n != 1 {
		t.Errorf("PurgeExpired() = %d, %v, expected 1", n, err)
	}
	if v, _ := local.Get("best-score"); v != "" {
		t.Errorf("expired value returned %q", v)
	}
	if v, _ := local.Get("soundMode"); v != "off" {
		t.Errorf("non-expiring value lost: %q", v)
	}
}

func TestScopeRecordResult(t *testing.T) {
	store := openTestStore(t)

	err := store.Player("bob").RecordResult(tiles.Result{
		Mode:     tiles.ModeFixedTime,
		Score:    42,
		Rate:     2.1,
		Elapsed:  20 * time.Second,
		Columns:  4,
		Duration: 20 * time.Second,
	})
	if err != nil {
		t.Fatalf("RecordResult() failed: %v", err)
	}

	runs, err := store.TopScores("normal", 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("TopScores() = %v, %v", runs, err)
	}
	r := runs[0]
	if r.Player != "bob" || r.Score != 42 || r.DurationSecs != 20 || r.ElapsedMS != 20000 || r.RunID == "" {
		t.Errorf("stored run = %+v", r)
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
