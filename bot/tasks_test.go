package bot

import (
	"sync"
	"testing"
)

var testNames = []string{"日文", "健身", "閱讀"}

func TestEnsureDayInitializesRoster(t *testing.T) {
	store := NewTaskStore(testNames)
	store.EnsureDay("2025-06-01")

	views := store.Snapshot("2025-06-01")
	if len(views) != 3 {
		t.Fatalf("expected 3 records, got %d", len(views))
	}
	for i, v := range views {
		if v.Name != testNames[i] {
			t.Errorf("record %d: expected %s, got %s", i, testNames[i], v.Name)
		}
		if v.Done {
			t.Errorf("%s: fresh record should not be done", v.Name)
		}
		if v.Note != "" {
			t.Errorf("%s: fresh record should have empty note", v.Name)
		}
	}
}

func TestEnsureDayIdempotent(t *testing.T) {
	store := NewTaskStore(testNames)
	store.EnsureDay("2025-06-01")
	store.MarkDone("2025-06-01", "健身")
	store.EnsureDay("2025-06-01")

	views := store.Snapshot("2025-06-01")
	done := 0
	for _, v := range views {
		if v.Done {
			done++
		}
	}
	if done != 1 {
		t.Errorf("re-ensuring a day must not reset records, got %d done", done)
	}
}

func TestMarkDoneUndone(t *testing.T) {
	store := NewTaskStore(testNames)
	store.MarkDone("2025-06-01", "日文")

	if got := store.Stats("2025-06-01").Completed; got != 1 {
		t.Errorf("expected 1 completed, got %d", got)
	}

	store.MarkUndone("2025-06-01", "日文")
	if got := store.Stats("2025-06-01").Completed; got != 0 {
		t.Errorf("undo should restore done=false, got %d completed", got)
	}
}

func TestSetClearNote(t *testing.T) {
	store := NewTaskStore(testNames)
	store.SetNote("2025-06-01", "閱讀", "第三章")

	views := store.Snapshot("2025-06-01")
	if views[2].Note != "第三章" {
		t.Errorf("expected note 第三章, got %q", views[2].Note)
	}

	store.ClearNote("2025-06-01", "閱讀")
	views = store.Snapshot("2025-06-01")
	if views[2].Note != "" {
		t.Errorf("expected cleared note, got %q", views[2].Note)
	}
}

func TestStatsPercent(t *testing.T) {
	tests := []struct {
		completed int
		percent   int
	}{
		{0, 0},
		{1, 33},
		{2, 67},
		{3, 100},
	}

	for _, tt := range tests {
		store := NewTaskStore(testNames)
		for i := 0; i < tt.completed; i++ {
			store.MarkDone("2025-06-01", testNames[i])
		}
		stats := store.Stats("2025-06-01")
		if stats.Completed != tt.completed {
			t.Errorf("expected %d completed, got %d", tt.completed, stats.Completed)
		}
		if stats.Total != 3 {
			t.Errorf("total must stay 3, got %d", stats.Total)
		}
		if got := stats.Percent(); got != tt.percent {
			t.Errorf("%d/3 done: expected %d%%, got %d%%", tt.completed, tt.percent, got)
		}
	}
}

func TestUnknownNameIsNoop(t *testing.T) {
	store := NewTaskStore(testNames)
	store.MarkDone("2025-06-01", "慢跑")

	if got := store.Stats("2025-06-01").Completed; got != 0 {
		t.Errorf("unconfigured name must not mutate state, got %d completed", got)
	}
	if len(store.Snapshot("2025-06-01")) != 3 {
		t.Error("roster size must stay fixed")
	}
}

func TestDaysAreIndependent(t *testing.T) {
	store := NewTaskStore(testNames)
	store.MarkDone("2025-06-01", "健身")

	if got := store.Stats("2025-06-02").Completed; got != 0 {
		t.Errorf("a new day must start clean, got %d completed", got)
	}
	if store.DayCount() != 2 {
		t.Errorf("expected 2 days touched, got %d", store.DayCount())
	}
}

func TestConcurrentMutation(t *testing.T) {
	store := NewTaskStore(testNames)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.MarkDone("2025-06-01", "健身")
		}()
		go func() {
			defer wg.Done()
			store.SetNote("2025-06-01", "健身", "set")
		}()
	}
	wg.Wait()

	views := store.Snapshot("2025-06-01")
	if !views[1].Done || views[1].Note != "set" {
		t.Errorf("lost update: %+v", views[1])
	}
}
