package store

import (
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	return s
}

func TestCreateAndGetRun(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateRun("run-1", "smoke", 1); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	run, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.TestName != "smoke" {
		t.Errorf("TestName = %q, want smoke", run.TestName)
	}
	if run.Level != 1 {
		t.Errorf("Level = %d, want 1", run.Level)
	}
	if run.Status != StatusRunning {
		t.Errorf("Status = %q, want running", run.Status)
	}
	if run.CompletedAt != nil {
		t.Error("CompletedAt should be nil while running")
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetRun("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestCompleteRun(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateRun("run-1", "smoke", 2); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if err := s.CompleteRun("run-1", StatusCompleted, `{"success_rate":100}`); err != nil {
		t.Fatalf("CompleteRun() error = %v", err)
	}

	run, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed", run.Status)
	}
	if run.Payload != `{"success_rate":100}` {
		t.Errorf("Payload = %q", run.Payload)
	}
	if run.CompletedAt == nil {
		t.Error("CompletedAt should be set after completion")
	}
}

func TestCompleteRunNotFound(t *testing.T) {
	s := openTestStore(t)

	if err := s.CompleteRun("missing", StatusFailed, "{}"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("CompleteRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := TestRun{
			ID:        id,
			TestName:  "ordering",
			Level:     1,
			Status:    StatusCompleted,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}
		if err := s.db.Create(&run).Error; err != nil {
			t.Fatalf("seed run %s: %v", id, err)
		}
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Errorf("order = [%s, %s], want [run-c, run-b]", runs[0].ID, runs[1].ID)
	}
}

func TestPruneKeepsRunningAndRecent(t *testing.T) {
	s := openTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	seed := []TestRun{
		{ID: "old-done", Status: StatusCompleted, CreatedAt: old},
		{ID: "old-running", Status: StatusRunning, CreatedAt: old},
		{ID: "fresh-done", Status: StatusCompleted, CreatedAt: time.Now()},
	}
	for _, run := range seed {
		if err := s.db.Create(&run).Error; err != nil {
			t.Fatalf("seed run %s: %v", run.ID, err)
		}
	}

	pruned, err := s.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}

	if _, err := s.GetRun("old-done"); !errors.Is(err, ErrRunNotFound) {
		t.Error("old completed run should be pruned")
	}
	if _, err := s.GetRun("old-running"); err != nil {
		t.Error("running run must survive pruning")
	}
	if _, err := s.GetRun("fresh-done"); err != nil {
		t.Error("recent run must survive pruning")
	}
}
