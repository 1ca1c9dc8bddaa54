package storage

import (
	"testing"
	"time"

	"github.com/rewired-gh/venueoracle/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(100, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testRecords() []models.BenchmarkRecord {
	return []models.BenchmarkRecord{
		{Timestamp: base, Benchmark: models.SomePrice(2000.5), TotalLiquidity: 1.8e6},
		{Timestamp: base.Add(10 * time.Second), Benchmark: models.NoPrice, TotalLiquidity: 0},
		{Timestamp: base.Add(20 * time.Second), Benchmark: models.SomePrice(2240), TotalLiquidity: 1.6e6,
			ThinLiquidity: true, FlashLoan: true},
	}
}

func TestStorage_RoundTripRecords(t *testing.T) {
	s := newTestStorage(t)
	run, err := s.CreateRun("synthetic", base)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run ID")
	}

	want := testRecords()
	if err := s.AddRecords(run.ID, want); err != nil {
		t.Fatalf("AddRecords: %v", err)
	}

	got, err := s.GetRecords(run.ID)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if !g.Timestamp.Equal(w.Timestamp) || g.Benchmark != w.Benchmark || g.TotalLiquidity != w.TotalLiquidity ||
			g.Stale != w.Stale || g.ThinLiquidity != w.ThinLiquidity || g.FlashLoan != w.FlashLoan {
			t.Errorf("record %d: got %+v, want %+v", i, g, w)
		}
	}
	if got[1].Benchmark.Valid {
		t.Error("absent benchmark must round-trip as absent")
	}
}

func TestStorage_AddRecordsAppends(t *testing.T) {
	s := newTestStorage(t)
	run, _ := s.CreateRun("synthetic", base)
	recs := testRecords()

	if err := s.AddRecords(run.ID, recs[:1]); err != nil {
		t.Fatalf("AddRecords: %v", err)
	}
	if err := s.AddRecords(run.ID, recs[1:]); err != nil {
		t.Fatalf("AddRecords: %v", err)
	}

	got, _ := s.GetRecords(run.ID)
	if len(got) != 3 || !got[2].FlashLoan {
		t.Errorf("appended records out of order: %+v", got)
	}

	r, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r.Records != 3 || r.Flagged != 1 {
		t.Errorf("run tallies = %d/%d, want 3/1", r.Records, r.Flagged)
	}
}

func TestStorage_GetFlaggedRecords(t *testing.T) {
	s := newTestStorage(t)
	run, _ := s.CreateRun("synthetic", base)
	if err := s.AddRecords(run.ID, testRecords()); err != nil {
		t.Fatalf("AddRecords: %v", err)
	}
	flagged, err := s.GetFlaggedRecords(run.ID)
	if err != nil {
		t.Fatalf("GetFlaggedRecords: %v", err)
	}
	if len(flagged) != 1 || !flagged[0].ThinLiquidity {
		t.Errorf("unexpected flagged records: %+v", flagged)
	}
}

func TestStorage_AddRecordsUnknownRun(t *testing.T) {
	s := newTestStorage(t)
	if err := s.AddRecords("missing", testRecords()); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestStorage_GetRun_NotFound(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.GetRun("nonexistent"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestStorage_RotateRuns(t *testing.T) {
	s, err := New(2, ":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	var oldest string
	for i := 0; i < 4; i++ {
		run, err := s.CreateRun("synthetic", base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
		if i == 0 {
			oldest = run.ID
		}
		if err := s.AddRecords(run.ID, testRecords()); err != nil {
			t.Fatalf("AddRecords: %v", err)
		}
	}

	if err := s.RotateRuns(); err != nil {
		t.Fatalf("RotateRuns: %v", err)
	}
	runs, err := s.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs after rotation, want 2", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Error("runs should be newest first")
	}
	recs, err := s.GetRecords(oldest)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("records of rotated run should cascade, got %d", len(recs))
	}
}

func TestNew_FailsOnUnusablePath(t *testing.T) {
	s, err := New(10, t.TempDir())
	if err == nil {
		_ = s.Close()
		t.Fatal("expected an error opening a directory as a database")
	}
	if s != nil {
		t.Errorf("expected nil storage on error, got %v", s)
	}
}
