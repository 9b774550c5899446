package journal

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"patchbay/events"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func openTestJournal(t *testing.T, batch int) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_events.db")
	j, err := Open(path, batch)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if j.db != nil {
			j.Close()
		}
	})
	return j
}

func xrun(frame uint64) events.Event {
	return events.Event{Kind: events.XRun, Frame: frame, Value: frame * 10}
}

// ============================================================================
// WRITES AND QUERIES
// ============================================================================

func TestRecordAndRecent(t *testing.T) {
	for _, batch := range []int{0, 1, 4, 64} {
		t.Run(fmt.Sprintf("batch_%d", batch), func(t *testing.T) {
			j := openTestJournal(t, batch)

			for i := uint64(1); i <= 10; i++ {
				if err := j.Record(xrun(i)); err != nil {
					t.Fatalf("Record(%d): %v", i, err)
				}
			}
			if j.Recorded() != 10 {
				t.Fatalf("Recorded() = %d", j.Recorded())
			}

			got, err := j.Recent(3)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("Recent(3) returned %d events", len(got))
			}
			for i, ev := range got {
				if want := xrun(uint64(10 - i)); ev != want {
					t.Errorf("Recent[%d] = %+v, want %+v", i, ev, want)
				}
			}
		})
	}
}

func TestRecentPreservesNames(t *testing.T) {
	j := openTestJournal(t, 8)
	want := events.Event{
		Kind:  events.PortsConnected,
		Frame: 4096,
		Name:  "system:capture_1",
		Peer:  "ardour:Audio 1/audio_in 1",
	}
	if err := j.Record(want); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := j.Recent(10)
	if err != nil || len(got) != 1 || got[0] != want {
		t.Fatalf("Recent = %+v, %v", got, err)
	}
}

func TestCountByKind(t *testing.T) {
	j := openTestJournal(t, 16)

	record := []events.Event{
		xrun(1), xrun(2), xrun(3),
		{Kind: events.PortRegistered, Value: 1, Name: "a:out"},
		{Kind: events.PortRegistered, Value: 2, Name: "b:in"},
		{Kind: events.PortsConnected, Name: "a:out", Peer: "b:in"},
	}
	for _, ev := range record {
		if err := j.Record(ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	cases := map[events.Kind]int{
		events.XRun:           3,
		events.PortRegistered: 2,
		events.PortsConnected: 1,
		events.Shutdown:       0,
	}
	for k, want := range cases {
		got, err := j.CountByKind(k)
		if err != nil {
			t.Fatalf("CountByKind(%v): %v", k, err)
		}
		if got != want {
			t.Errorf("CountByKind(%v) = %d, want %d", k, got, want)
		}
	}
}

func TestRecordRejectsInvalidKind(t *testing.T) {
	j := openTestJournal(t, 1)
	if err := j.Record(events.Event{}); !errors.Is(err, events.ErrUnknownKind) {
		t.Fatalf("Record(invalid) = %v, want ErrUnknownKind", err)
	}
	if j.Recorded() != 0 {
		t.Fatal("invalid event counted")
	}
}

// ============================================================================
// LIFECYCLE
// ============================================================================

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	j, err := Open(path, 100)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := uint64(1); i <= 5; i++ {
		if err := j.Record(xrun(i)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	// Close must commit the partial batch.
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	j, err = Open(path, 100)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()

	n, err := j.CountByKind(events.XRun)
	if err != nil || n != 5 {
		t.Fatalf("CountByKind after reopen = %d, %v; want 5", n, err)
	}
}

func TestFailedInsertDiscardsBatch(t *testing.T) {
	j := openTestJournal(t, 4)

	for i := uint64(1); i <= 6; i++ {
		if err := j.Record(xrun(i)); err != nil {
			t.Fatalf("Record(%d): %v", i, err)
		}
	}
	if j.Recorded() != 6 || j.inBatch != 2 {
		t.Fatalf("Recorded=%d inBatch=%d, want 6 with 2 pending", j.Recorded(), j.inBatch)
	}

	// Rejects every further insert; created inside the open batch, so the
	// rollback removes it too.
	if _, err := j.tx.Exec(`
		CREATE TEMP TRIGGER reject_inserts BEFORE INSERT ON graph_events
		BEGIN SELECT RAISE(ABORT, 'rejected'); END
	`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	if err := j.Record(xrun(7)); err == nil {
		t.Fatal("Record succeeded despite the rejecting trigger")
	}

	if j.Recorded() != 4 {
		t.Fatalf("Recorded() = %d after rollback, want the 4 committed rows", j.Recorded())
	}
	got, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 4 || got[0].Frame != 4 {
		t.Fatalf("Recent returned %d events (newest %+v), want frames 4..1", len(got), got)
	}

	if err := j.Record(xrun(8)); err != nil {
		t.Fatalf("Record after rollback: %v", err)
	}
	if j.Recorded() != 5 {
		t.Fatalf("Recorded() = %d, want 5", j.Recorded())
	}
}

func TestClosedJournal(t *testing.T) {
	j := openTestJournal(t, 1)
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := j.Record(xrun(1)); !errors.Is(err, ErrClosed) {
		t.Errorf("Record after Close = %v", err)
	}
	if _, err := j.Recent(1); !errors.Is(err, ErrClosed) {
		t.Errorf("Recent after Close = %v", err)
	}
	if _, err := j.CountByKind(events.XRun); !errors.Is(err, ErrClosed) {
		t.Errorf("CountByKind after Close = %v", err)
	}
	if err := j.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close = %v", err)
	}
}

// ============================================================================
// BENCHMARKS
// ============================================================================

func BenchmarkJournal_Record(b *testing.B) {
	j, err := Open(filepath.Join(b.TempDir(), "bench.db"), 64)
	if err != nil {
		b.Fatal(err)
	}
	defer j.Close()

	ev := events.Event{Kind: events.PortsConnected, Name: "system:capture_1", Peer: "ardour:in_1"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ev.Frame = uint64(i)
		if err := j.Record(ev); err != nil {
			b.Fatal(err)
		}
	}
}
