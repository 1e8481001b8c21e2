package batch

import (
	"sync"
	"testing"
	"time"
)

func testUnit(name string) Unit {
	return Unit{
		File:      DownloadedFile{Filename: name, Path: name, MediaType: MediaImage},
		PageIndex: -1,
		ImagePath: name,
	}
}

func successOutcome(u Unit) UnitOutcome {
	return UnitOutcome{Unit: u, Fields: nil, Attempts: 1, Err: ""}
}

func TestTracker_Counts(t *testing.T) {
	tr := NewTracker()
	tr.Begin(5)

	u := testUnit("a.jpg")
	tr.RecordOutcome(UnitOutcome{Unit: u, Attempts: 1})
	tr.RecordOutcome(UnitOutcome{Unit: u, Attempts: 2, Err: "boom"})
	tr.RecordRetry(u)

	s := tr.Snapshot()
	if s.TotalUnits != 5 {
		t.Errorf("TotalUnits = %d, want 5", s.TotalUnits)
	}
	if s.Completed != 2 {
		t.Errorf("Completed = %d, want 2", s.Completed)
	}
	if s.Succeeded != 1 || s.Failed != 1 {
		t.Errorf("Succeeded/Failed = %d/%d, want 1/1", s.Succeeded, s.Failed)
	}
	if s.Retried != 1 {
		t.Errorf("Retried = %d, want 1", s.Retried)
	}
	if s.Percent != 40.0 {
		t.Errorf("Percent = %v, want 40.0", s.Percent)
	}
}

func TestTracker_CompletedInvariant(t *testing.T) {
	tr := NewTracker()
	tr.Begin(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := testUnit("f.jpg")
			tr.RecordStart(u)
			out := UnitOutcome{Unit: u, Attempts: 1}
			if i%3 == 0 {
				out.Err = "fail"
			}
			tr.RecordOutcome(out)
		}(i)
	}
	wg.Wait()

	s := tr.Snapshot()
	if s.Completed != s.Succeeded+s.Failed {
		t.Errorf("Completed = %d, Succeeded+Failed = %d", s.Completed, s.Succeeded+s.Failed)
	}
	if s.Completed != 100 {
		t.Errorf("Completed = %d, want 100", s.Completed)
	}
	if s.Completed > s.TotalUnits {
		t.Errorf("Completed %d exceeds TotalUnits %d", s.Completed, s.TotalUnits)
	}
}

func TestTracker_ETAUnavailableBeforeFirstCompletion(t *testing.T) {
	tr := NewTracker()
	tr.Begin(10)

	if s := tr.Snapshot(); s.HasETA {
		t.Error("HasETA = true before first completion, want false")
	}

	tr.RecordOutcome(successOutcome(testUnit("a.jpg")))
	if s := tr.Snapshot(); !s.HasETA {
		t.Error("HasETA = false after first completion, want true")
	}
}

func TestTracker_ETACalculation(t *testing.T) {
	tr := NewTracker()
	now := time.Unix(1000, 0)
	tr.now = func() time.Time { return now }
	tr.Begin(10)

	// One unit completed after 2 seconds: 9 remaining at 2s each.
	now = now.Add(2 * time.Second)
	tr.RecordOutcome(successOutcome(testUnit("a.jpg")))

	s := tr.Snapshot()
	if s.ETA != 18*time.Second {
		t.Errorf("ETA = %v, want 18s", s.ETA)
	}
}

func TestTracker_CurrentLabel(t *testing.T) {
	tr := NewTracker()
	tr.Begin(2)

	tr.RecordStart(testUnit("first.jpg"))
	tr.RecordStart(Unit{
		File:      DownloadedFile{Filename: "doc.pdf", MediaType: MediaPDF},
		PageIndex: 2,
	})

	if s := tr.Snapshot(); s.CurrentLabel != "doc.pdf (page 3)" {
		t.Errorf("CurrentLabel = %q, want %q", s.CurrentLabel, "doc.pdf (page 3)")
	}
}

func TestTracker_BeginResets(t *testing.T) {
	tr := NewTracker()
	tr.Begin(3)
	tr.RecordOutcome(successOutcome(testUnit("a.jpg")))
	tr.RecordRetry(testUnit("a.jpg"))

	tr.Begin(7)
	s := tr.Snapshot()
	if s.Completed != 0 || s.Retried != 0 || s.TotalUnits != 7 {
		t.Errorf("after Begin: Completed=%d Retried=%d Total=%d, want 0/0/7",
			s.Completed, s.Retried, s.TotalUnits)
	}
}
