package batch

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of batch progress.
type Snapshot struct {
	TotalUnits   int
	Completed    int
	Succeeded    int
	Failed       int
	Retried      int
	Percent      float64
	Elapsed      time.Duration
	ETA          time.Duration
	HasETA       bool
	CurrentLabel string
}

// Tracker accumulates per-unit outcomes across concurrent workers.
// All mutation goes through its methods; it is the only state shared
// between in-flight units.
type Tracker struct {
	mu sync.Mutex

	total     int
	completed int
	succeeded int
	failed    int
	retried   int
	current   string
	start     time.Time

	// now is replaceable in tests.
	now func() time.Time
}

// NewTracker creates an empty tracker. Begin sizes it for a run.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Begin resets all counters for a new batch run of totalUnits units.
func (t *Tracker) Begin(totalUnits int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = totalUnits
	t.completed = 0
	t.succeeded = 0
	t.failed = 0
	t.retried = 0
	t.current = ""
	t.start = t.now()
}

// RecordStart notes that a unit began processing. The label is purely
// informational; concurrent starts race last-writer-wins.
func (t *Tracker) RecordStart(u Unit) {
	t.mu.Lock()
	t.current = u.Label()
	t.mu.Unlock()
}

// RecordRetry counts one retry event.
func (t *Tracker) RecordRetry(u Unit) {
	t.mu.Lock()
	t.retried++
	t.mu.Unlock()
}

// RecordOutcome counts one completed unit.
func (t *Tracker) RecordOutcome(o UnitOutcome) {
	t.mu.Lock()
	t.completed++
	if o.Success() {
		t.succeeded++
	} else {
		t.failed++
	}
	t.mu.Unlock()
}

// Snapshot returns the current progress. ETA is unavailable before the
// first completion.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		TotalUnits:   t.total,
		Completed:    t.completed,
		Succeeded:    t.succeeded,
		Failed:       t.failed,
		Retried:      t.retried,
		CurrentLabel: t.current,
	}
	if !t.start.IsZero() {
		s.Elapsed = t.now().Sub(t.start)
	}
	if t.total > 0 {
		s.Percent = float64(t.completed) / float64(t.total) * 100
	}
	if t.completed > 0 {
		perUnit := s.Elapsed / time.Duration(t.completed)
		s.ETA = time.Duration(t.total-t.completed) * perUnit
		s.HasETA = true
	}
	return s
}
