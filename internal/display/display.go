// Package display renders live progress and final output to the console.
package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"passtract/internal/batch"
	"passtract/internal/providers"
)

// Live periodically redraws a single progress line from tracker
// snapshots.
type Live struct {
	tracker  *batch.Tracker
	enabled  bool
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewLive creates a live progress renderer.
func NewLive(tracker *batch.Tracker, enabled bool) *Live {
	return &Live{
		tracker:  tracker,
		enabled:  enabled,
		interval: 700 * time.Millisecond,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins redrawing in a background goroutine.
func (l *Live) Start() {
	if !l.enabled {
		close(l.done)
		return
	}
	go func() {
		defer close(l.done)
		t := time.NewTicker(l.interval)
		defer t.Stop()
		for {
			select {
			case <-l.stop:
				return
			case <-t.C:
				fmt.Printf("\r\033[2K%s", renderLine(l.tracker.Snapshot()))
			}
		}
	}()
}

// Stop halts redrawing and clears the progress line.
func (l *Live) Stop() {
	if !l.enabled {
		return
	}
	close(l.stop)
	<-l.done
	fmt.Printf("\r\033[2K")
}

// renderLine formats one progress line from a snapshot.
func renderLine(s batch.Snapshot) string {
	parts := []string{
		fmt.Sprintf("Progress: %d/%d (%.1f%%)", s.Completed, s.TotalUnits, s.Percent),
		fmt.Sprintf("Success: %d", s.Succeeded),
		fmt.Sprintf("Failed: %d", s.Failed),
		fmt.Sprintf("Retried: %d", s.Retried),
	}
	if s.HasETA {
		parts = append(parts, fmt.Sprintf("ETA: %s", s.ETA.Round(time.Second)))
	}
	if s.CurrentLabel != "" {
		parts = append(parts, fmt.Sprintf("Current: %s", s.CurrentLabel))
	}
	return strings.Join(parts, "  ")
}

// FileFields prints one file's extracted fields as a formatted block.
func FileFields(w io.Writer, filename string, f *providers.PassportFields) {
	line := strings.Repeat("=", 50)
	fmt.Fprintf(w, "\n%s\n", line)
	fmt.Fprintf(w, "FILE: %s\n", filename)
	fmt.Fprintf(w, "%s\n", line)
	fmt.Fprintf(w, "OCR RESULT:\n")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 20))
	fmt.Fprintf(w, "Last Name: %s\n", f.LastName)
	fmt.Fprintf(w, "First Name: %s\n", f.FirstName)
	fmt.Fprintf(w, "Passport Number: %s\n", f.PassportNumber)
	fmt.Fprintf(w, "Nationality: %s\n", f.Nationality)
	fmt.Fprintf(w, "%s\n\n", line)
}

// Summary prints the final processing summary. File totals come from
// the results; retry count and timing come from the unit tracker.
func Summary(w io.Writer, results []batch.FileResult, s batch.Snapshot, outputFile string) {
	succeeded := 0
	for _, r := range results {
		if r.OCRData != nil {
			succeeded++
		}
	}

	line := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n", line)
	fmt.Fprintf(w, "PROCESSING COMPLETE\n")
	fmt.Fprintf(w, "Total files: %d\n", len(results))
	fmt.Fprintf(w, "Successful: %d\n", succeeded)
	fmt.Fprintf(w, "Failed: %d\n", len(results)-succeeded)
	fmt.Fprintf(w, "Retried: %d\n", s.Retried)
	fmt.Fprintf(w, "Total time: %s\n", s.Elapsed.Round(time.Millisecond))
	if len(results) > 0 {
		avg := s.Elapsed / time.Duration(len(results))
		fmt.Fprintf(w, "Average time per file: %s\n", avg.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "ALL OCR RESULTS SAVED TO: %s\n", outputFile)
	fmt.Fprintf(w, "%s\n", line)
}
