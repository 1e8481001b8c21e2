package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"passtract/internal/batch"
	"passtract/internal/providers"
)

func TestRenderLine(t *testing.T) {
	s := batch.Snapshot{
		TotalUnits:   10,
		Completed:    4,
		Succeeded:    3,
		Failed:       1,
		Retried:      2,
		Percent:      40.0,
		ETA:          90 * time.Second,
		HasETA:       true,
		CurrentLabel: "doc.pdf (page 2)",
	}

	line := renderLine(s)

	for _, want := range []string{
		"Progress: 4/10 (40.0%)",
		"Success: 3",
		"Failed: 1",
		"Retried: 2",
		"ETA: 1m30s",
		"Current: doc.pdf (page 2)",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("renderLine() = %q, missing %q", line, want)
		}
	}
}

func TestRenderLine_NoETABeforeFirstCompletion(t *testing.T) {
	line := renderLine(batch.Snapshot{TotalUnits: 5})

	if strings.Contains(line, "ETA") {
		t.Errorf("renderLine() = %q, want no ETA before first completion", line)
	}
}

func TestFileFields(t *testing.T) {
	var buf bytes.Buffer
	FileFields(&buf, "passport.jpg", &providers.PassportFields{
		LastName:       "SMITH",
		FirstName:      "JOHN",
		PassportNumber: "X1234567",
		Nationality:    "GBR",
	})

	out := buf.String()
	for _, want := range []string{
		"FILE: passport.jpg",
		"Last Name: SMITH",
		"First Name: JOHN",
		"Passport Number: X1234567",
		"Nationality: GBR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FileFields output missing %q:\n%s", want, out)
		}
	}
}

func TestSummary(t *testing.T) {
	results := []batch.FileResult{
		{Filename: "a.jpg", OCRData: &providers.PassportFields{LastName: "A"}},
		{Filename: "b.jpg", OCRData: &providers.PassportFields{LastName: "B"}},
		{Filename: "c.txt", Error: "unsupported format"},
	}
	snap := batch.Snapshot{Retried: 4, Elapsed: 3 * time.Second}

	var buf bytes.Buffer
	Summary(&buf, results, snap, "ocr_results.json")

	out := buf.String()
	for _, want := range []string{
		"PROCESSING COMPLETE",
		"Total files: 3",
		"Successful: 2",
		"Failed: 1",
		"Retried: 4",
		"Total time: 3s",
		"Average time per file: 1s",
		"ALL OCR RESULTS SAVED TO: ocr_results.json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary output missing %q:\n%s", want, out)
		}
	}
}
