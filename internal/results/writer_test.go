package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"passtract/internal/batch"
	"passtract/internal/providers"
)

func TestWrite_PreservesOrderAndShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocr_results.json")
	input := []batch.FileResult{
		{
			Filename:   "a.jpg",
			FilePath:   "downloads/a.jpg",
			SourceType: "image",
			OCRData: &providers.PassportFields{
				LastName:       "SMITH",
				FirstName:      "JOHN",
				PassportNumber: "X1234567",
				Nationality:    "GBR",
			},
		},
		{
			Filename: "b.txt",
			FilePath: "downloads/b.txt",
			Error:    "unsupported format",
		},
	}

	if err := Write(path, input); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("artifact should end with a newline")
	}

	var round []batch.FileResult
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if len(round) != 2 {
		t.Fatalf("len = %d, want 2", len(round))
	}
	if round[0].Filename != "a.jpg" || round[1].Filename != "b.txt" {
		t.Errorf("order = %q, %q, want input order", round[0].Filename, round[1].Filename)
	}
	if round[0].OCRData == nil || round[0].OCRData.LastName != "SMITH" {
		t.Errorf("round[0].OCRData = %+v, want SMITH record", round[0].OCRData)
	}
}

func TestWrite_OmitsAbsentOptionalFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocr_results.json")
	input := []batch.FileResult{
		{Filename: "x.png", FilePath: "downloads/x.png", SourceType: "image", Error: "all attempts failed"},
	}

	if err := Write(path, input); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, absent := range []string{"ocr_data", "page_results", "total_pages", "pages_processed", "null"} {
		if strings.Contains(text, absent) {
			t.Errorf("artifact contains %q, want it omitted:\n%s", absent, text)
		}
	}
	if !strings.Contains(text, `"error": "all attempts failed"`) {
		t.Errorf("artifact missing error field:\n%s", text)
	}
}

func TestWrite_EmptyBatchWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocr_results.json")

	if err := Write(path, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "[]" {
		t.Errorf("artifact = %q, want empty array", got)
	}
}
