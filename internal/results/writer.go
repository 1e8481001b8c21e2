// Package results persists batch output as the ocr_results.json artifact.
package results

import (
	"encoding/json"
	"fmt"
	"os"

	"passtract/internal/batch"
)

// Write persists the results as an ordered JSON array mirroring input
// file order. The artifact is always written, even when every unit
// failed, so callers can distinguish "ran with failures" from "did not
// run".
func Write(path string, results []batch.FileResult) error {
	if results == nil {
		results = []batch.FileResult{}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
