// Package batch implements the orchestration core: expanding downloaded
// files into OCR work units, dispatching them under a concurrency cap
// with per-unit retry, and folding outcomes back into per-file results
// in input order.
package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"passtract/internal/providers"
)

// MediaType categorizes a downloaded file by what processing it needs.
type MediaType string

const (
	MediaImage       MediaType = "image"
	MediaPDF         MediaType = "pdf"
	MediaUnsupported MediaType = "unsupported"
)

// DetectMediaType categorizes a file by extension.
func DetectMediaType(filename string) MediaType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		return MediaImage
	case ".pdf":
		return MediaPDF
	}
	return MediaUnsupported
}

// DownloadedFile is one item produced by the download capability.
type DownloadedFile struct {
	Filename  string
	Path      string
	MediaType MediaType
}

// Unit is one OCR-dispatchable item: a whole image file or one page
// rendered from a PDF.
type Unit struct {
	File      DownloadedFile
	FileIndex int
	// PageIndex is the zero-based page within the parent PDF, or -1 for
	// a whole-image unit.
	PageIndex int
	ImagePath string
}

// Label returns the unit's display name for progress and logs.
func (u Unit) Label() string {
	if u.PageIndex >= 0 {
		return fmt.Sprintf("%s (page %d)", u.File.Filename, u.PageIndex+1)
	}
	return u.File.Filename
}

// UnitOutcome is the final result of processing one unit. Exactly one of
// Fields/Err is set.
type UnitOutcome struct {
	Unit     Unit
	Fields   *providers.PassportFields
	Err      string
	Attempts int
}

// Success reports whether the unit produced structured fields.
func (o UnitOutcome) Success() bool {
	return o.Err == ""
}

// PageResult is one page's outcome inside a PDF's FileResult.
type PageResult struct {
	Filename string                    `json:"filename"`
	OCRData  *providers.PassportFields `json:"ocr_data,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

// FileResult is the persisted per-input-file record. Optional fields are
// omitted from JSON when absent, never emitted as null.
type FileResult struct {
	Filename       string                    `json:"filename"`
	FilePath       string                    `json:"file_path"`
	SourceType     string                    `json:"source_type,omitempty"`
	TotalPages     int                       `json:"total_pages,omitempty"`
	PagesProcessed int                       `json:"pages_processed,omitempty"`
	OCRData        *providers.PassportFields `json:"ocr_data,omitempty"`
	PageResults    []PageResult              `json:"page_results,omitempty"`
	Error          string                    `json:"error,omitempty"`
}
