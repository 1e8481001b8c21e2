package batch

import (
	"context"
	"fmt"
	"log/slog"
)

// Rasterizer renders the pages of a PDF to image files, returning their
// paths in page order.
type Rasterizer interface {
	PageImages(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// Expander decomposes a downloaded file into OCR units.
type Expander struct {
	raster  Rasterizer
	pageDir string
	logger  *slog.Logger
}

// NewExpander creates an expander. pageDir receives rendered PDF pages.
func NewExpander(raster Rasterizer, pageDir string, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{
		raster:  raster,
		pageDir: pageDir,
		logger:  logger.With("component", "expander"),
	}
}

// Expand returns the units for one file. When the file cannot produce
// units (unsupported format, corrupt PDF) it returns zero units and a
// ready FileResult carrying the terminal error; OCR and retry machinery
// are bypassed entirely.
func (e *Expander) Expand(ctx context.Context, fileIndex int, f DownloadedFile) ([]Unit, *FileResult) {
	switch f.MediaType {
	case MediaImage:
		return []Unit{{
			File:      f,
			FileIndex: fileIndex,
			PageIndex: -1,
			ImagePath: f.Path,
		}}, nil

	case MediaPDF:
		pages, err := e.raster.PageImages(ctx, f.Path, e.pageDir)
		if err != nil {
			e.logger.Warn("PDF rasterization failed", "file", f.Filename, "error", err)
			return nil, &FileResult{
				Filename:   f.Filename,
				FilePath:   f.Path,
				SourceType: string(MediaPDF),
				Error:      fmt.Sprintf("failed to render PDF pages: %v", err),
			}
		}
		if len(pages) == 0 {
			return nil, &FileResult{
				Filename:   f.Filename,
				FilePath:   f.Path,
				SourceType: string(MediaPDF),
				Error:      "PDF contains no pages",
			}
		}
		units := make([]Unit, len(pages))
		for i, p := range pages {
			units[i] = Unit{
				File:      f,
				FileIndex: fileIndex,
				PageIndex: i,
				ImagePath: p,
			}
		}
		e.logger.Debug("expanded PDF", "file", f.Filename, "pages", len(units))
		return units, nil

	default:
		e.logger.Info("skipping unsupported file", "file", f.Filename)
		return nil, &FileResult{
			Filename: f.Filename,
			FilePath: f.Path,
			Error:    "unsupported format",
		}
	}
}
