// Package raster renders PDF pages to PNG images for OCR.
package raster

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Renderer rasterizes PDFs with pdftoppm (poppler-utils), using pdfcpu
// to validate the file and count pages first.
type Renderer struct {
	dpi    int
	logger *slog.Logger
}

// NewRenderer creates a renderer. dpi defaults to 300.
func NewRenderer(dpi int, logger *slog.Logger) *Renderer {
	if dpi <= 0 {
		dpi = 300
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{dpi: dpi, logger: logger.With("component", "raster")}
}

// PageImages renders every page of the PDF at pdfPath into outDir and
// returns the image paths in page order. A PDF that cannot be opened or
// counted is reported as corrupt.
func (r *Renderer) PageImages(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	pageCount, err := api.PageCount(f, nil)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("corrupt or unreadable PDF: %w", err)
	}
	if pageCount == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create page directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	r.logger.Debug("rendering PDF pages", "file", filepath.Base(pdfPath), "pages", pageCount)

	paths := make([]string, 0, pageCount)
	for page := 1; page <= pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dst := filepath.Join(outDir, fmt.Sprintf("%s_page_%04d.png", base, page))
		if err := r.renderPage(ctx, pdfPath, dst, page); err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", page, err)
		}
		paths = append(paths, dst)
	}

	return paths, nil
}

// renderPage renders a single page using pdftoppm.
func (r *Renderer) renderPage(ctx context.Context, pdfPath, dstPath string, page int) error {
	tmpDir, err := os.MkdirTemp("", "passtract-page-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")
	pageStr := fmt.Sprintf("%d", page)

	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", r.dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	srcPath := outputPrefix + ".png"
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}

	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write page image: %w", err)
	}
	return nil
}
