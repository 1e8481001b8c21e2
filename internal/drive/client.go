// Package drive implements the download capability against the Google
// Drive API: listing a folder and downloading its files to local disk.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"passtract/internal/batch"
)

const listPageSize = 100

// ErrAuth marks authentication/access failures. These abort the whole
// run before any OCR work starts.
var ErrAuth = errors.New("drive authentication failed")

// ErrNoFiles is returned when the folder holds nothing to download.
var ErrNoFiles = errors.New("no files found in folder")

// Config holds configuration for the Drive client.
type Config struct {
	// CredentialsFile is a service-account or authorized-user JSON file.
	// When empty, application default credentials are used.
	CredentialsFile string
	// DownloadDir receives downloaded files (default "downloads").
	DownloadDir string
	Logger      *slog.Logger
}

// Client lists and downloads the contents of a Drive folder.
type Client struct {
	svc         *drive.Service
	downloadDir string
	logger      *slog.Logger
}

// NewClient creates a Drive client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "downloads"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(drive.DriveReadonlyScope))

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	return &Client{
		svc:         svc,
		downloadDir: cfg.DownloadDir,
		logger:      logger.With("component", "drive"),
	}, nil
}

// ListAndDownload fetches every file in the folder, skipping files that
// already exist locally, and returns them in listing order. Any failure
// here is fatal to the run; there are no partial download results.
func (c *Client) ListAndDownload(ctx context.Context, folderID string) ([]batch.DownloadedFile, error) {
	files, err := c.listFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, folderID)
	}

	if err := os.MkdirAll(c.downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	c.logger.Info("downloading folder", "folder_id", folderID, "files", len(files))

	downloaded := make([]batch.DownloadedFile, 0, len(files))
	for _, f := range files {
		path := filepath.Join(c.downloadDir, f.Name)

		if _, err := os.Stat(path); err == nil {
			c.logger.Debug("skipping existing file", "file", f.Name)
		} else if err := c.downloadFile(ctx, f.Id, path); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}

		downloaded = append(downloaded, batch.DownloadedFile{
			Filename:  f.Name,
			Path:      path,
			MediaType: batch.DetectMediaType(f.Name),
		})
	}

	return downloaded, nil
}

// listFolder pages through the folder's file listing.
func (c *Client) listFolder(ctx context.Context, folderID string) ([]*drive.File, error) {
	var files []*drive.File
	pageToken := ""

	for {
		call := c.svc.Files.List().
			Q(fmt.Sprintf("'%s' in parents and trashed = false", folderID)).
			Fields("nextPageToken, files(id, name)").
			OrderBy("name").
			PageSize(listPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, classifyDriveError("failed to list folder", err)
		}

		files = append(files, r.Files...)
		pageToken = r.NextPageToken
		if pageToken == "" {
			return files, nil
		}
	}
}

// downloadFile streams one file's content to disk.
func (c *Client) downloadFile(ctx context.Context, fileID, path string) error {
	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return classifyDriveError("download request failed", err)
	}
	defer resp.Body.Close()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	c.logger.Debug("downloaded file", "path", path)
	return out.Close()
}

// classifyDriveError surfaces authorization failures as ErrAuth so the
// caller can distinguish them from plain network errors.
func classifyDriveError(msg string, err error) error {
	var apierr *googleapi.Error
	if errors.As(err, &apierr) {
		if apierr.Code == http.StatusUnauthorized || apierr.Code == http.StatusForbidden {
			return fmt.Errorf("%w: %s: %v", ErrAuth, msg, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
