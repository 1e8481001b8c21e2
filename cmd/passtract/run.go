package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"passtract/internal/batch"
	"passtract/internal/config"
	"passtract/internal/display"
	"passtract/internal/drive"
	"passtract/internal/providers"
	"passtract/internal/raster"
	"passtract/internal/results"
)

var (
	flagOutput      string
	flagConcurrency int
	flagQuiet       bool
)

var runCmd = &cobra.Command{
	Use:   "run <folder-id>",
	Short: "Download a Drive folder and run passport OCR on its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("output") {
			cfg.OutputFile = flagOutput
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.MaxConcurrentFiles = flagConcurrency
		}
		if cmd.Flags().Changed("quiet") {
			cfg.Quiet = flagQuiet
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runBatch(cmd, args[0], cfg)
	},
}

func init() {
	runCmd.Flags().StringVarP(&flagOutput, "output", "o", "ocr_results.json", "result file path")
	runCmd.Flags().IntVarP(&flagConcurrency, "concurrency", "c", 3, "max files processed concurrently")
	runCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress per-file output and live progress")
}

func runBatch(cmd *cobra.Command, folderID string, cfg *config.Config) error {
	ctx := cmd.Context()
	runID := uuid.New().String()[:8]
	logger := slog.Default().With("run_id", runID)

	logger.Info("starting batch run", "folder_id", folderID)

	// Download phase. Any failure here is fatal to the whole run.
	dl, err := drive.NewClient(ctx, drive.Config{
		CredentialsFile: cfg.CredentialsFile,
		DownloadDir:     cfg.DownloadDir,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	files, err := dl.ListAndDownload(ctx, folderID)
	if err != nil {
		return err
	}
	logger.Info("download complete", "files", len(files))

	extractor, err := providers.NewGeminiClient(providers.GeminiConfig{
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		BaseURL:      cfg.BaseURL,
		RateLimitRPM: cfg.RateLimitRPM,
	})
	if err != nil {
		return err
	}

	policy := batch.Policy{
		MaxRetries:     cfg.MaxRetries,
		BaseDelay:      cfg.RetryBaseDelayDuration(),
		BackoffFactor:  cfg.RetryBackoffFactor,
		MaxDelay:       cfg.MaxRetryDelayDuration(),
		JitterFraction: cfg.JitterFraction,
	}

	tracker := batch.NewTracker()
	pageDir := filepath.Join(cfg.DownloadDir, "pages")
	scheduler := batch.NewScheduler(batch.SchedulerConfig{
		Expander:      batch.NewExpander(raster.NewRenderer(0, logger), pageDir, logger),
		Processor:     batch.NewProcessor(extractor, policy, tracker, logger),
		Tracker:       tracker,
		MaxConcurrent: cfg.MaxConcurrentFiles,
		Logger:        logger,
	})

	live := display.NewLive(tracker, !cfg.Quiet)
	live.Start()
	fileResults := scheduler.Run(ctx, files)
	live.Stop()

	if !cfg.Quiet {
		for _, r := range fileResults {
			if r.OCRData != nil {
				display.FileFields(os.Stdout, r.Filename, r.OCRData)
			}
		}
	}

	if err := results.Write(cfg.OutputFile, fileResults); err != nil {
		return err
	}

	requests, throttled := extractor.RateLimiterStatus()
	logger.Info("ocr request rate",
		"requests", requests, "throttled", throttled.Round(time.Millisecond))

	display.Summary(os.Stdout, fileResults, tracker.Snapshot(), cfg.OutputFile)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return nil
}
