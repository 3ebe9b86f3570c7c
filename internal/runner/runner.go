// Package runner repeats upload and download calls against a transfer client
// and aggregates their timings.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"filebench/internal/digest"
	"filebench/internal/models"
	"filebench/internal/transfer"
	"filebench/pkg/utils"
)

type Config struct {
	// Target is the server URL (or bucket) the client talks to. It must be set
	// whenever an upload or download is requested.
	Target       string
	UploadPath   string
	DownloadName string
	Chunked      bool
	Timeout      time.Duration
	Iterations   int
	// ExpectedSHA256, when set, is compared against every downloaded digest.
	ExpectedSHA256 string
}

func (c Config) Validate() error {
	if c.UploadPath != "" && c.Target == "" {
		return transfer.ConfigError("server URL is required for uploading files")
	}
	if c.DownloadName != "" && c.Target == "" {
		return transfer.ConfigError("server URL is required for downloading files")
	}
	if c.Iterations < 0 {
		return transfer.ConfigError("iterations must not be negative, got %d", c.Iterations)
	}
	return nil
}

// Result holds the stats of one run.
type Result struct {
	Target     string
	Iterations int
	StartTime  time.Time
	Elapsed    time.Duration
	Upload     *Stats
	Download   *Stats
}

func (r *Result) Report() *models.Report {
	report := &models.Report{
		Target:     r.Target,
		Iterations: r.Iterations,
		StartTime:  utils.FormatTime(r.StartTime),
		Duration:   utils.FormatDuration(r.Elapsed),
	}
	if r.Upload.Attempts > 0 {
		report.Upload = r.Upload.Summary()
	}
	if r.Download.Attempts > 0 {
		report.Download = r.Download.Summary()
	}
	return report
}

type Options struct {
	// Stdout receives start, success and average lines; Stderr receives
	// per-call failures. Both default to io.Discard.
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

type Runner struct {
	client transfer.Client
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func New(client transfer.Client, opts Options) *Runner {
	r := &Runner{
		client: client,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		logger: opts.Logger,
	}
	if r.stdout == nil {
		r.stdout = io.Discard
	}
	if r.stderr == nil {
		r.stderr = io.Discard
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run validates cfg and then performs cfg.Iterations passes of
// delete-then-upload and/or download. A failing call is reported and skipped;
// it never stops the remaining iterations.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Target:     cfg.Target,
		Iterations: cfg.Iterations,
		StartTime:  time.Now(),
		Upload:     &Stats{Operation: transfer.OpUpload},
		Download:   &Stats{Operation: transfer.OpDownload},
	}

	for i := 0; i < cfg.Iterations; i++ {
		r.logger.Debug("starting iteration", "iteration", i+1, "of", cfg.Iterations)

		if cfg.UploadPath != "" {
			r.upload(ctx, cfg, result.Upload)
		}
		if cfg.DownloadName != "" {
			r.download(ctx, cfg, result.Download)
		}
	}

	result.Elapsed = time.Since(result.StartTime)
	r.printAverages(result)

	return result, nil
}

func (r *Runner) upload(ctx context.Context, cfg Config, stats *Stats) {
	name := filepath.Base(cfg.UploadPath)

	// Pre-upload cleanup: the outcome is discarded whatever it is.
	if res, err := r.client.Delete(ctx, name); err != nil {
		r.logger.Debug("pre-upload delete failed", "name", name, "error", err)
	} else {
		r.logger.Debug("pre-upload delete", "name", name, "status", res.StatusCode)
	}

	utils.Event(r.stdout, "Start uploading file: %s", cfg.UploadPath)
	start := time.Now()

	res, err := r.client.Upload(ctx, cfg.UploadPath, cfg.Timeout)
	if err != nil {
		stats.Fail()
		utils.Event(r.stderr, "Error uploading file %s: %v", cfg.UploadPath, err)
		return
	}

	elapsed := time.Since(start)
	stats.Record(elapsed)
	utils.Event(r.stdout, "%s: Uploaded. Status: %d. Time taken: %s",
		cfg.UploadPath, res.StatusCode, utils.FormatDuration(elapsed))
}

func (r *Runner) download(ctx context.Context, cfg Config, stats *Stats) {
	utils.Event(r.stdout, "Start downloading file: %s", cfg.DownloadName)
	start := time.Now()

	res, err := r.client.Download(ctx, cfg.DownloadName, cfg.Chunked)
	elapsed := time.Since(start)
	if err == nil && cfg.ExpectedSHA256 != "" && !digest.Match(res.SHA256, cfg.ExpectedSHA256) {
		err = transfer.NewIOError(transfer.OpDownload, cfg.DownloadName,
			fmt.Errorf("digest mismatch: got %s, want %s", res.SHA256, cfg.ExpectedSHA256))
	}
	if err != nil {
		stats.Fail()
		utils.Event(r.stderr, "Error downloading file %s: %v", cfg.DownloadName, err)
		return
	}

	stats.Record(elapsed)
	utils.Event(r.stdout, "%s: Downloaded chunked = %t Size = %d bytes SHA256: %s. Time taken: %s",
		cfg.DownloadName, res.Chunked, res.SizeBytes, res.SHA256, utils.FormatDuration(elapsed))
}

func (r *Runner) printAverages(result *Result) {
	if avg, ok := result.Upload.Average(); ok {
		utils.Event(r.stdout, "Average upload time: %s", utils.FormatDuration(avg))
	}
	if avg, ok := result.Download.Average(); ok {
		utils.Event(r.stdout, "Average download time: %s", utils.FormatDuration(avg))
	}
}
