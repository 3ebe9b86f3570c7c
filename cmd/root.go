package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"filebench/config"
	"filebench/internal/digest"
	"filebench/internal/generator"
	"filebench/internal/runner"
	"filebench/internal/s3client"
	"filebench/internal/transfer"
	"filebench/pkg/utils"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type options struct {
	generate   string
	size       int64
	seed       uint64
	upload     string
	download   string
	chunked    bool
	timeout    int
	iterations int
	verify     bool

	server   string
	backend  string
	bucket   string
	insecure bool
	output   string
	verbose  bool
}

func Execute(cfg *config.Config) error {
	return NewRootCmd(cfg).Execute()
}

func NewRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "filebench",
		Short: "Benchmark file uploads and downloads against a file server",
		Long: `filebench generates test files and measures how long a file server takes to
accept and return them. Every downloaded payload is hashed with SHA-256 so the
content can be checked against what was uploaded.
Configuration is loaded from .env file or environment variables; flags win.`,
		Example: `  # Generate a 10 MiB test file
  filebench -g t.bin --size 10485760

  # Upload it five times, then report the average
  filebench -u t.bin -s https://localhost:8443 -i 5

  # Round trip with chunked download and digest verification
  filebench -u t.bin -d t.bin -c --verify -s https://localhost:8443

  # Same against an S3 bucket
  filebench -u t.bin -d t.bin --backend s3 --bucket bench -o json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, cfg, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.generate, "generate", "g", "", "Generate a test file at this path")
	flags.Int64Var(&opts.size, "size", 1024, "Size in bytes of the generated file")
	flags.Uint64Var(&opts.seed, "seed", 0, "Seed for generated content (0 picks one from the clock)")
	flags.StringVarP(&opts.upload, "upload", "u", "", "File to upload")
	flags.StringVarP(&opts.download, "download", "d", "", "Remote file name to download")
	flags.BoolVarP(&opts.chunked, "chunked", "c", false, "Use the chunked download endpoint")
	flags.IntVarP(&opts.timeout, "timeout", "t", cfg.TimeoutSeconds, "Upload timeout in seconds")
	flags.IntVarP(&opts.iterations, "iterations", "i", cfg.Iterations, "Number of iterations")
	flags.BoolVar(&opts.verify, "verify", false, "Compare downloaded digests with the upload file's digest")

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&opts.server, "server", "s", cfg.ServerURL, "File server base URL")
	persistent.StringVar(&opts.backend, "backend", cfg.Backend, "Transfer backend: http or s3")
	persistent.StringVarP(&opts.bucket, "bucket", "b", cfg.BucketName, "Override bucket name from config (s3 backend)")
	persistent.BoolVar(&opts.insecure, "insecure-skip-verify", cfg.InsecureSkipVerify, "Accept invalid TLS certificates")
	persistent.StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")
	persistent.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(newDeleteCmd(cfg, opts))

	return rootCmd
}

func runRoot(cmd *cobra.Command, cfg *config.Config, opts *options) error {
	if err := opts.validateOutput(); err != nil {
		return reportError(cmd, opts, err, "filebench")
	}

	if opts.generate == "" && opts.upload == "" && opts.download == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No arguments provided. Use --help for usage information.")
		return nil
	}

	if opts.generate != "" {
		return runGenerate(cmd, opts)
	}
	return runTransfer(cmd, cfg, opts)
}

func runGenerate(cmd *cobra.Command, opts *options) error {
	logger := newLogger(cmd, opts)
	logger.Debug("generating file", "path", opts.generate, "size", opts.size, "seed", opts.seed)

	result, err := generator.New(opts.seed).Generate(opts.generate, opts.size)
	if err != nil {
		return reportError(cmd, opts, err, "generate")
	}

	switch opts.output {
	case outputJSON:
		return utils.WriteJSON(cmd.OutOrStdout(), result)
	case outputYAML:
		return utils.WriteYAML(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	if result.Reused {
		logger.Debug("file of requested size already exists", "path", result.Path)
	} else {
		fmt.Fprintf(out, "Generated file: %s (%s)\n", result.Path, result.SizeHuman)
	}
	fmt.Fprintf(out, "SHA256: %s\n", result.SHA256)
	return nil
}

func runTransfer(cmd *cobra.Command, cfg *config.Config, opts *options) error {
	ctx := cmd.Context()
	logger := newLogger(cmd, opts)

	runCfg := runner.Config{
		UploadPath:   opts.upload,
		DownloadName: opts.download,
		Chunked:      opts.chunked,
		Timeout:      time.Duration(opts.timeout) * time.Second,
		Iterations:   opts.iterations,
	}

	if opts.verify {
		if opts.upload == "" {
			return reportError(cmd, opts, transfer.ConfigError("--verify needs --upload to know the expected digest"), "verify")
		}
		sum, err := fileDigest(opts.upload)
		if err != nil {
			return reportError(cmd, opts, err, "verify")
		}
		runCfg.ExpectedSHA256 = sum
		logger.Debug("verifying downloads", "sha256", sum)
	}

	client, target, err := newClient(ctx, cfg, opts)
	if err != nil {
		return reportError(cmd, opts, err, "filebench")
	}
	runCfg.Target = target

	// Event lines move to stderr when stdout carries a structured report.
	events := cmd.OutOrStdout()
	if opts.output != outputText {
		events = cmd.ErrOrStderr()
	}

	r := runner.New(client, runner.Options{
		Stdout: events,
		Stderr: cmd.ErrOrStderr(),
		Logger: logger,
	})

	result, err := r.Run(ctx, runCfg)
	if err != nil {
		return reportError(cmd, opts, err, "filebench")
	}

	switch opts.output {
	case outputJSON:
		return utils.WriteJSON(cmd.OutOrStdout(), result.Report())
	case outputYAML:
		return utils.WriteYAML(cmd.OutOrStdout(), result.Report())
	}
	return nil
}

// newClient builds the transfer backend and returns it along with the target
// it points at: the server URL for http, the bucket for s3.
func newClient(ctx context.Context, cfg *config.Config, opts *options) (transfer.Client, string, error) {
	switch strings.ToLower(opts.backend) {
	case config.BackendHTTP, "":
		client := transfer.NewHTTPClient(opts.server, transfer.HTTPOptions{
			InsecureSkipVerify: opts.insecure,
		})
		return client, opts.server, nil
	case config.BackendS3:
		s3Cfg := *cfg
		s3Cfg.BucketName = opts.bucket
		s3Cfg.InsecureSkipVerify = opts.insecure
		client, err := s3client.New(ctx, &s3Cfg)
		if err != nil {
			return nil, "", err
		}
		return client, opts.bucket, nil
	default:
		return nil, "", transfer.ConfigError("unknown backend %q, want %s or %s", opts.backend, config.BackendHTTP, config.BackendS3)
	}
}

func fileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", transfer.NewIOError("verify", path, err)
	}
	defer file.Close()

	_, sum, err := digest.Reader(file)
	if err != nil {
		return "", transfer.NewIOError("verify", path, err)
	}
	return sum, nil
}

func (o *options) validateOutput() error {
	switch o.output {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return transfer.ConfigError("unknown output format %q, want text, json or yaml", o.output)
}

func newLogger(cmd *cobra.Command, opts *options) *slog.Logger {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// reportError prints err on stderr in the selected output format and hands it
// back so the process exits non-zero.
func reportError(cmd *cobra.Command, opts *options, err error, command string) error {
	if opts.output == outputJSON {
		utils.WriteError(cmd.ErrOrStderr(), err, command)
		return err
	}

	if errors.Is(err, transfer.ErrConfig) {
		utils.Event(cmd.ErrOrStderr(), "Error: %v", err)
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	return err
}
