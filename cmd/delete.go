package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"filebench/config"
	"filebench/internal/models"
	"filebench/internal/transfer"
	"filebench/pkg/utils"
)

func newDeleteCmd(cfg *config.Config, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME...",
		Short: "Delete files from the server",
		Long: `Delete one or more remote files by name. Each name gets its own request and
its status is printed; a failing delete does not stop the rest.`,
		Example: `  # Remove leftovers from a benchmark run
  filebench delete t.bin big.bin -s https://localhost:8443

  # Delete from an S3 bucket and print JSON
  filebench delete t.bin --backend s3 --bucket bench -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, cfg, opts, args)
		},
	}
}

func runDelete(cmd *cobra.Command, cfg *config.Config, opts *options, names []string) error {
	if err := opts.validateOutput(); err != nil {
		return reportError(cmd, opts, err, "delete")
	}
	if opts.backend != config.BackendS3 && opts.server == "" {
		return reportError(cmd, opts, transfer.ConfigError("server URL is required for deleting files"), "delete")
	}

	ctx := cmd.Context()
	logger := newLogger(cmd, opts)

	client, target, err := newClient(ctx, cfg, opts)
	if err != nil {
		return reportError(cmd, opts, err, "delete")
	}
	logger.Debug("deleting files", "target", target, "count", len(names))

	results := make([]models.DeleteResult, 0, len(names))
	failed := 0
	for _, name := range names {
		res, err := client.Delete(ctx, name)
		if err != nil {
			failed++
			utils.Event(cmd.ErrOrStderr(), "Error deleting file %s: %v", name, err)
			continue
		}
		results = append(results, *res)
		if opts.output == outputText {
			utils.Event(cmd.OutOrStdout(), "%s: Deleted. Status: %d", name, res.StatusCode)
		}
	}

	switch opts.output {
	case outputJSON:
		if err := utils.WriteJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	case outputYAML:
		if err := utils.WriteYAML(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d deletes failed", failed, len(names))
	}
	return nil
}
