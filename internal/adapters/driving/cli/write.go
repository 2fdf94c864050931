package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/skycat/internal/core/ports/driving"
	"github.com/custodia-labs/skycat/internal/logger"
)

var (
	writeChunkSize   int
	writeMetricsFile string
	writeMetricsPush string
	writeMetricsJob  string
	writeWatch       bool
)

var writeCmd = &cobra.Command{
	Use:   "write [output]",
	Short: "Write the compound catalog",
	Long: `Writes every catalog in the catalog file into one output file.

The output is truncated first. Catalogs reading the same table share one
scan; rows are written batch by batch, catalogs in file order within each
batch.

With --watch the catalog is rewritten whenever the catalog file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().IntVar(&writeChunkSize, "chunk-size", 0, "raw rows per scan batch (default: catalog file or 1000)")
	writeCmd.Flags().StringVar(&writeMetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	writeCmd.Flags().StringVar(&writeMetricsPush, "metrics-push", "", "push Prometheus metrics to this gateway URL")
	writeCmd.Flags().StringVar(&writeMetricsJob, "metrics-job", "skycat", "job name used with --metrics-push")
	writeCmd.Flags().BoolVarP(&writeWatch, "watch", "w", false, "rewrite when the catalog file changes")
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	if writeChunkSize < 0 {
		return fmt.Errorf("invalid --chunk-size %d", writeChunkSize)
	}

	output := args[0]
	if writeWatch {
		return watchAndWrite(cmd, output)
	}
	return writeOnce(cmd, output)
}

func writeOnce(cmd *cobra.Command, output string) error {
	project, err := loadProject()
	if err != nil {
		return fmt.Errorf("loading %s: %w", catalogFile, err)
	}

	opts := driving.WriteOptions{ChunkSize: writeChunkSize}
	if isTerminal(cmd.ErrOrStderr()) || logger.IsVerbose() {
		opts.Progress = newProgressPrinter(cmd.ErrOrStderr()).Report
	}

	res, err := projectService.Write(cmd.Context(), project, output, opts)
	exportErr := exportMetrics(cmd.Context())
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	cmd.Printf("Wrote %d rows from %d scan groups to %s in %s\n",
		res.Rows, res.Groups, res.Output, res.Duration.Round(time.Millisecond))
	return exportErr
}

// exportMetrics writes and pushes the recorded metrics as the flags ask.
func exportMetrics(ctx context.Context) error {
	if writeMetricsFile == "" && writeMetricsPush == "" {
		return nil
	}
	if metricsExporter == nil {
		return errors.New("metrics not configured")
	}

	var errs []error
	if writeMetricsFile != "" {
		if err := metricsExporter.WriteTextfile(writeMetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics: %w", err))
		}
	}
	if writeMetricsPush != "" {
		if err := metricsExporter.Push(ctx, writeMetricsPush, writeMetricsJob); err != nil {
			errs = append(errs, fmt.Errorf("pushing metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// watchDebounce collects the burst of events editors produce on save.
const watchDebounce = 200 * time.Millisecond

// watchAndWrite writes once, then again after every change to the catalog
// file, until the command's context is cancelled. Failed writes are
// reported and the watch continues.
func watchAndWrite(cmd *cobra.Command, output string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file rather than write it.
	abs, err := filepath.Abs(catalogFile)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", catalogFile, err)
	}

	rewrite := func() {
		if err := writeOnce(cmd, output); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
	}
	rewrite()
	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", catalogFile)

	ctx := cmd.Context()
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				logger.Debug("catalog file changed: %s", event.Op)
				debounce = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: %v", err)
		case <-debounce:
			debounce = nil
			rewrite()
		}
	}
}
