// Package cli provides the skycat command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driving"
	"github.com/custodia-labs/skycat/internal/logger"
)

// DefaultCatalogFile is read when --config is not given.
const DefaultCatalogFile = "skycat.toml"

var version = "dev"

// Flags shared by every command.
var (
	catalogFile string
	verbose     bool
)

// Services wired in by main.
var (
	projectService  driving.ProjectService
	metricsExporter MetricsExporter
	demoBuilder     DemoBuilder
)

// MetricsExporter publishes the metrics recorded during a write.
type MetricsExporter interface {
	// WriteTextfile writes the metrics in text exposition format to path.
	WriteTextfile(path string) error

	// Push sends the metrics to a Prometheus push gateway.
	Push(ctx context.Context, gatewayURL, job string) error
}

// DemoBuilder creates the demo database in dir and returns a project over
// it. Source paths in the project are relative to dir.
type DemoBuilder func(ctx context.Context, dir string) (*domain.Project, error)

// Services holds the dependencies of the commands.
type Services struct {
	Project driving.ProjectService
	Metrics MetricsExporter
	Demo    DemoBuilder
}

// SetServices wires the commands to their services.
func SetServices(s Services) {
	projectService = s.Project
	metricsExporter = s.Metrics
	demoBuilder = s.Demo
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "skycat",
	Short: "Write compound astronomical catalogs",
	Long: `skycat writes several astronomical catalogs into one output file.

Catalogs are declared in a TOML catalog file. Catalogs that read the same
table share a single scan of that table, so each table is read once per
write no matter how many catalogs use it.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&catalogFile, "config", "c", DefaultCatalogFile, "catalog file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print planning and scan details to stderr")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadProject reads the catalog file named by --config. A project that
// asks for verbose output turns it on.
func loadProject() (*domain.Project, error) {
	project, err := projectService.Load(catalogFile)
	if err != nil {
		return nil, err
	}
	if project.Verbose {
		logger.SetVerbose(true)
	}
	return project, nil
}
