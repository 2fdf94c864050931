// Command skycat writes compound astronomical catalogs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/skycat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/skycat/internal/adapters/driven/metrics"
	"github.com/custodia-labs/skycat/internal/adapters/driven/storage"
	_ "github.com/custodia-labs/skycat/internal/adapters/driven/storage/mssql"
	_ "github.com/custodia-labs/skycat/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/skycat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/skycat/internal/adapters/driving/cli"
	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/services"
	"github.com/custodia-labs/skycat/internal/expressions"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const demoDatabase = "sky.db"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder, err := metrics.NewRecorder()
	if err != nil {
		fmt.Fprintf(os.Stderr, "skycat: %v\n", err)
		os.Exit(1)
	}

	projects := services.NewProjectService(file.NewProjectStore(), storage.Factory{}, expressions.NewCompiler())
	projects.SetMetrics(recorder)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Project: projects,
		Metrics: recorder,
		Demo:    buildDemo,
	})

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// buildDemo creates the demo database in dir. The project refers to it by
// a path relative to dir, where the catalog file is saved.
func buildDemo(ctx context.Context, dir string) (*domain.Project, error) {
	if err := sqlite.CreateDemo(ctx, filepath.Join(dir, demoDatabase)); err != nil {
		return nil, err
	}
	return sqlite.DemoProject(demoDatabase), nil
}
