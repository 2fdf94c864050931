package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var demoForce bool

var demoCmd = &cobra.Command{
	Use:   "demo [dir]",
	Short: "Create a demo database and catalog file",
	Long: `Creates a small SQLite sky database and a catalog file that reads it.

The database holds a stars table and a galaxies table. The catalog file
declares two catalogs over stars, which share one scan, and one over
galaxies.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().BoolVar(&demoForce, "force", false, "overwrite an existing catalog file")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	if projectService == nil || demoBuilder == nil {
		return errors.New("demo not configured")
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	path := filepath.Join(dir, DefaultCatalogFile)
	if _, err := os.Stat(path); err == nil && !demoForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	project, err := demoBuilder(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("creating demo database: %w", err)
	}
	if err := projectService.Save(path, project); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	cmd.Printf("Created %s with %d catalogs.\n", path, len(project.Catalogs))
	cmd.Println()
	cmd.Println("Next steps:")
	cmd.Printf("  skycat --config %s plan\n", path)
	cmd.Printf("  skycat --config %s write sky.cat\n", path)
	return nil
}
