package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage the data sources of the catalog file",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured data sources",
	Args:  cobra.NoArgs,
	RunE:  runSourcesList,
}

var sourcesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every data source can be opened",
	Long: `Opens and closes every data source in the catalog file.
Sources are checked concurrently; the command fails if any source fails.`,
	Args: cobra.NoArgs,
	RunE: runSourcesCheck,
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesCheckCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	project, err := loadProject()
	if err != nil {
		return fmt.Errorf("loading %s: %w", catalogFile, err)
	}

	if len(project.Sources) == 0 {
		cmd.Println("No sources configured.")
		return nil
	}
	for _, s := range project.Sources {
		cmd.Printf("  %-16s %-10s %s\n", s.Name, s.Driver, s.Redacted())
	}
	return nil
}

func runSourcesCheck(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	project, err := loadProject()
	if err != nil {
		return fmt.Errorf("loading %s: %w", catalogFile, err)
	}

	statuses, err := projectService.CheckSources(cmd.Context(), project)
	if err != nil {
		return fmt.Errorf("checking sources: %w", err)
	}

	st := newStyles(cmd.OutOrStdout())
	failed := 0
	for _, s := range statuses {
		if s.OK() {
			cmd.Printf("  %s %s (%s)\n", st.Success.Render("ok  "), s.Config.Name, s.Config.Driver)
			continue
		}
		failed++
		cmd.Printf("  %s %s (%s): %v\n", st.Error.Render("FAIL"), s.Config.Name, s.Config.Driver, s.Err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(statuses))
	}
	cmd.Printf("All %d sources reachable.\n", len(statuses))
	return nil
}
