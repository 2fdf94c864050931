package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/skycat/internal/core/ports/driving"
)

var planJSON bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show how catalogs are grouped into table scans",
	Long: `Plans the compound write without connecting to any source.

Each scan group reads one table once; every catalog in the group is
written from that scan.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "output the plan as JSON")
	rootCmd.AddCommand(planCmd)
}

// planGroup is the JSON form of one scan group.
type planGroup struct {
	Source    string   `json:"source"`
	Table     string   `json:"table"`
	Signature string   `json:"signature"`
	Catalogs  []string `json:"catalogs"`
	Members   []int    `json:"members"`
	Columns   []string `json:"columns"`
}

func runPlan(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	project, err := loadProject()
	if err != nil {
		return fmt.Errorf("loading %s: %w", catalogFile, err)
	}
	ins, err := projectService.Inspect(project)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	if planJSON {
		return outputPlanJSON(cmd, ins)
	}
	outputPlanText(cmd, ins)
	return nil
}

func planGroups(ins *driving.Inspection) []planGroup {
	groups := make([]planGroup, len(ins.Groups))
	for i, g := range ins.Groups {
		names := make([]string, len(g.Members))
		for j, m := range g.Members {
			names[j] = ins.Catalogs[m].Label()
		}
		groups[i] = planGroup{
			Source:    g.Signature.Source,
			Table:     g.Signature.Table,
			Signature: g.Signature.String(),
			Catalogs:  names,
			Members:   g.Members,
			Columns:   g.Columns,
		}
	}
	return groups
}

func outputPlanJSON(cmd *cobra.Command, ins *driving.Inspection) error {
	data, err := json.MarshalIndent(planGroups(ins), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputPlanText(cmd *cobra.Command, ins *driving.Inspection) {
	st := newStyles(cmd.OutOrStdout())

	cmd.Println(st.Title.Render(fmt.Sprintf("%d catalogs in %d scan groups", len(ins.Catalogs), len(ins.Groups))))
	cmd.Println()
	for i, g := range planGroups(ins) {
		cmd.Printf("%s %s\n", st.Label.Render(fmt.Sprintf("[%d]", i+1)), g.Signature)
		cmd.Printf("    %s %s\n", st.Muted.Render("columns:"), strings.Join(g.Columns, ", "))
		for j, name := range g.Catalogs {
			cmd.Printf("    #%d %s\n", g.Members[j], name)
		}
		cmd.Println()
	}
}
