package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/skycat/internal/core/ports/driving"
)

// InspectInput is the input schema for the inspect_grouping tool.
type InspectInput struct {
	CatalogFile string `json:"catalog_file,omitempty" jsonschema:"path of the catalog file (default: the server's catalog file)"`
}

// InspectOutput is the output schema for the inspect_grouping tool.
type InspectOutput struct {
	Grouping [][]int       `json:"grouping"`
	Groups   []GroupOutput `json:"groups"`
}

// GroupOutput describes one scan group.
type GroupOutput struct {
	Source    string   `json:"source"`
	Table     string   `json:"table"`
	IDColumn  string   `json:"id_column"`
	RAColumn  string   `json:"ra_column"`
	DecColumn string   `json:"dec_column"`
	Catalogs  []string `json:"catalogs"`
	Columns   []string `json:"columns"`
}

// WriteInput is the input schema for the write_catalog tool.
type WriteInput struct {
	CatalogFile string `json:"catalog_file,omitempty" jsonschema:"path of the catalog file (default: the server's catalog file)"`
	Output      string `json:"output" jsonschema:"path of the compound catalog to write"`
	ChunkSize   int    `json:"chunk_size,omitempty" jsonschema:"raw rows per scan batch (default: the file's chunk size)"`
}

// WriteOutput is the output schema for the write_catalog tool.
type WriteOutput struct {
	Output     string `json:"output"`
	Rows       int    `json:"rows"`
	Groups     int    `json:"groups"`
	DurationMS int64  `json:"duration_ms"`
}

// CheckInput is the input schema for the check_sources tool.
type CheckInput struct {
	CatalogFile string `json:"catalog_file,omitempty" jsonschema:"path of the catalog file (default: the server's catalog file)"`
}

// CheckOutput is the output schema for the check_sources tool.
type CheckOutput struct {
	Sources []SourceCheckOutput `json:"sources"`
}

// SourceCheckOutput is the outcome for one source.
type SourceCheckOutput struct {
	Name   string `json:"name"`
	Driver string `json:"driver"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "inspect_grouping",
		Description: "Show how the catalogs of a catalog file are grouped into shared table scans",
	}, s.handleInspect)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "write_catalog",
		Description: "Write every catalog of a catalog file into one compound output file",
	}, s.handleWrite)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_sources",
		Description: "Check that every data source of a catalog file can be opened",
	}, s.handleCheck)
}

// handleInspect handles the inspect_grouping tool invocation.
func (s *Server) handleInspect(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input InspectInput,
) (*mcp.CallToolResult, InspectOutput, error) {
	path, err := s.ports.catalogFile(input.CatalogFile)
	if err != nil {
		return nil, InspectOutput{}, err
	}
	project, err := s.ports.Project.Load(path)
	if err != nil {
		return nil, InspectOutput{}, err
	}

	ins, err := s.ports.Project.Inspect(project)
	if err != nil {
		return nil, InspectOutput{}, err
	}

	output := InspectOutput{
		Grouping: ins.Grouping(),
		Groups:   make([]GroupOutput, len(ins.Groups)),
	}
	for i, g := range ins.Groups {
		names := make([]string, len(g.Members))
		for j, m := range g.Members {
			names[j] = ins.Catalogs[m].Label()
		}
		output.Groups[i] = GroupOutput{
			Source:    g.Signature.Source,
			Table:     g.Signature.Table,
			IDColumn:  g.Signature.IDColumn,
			RAColumn:  g.Signature.RAColumn,
			DecColumn: g.Signature.DecColumn,
			Catalogs:  names,
			Columns:   g.Columns,
		}
	}
	return nil, output, nil
}

// handleWrite handles the write_catalog tool invocation.
func (s *Server) handleWrite(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input WriteInput,
) (*mcp.CallToolResult, WriteOutput, error) {
	if input.Output == "" {
		return nil, WriteOutput{}, fmt.Errorf("mcp: output path is required")
	}
	path, err := s.ports.catalogFile(input.CatalogFile)
	if err != nil {
		return nil, WriteOutput{}, err
	}
	project, err := s.ports.Project.Load(path)
	if err != nil {
		return nil, WriteOutput{}, err
	}

	res, err := s.ports.Project.Write(ctx, project, input.Output, driving.WriteOptions{ChunkSize: input.ChunkSize})
	if err != nil {
		return nil, WriteOutput{}, err
	}

	return nil, WriteOutput{
		Output:     res.Output,
		Rows:       res.Rows,
		Groups:     res.Groups,
		DurationMS: res.Duration.Milliseconds(),
	}, nil
}

// handleCheck handles the check_sources tool invocation.
func (s *Server) handleCheck(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckInput,
) (*mcp.CallToolResult, CheckOutput, error) {
	path, err := s.ports.catalogFile(input.CatalogFile)
	if err != nil {
		return nil, CheckOutput{}, err
	}
	project, err := s.ports.Project.Load(path)
	if err != nil {
		return nil, CheckOutput{}, err
	}

	statuses, err := s.ports.Project.CheckSources(ctx, project)
	if err != nil {
		return nil, CheckOutput{}, err
	}

	output := CheckOutput{Sources: make([]SourceCheckOutput, len(statuses))}
	for i, st := range statuses {
		output.Sources[i] = SourceCheckOutput{
			Name:   st.Config.Name,
			Driver: st.Config.Driver.String(),
			OK:     st.OK(),
		}
		if st.Err != nil {
			output.Sources[i].Error = st.Err.Error()
		}
	}
	return nil, output, nil
}
