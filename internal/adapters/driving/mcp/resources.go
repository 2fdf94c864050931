package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/skycat/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for skycat resources.
	uriScheme = "skycat://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Data sources of the server's catalog file",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "catalogs/{name}",
		Name:        "catalog",
		Description: "Definition of one catalog in the server's catalog file",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)
}

// handleSourcesResource lists the sources with passwords removed.
func (s *Server) handleSourcesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.CatalogFile == "" {
		return jsonResult(req.Params.URI, []byte("[]")), nil
	}

	project, err := s.ports.Project.Load(s.ports.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("loading catalog file: %w", err)
	}

	type sourceInfo struct {
		Name   string `json:"name"`
		Driver string `json:"driver"`
		DSN    string `json:"dsn"`
	}

	infos := make([]sourceInfo, len(project.Sources))
	for i, src := range project.Sources {
		infos[i] = sourceInfo{
			Name:   src.Name,
			Driver: src.Driver.String(),
			DSN:    src.Redacted(),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// handleCatalogResource returns one catalog's definition.
func (s *Server) handleCatalogResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractCatalogName(req.Params.URI)
	if name == "" || s.ports.CatalogFile == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	project, err := s.ports.Project.Load(s.ports.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("loading catalog file: %w", err)
	}

	idx := slices.IndexFunc(project.Catalogs, func(c domain.CatalogSpec) bool {
		return c.Name == name || c.ID == name
	})
	if idx < 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	spec := &project.Catalogs[idx]

	type catalogInfo struct {
		ID        string            `json:"id"`
		Name      string            `json:"name"`
		Source    string            `json:"source"`
		Table     string            `json:"table"`
		Outputs   []string          `json:"outputs"`
		Columns   map[string]string `json:"columns"`
		Delimiter string            `json:"delimiter"`
	}

	info := catalogInfo{
		ID:        spec.ID,
		Name:      spec.Name,
		Source:    spec.Resource.Source,
		Table:     spec.Resource.Table,
		Outputs:   spec.Outputs,
		Columns:   make(map[string]string, len(spec.Outputs)),
		Delimiter: spec.FieldDelimiter(),
	}
	for _, out := range spec.Outputs {
		info.Columns[out] = spec.ComputationFor(out).String()
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling catalog: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractCatalogName extracts the name from a URI like skycat://catalogs/{name}.
func extractCatalogName(uri string) string {
	const prefix = uriScheme + "catalogs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
