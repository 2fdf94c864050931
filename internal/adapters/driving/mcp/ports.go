package mcp

import (
	"github.com/custodia-labs/skycat/internal/core/ports/driving"
)

// Ports aggregates the driving ports and settings the MCP server needs.
type Ports struct {
	// Project loads catalog files and runs writes.
	Project driving.ProjectService

	// CatalogFile is used when a tool call names no catalog file.
	CatalogFile string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Project == nil {
		return ErrMissingProjectService
	}
	return nil
}

// catalogFile returns name, or the default when name is empty.
func (p *Ports) catalogFile(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if p.CatalogFile == "" {
		return "", errNoCatalogFile
	}
	return p.CatalogFile, nil
}
