// Package mcp provides an MCP (Model Context Protocol) server adapter for skycat.
// It lets AI assistants inspect catalog files and run compound writes.
package mcp

import "errors"

// ErrMissingProjectService is returned when the project service is not provided.
var ErrMissingProjectService = errors.New("mcp: project service is required")

// errNoCatalogFile is returned when a tool call names no catalog file and
// the server has no default.
var errNoCatalogFile = errors.New("mcp: no catalog file given")
