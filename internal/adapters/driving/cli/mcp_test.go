package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMCPCmd_HasServe(t *testing.T) {
	commands := mcpCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}
	assert.Contains(t, commandNames, "serve")
}

func TestMCPServeCmd_PortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "p", flag.Shorthand)
		assert.Equal(t, "0", flag.DefValue)
	}
}

func TestMCPServeCmd_RequiresProjectService(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	projectService = nil

	_, err := execute(t, "mcp", "serve")

	assert.Error(t, err)
}
