package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_HasServe(t *testing.T) {
	commands := mcpCmd.Commands()
	require.Len(t, commands, 1)
	assert.Equal(t, "serve", commands[0].Name())
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("port"))
}

func TestNewMCPServer(t *testing.T) {
	t.Run("requires workspace", func(t *testing.T) {
		prev := workspaceService
		workspaceService = nil
		defer func() { workspaceService = prev }()

		_, err := newMCPServer()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "workspace service not configured")
	})

	t.Run("builds server with rate limit", func(t *testing.T) {
		setupTestServices(t)
		prev := mcpRatePerSecond
		SetMCPRateLimit(2)
		defer func() { mcpRatePerSecond = prev }()

		server, err := newMCPServer()

		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}
