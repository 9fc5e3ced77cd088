package main

import (
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/valeo/internal/common"
)

func main() {
	// The MCP server is a thin client over the running HTTP API
	baseURL := os.Getenv("VALEO_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	token := os.Getenv("VALEO_TOKEN")

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	client := newAPIClient(baseURL, token)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"valeo",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register assessment tools
	mcpServer.AddTool(createAnalyzeDatasetTool(), handleAnalyzeDataset(client, logger))
	mcpServer.AddTool(createListAssessmentsTool(), handleListAssessments(client, logger))
	mcpServer.AddTool(createGetAssessmentTool(), handleGetAssessment(client, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
