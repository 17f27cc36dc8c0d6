package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/jora/internal/app"
	"github.com/ternarybob/jora/internal/common"
	"github.com/ternarybob/jora/internal/models"
)

func main() {
	os.Exit(run(server.ServeStdio))
}

// run builds the server, hands it to serve and returns the process exit code
func run(serve func(*server.MCPServer, ...server.StdioOption) error) int {
	configPaths := filepath.SplitList(os.Getenv("JORA_CONFIG"))
	if len(configPaths) == 0 {
		if _, err := os.Stat("jora.toml"); err == nil {
			configPaths = []string{"jora.toml"}
		}
	}

	config, err := common.LoadFromFiles(configPaths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// stdout carries the protocol
	config.Logging.Output = []string{"file"}
	if os.Getenv("JORA_LOG_LEVEL") == "" {
		config.Logging.Level = "warn"
	}
	logger := common.InitLogger(config)

	application, err := app.New(config, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"jora",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	issues := application.IssueService
	mcpServer.AddTool(createOverdueIssuesTool(), handleIssues("Overdue issues", issues.GetOverdueIssues, logger))
	mcpServer.AddTool(createDueSoonIssuesTool(), handleIssues("Due in the next two weeks", issues.GetDueSoonIssues, logger))
	mcpServer.AddTool(createFilterTool(), handleFilter(issues, logger))

	mcpServer.AddTool(createPocketRetrieveTool(), handlePocketRetrieve(application.BookmarkService, models.RetrieveRequest{
		ConsumerKey: config.Pocket.ConsumerKey,
		AccessToken: config.Pocket.AccessToken,
		Count:       config.Pocket.Count,
		DetailType:  config.Pocket.DetailType,
	}, logger))

	mcpServer.AddTool(createSparqlSelectTool(), handleSparqlSelect(application.GraphService, logger))

	if err := serve(mcpServer); err != nil {
		logger.Error().Err(err).Msg("MCP server failed")
		return 1
	}
	return 0
}
