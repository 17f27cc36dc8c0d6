package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/interfaces"
	"github.com/ternarybob/jora/internal/models"
	"github.com/ternarybob/jora/internal/services/sparql"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleIssues implements the fixed-filter issue tools
func handleIssues(title string, fetch func(ctx context.Context) ([]models.Issue, error), logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		issues, err := fetch(ctx)
		if err != nil {
			logger.Error().Err(err).Str("panel", title).Msg("Issue query failed")
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(formatIssues(title, issues, models.DateOf(nowFunc()))), nil
	}
}

// handleFilter implements the jira_filter tool
func handleFilter(issueService interfaces.IssueService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filterID, err := request.RequireString("filter_id")
		if err != nil || filterID == "" {
			return textResult("Error: filter_id parameter is required"), nil
		}

		issues, err := issueService.GetIssuesForFilter(ctx, filterID)
		if err != nil {
			logger.Error().Err(err).Str("filter_id", filterID).Msg("Filter query failed")
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}

		title := fmt.Sprintf("Filter %s", filterID)
		return textResult(formatIssues(title, issues, models.DateOf(nowFunc()))), nil
	}
}

// handlePocketRetrieve implements the pocket_retrieve tool
func handlePocketRetrieve(bookmarks interfaces.BookmarkService, defaults models.RetrieveRequest, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := defaults

		if count := request.GetInt("count", 0); count > 0 {
			if count > 100 {
				count = 100
			}
			req.Count = uint(count)
		}
		if detail := request.GetString("detail_type", ""); detail != "" {
			req.DetailType = detail
		}

		items, err := bookmarks.Retrieve(ctx, req)
		if err != nil {
			logger.Error().Err(err).Msg("Bookmark retrieval failed")
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(formatBookmarks(items)), nil
	}
}

// handleSparqlSelect implements the sparql_select tool
func handleSparqlSelect(graph *sparql.Client, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return textResult("Error: query parameter is required"), nil
		}

		client := graph.WithReasoning(request.GetBool("reasoning", graph.Context().Reasoning))

		result, err := client.Query(ctx, query)
		if err != nil {
			logger.Error().Err(err).Msg("SPARQL query failed")
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(formatSelectResult(result)), nil
	}
}
