package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createOverdueIssuesTool returns the jira_overdue_issues tool definition
func createOverdueIssuesTool() mcp.Tool {
	return mcp.NewTool("jira_overdue_issues",
		mcp.WithDescription("List issues matched by the saved overdue filter"),
	)
}

// createDueSoonIssuesTool returns the jira_due_soon_issues tool definition
func createDueSoonIssuesTool() mcp.Tool {
	return mcp.NewTool("jira_due_soon_issues",
		mcp.WithDescription("List issues due in the next two weeks (saved due-soon filter)"),
	)
}

// createFilterTool returns the jira_filter tool definition
func createFilterTool() mcp.Tool {
	return mcp.NewTool("jira_filter",
		mcp.WithDescription("Fetch a saved filter by id and list the issues its query matches"),
		mcp.WithString("filter_id",
			mcp.Required(),
			mcp.Description("Saved filter id, e.g. 10300"),
		),
	)
}

// createPocketRetrieveTool returns the pocket_retrieve tool definition
func createPocketRetrieveTool() mcp.Tool {
	return mcp.NewTool("pocket_retrieve",
		mcp.WithDescription("Retrieve saved articles using the configured consumer key and access token"),
		mcp.WithNumber("count",
			mcp.Description("Number of items to retrieve (default from config, max: 100)"),
		),
		mcp.WithString("detail_type",
			mcp.Description("simple or complete (default from config)"),
		),
	)
}

// createSparqlSelectTool returns the sparql_select tool definition
func createSparqlSelectTool() mcp.Tool {
	return mcp.NewTool("sparql_select",
		mcp.WithDescription("Run a SPARQL SELECT query against the configured graph database"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("SPARQL SELECT query text"),
		),
		mcp.WithBoolean("reasoning",
			mcp.Description("Enable reasoning for this query (default from config)"),
		),
	)
}
