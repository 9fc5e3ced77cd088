package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAnalyzeDatasetTool returns the analyze_dataset tool definition
func createAnalyzeDatasetTool() mcp.Tool {
	return mcp.NewTool("analyze_dataset",
		mcp.WithDescription("Score a financial dataset without storing it. Returns the overall health score, risk level, metrics and narrative."),
		mcp.WithString("rows_json",
			mcp.Required(),
			mcp.Description(`JSON array of row objects mapping column names to values, e.g. [{"revenue": 1200, "expenses": 800}]. Recognized columns: revenue/sales/turnover, expenses/operating_expenses/opex, current_assets, current_liabilities, inventory, total_debt.`),
		),
		mcp.WithString("industry",
			mcp.Description("Industry name for benchmark comparison (e.g. retail, manufacturing, services)"),
		),
	)
}

// createListAssessmentsTool returns the list_assessments tool definition
func createListAssessmentsTool() mcp.Tool {
	return mcp.NewTool("list_assessments",
		mcp.WithDescription("List stored assessments, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 20)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Results to skip (default: 0)"),
		),
	)
}

// createGetAssessmentTool returns the get_assessment tool definition
func createGetAssessmentTool() mcp.Tool {
	return mcp.NewTool("get_assessment",
		mcp.WithDescription("Retrieve a stored assessment with its full summary"),
		mcp.WithString("assessment_id",
			mcp.Required(),
			mcp.Description("Assessment ID (format: asmt_{uuid})"),
		),
	)
}
