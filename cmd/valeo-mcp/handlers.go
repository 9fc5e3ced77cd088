package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
)

// handleAnalyzeDataset implements the analyze_dataset tool
func handleAnalyzeDataset(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rowsJSON, err := request.RequireString("rows_json")
		if err != nil || rowsJSON == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: rows_json parameter is required"),
				},
			}, nil
		}

		var rows []map[string]any
		if err := json.Unmarshal([]byte(rowsJSON), &rows); err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Error: rows_json must be a JSON array of objects: %v", err)),
				},
			}, nil
		}
		if len(rows) == 0 {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: rows_json contains no rows"),
				},
			}, nil
		}

		industry := request.GetString("industry", "")

		summary, err := client.AnalyzeRows(ctx, rows, industry)
		if err != nil {
			logger.Error().Err(err).Msg("Analyze failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Analyze error: %v", err)),
				},
			}, nil
		}

		markdown := formatSummary(summary)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleListAssessments implements the list_assessments tool
func handleListAssessments(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 20)
		if limit > 100 {
			limit = 100
		}
		offset := request.GetInt("offset", 0)

		views, err := client.ListAssessments(ctx, limit, offset)
		if err != nil {
			logger.Error().Err(err).Msg("List assessments failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("List error: %v", err)),
				},
			}, nil
		}

		markdown := formatAssessmentList(views)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleGetAssessment implements the get_assessment tool
func handleGetAssessment(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		assessmentID, err := request.RequireString("assessment_id")
		if err != nil || assessmentID == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: assessment_id parameter is required"),
				},
			}, nil
		}

		view, err := client.GetAssessment(ctx, assessmentID)
		if err != nil {
			logger.Error().Err(err).Str("assessment_id", assessmentID).Msg("Get assessment failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Assessment not found: %v", err)),
				},
			}, nil
		}

		markdown := formatAssessmentDetail(view)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}
