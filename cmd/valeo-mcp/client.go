package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/ternarybob/valeo/internal/models"
)

// apiClient talks to the Valeo HTTP API
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// AnalyzeRows runs the scoring engine over tabular rows without storing
// anything
func (c *apiClient) AnalyzeRows(ctx context.Context, rows []map[string]any, industry string) (*models.AssessmentSummary, error) {
	body := map[string]any{
		"rows":     rows,
		"industry": industry,
	}

	var summary models.AssessmentSummary
	if err := c.do(ctx, "POST", "/api/assessments/analyze", body, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListAssessments returns stored assessments, newest first
func (c *apiClient) ListAssessments(ctx context.Context, limit, offset int) ([]*interfaces.AssessmentView, error) {
	path := fmt.Sprintf("/api/assessments?limit=%d&offset=%d", limit, offset)

	var views []*interfaces.AssessmentView
	if err := c.do(ctx, "GET", path, nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// GetAssessment returns one stored assessment with its full summary
func (c *apiClient) GetAssessment(ctx context.Context, id string) (*interfaces.AssessmentView, error) {
	path := "/api/assessments/" + url.PathEscape(id)

	var view interfaces.AssessmentView
	if err := c.do(ctx, "GET", path, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// do executes one API request. Non-2xx responses are returned as errors
// carrying the API's detail message.
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Detail != "" {
			return fmt.Errorf("%s (HTTP %d)", apiErr.Detail, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
