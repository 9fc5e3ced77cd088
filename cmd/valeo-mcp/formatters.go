package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/ternarybob/valeo/internal/models"
)

// formatSummary formats an analysis result as markdown
func formatSummary(summary *models.AssessmentSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Financial Health: %.1f/100 (%s risk)\n\n", summary.OverallScore, summary.RiskLevel))
	sb.WriteString(summary.Narrative)
	sb.WriteString("\n\n### Metrics\n\n")

	for _, metric := range summary.Metrics {
		sb.WriteString(fmt.Sprintf("- **%s:** %s", metric.Label, formatMetricValue(metric)))
		if metric.Interpretation != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", metric.Interpretation))
		}
		sb.WriteString("\n")
	}

	if len(summary.Benchmarks) > 0 {
		sb.WriteString("\n### Industry Comparison\n\n")
		for _, bench := range summary.Benchmarks {
			sb.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", bench.Label, bench.Status, bench.Note))
		}
	}

	return sb.String()
}

// formatAssessmentList formats stored assessments as markdown
func formatAssessmentList(views []*interfaces.AssessmentView) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Assessments (%d)\n\n", len(views)))

	if len(views) == 0 {
		sb.WriteString("No assessments found.\n")
		return sb.String()
	}

	for i, view := range views {
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, view.BusinessName))
		sb.WriteString(fmt.Sprintf("**ID:** %s\n", view.ID))
		if view.Industry != "" {
			sb.WriteString(fmt.Sprintf("**Industry:** %s\n", view.Industry))
		}
		if view.Summary != nil {
			sb.WriteString(fmt.Sprintf("**Score:** %.1f/100 (%s risk)\n", view.Summary.OverallScore, view.Summary.RiskLevel))
		}
		sb.WriteString(fmt.Sprintf("**Created:** %s\n\n", view.CreatedAt.Format(time.RFC3339)))
	}

	return sb.String()
}

// formatAssessmentDetail formats a single stored assessment as markdown
func formatAssessmentDetail(view *interfaces.AssessmentView) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", view.BusinessName))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", view.ID))
	if view.Industry != "" {
		sb.WriteString(fmt.Sprintf("**Industry:** %s\n", view.Industry))
	}
	if view.FileName != "" {
		sb.WriteString(fmt.Sprintf("**Source file:** %s\n", view.FileName))
	}
	sb.WriteString(fmt.Sprintf("**Created:** %s\n\n", view.CreatedAt.Format(time.RFC3339)))

	if view.Summary == nil {
		sb.WriteString("Summary unavailable for this assessment.\n")
		return sb.String()
	}

	sb.WriteString(formatSummary(view.Summary))

	stats := view.Summary.RawStats
	sb.WriteString("\n### Figures Used\n\n")
	sb.WriteString(fmt.Sprintf("- Revenue: %.2f\n", stats.RevenueTotal))
	sb.WriteString(fmt.Sprintf("- Expenses: %.2f\n", stats.ExpensesTotal))
	sb.WriteString(fmt.Sprintf("- Profit: %.2f\n", stats.ProfitTotal))
	sb.WriteString(fmt.Sprintf("- Current assets: %.2f\n", stats.CurrentAssets))
	sb.WriteString(fmt.Sprintf("- Current liabilities: %.2f\n", stats.CurrentLiabilities))
	sb.WriteString(fmt.Sprintf("- Inventory: %.2f\n", stats.Inventory))
	sb.WriteString(fmt.Sprintf("- Total debt: %.2f\n", stats.TotalDebt))

	return sb.String()
}

// formatMetricValue renders a metric value with its unit
func formatMetricValue(metric models.Metric) string {
	if metric.Value == nil {
		return "n/a"
	}
	if metric.Unit == "%" {
		return fmt.Sprintf("%.1f%%", *metric.Value)
	}
	if metric.Unit != "" {
		return fmt.Sprintf("%.2f %s", *metric.Value, metric.Unit)
	}
	return fmt.Sprintf("%.2f", *metric.Value)
}
