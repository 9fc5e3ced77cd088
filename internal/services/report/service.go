package report

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/ternarybob/valeo/internal/models"
)

// Service renders assessment summaries as downloadable PDF reports. The
// report is composed as markdown and rendered through the markdown renderer,
// so LLM-polished narratives keep their formatting.
type Service struct {
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ReportService = (*Service)(nil)

// NewService creates a new report service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// RenderPDF renders the assessment summary as a PDF report
func (s *Service) RenderPDF(view *interfaces.AssessmentView) ([]byte, error) {
	if view == nil {
		return nil, fmt.Errorf("assessment view is required")
	}
	if view.Summary == nil {
		return nil, fmt.Errorf("assessment %s has no decodable summary", view.ID)
	}

	markdown := buildMarkdown(view)

	s.logger.Debug().
		Str("assessment_id", view.ID).
		Int("markdown_len", len(markdown)).
		Msg("Rendering assessment report")

	pdfBytes, err := s.markdownToPDF(markdown)
	if err != nil {
		return nil, fmt.Errorf("failed to render report for assessment %s: %w", view.ID, err)
	}

	s.logger.Debug().
		Str("assessment_id", view.ID).
		Int("pdf_size", len(pdfBytes)).
		Msg("Assessment report rendered")

	return pdfBytes, nil
}

// buildMarkdown composes the report body from the assessment view
func buildMarkdown(view *interfaces.AssessmentView) string {
	summary := view.Summary
	var b strings.Builder

	b.WriteString("# Financial Health Report\n\n")

	if view.BusinessName != "" {
		b.WriteString("**" + escapeCell(view.BusinessName) + "**")
		if view.Industry != "" {
			b.WriteString(" (" + escapeCell(view.Industry) + ")")
		}
		b.WriteString("\n\n")
	} else if view.Industry != "" {
		b.WriteString("Industry: " + escapeCell(view.Industry) + "\n\n")
	}

	b.WriteString("Assessed " + view.CreatedAt.Format("2 Jan 2006"))
	if view.FileName != "" {
		b.WriteString(" from `" + view.FileName + "`")
	}
	b.WriteString(".\n\n---\n\n")

	b.WriteString("## Overall Score\n\n")
	fmt.Fprintf(&b, "**%.1f / 100** (%s risk)\n\n", summary.OverallScore, summary.RiskLevel)

	if summary.Narrative != "" {
		b.WriteString(summary.Narrative + "\n\n")
	}

	if len(summary.Metrics) > 0 {
		b.WriteString("## Key Metrics\n\n")
		b.WriteString("| Metric | Value | Interpretation |\n")
		b.WriteString("|--------|-------|----------------|\n")
		for _, m := range summary.Metrics {
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				escapeCell(m.Label), metricValue(m), escapeCell(m.Interpretation))
		}
		b.WriteString("\n")
	}

	if len(summary.Benchmarks) > 0 {
		b.WriteString("## Industry Comparison\n\n")
		b.WriteString("| Comparison | Business | Benchmark | Status | Note |\n")
		b.WriteString("|------------|----------|-----------|--------|------|\n")
		for _, bm := range summary.Benchmarks {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				escapeCell(bm.Label), floatCell(bm.BusinessValue), floatCell(bm.BenchmarkValue),
				bm.Status, escapeCell(bm.Note))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Figures Used\n\n")
	b.WriteString("| Figure | Amount |\n")
	b.WriteString("|--------|--------|\n")
	stats := summary.RawStats
	fmt.Fprintf(&b, "| Revenue | %.2f |\n", stats.RevenueTotal)
	fmt.Fprintf(&b, "| Expenses | %.2f |\n", stats.ExpensesTotal)
	fmt.Fprintf(&b, "| Profit | %.2f |\n", stats.ProfitTotal)
	fmt.Fprintf(&b, "| Current Assets | %.2f |\n", stats.CurrentAssets)
	fmt.Fprintf(&b, "| Current Liabilities | %.2f |\n", stats.CurrentLiabilities)
	fmt.Fprintf(&b, "| Inventory | %.2f |\n", stats.Inventory)
	fmt.Fprintf(&b, "| Total Debt | %.2f |\n", stats.TotalDebt)

	return b.String()
}

// metricValue formats a metric value with its unit, or n/a when the ratio
// was not computable
func metricValue(m models.Metric) string {
	if m.Value == nil {
		return "n/a"
	}
	if m.Unit == "%" {
		return fmt.Sprintf("%.1f%%", *m.Value)
	}
	if m.Unit != "" {
		return fmt.Sprintf("%.2f %s", *m.Value, m.Unit)
	}
	return fmt.Sprintf("%.2f", *m.Value)
}

func floatCell(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

// escapeCell keeps user-supplied text from breaking table rows
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
