package rewrite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/ternarybob/valeo/internal/models"
)

const advisorSystemPrompt = "You are a senior SME financial advisor."

const rewritePromptTemplate = "You are a financial analyst. Rewrite the following financial health summary " +
	"into a concise, business-owner-friendly paragraph. Maintain the factual content " +
	"but improve clarity and add 1–2 concrete recommendations.\n\n" +
	"Existing summary:\n%s\n\n" +
	"Key metrics: %s"

// Service polishes deterministic assessment narratives through a configured
// LLM provider. The deterministic narrative always remains the fallback, so
// a missing provider or a failed call never blocks an assessment.
type Service struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.NarrativeRewriter = (*Service)(nil)

// NewService creates a narrative rewriter backed by the given LLM service.
// A nil llm disables rewriting and turns Rewrite into a passthrough.
func NewService(llm interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		llm:    llm,
		logger: logger,
	}
}

// Enabled reports whether a live LLM provider is configured.
func (s *Service) Enabled() bool {
	return s.llm != nil
}

// Rewrite asks the LLM to restate the narrative as advisor-style prose,
// passing the metric values along as factual context. The returned text is
// trimmed. An empty completion falls back to the input narrative; errors are
// returned for the caller to decide (callers keep the original text).
func (s *Service) Rewrite(ctx context.Context, narrative string, metrics []models.Metric) (string, error) {
	if s.llm == nil {
		return narrative, nil
	}

	startTime := time.Now()
	s.logger.Debug().
		Int("metric_count", len(metrics)).
		Int("narrative_length", len(narrative)).
		Msg("Requesting narrative rewrite")

	prompt := fmt.Sprintf(rewritePromptTemplate, narrative, metricTuples(metrics))
	response, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: advisorSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("narrative rewrite failed: %w", err)
	}

	polished := strings.TrimSpace(response)
	if polished == "" {
		s.logger.Warn().Msg("LLM returned empty rewrite, keeping original narrative")
		return narrative, nil
	}

	s.logger.Debug().
		Int("narrative_length", len(polished)).
		Dur("duration", time.Since(startTime)).
		Msg("Narrative rewrite completed")

	return polished, nil
}

// metricTuples renders the metrics as a compact list of (label, value, unit)
// tuples, with None marking absent values and units.
func metricTuples(metrics []models.Metric) string {
	var b strings.Builder
	b.WriteString("[")
	for i, m := range metrics {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		b.WriteString(quote(m.Label))
		b.WriteString(", ")
		b.WriteString(formatValue(m.Value))
		b.WriteString(", ")
		if m.Unit == "" {
			b.WriteString("None")
		} else {
			b.WriteString(quote(m.Unit))
		}
		b.WriteString(")")
	}
	b.WriteString("]")
	return b.String()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

// formatValue renders floats with a trailing .0 on whole numbers so that
// 25 and 25.5 read consistently as decimals in the prompt.
func formatValue(v *float64) string {
	if v == nil {
		return "None"
	}
	formatted := strconv.FormatFloat(*v, 'g', -1, 64)
	if !strings.ContainsAny(formatted, ".eE") {
		formatted += ".0"
	}
	return formatted
}
