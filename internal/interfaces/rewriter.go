package interfaces

import (
	"context"

	"github.com/ternarybob/valeo/internal/models"
)

// NarrativeRewriter polishes a generated narrative into advisor-style prose.
// Implementations must be best-effort: the deterministic narrative is always
// a valid fallback, so callers keep the original text whenever Rewrite
// returns an error or an empty string.
type NarrativeRewriter interface {
	// Rewrite returns a polished version of the narrative, using the metric
	// values as factual context. The returned text is already trimmed.
	Rewrite(ctx context.Context, narrative string, metrics []models.Metric) (string, error)

	// Enabled reports whether a live provider is configured. When false,
	// Rewrite returns the input narrative unchanged.
	Enabled() bool
}
