package health

import (
	"fmt"
	"strings"

	"github.com/ternarybob/valeo/internal/models"
)

// BuildNarrative assembles the narrative from fixed sentence templates. The
// opening sentence is always present; one sentence per computable ratio
// follows, in fixed order. Inventory turnover is never narrated. Sentences
// are joined with single spaces.
func BuildNarrative(score float64, risk models.RiskLevel, r Ratios) string {
	parts := []string{
		fmt.Sprintf("The overall financial health score for this business is %.1f/100, indicating %s risk.",
			score, strings.ToLower(string(risk))),
	}

	if r.GrossMargin != nil {
		parts = append(parts,
			fmt.Sprintf("Gross margin is approximately %.1f%%, which reflects how much profit is retained after direct costs.",
				*r.GrossMargin*100))
	}
	if r.CurrentRatio != nil {
		parts = append(parts,
			fmt.Sprintf("The current ratio is about %.2f, representing short-term liquidity.",
				*r.CurrentRatio))
	}
	if r.LeverageRatio != nil {
		parts = append(parts,
			fmt.Sprintf("Leverage (debt to assets + inventory) stands near %.2f, capturing debt burden.",
				*r.LeverageRatio))
	}

	return strings.Join(parts, " ")
}
