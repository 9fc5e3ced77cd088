package health

import "github.com/ternarybob/valeo/internal/models"

// Metric interpretations - static explanations of what each metric measures
const (
	interpretationGrossMargin  = "Higher is better; aim for > 30% in many SMEs."
	interpretationCurrentRatio = "Liquidity; values between 1.2 and 2.0 are often considered healthy."
	interpretationTurnover     = "How many times inventory is sold/used; higher suggests efficient stock management."
	interpretationLeverage     = "Debt burden relative to assets; lower values generally indicate lower financial risk."
)

// BuildMetrics emits the four metrics in fixed order. A metric whose ratio
// is not computable keeps its entry with a nil value.
func BuildMetrics(r Ratios) []models.Metric {
	var marginPct *float64
	if r.GrossMargin != nil {
		v := *r.GrossMargin * 100
		marginPct = &v
	}

	return []models.Metric{
		{
			Key:            "gross_margin",
			Label:          "Gross Margin",
			Value:          marginPct,
			Unit:           "%",
			Interpretation: interpretationGrossMargin,
		},
		{
			Key:            "current_ratio",
			Label:          "Current Ratio",
			Value:          r.CurrentRatio,
			Interpretation: interpretationCurrentRatio,
		},
		{
			Key:            "inventory_turnover",
			Label:          "Inventory Turnover",
			Value:          r.InventoryTurnover,
			Interpretation: interpretationTurnover,
		},
		{
			Key:            "leverage_ratio",
			Label:          "Leverage Ratio (Debt / Assets+Inventory)",
			Value:          r.LeverageRatio,
			Interpretation: interpretationLeverage,
		},
	}
}
