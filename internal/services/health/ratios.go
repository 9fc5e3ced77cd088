package health

import "github.com/ternarybob/valeo/internal/models"

// safeRatio divides numerator by denominator, returning nil when the
// denominator is zero. Never returns Inf or NaN for finite inputs.
func safeRatio(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	v := numerator / denominator
	return &v
}

// ComputeRatios derives the four core ratios from aggregates. Each ratio is
// nil when its denominator is zero.
func ComputeRatios(agg models.Aggregates) Ratios {
	return Ratios{
		GrossMargin:       safeRatio(agg.ProfitTotal, agg.RevenueTotal),
		CurrentRatio:      safeRatio(agg.CurrentAssets, agg.CurrentLiabilities),
		InventoryTurnover: safeRatio(agg.ExpensesTotal, agg.Inventory),
		LeverageRatio:     safeRatio(agg.TotalDebt, agg.CurrentAssets+agg.Inventory),
	}
}
