// Package health provides pure calculation functions for financial health
// assessment of small/medium businesses. All functions are stateless and
// perform no I/O.
package health

// Ratios holds the four derived ratios. A nil field means the ratio is not
// computable for this dataset (zero denominator); nil is never conflated
// with a zero value.
type Ratios struct {
	GrossMargin       *float64 `json:"gross_margin"`
	CurrentRatio      *float64 `json:"current_ratio"`
	InventoryTurnover *float64 `json:"inventory_turnover"`
	LeverageRatio     *float64 `json:"leverage_ratio"`
}
