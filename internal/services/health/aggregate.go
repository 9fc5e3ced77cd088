package health

import "github.com/ternarybob/valeo/internal/models"

// Column name sets recognized by the aggregator. Revenue and expense columns
// accept common synonyms; the balance-sheet columns match one exact name.
var (
	revenueColumns = []string{"revenue", "sales", "turnover"}
	expenseColumns = []string{"expenses", "operating_expenses", "opex"}
)

// Aggregate computes the fixed-key totals for a dataset. Missing columns
// contribute 0.0 and never fail.
func Aggregate(d *Dataset) models.Aggregates {
	revenue := d.SumColumns(revenueColumns...)
	expenses := d.SumColumns(expenseColumns...)

	return models.Aggregates{
		RevenueTotal:       revenue,
		ExpensesTotal:      expenses,
		ProfitTotal:        revenue - expenses,
		CurrentAssets:      d.SumColumns("current_assets"),
		CurrentLiabilities: d.SumColumns("current_liabilities"),
		Inventory:          d.SumColumns("inventory"),
		TotalDebt:          d.SumColumns("total_debt"),
	}
}
