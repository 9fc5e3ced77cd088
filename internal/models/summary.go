package models

// RiskLevel classifies the overall score into a risk tier
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"
)

// BenchmarkStatus is the outcome of a benchmark comparison
type BenchmarkStatus string

const (
	BenchmarkStatusGood BenchmarkStatus = "good"
	BenchmarkStatusOK   BenchmarkStatus = "ok"
	BenchmarkStatusRisk BenchmarkStatus = "risk"
)

// Aggregates holds the column-wise totals extracted from a dataset
type Aggregates struct {
	RevenueTotal       float64 `json:"revenue_total"`
	ExpensesTotal      float64 `json:"expenses_total"`
	ProfitTotal        float64 `json:"profit_total"`
	CurrentAssets      float64 `json:"current_assets"`
	CurrentLiabilities float64 `json:"current_liabilities"`
	Inventory          float64 `json:"inventory"`
	TotalDebt          float64 `json:"total_debt"`
}

// Metric is one reported financial metric. Value is nil when the underlying
// ratio is not computable; the metric entry is still emitted.
type Metric struct {
	Key            string   `json:"key"`
	Label          string   `json:"label"`
	Value          *float64 `json:"value"`
	Unit           string   `json:"unit,omitempty"`
	Interpretation string   `json:"interpretation"`
}

// BenchmarkMetric compares one business figure against an industry benchmark
type BenchmarkMetric struct {
	Key            string          `json:"key"`
	Label          string          `json:"label"`
	BusinessValue  *float64        `json:"business_value"`
	BenchmarkValue *float64        `json:"benchmark_value"`
	Status         BenchmarkStatus `json:"status"`
	Note           string          `json:"note"`
}

// AssessmentSummary is the complete analysis output for one dataset. It is
// what the API returns for an assessment and what is cached in storage as
// the assessment's summary JSON.
type AssessmentSummary struct {
	OverallScore float64           `json:"overall_score"`
	RiskLevel    RiskLevel         `json:"risk_level"`
	Metrics      []Metric          `json:"metrics"`
	Narrative    string            `json:"narrative"`
	RawStats     Aggregates        `json:"raw_stats"`
	Benchmarks   []BenchmarkMetric `json:"benchmarks"`
}
