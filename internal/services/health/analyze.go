package health

import "github.com/ternarybob/valeo/internal/models"

// Analyzer runs the full assessment over a dataset. It carries only the
// benchmark table and is safe for concurrent use.
type Analyzer struct {
	benchmarks *BenchmarkTable
}

// NewAnalyzer creates an Analyzer with the built-in benchmark table
func NewAnalyzer() *Analyzer {
	return &Analyzer{benchmarks: DefaultBenchmarkTable()}
}

// NewAnalyzerWithBenchmarks creates an Analyzer with a custom benchmark
// table, typically one extended from an override file
func NewAnalyzerWithBenchmarks(table *BenchmarkTable) *Analyzer {
	if table == nil {
		table = DefaultBenchmarkTable()
	}
	return &Analyzer{benchmarks: table}
}

// Analyze computes the assessment for a dataset and optional industry tag.
// It never fails on data-quality problems: missing columns, zero
// denominators, unknown industries and empty datasets all degrade to absent
// values or defaults. Identical inputs produce identical results.
func (a *Analyzer) Analyze(dataset *Dataset, industry string) models.AssessmentSummary {
	agg := Aggregate(dataset)
	ratios := ComputeRatios(agg)

	components := ScoreComponents(ratios)
	score := OverallScore(components)
	risk := RiskLevelFor(score)

	benchmarks := []models.BenchmarkMetric{}
	if row, ok := a.benchmarks.Resolve(industry); ok {
		benchmarks = CompareBenchmarks(row, ratios)
	}

	return models.AssessmentSummary{
		OverallScore: score,
		RiskLevel:    risk,
		Metrics:      BuildMetrics(ratios),
		Narrative:    BuildNarrative(score, risk, ratios),
		RawStats:     agg,
		Benchmarks:   benchmarks,
	}
}
