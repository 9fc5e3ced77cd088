package health

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/valeo/internal/models"
)

// marginTolerancePct is the band around the industry margin treated as "ok"
const marginTolerancePct = 5.0

// Benchmark notes - static comparison wording
const (
	noteMarginOK   = "In line with similar businesses."
	noteMarginGood = "Stronger margin than typical peers."
	noteMarginRisk = "Margin is below typical peers; watch pricing and costs."
	noteDebtOK     = "Debt level is in a typical range for this industry."
	noteDebtGood   = "Debt is lower than usual, giving more flexibility."
	noteDebtRisk   = "Debt is higher than usual; monitor repayments closely."
)

// BenchmarkRow holds illustrative benchmark figures for one industry
type BenchmarkRow struct {
	Key            string  `yaml:"-"`
	GrossMarginPct float64 `yaml:"gross_margin_pct"`
	LeverageMin    float64 `yaml:"leverage_min"`
	LeverageMax    float64 `yaml:"leverage_max"`
}

// BenchmarkTable is an ordered benchmark lookup. Resolve scans rows in
// declaration order and matches when the row key is a substring of the
// normalized industry tag.
type BenchmarkTable struct {
	rows       []BenchmarkRow
	defaultRow BenchmarkRow
}

// DefaultBenchmarkTable returns the built-in table for common SME
// industries. Unmatched industries fall back to a general SME row.
func DefaultBenchmarkTable() *BenchmarkTable {
	return &BenchmarkTable{
		rows: []BenchmarkRow{
			{Key: "retail", GrossMarginPct: 30.0, LeverageMin: 0.5, LeverageMax: 1.5},
			{Key: "manufacturing", GrossMarginPct: 25.0, LeverageMin: 0.6, LeverageMax: 1.8},
			{Key: "services", GrossMarginPct: 40.0, LeverageMin: 0.2, LeverageMax: 1.0},
			{Key: "logistics", GrossMarginPct: 20.0, LeverageMin: 0.7, LeverageMax: 2.0},
			{Key: "agriculture", GrossMarginPct: 18.0, LeverageMin: 0.5, LeverageMax: 1.5},
			{Key: "e-commerce", GrossMarginPct: 35.0, LeverageMin: 0.4, LeverageMax: 1.6},
		},
		defaultRow: BenchmarkRow{Key: "default", GrossMarginPct: 30.0, LeverageMin: 0.4, LeverageMax: 1.6},
	}
}

// Resolve finds the benchmark row for an industry tag. An empty tag means
// no benchmarking was requested; anything else resolves to a row, falling
// back to the default.
func (t *BenchmarkTable) Resolve(industry string) (BenchmarkRow, bool) {
	if industry == "" {
		return BenchmarkRow{}, false
	}
	key := strings.ToLower(strings.TrimSpace(industry))
	for _, row := range t.rows {
		if strings.Contains(key, row.Key) {
			return row, true
		}
	}
	return t.defaultRow, true
}

// CompareBenchmarks emits exactly two comparison entries for a resolved
// row: margin vs the industry average, then debt vs the typical range. A
// missing ratio degrades the entry to "ok" with an absent business value.
func CompareBenchmarks(row BenchmarkRow, r Ratios) []models.BenchmarkMetric {
	marginStatus := models.BenchmarkStatusOK
	marginNote := noteMarginOK
	var marginPct *float64
	if r.GrossMargin != nil {
		v := *r.GrossMargin * 100
		marginPct = &v
		switch {
		case v >= row.GrossMarginPct+marginTolerancePct:
			marginStatus = models.BenchmarkStatusGood
			marginNote = noteMarginGood
		case v <= row.GrossMarginPct-marginTolerancePct:
			marginStatus = models.BenchmarkStatusRisk
			marginNote = noteMarginRisk
		}
	}
	industryMargin := row.GrossMarginPct

	debtStatus := models.BenchmarkStatusOK
	debtNote := noteDebtOK
	if r.LeverageRatio != nil {
		switch {
		case *r.LeverageRatio < row.LeverageMin:
			debtStatus = models.BenchmarkStatusGood
			debtNote = noteDebtGood
		case *r.LeverageRatio > row.LeverageMax:
			debtStatus = models.BenchmarkStatusRisk
			debtNote = noteDebtRisk
		}
	}

	return []models.BenchmarkMetric{
		{
			Key:            "margin_vs_industry",
			Label:          "Your margin vs industry average",
			BusinessValue:  marginPct,
			BenchmarkValue: &industryMargin,
			Status:         marginStatus,
			Note:           marginNote,
		},
		{
			// The typical range is conveyed only via the note text, so
			// BenchmarkValue stays absent here.
			Key:           "debt_vs_range",
			Label:         "Your debt level vs typical range",
			BusinessValue: r.LeverageRatio,
			Status:        debtStatus,
			Note:          debtNote,
		},
	}
}

// ParseBenchmarkYAML merges override rows into the default table. Known
// keys are replaced in place, unknown keys append in file order, and the
// special key "default" replaces the fallback row. Document order is
// preserved because match precedence depends on it.
func ParseBenchmarkYAML(data []byte) (*BenchmarkTable, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark overrides: %w", err)
	}

	table := DefaultBenchmarkTable()
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return table, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("benchmark overrides must be a mapping of industry to figures")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valueNode := root.Content[i+1]

		var row BenchmarkRow
		if err := valueNode.Decode(&row); err != nil {
			return nil, fmt.Errorf("invalid benchmark row %q: %w", keyNode.Value, err)
		}
		row.Key = strings.ToLower(strings.TrimSpace(keyNode.Value))
		table.upsert(row)
	}

	return table, nil
}

func (t *BenchmarkTable) upsert(row BenchmarkRow) {
	if row.Key == "default" {
		t.defaultRow = row
		return
	}
	for i := range t.rows {
		if t.rows[i].Key == row.Key {
			t.rows[i] = row
			return
		}
	}
	t.rows = append(t.rows, row)
}
