package health

import (
	"testing"

	"github.com/ternarybob/valeo/internal/models"
)

func TestResolveBenchmark(t *testing.T) {
	table := DefaultBenchmarkTable()

	tests := []struct {
		name     string
		industry string
		wantKey  string
		wantOK   bool
	}{
		{"empty tag yields none", "", "", false},
		{"exact key", "retail", "retail", true},
		{"tag containing key", "Retail Store", "retail", true},
		{"case insensitive", "E-COMMERCE business", "e-commerce", true},
		{"unknown falls back to default", "bakery", "default", true},
		{"whitespace only falls back to default", "   ", "default", true},
		{"manufacturing", "Precision Manufacturing Ltd", "manufacturing", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := table.Resolve(tt.industry)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.industry, ok, tt.wantOK)
			}
			if ok && row.Key != tt.wantKey {
				t.Errorf("Resolve(%q) key = %q, want %q", tt.industry, row.Key, tt.wantKey)
			}
		})
	}
}

func TestResolveBenchmarkDeclarationOrder(t *testing.T) {
	table := DefaultBenchmarkTable()

	// "retail services" contains both keys; the earlier row wins
	row, ok := table.Resolve("retail services")
	if !ok || row.Key != "retail" {
		t.Errorf("Resolve(retail services) = %q, want retail (declaration order)", row.Key)
	}
}

func TestCompareBenchmarksMarginStatus(t *testing.T) {
	row := BenchmarkRow{Key: "retail", GrossMarginPct: 30.0, LeverageMin: 0.5, LeverageMax: 1.5}

	tests := []struct {
		name       string
		margin     *float64
		wantStatus models.BenchmarkStatus
		wantNote   string
	}{
		{"well above industry", f(0.40), models.BenchmarkStatusGood, noteMarginGood},
		{"boundary plus five", f(0.35), models.BenchmarkStatusGood, noteMarginGood},
		{"inside band", f(0.30), models.BenchmarkStatusOK, noteMarginOK},
		{"boundary minus five", f(0.25), models.BenchmarkStatusRisk, noteMarginRisk},
		{"well below industry", f(0.10), models.BenchmarkStatusRisk, noteMarginRisk},
		{"absent margin defaults to ok", nil, models.BenchmarkStatusOK, noteMarginOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareBenchmarks(row, Ratios{GrossMargin: tt.margin})
			if len(got) != 2 {
				t.Fatalf("CompareBenchmarks() returned %d entries, want 2", len(got))
			}

			margin := got[0]
			if margin.Key != "margin_vs_industry" {
				t.Fatalf("first entry key = %q, want margin_vs_industry", margin.Key)
			}
			if margin.Status != tt.wantStatus {
				t.Errorf("margin status = %q, want %q", margin.Status, tt.wantStatus)
			}
			if margin.Note != tt.wantNote {
				t.Errorf("margin note = %q, want %q", margin.Note, tt.wantNote)
			}
			if tt.margin == nil && margin.BusinessValue != nil {
				t.Errorf("business value = %v, want nil for absent margin", *margin.BusinessValue)
			}
			if tt.margin != nil && (margin.BusinessValue == nil || *margin.BusinessValue != *tt.margin*100) {
				t.Errorf("business value = %v, want %v", margin.BusinessValue, *tt.margin*100)
			}
			// Industry average is always reported for the margin entry
			if margin.BenchmarkValue == nil || *margin.BenchmarkValue != 30.0 {
				t.Errorf("benchmark value = %v, want 30.0", margin.BenchmarkValue)
			}
		})
	}
}

func TestCompareBenchmarksDebtStatus(t *testing.T) {
	row := BenchmarkRow{Key: "retail", GrossMarginPct: 30.0, LeverageMin: 0.5, LeverageMax: 1.5}

	tests := []struct {
		name       string
		leverage   *float64
		wantStatus models.BenchmarkStatus
		wantNote   string
	}{
		{"below range", f(0.33), models.BenchmarkStatusGood, noteDebtGood},
		{"at lower bound is ok", f(0.5), models.BenchmarkStatusOK, noteDebtOK},
		{"inside range", f(1.0), models.BenchmarkStatusOK, noteDebtOK},
		{"at upper bound is ok", f(1.5), models.BenchmarkStatusOK, noteDebtOK},
		{"above range", f(2.0), models.BenchmarkStatusRisk, noteDebtRisk},
		{"absent leverage defaults to ok", nil, models.BenchmarkStatusOK, noteDebtOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareBenchmarks(row, Ratios{LeverageRatio: tt.leverage})
			debt := got[1]

			if debt.Key != "debt_vs_range" {
				t.Fatalf("second entry key = %q, want debt_vs_range", debt.Key)
			}
			if debt.Status != tt.wantStatus {
				t.Errorf("debt status = %q, want %q", debt.Status, tt.wantStatus)
			}
			if debt.Note != tt.wantNote {
				t.Errorf("debt note = %q, want %q", debt.Note, tt.wantNote)
			}
			// The range lives in the note only
			if debt.BenchmarkValue != nil {
				t.Errorf("debt benchmark value = %v, want nil", *debt.BenchmarkValue)
			}
		})
	}
}

func TestParseBenchmarkYAML(t *testing.T) {
	data := []byte(`
retail:
  gross_margin_pct: 32.0
  leverage_min: 0.4
  leverage_max: 1.4
hospitality:
  gross_margin_pct: 22.0
  leverage_min: 0.6
  leverage_max: 1.9
`)

	table, err := ParseBenchmarkYAML(data)
	if err != nil {
		t.Fatalf("ParseBenchmarkYAML() error = %v", err)
	}

	// Known key replaced in place, keeping its precedence slot
	row, ok := table.Resolve("retail shop")
	if !ok || row.GrossMarginPct != 32.0 {
		t.Errorf("retail override not applied: %+v", row)
	}

	// New key appended and resolvable
	row, ok = table.Resolve("Hospitality group")
	if !ok || row.Key != "hospitality" || row.GrossMarginPct != 22.0 {
		t.Errorf("hospitality row not added: %+v", row)
	}

	// Untouched rows keep their defaults
	row, _ = table.Resolve("services")
	if row.GrossMarginPct != 40.0 {
		t.Errorf("services row changed unexpectedly: %+v", row)
	}
}

func TestParseBenchmarkYAMLDefaultOverride(t *testing.T) {
	data := []byte(`
default:
  gross_margin_pct: 28.0
  leverage_min: 0.3
  leverage_max: 1.7
`)

	table, err := ParseBenchmarkYAML(data)
	if err != nil {
		t.Fatalf("ParseBenchmarkYAML() error = %v", err)
	}

	row, ok := table.Resolve("bakery")
	if !ok || row.GrossMarginPct != 28.0 {
		t.Errorf("default override not applied: %+v", row)
	}
}

func TestParseBenchmarkYAMLEmpty(t *testing.T) {
	table, err := ParseBenchmarkYAML(nil)
	if err != nil {
		t.Fatalf("ParseBenchmarkYAML(nil) error = %v", err)
	}

	row, ok := table.Resolve("retail")
	if !ok || row.GrossMarginPct != 30.0 {
		t.Errorf("empty override must keep defaults: %+v", row)
	}
}

func TestParseBenchmarkYAMLRejectsNonMapping(t *testing.T) {
	if _, err := ParseBenchmarkYAML([]byte("- a\n- b\n")); err == nil {
		t.Error("ParseBenchmarkYAML() expected error for sequence document")
	}
}
