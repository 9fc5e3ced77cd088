package health

import (
	"testing"

	"github.com/ternarybob/valeo/internal/models"
)

func f(v float64) *float64 { return &v }

func TestGrossMarginScore(t *testing.T) {
	tests := []struct {
		name   string
		margin float64
		want   float64
	}{
		{"zero margin", 0, 0},
		{"thirty percent", 0.30, 18.75},
		{"forty percent hits ceiling", 0.40, 25},
		{"above target clamps to 25", 0.80, 25},
		{"negative margin clamps to 0", -0.20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grossMarginScore(tt.margin); got != tt.want {
				t.Errorf("grossMarginScore(%v) = %v, want %v", tt.margin, got, tt.want)
			}
		})
	}
}

func TestCurrentRatioScore(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"below 0.8", 0.5, 5},
		{"boundary 0.8", 0.8, 10},
		{"below 1.0", 0.99, 10},
		{"boundary 1.0", 1.0, 18},
		{"sweet spot entry 1.5", 1.5, 22},
		{"inside sweet spot", 2.0, 22},
		{"boundary 2.5 drops to 20", 2.5, 20},
		{"very high liquidity scores below sweet spot", 10.0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := currentRatioScore(tt.ratio); got != tt.want {
				t.Errorf("currentRatioScore(%v) = %v, want %v", tt.ratio, got, tt.want)
			}
		})
	}
}

func TestTurnoverScore(t *testing.T) {
	tests := []struct {
		name     string
		turnover float64
		want     float64
	}{
		{"doubles below cap", 3, 6},
		{"caps at 15", 7.5, 15},
		{"above cap", 100, 15},
		{"no lower clamp", -2, -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := turnoverScore(tt.turnover); got != tt.want {
				t.Errorf("turnoverScore(%v) = %v, want %v", tt.turnover, got, tt.want)
			}
		})
	}
}

func TestLeverageScore(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"above 2", 3, 5},
		{"boundary 2", 2, 10},
		{"above 1", 1.5, 10},
		{"boundary 1", 1, 15},
		{"above 0.5", 0.75, 15},
		{"boundary 0.5", 0.5, 20},
		{"low debt", 0.1, 20},
		{"zero debt", 0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := leverageScore(tt.ratio); got != tt.want {
				t.Errorf("leverageScore(%v) = %v, want %v", tt.ratio, got, tt.want)
			}
		})
	}
}

func TestScoreComponents(t *testing.T) {
	tests := []struct {
		name      string
		ratios    Ratios
		wantCount int
	}{
		{"all computable", Ratios{GrossMargin: f(0.3), CurrentRatio: f(1.25), InventoryTurnover: f(7), LeverageRatio: f(0.33)}, 4},
		{"none computable", Ratios{}, 0},
		{"margin only", Ratios{GrossMargin: f(0.3)}, 1},
		{"turnover and leverage", Ratios{InventoryTurnover: f(2), LeverageRatio: f(1)}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreComponents(tt.ratios); len(got) != tt.wantCount {
				t.Errorf("ScoreComponents() returned %d components, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestScoreComponentsFixedOrder(t *testing.T) {
	r := Ratios{GrossMargin: f(0.3), CurrentRatio: f(1.25), InventoryTurnover: f(7), LeverageRatio: f(200.0 / 600.0)}
	got := ScoreComponents(r)
	want := []float64{18.75, 18, 14, 20}

	if len(got) != len(want) {
		t.Fatalf("ScoreComponents() returned %d components, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("component[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOverallScore(t *testing.T) {
	tests := []struct {
		name       string
		components []float64
		want       float64
	}{
		{"empty defaults to neutral", nil, 50.0},
		{"single component", []float64{20}, 20},
		{"mean of components", []float64{18.75, 18, 14, 20}, 17.6875},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallScore(tt.components); got != tt.want {
				t.Errorf("OverallScore(%v) = %v, want %v", tt.components, got, tt.want)
			}
		})
	}
}

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  models.RiskLevel
	}{
		{100, models.RiskLevelLow},
		{75, models.RiskLevelLow},
		{74.999, models.RiskLevelMedium},
		{50, models.RiskLevelMedium},
		{49.999, models.RiskLevelHigh},
		{0, models.RiskLevelHigh},
	}

	for _, tt := range tests {
		if got := RiskLevelFor(tt.score); got != tt.want {
			t.Errorf("RiskLevelFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
	if got := Mean([]float64{2, 4, 6}); got != 4 {
		t.Errorf("Mean = %v, want 4", got)
	}
}

func TestClampFloat64(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := ClampFloat64(tt.value, tt.min, tt.max); got != tt.want {
			t.Errorf("ClampFloat64(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.want)
		}
	}
}
