package health

import (
	"strings"
	"testing"

	"github.com/ternarybob/valeo/internal/models"
)

func TestBuildNarrativeOpeningAlwaysPresent(t *testing.T) {
	got := BuildNarrative(50.0, models.RiskLevelMedium, Ratios{})
	want := "The overall financial health score for this business is 50.0/100, indicating medium risk."

	if got != want {
		t.Errorf("BuildNarrative() = %q, want %q", got, want)
	}
}

func TestBuildNarrativeAllSentences(t *testing.T) {
	r := Ratios{
		GrossMargin:       f(0.3),
		CurrentRatio:      f(1.25),
		InventoryTurnover: f(7.0),
		LeverageRatio:     f(200.0 / 600.0),
	}

	got := BuildNarrative(17.6875, models.RiskLevelHigh, r)
	want := "The overall financial health score for this business is 17.7/100, indicating high risk." +
		" Gross margin is approximately 30.0%, which reflects how much profit is retained after direct costs." +
		" The current ratio is about 1.25, representing short-term liquidity." +
		" Leverage (debt to assets + inventory) stands near 0.33, capturing debt burden."

	if got != want {
		t.Errorf("BuildNarrative() =\n%q\nwant\n%q", got, want)
	}
}

func TestBuildNarrativeTurnoverNeverNarrated(t *testing.T) {
	r := Ratios{InventoryTurnover: f(7.0)}

	got := BuildNarrative(64.0, models.RiskLevelMedium, r)
	if strings.Contains(strings.ToLower(got), "turnover") || strings.Contains(got, "inventory is") {
		t.Errorf("narrative mentions turnover: %q", got)
	}
	if got != "The overall financial health score for this business is 64.0/100, indicating medium risk." {
		t.Errorf("BuildNarrative() = %q", got)
	}
}

func TestBuildNarrativeSentenceSelection(t *testing.T) {
	tests := []struct {
		name          string
		ratios        Ratios
		wantSentences int
	}{
		{"no ratios", Ratios{}, 1},
		{"margin only", Ratios{GrossMargin: f(0.2)}, 2},
		{"margin and leverage", Ratios{GrossMargin: f(0.2), LeverageRatio: f(0.5)}, 3},
		{"everything", Ratios{GrossMargin: f(0.2), CurrentRatio: f(1.0), InventoryTurnover: f(3), LeverageRatio: f(0.5)}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildNarrative(50, models.RiskLevelMedium, tt.ratios)

			sentences := 1
			if tt.ratios.GrossMargin != nil {
				sentences++
			}
			if tt.ratios.CurrentRatio != nil {
				sentences++
			}
			if tt.ratios.LeverageRatio != nil {
				sentences++
			}
			if sentences != tt.wantSentences {
				t.Fatalf("test fixture inconsistent")
			}

			if tt.ratios.GrossMargin != nil && !strings.Contains(got, "Gross margin is approximately") {
				t.Errorf("missing gross margin sentence: %q", got)
			}
			if tt.ratios.CurrentRatio != nil && !strings.Contains(got, "The current ratio is about") {
				t.Errorf("missing current ratio sentence: %q", got)
			}
			if tt.ratios.LeverageRatio != nil && !strings.Contains(got, "Leverage (debt to assets + inventory) stands near") {
				t.Errorf("missing leverage sentence: %q", got)
			}
			if strings.Contains(got, "  ") {
				t.Errorf("sentences must be joined by single spaces: %q", got)
			}
		})
	}
}

func TestBuildNarrativeRiskLowercased(t *testing.T) {
	got := BuildNarrative(80.0, models.RiskLevelLow, Ratios{})
	if !strings.Contains(got, "indicating low risk.") {
		t.Errorf("risk level not lowercased: %q", got)
	}
}
