package health

import (
	"math"

	"github.com/ternarybob/valeo/internal/models"
)

// Score component scales. Each computable ratio contributes one component;
// the overall score is the mean of the contributed components.
const (
	marginScoreCeiling   = 25.0
	marginTargetPct      = 40.0
	turnoverScoreCeiling = 15.0
	neutralScore         = 50.0
)

// Risk tier thresholds on the overall score
const (
	riskLowThreshold    = 75.0
	riskMediumThreshold = 50.0
)

// grossMarginScore scales margin percentage against a 40% target, clamped
// to [0, 25]
func grossMarginScore(grossMargin float64) float64 {
	return ClampFloat64(grossMargin*100/marginTargetPct*marginScoreCeiling, 0, marginScoreCeiling)
}

// currentRatioScore bands the current ratio. Not monotonic: the 1.5-2.5
// band outranks the open top band. Intentional, do not flatten.
func currentRatioScore(r float64) float64 {
	switch {
	case r < 0.8:
		return 5
	case r < 1.0:
		return 10
	case r < 1.5:
		return 18
	case r < 2.5:
		return 22
	default:
		return 20
	}
}

// turnoverScore caps at 15 with no lower clamp; negative turnover from
// negative inputs contributes negatively.
func turnoverScore(turnover float64) float64 {
	return math.Min(turnover*2, turnoverScoreCeiling)
}

// leverageScore bands the leverage ratio, rewarding low debt
func leverageScore(r float64) float64 {
	switch {
	case r > 2:
		return 5
	case r > 1:
		return 10
	case r > 0.5:
		return 15
	default:
		return 20
	}
}

// ScoreComponents returns one component per computable ratio, in fixed
// order: gross margin, current ratio, inventory turnover, leverage.
func ScoreComponents(r Ratios) []float64 {
	components := make([]float64, 0, 4)
	if r.GrossMargin != nil {
		components = append(components, grossMarginScore(*r.GrossMargin))
	}
	if r.CurrentRatio != nil {
		components = append(components, currentRatioScore(*r.CurrentRatio))
	}
	if r.InventoryTurnover != nil {
		components = append(components, turnoverScore(*r.InventoryTurnover))
	}
	if r.LeverageRatio != nil {
		components = append(components, leverageScore(*r.LeverageRatio))
	}
	return components
}

// OverallScore is the mean of the components, or 50.0 when no ratio was
// computable
func OverallScore(components []float64) float64 {
	if len(components) == 0 {
		return neutralScore
	}
	return Mean(components)
}

// RiskLevelFor partitions the overall score into non-overlapping tiers
func RiskLevelFor(score float64) models.RiskLevel {
	switch {
	case score >= riskLowThreshold:
		return models.RiskLevelLow
	case score >= riskMediumThreshold:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelHigh
	}
}
