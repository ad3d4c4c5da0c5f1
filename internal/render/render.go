package render

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"incomify/internal/models"
)

// Impact level thresholds. Fixed constants, not configurable.
const (
	highThreshold   = 0.66
	mediumThreshold = 0.33
)

// fallbackImportances is used positionally when the upstream omits
// feature_importances. Features at indices beyond its length score 0.
var fallbackImportances = []float64{1, 0.8, 0.6}

const currencyGlyph = "₱"

// FeatureImpact is one bar of the importance chart.
type FeatureImpact struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Level    string  `json:"level"`
	WidthPct int     `json:"width_pct"`
}

// ResultView is the displayable form of a prediction result.
type ResultView struct {
	PredictedIncome  float64         `json:"predicted_income"`
	FormattedIncome  string          `json:"formatted_income"`
	MonthlyEstimate  int64           `json:"monthly_estimate"`
	FormattedMonthly string          `json:"formatted_monthly"`
	Uncertainty      string          `json:"uncertainty,omitempty"`
	Features         []FeatureImpact `json:"features"`
}

// ImpactLevel maps an importance score to its qualitative label.
func ImpactLevel(score float64) string {
	switch {
	case score >= highThreshold:
		return "High"
	case score >= mediumThreshold:
		return "Medium"
	default:
		return "Low"
	}
}

// FormatIncome renders an income value with grouped digits and the currency
// glyph, rounded to the nearest whole amount.
func FormatIncome(v float64) string {
	return currencyGlyph + humanize.Comma(int64(math.Round(v)))
}

// MonthlyEstimate derives the integer-rounded monthly approximation of an
// annual income.
func MonthlyEstimate(annual float64) int64 {
	return int64(math.Round(annual / models.MonthsPerYear))
}

// FormatStd renders the uncertainty band, integer-rounded.
func FormatStd(std float64) string {
	return fmt.Sprintf("± %s", humanize.Comma(int64(math.Round(std))))
}

// FormatDelta renders the signed what-if delta. Non-negative deltas, zero
// included, carry an explicit leading "+".
func FormatDelta(baseline, whatIf float64) string {
	return fmt.Sprintf("%+d", int64(math.Round(whatIf-baseline)))
}

// ImportanceBars builds the bar chart rows for a result. When importances is
// empty the fixed fallback applies; a feature with no importance at its
// index scores 0 and lands in "Low".
func ImportanceBars(features []string, importances []float64) []FeatureImpact {
	if len(importances) == 0 {
		importances = fallbackImportances
	}

	bars := make([]FeatureImpact, 0, len(features))
	for i, name := range features {
		score := 0.0
		if i < len(importances) {
			score = importances[i]
		}
		bars = append(bars, FeatureImpact{
			Name:     name,
			Score:    score,
			Level:    ImpactLevel(score),
			WidthPct: int(math.Round(score * 100)),
		})
	}
	return bars
}

// Result assembles the full view for a prediction result.
func Result(r *models.PredictionResult) *ResultView {
	if r == nil {
		return nil
	}

	view := &ResultView{
		PredictedIncome: r.PredictedIncome,
		FormattedIncome: FormatIncome(r.PredictedIncome),
		MonthlyEstimate: MonthlyEstimate(r.PredictedIncome),
		Features:        ImportanceBars(r.ImportantFeatures, r.FeatureImportances),
	}
	view.FormattedMonthly = currencyGlyph + humanize.Comma(view.MonthlyEstimate)

	if r.PredictionStd != nil {
		view.Uncertainty = FormatStd(*r.PredictionStd)
	}

	return view
}

// WhatIfView pairs a what-if result with its delta against the baseline.
type WhatIfView struct {
	Result *ResultView `json:"result"`
	Delta  string      `json:"delta"`
}

// WhatIf assembles the what-if view. Both results must be present.
func WhatIf(baseline, whatIf *models.PredictionResult) *WhatIfView {
	if baseline == nil || whatIf == nil {
		return nil
	}
	return &WhatIfView{
		Result: Result(whatIf),
		Delta:  FormatDelta(baseline.PredictedIncome, whatIf.PredictedIncome),
	}
}
