package advisor

import (
	"math"

	"github.com/spendlens/spendlens/internal/domain"
)

// Simulate applies a selected set of recommendations to the summary's
// baseline spend. Non-finite savings figures are coerced to zero so a
// single malformed recommendation cannot poison the aggregate, and the
// projected spend never goes negative.
func Simulate(summary domain.Summary, selected []domain.Recommendation) domain.ScenarioResult {
	before := finiteOrZero(summary.TotalSpend)

	savings := 0.0
	for _, rec := range selected {
		savings += finiteOrZero(rec.ExpectedMonthlySavings)
	}

	after := before - savings
	if after < 0 {
		after = 0
	}

	return domain.ScenarioResult{
		BeforeSpend:             before,
		AfterSpend:              after,
		EstimatedMonthlySavings: savings,
		SelectedActionCount:     len(selected),
	}
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
