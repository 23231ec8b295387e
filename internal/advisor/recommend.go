// Package advisor turns a spend summary and a savings goal into
// ranked, explainable recommendations, and projects the effect of
// applying a chosen subset of them. Pure computation, no I/O.
package advisor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spendlens/spendlens/internal/domain"
	"github.com/spendlens/spendlens/internal/normalize"
)

const dateFormat = "2006-01-02"

// essentialMarkers are merchant substrings the recommender never
// proposes cancelling, however recurring they look.
var essentialMarkers = []string{
	"RENT",
	"MORTGAGE",
	"INSURANCE",
	"UTILIT",
	"ELECTRIC",
	"WATER",
	"LOAN",
	"TUITION",
}

// occurrences per month for each cadence.
var monthlyFactor = map[domain.Cadence]float64{
	domain.CadenceWeekly:   52.0 / 12.0,
	domain.CadenceBiweekly: 26.0 / 12.0,
	domain.CadenceMonthly:  1,
}

// Recommend produces savings actions for the given goal, ranked by
// expected monthly savings (descending), then effort (ascending), then
// target name. A structurally invalid or unrecognized goal yields an
// empty list, never an error: goal validation is a configuration
// concern, not a failure of the analysis.
func Recommend(summary domain.Summary, goal domain.Goal) []domain.Recommendation {
	switch goal.GoalType {
	case domain.GoalMonthlyCap:
		return recommendForCap(summary, goal)
	case domain.GoalSaveByDate:
		return recommendForSaveByDate(summary, goal)
	default:
		return []domain.Recommendation{}
	}
}

func recommendForCap(summary domain.Summary, goal domain.Goal) []domain.Recommendation {
	category := strings.TrimSpace(goal.Category)
	if category == "" || goal.CapAmount < 0 {
		return []domain.Recommendation{}
	}
	current, ok := summary.ByCategory[category]
	if !ok || current <= goal.CapAmount {
		return []domain.Recommendation{}
	}

	overage := current - goal.CapAmount
	return []domain.Recommendation{{
		ID:                     normalize.StableID("rec", "cap", category),
		ActionType:             domain.ActionCap,
		Title:                  fmt.Sprintf("Cap %s at $%.2f/month", category, goal.CapAmount),
		Target:                 domain.Target{Kind: domain.TargetCategory, Value: category},
		ExpectedMonthlySavings: overage,
		EffortScore:            0.5,
		Confidence:             0.9,
		Explanation: fmt.Sprintf(
			"You spent $%.2f on %s against a $%.2f cap; holding the cap saves $%.2f per month.",
			current, category, goal.CapAmount, overage),
	}}
}

func recommendForSaveByDate(summary domain.Summary, goal domain.Goal) []domain.Recommendation {
	if goal.SaveAmount <= 0 {
		return []domain.Recommendation{}
	}
	requiredMonthly := goal.SaveAmount / monthsUntil(summary, goal.ByDate)

	candidates := cancelCandidates(summary)
	candidates = append(candidates, substituteCandidates(summary, candidates)...)

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ExpectedMonthlySavings != candidates[j].ExpectedMonthlySavings {
			return candidates[i].ExpectedMonthlySavings > candidates[j].ExpectedMonthlySavings
		}
		if candidates[i].EffortScore != candidates[j].EffortScore {
			return candidates[i].EffortScore < candidates[j].EffortScore
		}
		return candidates[i].Target.Value < candidates[j].Target.Value
	})

	out := make([]domain.Recommendation, 0, len(candidates))
	accumulated := 0.0
	for _, c := range candidates {
		if accumulated >= requiredMonthly {
			break
		}
		out = append(out, c)
		accumulated += c.ExpectedMonthlySavings
	}
	return out
}

// cancelCandidates proposes cancelling recurring, non-essential
// merchants. Recurrence evidence travels along in Reasons.
func cancelCandidates(summary domain.Summary) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(summary.Recurring))
	for _, rc := range summary.Recurring {
		if isEssential(rc.Merchant) {
			continue
		}
		monthly := rc.ExpectedAmount * monthlyFactor[rc.Cadence]
		if monthly <= 0 {
			continue
		}
		out = append(out, domain.Recommendation{
			ID:                     normalize.StableID("rec", "cancel", rc.Merchant),
			ActionType:             domain.ActionCancel,
			Title:                  fmt.Sprintf("Cancel %s", rc.Merchant),
			Target:                 domain.Target{Kind: domain.TargetMerchant, Value: rc.Merchant},
			ExpectedMonthlySavings: monthly,
			EffortScore:            0.2,
			Confidence:             rc.Confidence,
			Explanation: fmt.Sprintf(
				"%s charges $%.2f %s; cancelling frees about $%.2f per month.",
				rc.Merchant, rc.ExpectedAmount, rc.Cadence, monthly),
			Reasons: []string{
				fmt.Sprintf("cadence=%s", rc.Cadence),
				fmt.Sprintf("confidence=%.2f", rc.Confidence),
				fmt.Sprintf("samples=%d", rc.SampleCount),
			},
		})
	}
	return out
}

// substituteCandidates proposes cheaper substitutes for categories
// with frequent purchases, skipping categories already covered by a
// cancel proposal. A conservative quarter of the category's monthly
// run rate is assumed recoverable.
func substituteCandidates(summary domain.Summary, cancels []domain.Recommendation) []domain.Recommendation {
	cancelled := make(map[string]bool, len(cancels))
	for _, c := range cancels {
		cancelled[c.Target.Value] = true
	}

	counts := make(map[string]int)
	covered := make(map[string]bool)
	for _, t := range summary.Transactions {
		counts[t.Category]++
		if cancelled[t.Merchant] {
			covered[t.Category] = true
		}
	}

	months := windowMonths(summary)
	out := make([]domain.Recommendation, 0)
	for category, n := range counts {
		if n < 3 || covered[category] {
			continue
		}
		monthly := summary.ByCategory[category] / months
		savings := 0.25 * monthly
		if savings <= 0 {
			continue
		}
		out = append(out, domain.Recommendation{
			ID:                     normalize.StableID("rec", "substitute", category),
			ActionType:             domain.ActionSubstitute,
			Title:                  fmt.Sprintf("Find a cheaper option for %s", category),
			Target:                 domain.Target{Kind: domain.TargetCategory, Value: category},
			ExpectedMonthlySavings: savings,
			EffortScore:            0.6,
			Confidence:             0.5,
			Explanation: fmt.Sprintf(
				"%d %s purchases run about $%.2f per month; substituting cheaper options could save $%.2f.",
				n, category, monthly, savings),
		})
	}
	return out
}

func isEssential(merchant string) bool {
	upper := strings.ToUpper(merchant)
	for _, marker := range essentialMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// monthsUntil estimates whole months between the newest observed
// transaction and the goal date, clamped to at least one so the
// required monthly figure stays finite. The newest transaction date
// anchors the calculation instead of the wall clock, keeping the
// recommender deterministic for a given input.
func monthsUntil(summary domain.Summary, byDate string) float64 {
	target, err := time.Parse(dateFormat, strings.TrimSpace(byDate))
	if err != nil {
		return 1
	}
	latest := time.Time{}
	for _, t := range summary.Transactions {
		if d, err := time.Parse(dateFormat, t.Date); err == nil && d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() || !target.After(latest) {
		return 1
	}
	months := target.Sub(latest).Hours() / 24 / 30
	if months < 1 {
		return 1
	}
	return months
}

// windowMonths estimates how many months of activity the summary
// covers, clamped to at least one.
func windowMonths(summary domain.Summary) float64 {
	var oldest, newest time.Time
	for _, t := range summary.Transactions {
		d, err := time.Parse(dateFormat, t.Date)
		if err != nil {
			continue
		}
		if oldest.IsZero() || d.Before(oldest) {
			oldest = d
		}
		if newest.IsZero() || d.After(newest) {
			newest = d
		}
	}
	if oldest.IsZero() {
		return 1
	}
	months := newest.Sub(oldest).Hours() / 24 / 30
	if months < 1 {
		return 1
	}
	return months
}
