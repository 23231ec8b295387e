package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/spendlens/spendlens/internal/domain"
	"github.com/spendlens/spendlens/internal/normalize"
)

const dateFormat = "2006-01-02"

// MinRecurringConfidence is the floor below which a detected cadence
// is considered noise and not surfaced.
const MinRecurringConfidence = 0.35

// cadenceBand maps a median inter-transaction gap (in days) to a
// cadence. Bands are inclusive; gaps outside every band are treated as
// irregular.
type cadenceBand struct {
	cadence    domain.Cadence
	minDays    int
	maxDays    int
	periodDays int
}

var cadenceBands = []cadenceBand{
	{domain.CadenceWeekly, 5, 9, 7},
	{domain.CadenceBiweekly, 12, 16, 14},
	{domain.CadenceMonthly, 26, 33, 30},
}

// DetectRecurring clusters transactions by canonical merchant and
// infers a cadence for every merchant whose inter-transaction gaps
// fall into the weekly, biweekly or monthly band. Results below
// MinRecurringConfidence are dropped; output is ordered by descending
// confidence, ties by merchant name.
func DetectRecurring(txs []domain.Transaction) []domain.RecurringCharge {
	type obs struct {
		date   time.Time
		amount float64
	}
	byMerchant := make(map[string][]obs)
	for _, t := range txs {
		d, err := time.Parse(dateFormat, t.Date)
		if err != nil {
			continue
		}
		byMerchant[t.Merchant] = append(byMerchant[t.Merchant], obs{date: d, amount: t.Amount})
	}

	out := make([]domain.RecurringCharge, 0)
	for merchant, observations := range byMerchant {
		if len(observations) < 2 {
			continue
		}
		sort.Slice(observations, func(i, j int) bool {
			return observations[i].date.Before(observations[j].date)
		})

		deltas := make([]float64, 0, len(observations)-1)
		amounts := make([]float64, 0, len(observations))
		for i, o := range observations {
			amounts = append(amounts, o.amount)
			if i > 0 {
				gap := o.date.Sub(observations[i-1].date).Hours() / 24
				deltas = append(deltas, gap)
			}
		}

		band, ok := matchCadence(median(deltas))
		if !ok {
			continue
		}

		confidence := scoreConfidence(len(observations), deltas, amounts, float64(band.periodDays))
		if confidence < MinRecurringConfidence {
			continue
		}

		last := observations[len(observations)-1].date
		next := last.AddDate(0, 0, band.periodDays)

		out = append(out, domain.RecurringCharge{
			ID:             normalize.StableID("recurring", merchant, string(band.cadence)),
			Merchant:       merchant,
			Cadence:        band.cadence,
			NextDate:       next.Format(dateFormat),
			ExpectedAmount: median(amounts),
			Confidence:     confidence,
			SampleCount:    len(observations),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Merchant < out[j].Merchant
	})
	return out
}

func matchCadence(medianGap float64) (cadenceBand, bool) {
	for _, band := range cadenceBands {
		if medianGap >= float64(band.minDays) && medianGap <= float64(band.maxDays) {
			return band, true
		}
	}
	return cadenceBand{}, false
}

// scoreConfidence combines cluster size with the relative spread of
// the date gaps and the amounts. Two perfectly regular observations
// score 0.5; six or more score up to 1.0; spread in either dimension
// pulls the score down.
func scoreConfidence(n int, deltas, amounts []float64, period float64) float64 {
	countFactor := 0.5 + 0.5*math.Min(1, float64(n-2)/4.0)

	dateSpread := stddev(deltas) / period
	amountSpread := 0.0
	if m := mean(amounts); m != 0 {
		amountSpread = stddev(amounts) / math.Abs(m)
	}

	consistency := (1 - math.Min(1, 2*dateSpread)) * (1 - math.Min(1, 2*amountSpread))
	return clamp01(countFactor * consistency)
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	variance := 0.0
	for _, x := range xs {
		variance += (x - m) * (x - m)
	}
	return math.Sqrt(variance / float64(len(xs)))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
