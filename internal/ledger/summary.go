package ledger

import (
	"github.com/spendlens/spendlens/internal/domain"
)

// Summarize aggregates a filtered transaction set in one pass:
// per-category and per-merchant totals, total spend, and detected
// recurring charges. Refunds and transfers are assumed to have been
// filtered by the caller already. The input is copied, never retained.
func Summarize(txs []domain.Transaction) domain.Summary {
	byCategory := make(map[string]float64)
	byMerchant := make(map[string]float64)
	total := 0.0

	copied := make([]domain.Transaction, len(txs))
	copy(copied, txs)

	for _, t := range copied {
		byCategory[t.Category] += t.Amount
		byMerchant[t.Merchant] += t.Amount
		total += t.Amount
	}

	return domain.Summary{
		Transactions: copied,
		ByCategory:   byCategory,
		ByMerchant:   byMerchant,
		Recurring:    DetectRecurring(copied),
		TotalSpend:   total,
	}
}
