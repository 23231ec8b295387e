// Package ledger aggregates normalized transactions into spend
// summaries and detects recurring charges. Everything here is a pure
// computation over value objects: inputs are never mutated and every
// call returns freshly allocated output.
package ledger

import (
	"strings"

	"github.com/spendlens/spendlens/internal/domain"
)

// transferKeywords flag internal money movements when they appear in
// the merchant or raw merchant text. The set is deliberately small:
// missing a transfer is preferred over discarding real spend.
var transferKeywords = []string{
	"TRANSFER",
	"ACH",
	"ZELLE",
	"VENMO",
	"PAYPAL",
	"CASH APP",
	"XFER",
	"WIRE",
}

// IsRefund reports whether the transaction is a refund or credit.
func IsRefund(t domain.Transaction) bool {
	return t.Amount < 0
}

// IsTransferLike reports whether the transaction looks like an
// internal money movement rather than real spend. It matches a
// "transfer"/"transfers" category or a transfer keyword in the
// merchant text. Conservative by design of the keyword set.
func IsTransferLike(t domain.Transaction) bool {
	category := strings.ToLower(strings.TrimSpace(t.Category))
	if category == "transfer" || category == "transfers" {
		return true
	}
	haystack := strings.ToUpper(t.Merchant + " " + t.MerchantRaw)
	for _, kw := range transferKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// ApplyFilters returns the transactions that survive the configured
// filters, preserving input order. The input slice is not modified.
func ApplyFilters(txs []domain.Transaction, f domain.Filters) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.ExcludeRefunds && IsRefund(t) {
			continue
		}
		if f.ExcludeTransfers && IsTransferLike(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
