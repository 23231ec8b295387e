// Package ingest converts source-specific feed records (CSV uploads,
// sandbox-bank purchases, bank sync deltas) into canonical
// domain.Transaction values. Every adapter is a pure per-record
// mapping: a malformed record yields nil and is skipped, so one bad
// row never aborts a batch.
package ingest

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/domain"
	"github.com/spendlens/spendlens/internal/normalize"
)

// DefaultCategory is assigned when no source field provides one.
const DefaultCategory = "Uncategorized"

const dateFormat = "2006-01-02"

// RawRow is one CSV or manually entered transaction row. Amount is a
// json.Number so the same shape accepts JSON uploads and CSV cells.
type RawRow struct {
	Date      string      `json:"date"`
	Name      string      `json:"name"`
	Amount    json.Number `json:"amount"`
	Category  string      `json:"category,omitempty"`
	AccountID string      `json:"accountId,omitempty"`
}

// RawOptions configures the raw-row adapter.
type RawOptions struct {
	// SpendOnly rejects zero and negative amounts. Default true.
	SpendOnly bool
	// Source overrides the source tag, e.g. domain.SourceDemo for
	// fixture data. Default domain.SourceCSV.
	Source domain.Source
}

// DefaultRawOptions returns the adapter defaults.
func DefaultRawOptions() RawOptions {
	return RawOptions{SpendOnly: true, Source: domain.SourceCSV}
}

// FromRawRows maps a batch of raw rows, skipping invalid ones.
func FromRawRows(rows []RawRow, opts RawOptions) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		if t := FromRawRow(row, opts); t != nil {
			out = append(out, *t)
		}
	}
	return out
}

// FromRawRow maps one raw row, or returns nil when the row is missing
// a date, a name, or a finite amount (or, with SpendOnly, when the
// amount is not strictly positive).
func FromRawRow(row RawRow, opts RawOptions) *domain.Transaction {
	date, ok := parseDate(row.Date)
	if !ok {
		return nil
	}
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return nil
	}
	amount, ok := parseAmount(string(row.Amount))
	if !ok {
		return nil
	}
	if opts.SpendOnly && amount <= 0 {
		return nil
	}

	source := opts.Source
	if source == "" {
		source = domain.SourceCSV
	}
	category := strings.TrimSpace(row.Category)
	if category == "" {
		category = DefaultCategory
	}

	return &domain.Transaction{
		ID:          normalize.StableID(string(source), date, name, formatAmount(amount)),
		Date:        date,
		Amount:      amount,
		MerchantRaw: name,
		Merchant:    normalize.MerchantName(name),
		Category:    category,
		Source:      source,
		AccountID:   row.AccountID,
	}
}

// parseAmount parses a decimal amount string exactly, then converts to
// float64. Rejects empty, unparseable and non-finite values.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// formatAmount renders an amount canonically for ID derivation, so
// 6.25 and 6.250 hash identically.
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateFormat) {
		return "", false
	}
	// Tolerate timestamps by keeping the date prefix.
	s = s[:len(dateFormat)]
	if !validDate(s) {
		return "", false
	}
	return s, true
}

func validDate(s string) bool {
	if len(s) != len(dateFormat) {
		return false
	}
	_, err := parseISODate(s)
	return err == nil
}
