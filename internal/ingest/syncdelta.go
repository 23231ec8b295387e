package ingest

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spendlens/spendlens/internal/domain"
	"github.com/spendlens/spendlens/internal/normalize"
)

// DeltaTransaction is one record from a bank sync feed (Plaid-style
// transactions-sync). The upstream transaction id keys supersession.
type DeltaTransaction struct {
	TransactionID string  `json:"transaction_id"`
	Date          string  `json:"date"`
	Name          string  `json:"name"`
	MerchantName  string  `json:"merchant_name,omitempty"`
	Amount        float64 `json:"amount"`
	Category      string  `json:"category,omitempty"`
	AccountID     string  `json:"account_id,omitempty"`
	Pending       bool    `json:"pending,omitempty"`
}

// SyncDelta is one added/modified/removed bundle from a sync cursor.
type SyncDelta struct {
	Added    []DeltaTransaction `json:"added"`
	Modified []DeltaTransaction `json:"modified"`
	Removed  []string           `json:"removed"`
}

// ApplySyncDelta merges a sync delta into an existing ledger slice.
// Added records are inserted, modified records supersede any earlier
// record with the same upstream id (later writes win), and removed ids
// are deleted; removing an id that was never present is a no-op. The
// result is freshly allocated and ordered newest date first, ties
// broken by ascending id.
func ApplySyncDelta(existing []domain.Transaction, delta SyncDelta) []domain.Transaction {
	byID := make(map[string]domain.Transaction, len(existing)+len(delta.Added))
	for _, t := range existing {
		byID[t.ID] = t
	}
	for _, d := range delta.Added {
		if t := fromDelta(d); t != nil {
			byID[t.ID] = *t
		}
	}
	for _, d := range delta.Modified {
		if t := fromDelta(d); t != nil {
			byID[t.ID] = *t
		}
	}
	for _, id := range delta.Removed {
		delete(byID, id)
	}

	out := make([]domain.Transaction, 0, len(byID))
	for _, t := range byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// fromDelta maps one sync record, or returns nil when the date, a
// merchant name or a finite amount is missing.
func fromDelta(d DeltaTransaction) *domain.Transaction {
	date, ok := parseDate(d.Date)
	if !ok {
		return nil
	}
	raw := strings.TrimSpace(d.Name)
	if raw == "" {
		raw = strings.TrimSpace(d.MerchantName)
	}
	if raw == "" {
		return nil
	}
	if math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) {
		return nil
	}

	merchant := strings.TrimSpace(d.MerchantName)
	if merchant == "" {
		merchant = raw
	}
	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = DefaultCategory
	}
	id := strings.TrimSpace(d.TransactionID)
	if id == "" {
		id = normalize.StableID(string(domain.SourceBank), date, raw, formatAmount(d.Amount))
	}

	return &domain.Transaction{
		ID:          id,
		Date:        date,
		Amount:      d.Amount,
		MerchantRaw: raw,
		Merchant:    normalize.MerchantName(merchant),
		Category:    category,
		Source:      domain.SourceBank,
		AccountID:   d.AccountID,
		Pending:     d.Pending,
	}
}

func parseISODate(s string) (time.Time, error) {
	return time.Parse(dateFormat, s)
}
