package ingest

import (
	"math"
	"strings"

	"github.com/spendlens/spendlens/internal/domain"
	"github.com/spendlens/spendlens/internal/normalize"
)

// Purchase is a sandbox-bank (Nessie-style) purchase record as the
// connector hands it over, with the merchant name already resolved.
type Purchase struct {
	PurchaseID string  `json:"purchase_id,omitempty"`
	Merchant   string  `json:"merchant"`
	Date       string  `json:"purchase_date"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type,omitempty"`
	Status     string  `json:"status,omitempty"`
	AccountID  string  `json:"payer_id,omitempty"`
}

// FromPurchases maps a batch of purchases, skipping invalid ones.
// defaultCategory is used when the record's type is empty; when both
// are empty the category falls back to DefaultCategory.
func FromPurchases(purchases []Purchase, defaultCategory string) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(purchases))
	for _, p := range purchases {
		if t := FromPurchase(p, defaultCategory); t != nil {
			out = append(out, *t)
		}
	}
	return out
}

// FromPurchase maps one purchase, or returns nil when the date,
// merchant or a finite amount is missing. The upstream purchase id is
// preferred for the transaction ID; a content-addressed one is derived
// otherwise.
func FromPurchase(p Purchase, defaultCategory string) *domain.Transaction {
	date, ok := parseDate(p.Date)
	if !ok {
		return nil
	}
	merchant := strings.TrimSpace(p.Merchant)
	if merchant == "" {
		return nil
	}
	if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) {
		return nil
	}

	category := strings.TrimSpace(p.Type)
	if category == "" {
		category = strings.TrimSpace(defaultCategory)
	}
	if category == "" {
		category = DefaultCategory
	}

	id := strings.TrimSpace(p.PurchaseID)
	if id == "" {
		id = normalize.StableID(string(domain.SourceNessie), date, merchant, formatAmount(p.Amount))
	}

	return &domain.Transaction{
		ID:          id,
		Date:        date,
		Amount:      p.Amount,
		MerchantRaw: merchant,
		Merchant:    normalize.MerchantName(merchant),
		Category:    category,
		Source:      domain.SourceNessie,
		AccountID:   p.AccountID,
		Pending:     strings.EqualFold(strings.TrimSpace(p.Status), "pending"),
	}
}
