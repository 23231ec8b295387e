// Package bigquery persists the normalized ledger in a BigQuery
// dataset. It is host-side glue: the analytics core never imports it.
package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/spendlens/spendlens/internal/domain"
)

// TransactionRow maps one domain.Transaction onto the
// spendlens.transactions table schema.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	Amount          *big.Rat   `bigquery:"amount"`           // REQUIRED NUMERIC

	MerchantRaw string `bigquery:"merchant_raw"` // REQUIRED
	Merchant    string `bigquery:"merchant"`     // REQUIRED
	Category    string `bigquery:"category"`     // REQUIRED
	Source      string `bigquery:"source"`       // REQUIRED

	AccountID bigquery.NullString `bigquery:"account_id"`
	IsPending bigquery.NullBool   `bigquery:"is_pending"`

	IngestedTS time.Time `bigquery:"ingested_ts"` // REQUIRED
}

// ToRow converts a domain transaction into its table representation.
func ToRow(t domain.Transaction, ingestedAt time.Time) (*TransactionRow, error) {
	date, err := civil.ParseDate(t.Date)
	if err != nil {
		return nil, fmt.Errorf("ToRow: invalid date %q: %w", t.Date, err)
	}

	amount := new(big.Rat)
	amount.SetFloat64(t.Amount)

	row := &TransactionRow{
		TransactionID:   t.ID,
		TransactionDate: date,
		Amount:          amount,
		MerchantRaw:     t.MerchantRaw,
		Merchant:        t.Merchant,
		Category:        t.Category,
		Source:          string(t.Source),
		IngestedTS:      ingestedAt,
	}
	if t.AccountID != "" {
		row.AccountID = bigquery.NullString{StringVal: t.AccountID, Valid: true}
	}
	row.IsPending = bigquery.NullBool{Bool: t.Pending, Valid: true}
	return row, nil
}

// FromRow converts a table row back into the domain representation.
func FromRow(r *TransactionRow) domain.Transaction {
	amount := 0.0
	if r.Amount != nil {
		amount, _ = r.Amount.Float64()
	}
	return domain.Transaction{
		ID:          r.TransactionID,
		Date:        r.TransactionDate.String(),
		Amount:      amount,
		MerchantRaw: r.MerchantRaw,
		Merchant:    r.Merchant,
		Category:    r.Category,
		Source:      domain.Source(r.Source),
		AccountID:   r.AccountID.StringVal,
		Pending:     r.IsPending.Bool,
	}
}
