// Package demo carries a small fixture ledger for walkthroughs and
// local development. The dataset is exposed through an accessor that
// returns a fresh copy per call, so no caller can mutate shared state.
package demo

import (
	"github.com/spendlens/spendlens/internal/domain"
	"github.com/spendlens/spendlens/internal/ingest"
)

var fixtureRows = []ingest.RawRow{
	{Date: "2025-01-03", Name: "NETFLIX.COM", Amount: "15.49", Category: "Entertainment"},
	{Date: "2025-02-03", Name: "NETFLIX.COM", Amount: "15.49", Category: "Entertainment"},
	{Date: "2025-03-03", Name: "NETFLIX.COM", Amount: "15.49", Category: "Entertainment"},
	{Date: "2025-01-05", Name: "SPOTIFY USA", Amount: "10.99", Category: "Entertainment"},
	{Date: "2025-02-05", Name: "SPOTIFY USA", Amount: "10.99", Category: "Entertainment"},
	{Date: "2025-03-05", Name: "SPOTIFY USA", Amount: "10.99", Category: "Entertainment"},
	{Date: "2025-01-04", Name: "STARBUCKS 04567 POS PURCHASE", Amount: "6.25", Category: "Coffee"},
	{Date: "2025-01-11", Name: "STARBUCKS 04890 POS PURCHASE", Amount: "6.75", Category: "Coffee"},
	{Date: "2025-01-18", Name: "STARBUCKS 04567 POS PURCHASE", Amount: "6.25", Category: "Coffee"},
	{Date: "2025-01-25", Name: "STARBUCKS 04567 POS PURCHASE", Amount: "6.50", Category: "Coffee"},
	{Date: "2025-01-08", Name: "WHOLE FOODS MARKET #112", Amount: "84.12", Category: "Groceries"},
	{Date: "2025-01-22", Name: "WHOLE FOODS MARKET #112", Amount: "91.40", Category: "Groceries"},
	{Date: "2025-02-05", Name: "WHOLE FOODS MARKET #112", Amount: "78.03", Category: "Groceries"},
	{Date: "2025-01-02", Name: "PLANET FITNESS", Amount: "24.99", Category: "Fitness"},
	{Date: "2025-02-02", Name: "PLANET FITNESS", Amount: "24.99", Category: "Fitness"},
	{Date: "2025-03-02", Name: "PLANET FITNESS", Amount: "24.99", Category: "Fitness"},
	{Date: "2025-01-14", Name: "SHELL OIL 5771", Amount: "48.60", Category: "Gas"},
	{Date: "2025-02-11", Name: "SHELL OIL 5771", Amount: "52.15", Category: "Gas"},
	{Date: "2025-01-20", Name: "AMAZON MKTPL*RT4Y7", Amount: "37.84", Category: "Shopping"},
	{Date: "2025-02-17", Name: "CHIPOTLE 2201", Amount: "14.35", Category: "Dining"},
}

// Transactions returns the demo ledger, normalized through the raw-row
// adapter. Each call builds an independent slice.
func Transactions() []domain.Transaction {
	opts := ingest.DefaultRawOptions()
	opts.Source = domain.SourceDemo
	rows := make([]ingest.RawRow, len(fixtureRows))
	copy(rows, fixtureRows)
	return ingest.FromRawRows(rows, opts)
}
