package bigquery

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/spendlens/spendlens/internal/domain"
)

const (
	datasetID         = "spendlens"
	transactionsTable = "transactions"
)

// projectID resolves the GCP project from the environment.
func projectID() string {
	return os.Getenv("GCP_PROJECT")
}

// LedgerSink is what the ingestion hosts need from this package.
type LedgerSink interface {
	InsertTransactions(ctx context.Context, txs []domain.Transaction) error
	Close() error
}

// LedgerSource is the read side, consumed by the API's transactions
// endpoint.
type LedgerSource interface {
	QueryTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]domain.Transaction, error)
}

// Repository is the concrete BigQuery-backed LedgerSink.
type Repository struct {
	client *bigquery.Client
}

// NewRepository creates a repository with its own BigQuery client.
func NewRepository(ctx context.Context) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID())
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return &Repository{client: client}, nil
}

// Close closes the underlying BigQuery client.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertTransactions inserts a batch into spendlens.transactions.
// Rows with unparseable dates are skipped rather than failing the
// batch, matching the per-record tolerance of the adapters.
func (r *Repository) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]*TransactionRow, 0, len(txs))
	for _, t := range txs {
		row, err := ToRow(t, now)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	inserter := r.client.Dataset(datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// QueryTransactionsByDateRange reads the ledger back for a date range,
// newest first.
func (r *Repository) QueryTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]domain.Transaction, error) {
	q := r.client.Query(`
		SELECT
			transaction_id,
			transaction_date,
			amount,
			merchant_raw,
			merchant,
			category,
			source,
			account_id,
			is_pending,
			ingested_ts
		FROM ` + "`" + datasetID + "." + transactionsTable + "`" + `
		WHERE transaction_date BETWEEN @start AND @end
		ORDER BY transaction_date DESC, transaction_id ASC
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start", Value: start.Format("2006-01-02")},
		{Name: "end", Value: end.Format("2006-01-02")},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: read: %w", err)
	}

	var out []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: iterate: %w", err)
		}
		out = append(out, FromRow(&row))
	}
	return out, nil
}

var _ LedgerSink = (*Repository)(nil)
var _ LedgerSource = (*Repository)(nil)
