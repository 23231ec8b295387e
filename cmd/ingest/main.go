package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/spendlens/spendlens/internal/gcsstore"
	infraBQ "github.com/spendlens/spendlens/internal/infra/bigquery"
	"github.com/spendlens/spendlens/internal/ingest"
	"github.com/spendlens/spendlens/internal/logger"
)

func main() {
	log := logger.New()

	gcsURI := flag.String("gcs-uri", "", "GCS URI of a transactions CSV (e.g. gs://bucket/batch.csv)")
	flag.Parse()

	if *gcsURI == "" {
		log.Fatal().Msg("Error: --gcs-uri is required")
	}

	// Bounded context so the CLI doesn't hang on a stuck download.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("gcs_uri", *gcsURI).Msg("Starting ingestion")

	data, err := gcsstore.Download(ctx, *gcsURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to download batch")
	}

	rows, err := ingest.ReadCSV(bytes.NewReader(data))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse CSV")
	}

	txs := ingest.FromRawRows(rows, ingest.DefaultRawOptions())
	skipped := len(rows) - len(txs)
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("Some rows were invalid and skipped")
	}

	repo, err := infraBQ.NewRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	if err := repo.InsertTransactions(ctx, txs); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert transactions")
	}

	log.Info().Int("transactions", len(txs)).Msg("Ingestion completed")
	fmt.Printf("Ingested %d transactions.\n", len(txs))
}
