package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spendlens/spendlens/internal/api/handlers"
	"github.com/spendlens/spendlens/internal/gcsstore"
	infraBQ "github.com/spendlens/spendlens/internal/infra/bigquery"
	"github.com/spendlens/spendlens/internal/ingest"
	"github.com/spendlens/spendlens/internal/jobs"
	"github.com/spendlens/spendlens/internal/jobs/inmemory"
	"github.com/spendlens/spendlens/internal/ledger"
	"github.com/spendlens/spendlens/internal/logger"
)

func main() {
	var (
		port   = flag.String("port", "8080", "HTTP server port")
		bucket = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for uploaded batches (or set GCS_BUCKET env)")
		noSink = flag.Bool("no-sink", false, "disable the BigQuery ledger sink (batch jobs analyze without persisting)")
	)
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	// Optional warehouse for batch jobs and ledger reads. The analytics
	// endpoints themselves are stateless.
	var sink infraBQ.LedgerSink
	var ledgerHandler *handlers.LedgerHandler
	if !*noSink && os.Getenv("GCP_PROJECT") != "" {
		repo, err := infraBQ.NewRepository(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer repo.Close()
		sink = repo
		ledgerHandler = handlers.NewLedgerHandler(repo, log)
	} else {
		log.Warn().Msg("No BigQuery configured - batch jobs will not persist rows and ledger reads are disabled")
	}

	// Optional batch upload target.
	var uploader handlers.Uploader
	if *bucket != "" {
		uploader = gcsUploader{}
	} else {
		log.Warn().Msg("No GCS bucket configured - batch uploads will be disabled")
	}

	// Optional Redis cache for derived payloads.
	cache, err := handlers.NewRedisCacheFromEnv(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	var handlerCache handlers.Cache
	if cache != nil {
		defer cache.Close()
		handlerCache = cache
		log.Info().Msg("Redis cache enabled")
	}

	// Job infrastructure for asynchronous batch analysis.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		batchJob, ok := job.(*jobs.AnalyzeBatchJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", batchJob.JobID).
			Str("gcs_uri", batchJob.GCSURI).
			Msg("Processing analyze-batch job")

		count, err := runAnalyzeBatch(ctx, batchJob, sink)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", batchJob.JobID).
				Msg("Analyze-batch job failed")
			return err
		}
		batchJob.TransactionCount = count

		log.Info().
			Str("job_id", batchJob.JobID).
			Int("transactions", count).
			Msg("Analyze-batch job completed")
		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	analyticsHandler := handlers.NewAnalyticsHandler(handlerCache, log)
	jobsHandler := handlers.NewJobsHandler(jobQueue, jobStore, uploader, *bucket, log)
	router := handlers.NewRouter(analyticsHandler, jobsHandler, ledgerHandler, log)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// gcsUploader adapts gcsstore.Upload to the handlers.Uploader interface.
type gcsUploader struct{}

func (gcsUploader) Upload(ctx context.Context, bucket, object string, data []byte, contentType string) (string, error) {
	return gcsstore.Upload(ctx, bucket, object, data, contentType)
}

// runAnalyzeBatch downloads the job's CSV batch, normalizes and filters
// it, and persists the surviving rows when a sink is configured. It
// returns the number of rows that survived.
func runAnalyzeBatch(ctx context.Context, job *jobs.AnalyzeBatchJob, sink infraBQ.LedgerSink) (int, error) {
	data, err := gcsstore.Download(ctx, job.GCSURI)
	if err != nil {
		return 0, fmt.Errorf("runAnalyzeBatch: download batch: %w", err)
	}

	rows, err := ingest.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("runAnalyzeBatch: parse CSV: %w", err)
	}

	if job.DefaultCategory != "" {
		for i := range rows {
			if strings.TrimSpace(rows[i].Category) == "" {
				rows[i].Category = job.DefaultCategory
			}
		}
	}

	txs := ingest.FromRawRows(rows, ingest.DefaultRawOptions())
	txs = ledger.ApplyFilters(txs, job.Filters)

	if sink != nil {
		if err := sink.InsertTransactions(ctx, txs); err != nil {
			return 0, fmt.Errorf("runAnalyzeBatch: persist rows: %w", err)
		}
	}
	return len(txs), nil
}
