// Package handlers exposes the analytics engine over HTTP. Handlers
// are thin: decode, call the pure core, encode. All validation beyond
// JSON shape lives in the core's per-record rules.
package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/advisor"
	"github.com/spendlens/spendlens/internal/demo"
	"github.com/spendlens/spendlens/internal/domain"
	"github.com/spendlens/spendlens/internal/ingest"
	"github.com/spendlens/spendlens/internal/jobs"
	"github.com/spendlens/spendlens/internal/ledger"
	"github.com/spendlens/spendlens/internal/treemap"
)

// demoSummaryCacheKey is the cache slot for the demo summary payload.
const demoSummaryCacheKey = "spendlens:demo:summary"

// AnalyticsHandler serves the normalization and analytics endpoints.
type AnalyticsHandler struct {
	cache Cache
	log   zerolog.Logger
}

// NewAnalyticsHandler creates the analytics handler. cache may be nil
// to disable caching.
func NewAnalyticsHandler(cache Cache, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{cache: cache, log: log}
}

// NormalizeRaw handles POST /api/transactions/raw.
func (h *AnalyticsHandler) NormalizeRaw(c *gin.Context) {
	var req struct {
		Rows      []ingest.RawRow `json:"rows"`
		SpendOnly *bool           `json:"spendOnly,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	opts := ingest.DefaultRawOptions()
	if req.SpendOnly != nil {
		opts.SpendOnly = *req.SpendOnly
	}
	txs := ingest.FromRawRows(req.Rows, opts)

	h.log.Info().Int("rows", len(req.Rows)).Int("normalized", len(txs)).Msg("Normalized raw rows")
	c.JSON(http.StatusOK, gin.H{"transactions": txs, "skipped": len(req.Rows) - len(txs)})
}

// NormalizePurchases handles POST /api/transactions/purchases.
func (h *AnalyticsHandler) NormalizePurchases(c *gin.Context) {
	var req struct {
		Purchases       []ingest.Purchase `json:"purchases"`
		DefaultCategory string            `json:"defaultCategory,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	txs := ingest.FromPurchases(req.Purchases, req.DefaultCategory)
	c.JSON(http.StatusOK, gin.H{"transactions": txs, "skipped": len(req.Purchases) - len(txs)})
}

// ApplySync handles POST /api/transactions/sync.
func (h *AnalyticsHandler) ApplySync(c *gin.Context) {
	var req struct {
		Existing []domain.Transaction `json:"existing"`
		Delta    ingest.SyncDelta     `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	txs := ingest.ApplySyncDelta(req.Existing, req.Delta)
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// Summarize handles POST /api/summary.
func (h *AnalyticsHandler) Summarize(c *gin.Context) {
	var req struct {
		Transactions []domain.Transaction `json:"transactions"`
		Filters      domain.Filters       `json:"filters"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	filtered := ledger.ApplyFilters(req.Transactions, req.Filters)
	c.JSON(http.StatusOK, ledger.Summarize(filtered))
}

// Recommend handles POST /api/recommendations.
func (h *AnalyticsHandler) Recommend(c *gin.Context) {
	var req struct {
		Transactions []domain.Transaction `json:"transactions"`
		Filters      domain.Filters       `json:"filters"`
		Goal         domain.Goal          `json:"goal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	filtered := ledger.ApplyFilters(req.Transactions, req.Filters)
	summary := ledger.Summarize(filtered)
	recs := advisor.Recommend(summary, req.Goal)
	c.JSON(http.StatusOK, gin.H{"summary": summary, "recommendations": recs})
}

// Scenario handles POST /api/scenario.
func (h *AnalyticsHandler) Scenario(c *gin.Context) {
	var req struct {
		Summary         domain.Summary          `json:"summary"`
		SelectedActions []domain.Recommendation `json:"selectedActions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, advisor.Simulate(req.Summary, req.SelectedActions))
}

// Treemap handles POST /api/treemap.
func (h *AnalyticsHandler) Treemap(c *gin.Context) {
	var req struct {
		ByCategory map[string]float64 `json:"byCategory"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tiles": treemap.BuildFromCategories(req.ByCategory)})
}

// DemoSummary handles GET /api/demo/summary with cache-aside reads.
func (h *AnalyticsHandler) DemoSummary(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if cached, ok := h.cache.Get(ctx, demoSummaryCacheKey); ok {
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
	}

	txs := ledger.ApplyFilters(demo.Transactions(), domain.Filters{
		ExcludeTransfers: true,
		ExcludeRefunds:   true,
	})
	summary := ledger.Summarize(txs)

	if h.cache != nil {
		h.cache.Set(ctx, demoSummaryCacheKey, summary, 60*time.Second)
	}
	c.JSON(http.StatusOK, summary)
}

// LedgerSource reads persisted transactions back out of the warehouse.
type LedgerSource interface {
	QueryTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]domain.Transaction, error)
}

// LedgerHandler serves reads over the persisted ledger.
type LedgerHandler struct {
	source LedgerSource
	log    zerolog.Logger
}

// NewLedgerHandler creates the ledger handler.
func NewLedgerHandler(source LedgerSource, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{source: source, log: log}
}

// ListTransactions handles GET /api/transactions?start=&end=.
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	const dateFormat = "2006-01-02"

	start, err := time.Parse(dateFormat, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be a YYYY-MM-DD date"})
		return
	}
	end, err := time.Parse(dateFormat, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be a YYYY-MM-DD date"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not precede start"})
		return
	}

	txs, err := h.source.QueryTransactionsByDateRange(c.Request.Context(), start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs, "count": len(txs)})
}

// Uploader pushes a batch's bytes to object storage and returns its
// URI. Satisfied by a thin wrapper over gcsstore.Upload.
type Uploader interface {
	Upload(ctx context.Context, bucket, object string, data []byte, contentType string) (string, error)
}

// JobsHandler serves batch-analysis job endpoints.
type JobsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	uploader  Uploader
	bucket    string
	log       zerolog.Logger
}

// NewJobsHandler creates the jobs handler. uploader may be nil (and
// bucket empty) to disable direct batch uploads.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore, uploader Uploader, bucket string, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{publisher: publisher, store: store, uploader: uploader, bucket: bucket, log: log}
}

// EnqueueAnalyze handles POST /api/jobs/analyze.
func (h *JobsHandler) EnqueueAnalyze(c *gin.Context) {
	var req struct {
		GCSURI          string         `json:"gcs_uri"`
		Filters         domain.Filters `json:"filters"`
		DefaultCategory string         `json:"default_category,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.GCSURI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gcs_uri is required"})
		return
	}

	job := &jobs.AnalyzeBatchJob{
		GCSURI:          req.GCSURI,
		Filters:         req.Filters,
		DefaultCategory: req.DefaultCategory,
	}
	if err := h.publisher.PublishAnalyzeBatch(c.Request.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue analyze job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.JobID, "status": job.Status})
}

// maxBatchBytes bounds an uploaded CSV batch.
const maxBatchBytes = 10 << 20

// UploadBatch handles POST /api/batches: the request body is a CSV
// batch, pushed to object storage and enqueued for analysis in one
// step. The optional ?name= query names the object; otherwise one is
// generated.
func (h *JobsHandler) UploadBatch(c *gin.Context) {
	if h.uploader == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "batch uploads are not configured"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBatchBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is empty"})
		return
	}
	if len(data) > maxBatchBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "batch exceeds the size limit"})
		return
	}

	object := strings.TrimSpace(c.Query("name"))
	if object == "" {
		object = "batches/" + uuid.New().String() + ".csv"
	}

	ctx := c.Request.Context()
	uri, err := h.uploader.Upload(ctx, h.bucket, object, data, "text/csv")
	if err != nil {
		h.log.Error().Err(err).Str("object", object).Msg("Failed to upload batch")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload batch"})
		return
	}

	job := &jobs.AnalyzeBatchJob{GCSURI: uri}
	if err := h.publisher.PublishAnalyzeBatch(ctx, job); err != nil {
		h.log.Error().Err(err).Str("gcs_uri", uri).Msg("Failed to enqueue analyze job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("gcs_uri", uri).Msg("Batch uploaded and enqueued")
	c.JSON(http.StatusAccepted, gin.H{"job_id": job.JobID, "status": job.Status, "gcs_uri": uri})
}

// ListJobs handles GET /api/jobs.
func (h *JobsHandler) ListJobs(c *gin.Context) {
	filter := jobs.JobFilter{Status: jobs.JobStatus(c.Query("status"))}
	list, err := h.store.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": list, "count": len(list)})
}

// GetJob handles GET /api/jobs/:id.
func (h *JobsHandler) GetJob(c *gin.Context) {
	job, err := h.store.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}
