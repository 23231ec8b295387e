package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/domain"
	"github.com/spendlens/spendlens/internal/jobs"
	"github.com/spendlens/spendlens/internal/jobs/inmemory"
)

func testRouter(t *testing.T, cache Cache) *gin.Engine {
	t.Helper()
	log := zerolog.New(io.Discard)
	analytics := NewAnalyticsHandler(cache, log)
	store := inmemory.NewStore()
	queue := inmemory.NewQueue(10, store)
	t.Cleanup(func() { _ = queue.Close() })
	jobsHandler := NewJobsHandler(queue, store, nil, "", log)
	return NewRouter(analytics, jobsHandler, nil, log)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNormalizeRawEndpoint(t *testing.T) {
	router := testRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/transactions/raw", map[string]any{
		"rows": []map[string]any{
			{"date": "2025-01-05", "name": "STARBUCKS 04567 POS PURCHASE", "amount": 6.25},
			{"date": "", "name": "BROKEN", "amount": 1},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Transactions []domain.Transaction `json:"transactions"`
		Skipped      int                  `json:"skipped"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Transactions) != 1 || resp.Skipped != 1 {
		t.Errorf("got %d transactions, %d skipped; want 1 and 1", len(resp.Transactions), resp.Skipped)
	}
	if resp.Transactions[0].Merchant != "STARBUCKS" {
		t.Errorf("Merchant = %q, want STARBUCKS", resp.Transactions[0].Merchant)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	router := testRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/summary", map[string]any{
		"transactions": []domain.Transaction{
			{ID: "1", Date: "2025-01-05", Amount: 6.25, Merchant: "STARBUCKS", Category: "Coffee"},
			{ID: "2", Date: "2025-01-12", Amount: 6.25, Merchant: "STARBUCKS", Category: "Coffee"},
			{ID: "3", Date: "2025-01-06", Amount: -2, Merchant: "STARBUCKS", Category: "Coffee"},
		},
		"filters": domain.Filters{ExcludeRefunds: true},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var summary domain.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if summary.ByMerchant["STARBUCKS"] != 12.50 {
		t.Errorf("ByMerchant[STARBUCKS] = %v, want 12.50", summary.ByMerchant["STARBUCKS"])
	}
}

func TestScenarioEndpoint(t *testing.T) {
	router := testRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/scenario", map[string]any{
		"summary": map[string]any{"totalSpend": 100},
		"selectedActions": []map[string]any{
			{"id": "a", "expectedMonthlySavings": 30},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result domain.ScenarioResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.AfterSpend != 70 || result.SelectedActionCount != 1 {
		t.Errorf("unexpected scenario result: %+v", result)
	}
}

func TestTreemapEndpoint(t *testing.T) {
	router := testRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/treemap", map[string]any{
		"byCategory": map[string]float64{"A": 60, "B": 30, "C": 10},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Tiles []json.RawMessage `json:"tiles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Tiles) != 3 {
		t.Errorf("got %d tiles, want 3", len(resp.Tiles))
	}
}

func TestDemoSummaryUsesCache(t *testing.T) {
	cache := &fakeCache{data: map[string][]byte{}}
	router := testRouter(t, cache)

	first := doJSON(t, router, http.MethodGet, "/api/demo/summary", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d", first.Code)
	}
	if len(cache.data) != 1 {
		t.Fatalf("summary was not cached: %v", cache.data)
	}

	second := doJSON(t, router, http.MethodGet, "/api/demo/summary", nil)
	if second.Code != http.StatusOK {
		t.Fatalf("status = %d", second.Code)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Error("cached response differs from computed response")
	}
}

func TestJobsEndpoints(t *testing.T) {
	router := testRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/jobs/analyze", map[string]any{
		"gcs_uri": "gs://bucket/batch.csv",
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var enq struct {
		JobID  string         `json:"job_id"`
		Status jobs.JobStatus `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &enq); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if enq.JobID == "" {
		t.Fatal("no job_id returned")
	}

	got := doJSON(t, router, http.MethodGet, "/api/jobs/"+enq.JobID, nil)
	if got.Code != http.StatusOK {
		t.Errorf("GET job status = %d", got.Code)
	}

	missing := doJSON(t, router, http.MethodGet, "/api/jobs/nope", nil)
	if missing.Code != http.StatusNotFound {
		t.Errorf("missing job status = %d, want 404", missing.Code)
	}
}

func TestEnqueueAnalyzeRequiresURI(t *testing.T) {
	router := testRouter(t, nil)
	w := doJSON(t, router, http.MethodPost, "/api/jobs/analyze", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func uploadRouter(t *testing.T, uploader Uploader, bucket string) (*gin.Engine, *inmemory.Store) {
	t.Helper()
	log := zerolog.New(io.Discard)
	store := inmemory.NewStore()
	queue := inmemory.NewQueue(10, store)
	t.Cleanup(func() { _ = queue.Close() })
	jobsHandler := NewJobsHandler(queue, store, uploader, bucket, log)
	return NewRouter(NewAnalyticsHandler(nil, log), jobsHandler, nil, log), store
}

func TestUploadBatchStoresAndEnqueues(t *testing.T) {
	uploader := &fakeUploader{}
	router, store := uploadRouter(t, uploader, "spend-batches")

	body := "date,name,amount\n2025-01-05,STARBUCKS,6.25\n"
	req := httptest.NewRequest(http.MethodPost, "/api/batches?name=jan.csv", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if uploader.bucket != "spend-batches" || uploader.object != "jan.csv" {
		t.Errorf("uploaded to %s/%s, want spend-batches/jan.csv", uploader.bucket, uploader.object)
	}
	if string(uploader.data) != body {
		t.Error("uploaded bytes differ from request body")
	}

	var resp struct {
		JobID  string `json:"job_id"`
		GCSURI string `json:"gcs_uri"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.GCSURI != "gs://spend-batches/jan.csv" {
		t.Errorf("gcs_uri = %q", resp.GCSURI)
	}

	job, err := store.GetJob(context.Background(), resp.JobID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job.GCSURI != resp.GCSURI {
		t.Errorf("enqueued job points at %q, want %q", job.GCSURI, resp.GCSURI)
	}
}

func TestUploadBatchGeneratesObjectName(t *testing.T) {
	uploader := &fakeUploader{}
	router, _ := uploadRouter(t, uploader, "spend-batches")

	req := httptest.NewRequest(http.MethodPost, "/api/batches", strings.NewReader("date,name,amount\n"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(uploader.object, "batches/") || !strings.HasSuffix(uploader.object, ".csv") {
		t.Errorf("generated object name = %q", uploader.object)
	}
}

func TestUploadBatchRejectsEmptyBody(t *testing.T) {
	router, _ := uploadRouter(t, &fakeUploader{}, "spend-batches")

	req := httptest.NewRequest(http.MethodPost, "/api/batches", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUploadBatchUnconfigured(t *testing.T) {
	router := testRouter(t, nil) // no uploader, no bucket

	req := httptest.NewRequest(http.MethodPost, "/api/batches", strings.NewReader("date,name,amount\n"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func ledgerRouter(t *testing.T, source LedgerSource) *gin.Engine {
	t.Helper()
	log := zerolog.New(io.Discard)
	return NewRouter(NewAnalyticsHandler(nil, log), nil, NewLedgerHandler(source, log), log)
}

func TestListTransactionsQueriesRange(t *testing.T) {
	source := &fakeLedgerSource{txs: []domain.Transaction{
		{ID: "1", Date: "2025-01-05", Amount: 6.25, Merchant: "STARBUCKS", Category: "Coffee"},
		{ID: "2", Date: "2025-01-03", Amount: 12.00, Merchant: "NETFLIX", Category: "Entertainment"},
	}}
	router := ledgerRouter(t, source)

	w := doJSON(t, router, http.MethodGet, "/api/transactions?start=2025-01-01&end=2025-01-31", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if got := source.start.Format("2006-01-02"); got != "2025-01-01" {
		t.Errorf("queried start = %s", got)
	}
	if got := source.end.Format("2006-01-02"); got != "2025-01-31" {
		t.Errorf("queried end = %s", got)
	}

	var resp struct {
		Transactions []domain.Transaction `json:"transactions"`
		Count        int                  `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Count != 2 || len(resp.Transactions) != 2 {
		t.Errorf("got %d transactions (count %d), want 2", len(resp.Transactions), resp.Count)
	}
}

func TestListTransactionsValidatesDates(t *testing.T) {
	router := ledgerRouter(t, &fakeLedgerSource{})

	tests := []struct {
		name string
		path string
	}{
		{name: "missing start", path: "/api/transactions?end=2025-01-31"},
		{name: "missing end", path: "/api/transactions?start=2025-01-01"},
		{name: "malformed start", path: "/api/transactions?start=Jan-1&end=2025-01-31"},
		{name: "end before start", path: "/api/transactions?start=2025-02-01&end=2025-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodGet, tt.path, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestListTransactionsSourceError(t *testing.T) {
	router := ledgerRouter(t, &fakeLedgerSource{err: errors.New("warehouse down")})

	w := doJSON(t, router, http.MethodGet, "/api/transactions?start=2025-01-01&end=2025-01-31", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// fakeUploader records the last upload and returns a gs:// URI.
type fakeUploader struct {
	bucket, object string
	data           []byte
}

func (u *fakeUploader) Upload(ctx context.Context, bucket, object string, data []byte, contentType string) (string, error) {
	u.bucket, u.object, u.data = bucket, object, data
	return "gs://" + bucket + "/" + object, nil
}

// fakeLedgerSource records the queried range and returns canned rows.
type fakeLedgerSource struct {
	txs        []domain.Transaction
	err        error
	start, end time.Time
}

func (s *fakeLedgerSource) QueryTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]domain.Transaction, error) {
	s.start, s.end = start, end
	if s.err != nil {
		return nil, s.err
	}
	return s.txs, nil
}

// fakeCache is an in-memory Cache for handler tests.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	if ok {
		c.hits++
	}
	return data, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}
