package jobs

import (
	"context"
	"time"

	"github.com/spendlens/spendlens/internal/domain"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeAnalyzeBatch ingests a CSV batch from object storage,
	// normalizes it and writes the ledger rows to the warehouse.
	JobTypeAnalyzeBatch JobType = "analyze_batch"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// AnalyzeBatchJob is a request to ingest and analyze one raw
// transaction batch stored in GCS.
type AnalyzeBatchJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// GCSURI points at the CSV batch to ingest.
	GCSURI string `json:"gcs_uri"`

	// Filters applied before summarization.
	Filters domain.Filters `json:"filters"`

	// DefaultCategory for rows without one.
	DefaultCategory string `json:"default_category,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// TransactionCount is how many rows survived normalization and
	// filtering, set when the job completes.
	TransactionCount int `json:"transaction_count,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *AnalyzeBatchJob) GetID() string        { return j.JobID }
func (j *AnalyzeBatchJob) GetType() JobType     { return JobTypeAnalyzeBatch }
func (j *AnalyzeBatchJob) GetStatus() JobStatus { return j.Status }

// Publisher defines the interface for publishing jobs to a queue.
// The abstraction allows different queue implementations (in-memory,
// Cloud Tasks, Pub/Sub).
type Publisher interface {
	PublishAnalyzeBatch(ctx context.Context, job *AnalyzeBatchJob) error
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue. The handler is
	// called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to finish.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error marks the job failed
// and eligible for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state for status endpoints. The queue persists
// every transition with SaveJob, so the full job is always written.
type JobStore interface {
	SaveJob(ctx context.Context, job *AnalyzeBatchJob) error
	GetJob(ctx context.Context, jobID string) (*AnalyzeBatchJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*AnalyzeBatchJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
