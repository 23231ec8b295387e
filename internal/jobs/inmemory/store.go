package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/spendlens/spendlens/internal/jobs"
)

// Store is an in-memory JobStore, safe for concurrent use. State is
// lost on restart; use a database-backed store for persistence.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.AnalyzeBatchJob
}

// NewStore creates a new in-memory job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.AnalyzeBatchJob),
	}
}

// SaveJob saves or updates a job. A copy is stored so later caller
// mutations do not leak in.
func (s *Store) SaveJob(ctx context.Context, job *jobs.AnalyzeBatchJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.AnalyzeBatchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs retrieves jobs with optional filtering.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.AnalyzeBatchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*jobs.AnalyzeBatchJob
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		result = append(result, &jobCopy)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.AnalyzeBatchJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

var _ jobs.JobStore = (*Store)(nil)
