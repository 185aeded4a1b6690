// Package store is the single source of truth for job state plus the FIFO
// work queue decoupling submission from processing. All operations on the
// record map and the queue share one exclusive section, so a job is never
// visible in the map without being enqueued, or vice versa, and no caller
// ever observes a partially written record.
package store

import (
	"context"
	"sync"
	"time"

	"tryon/internal/domain"
)

const defaultQueueSize = 256

// Stats reports job counts per status.
type Stats struct {
	Total      int `json:"total"`
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Done       int `json:"done"`
	Failed     int `json:"failed"`
}

// Store holds job records in memory and hands out queued ids to the worker.
type Store struct {
	mu    sync.Mutex
	jobs  map[string]domain.Job
	queue chan string
}

// New creates a Store with the given queue capacity (defaulted when <= 0).
func New(queueSize int) *Store {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Store{
		jobs:  make(map[string]domain.Job),
		queue: make(chan string, queueSize),
	}
}

// Submit inserts a new job record and enqueues its id in one critical
// section. A duplicate id is rejected and a full queue refuses the job
// without inserting it.
func (s *Store) Submit(job domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return domain.ErrJobExists
	}
	select {
	case s.queue <- job.ID:
	default:
		return domain.ErrQueueFull
	}
	s.jobs[job.ID] = copyJob(job)
	return nil
}

// NextQueued blocks up to timeout for a queued id. An empty queue after the
// timeout is a normal condition reported as ok == false, not an error.
func (s *Store) NextQueued(ctx context.Context, timeout time.Duration) (string, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case id := <-s.queue:
		return id, true, nil
	case <-timer.C:
		return "", false, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// Get returns a copy of the stored record.
func (s *Store) Get(id string) (domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrJobNotFound
	}
	return copyJob(job), nil
}

// Update replaces the stored record, refreshing its UpdatedAt stamp.
func (s *Store) Update(job domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	job.UpdatedAt = time.Now().UTC()
	s.jobs[job.ID] = copyJob(job)
	return nil
}

// Requeue re-enqueues an id without touching its stored record. Used by the
// quality-retry path.
func (s *Store) Requeue(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return domain.ErrJobNotFound
	}
	select {
	case s.queue <- id:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Stats counts jobs per status.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Total: len(s.jobs)}
	for _, job := range s.jobs {
		switch job.Status {
		case domain.StatusQueued:
			st.Queued++
		case domain.StatusProcessing:
			st.Processing++
		case domain.StatusDone:
			st.Done++
		case domain.StatusFailed:
			st.Failed++
		}
	}
	return st
}

// copyJob deep-copies the record so callers cannot mutate stored state
// through shared maps.
func copyJob(job domain.Job) domain.Job {
	if job.DebugArtifacts != nil {
		artifacts := make(map[string]string, len(job.DebugArtifacts))
		for k, v := range job.DebugArtifacts {
			artifacts[k] = v
		}
		job.DebugArtifacts = artifacts
	}
	if job.StartedAt != nil {
		t := *job.StartedAt
		job.StartedAt = &t
	}
	if job.CompletedAt != nil {
		t := *job.CompletedAt
		job.CompletedAt = &t
	}
	return job
}
