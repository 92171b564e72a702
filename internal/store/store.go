// Package store is the in-memory job registry. It owns job status, progress,
// logs and timestamps; all mutations are serialized under one mutex shared
// with the pending queue, so creation, cancellation and dequeue are atomic
// with respect to each other.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kwiktwik/video-editor/internal/model"
	"github.com/kwiktwik/video-editor/internal/queue"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("job not found")
	ErrNotPending = errors.New("job is not pending")
)

// JobUpdate is a typed partial update enumerating the mutable job fields.
// Nil fields are left untouched.
type JobUpdate struct {
	Status      *model.JobStatus
	Progress    *float64
	CompletedAt *time.Time
	OutputURL   *string
}

type JobStore struct {
	mu      sync.RWMutex
	jobs    map[string]model.Job
	pending *queue.FIFO
	now     func() time.Time
}

func NewJobStore() *JobStore {
	return &JobStore{
		jobs:    map[string]model.Job{},
		pending: queue.NewFIFO(),
		now:     time.Now,
	}
}

// Create registers a new pending job for the request and enqueues its id.
func (s *JobStore) Create(req model.ExportRequest) model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := model.Job{
		ID:        uuid.NewString(),
		Status:    model.JobPending,
		Progress:  0,
		Logs:      []string{},
		CreatedAt: s.now(),
		Request:   &req,
	}
	s.jobs[job.ID] = job
	s.pending.Push(job.ID)
	s.appendLogLocked(job.ID, "Job created and added to queue")
	return s.cloneLocked(job.ID)
}

func (s *JobStore) Get(id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.jobs[id]; !ok {
		return model.Job{}, ErrNotFound
	}
	return s.cloneLocked(id), nil
}

// ListAll returns every job sorted by status priority
// (processing < pending < completed < failed) then by creation time ascending.
func (s *JobStore) ListAll() []model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Job, 0, len(s.jobs))
	for id := range s.jobs {
		out = append(out, s.cloneLocked(id))
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := statusPriority(out[i].Status), statusPriority(out[j].Status)
		if pi != pj {
			return pi < pj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Update applies a partial update. Unknown ids are a no-op.
func (s *JobStore) Update(id string, patch JobUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateLocked(id, patch)
}

// AppendLog records a message on the job's log trail with a wall-clock
// HH:MM:SS prefix.
func (s *JobStore) AppendLog(id, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLogLocked(id, msg)
}

// SetProgress raises the job's progress. The stored value never decreases and
// is clamped to 100.
func (s *JobStore) SetProgress(id string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	if v > 100 {
		v = 100
	}
	if v > job.Progress {
		job.Progress = v
		s.jobs[id] = job
	}
}

// Complete marks the job completed with its output reference.
func (s *JobStore) Complete(id, outputURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := model.JobCompleted
	progress := 100.0
	now := s.now()
	s.updateLocked(id, JobUpdate{
		Status:      &status,
		Progress:    &progress,
		CompletedAt: &now,
		OutputURL:   &outputURL,
	})
	s.appendLogLocked(id, "Job completed successfully")
}

// Fail marks the job failed, recording the error text verbatim on the log.
func (s *JobStore) Fail(id, errText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := model.JobFailed
	now := s.now()
	s.updateLocked(id, JobUpdate{Status: &status, CompletedAt: &now})
	s.appendLogLocked(id, "Job failed: "+errText)
}

// Cancel flips a pending job to failed and drops it from the queue. Jobs in
// any other state are left untouched; cancellation never preempts a
// processing job.
func (s *JobStore) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status != model.JobPending {
		return ErrNotPending
	}
	now := s.now()
	job.Status = model.JobFailed
	job.CompletedAt = &now
	s.jobs[id] = job
	s.appendLogLocked(id, "Job cancelled by user")
	s.pending.Remove(id)
	return nil
}

// DequeueNextPending pops queued ids until it finds one whose job is still
// pending. Ids removed by cancellation or already consumed are discarded.
func (s *JobStore) DequeueNextPending() (model.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		id, ok := s.pending.Pop()
		if !ok {
			return model.Job{}, false
		}
		if job, ok := s.jobs[id]; ok && job.Status == model.JobPending {
			return s.cloneLocked(id), true
		}
	}
}

func (s *JobStore) Stats() model.QueueStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := model.QueueStats{Total: len(s.jobs)}
	for _, job := range s.jobs {
		switch job.Status {
		case model.JobPending:
			stats.Pending++
		case model.JobProcessing:
			stats.Processing++
		case model.JobCompleted:
			stats.Completed++
		case model.JobFailed:
			stats.Failed++
		}
	}
	return stats
}

func (s *JobStore) updateLocked(id string, patch JobUpdate) {
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	if patch.Status != nil {
		job.Status = *patch.Status
	}
	if patch.Progress != nil {
		p := *patch.Progress
		if p > 100 {
			p = 100
		}
		job.Progress = p
	}
	if patch.CompletedAt != nil {
		job.CompletedAt = patch.CompletedAt
	}
	if patch.OutputURL != nil {
		job.OutputURL = *patch.OutputURL
	}
	s.jobs[id] = job
}

func (s *JobStore) appendLogLocked(id, msg string) {
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	stamp := s.now().Format("15:04:05")
	job.Logs = append(job.Logs, fmt.Sprintf("[%s] %s", stamp, msg))
	s.jobs[id] = job
}

// cloneLocked returns a copy whose log slice is detached from the stored job.
func (s *JobStore) cloneLocked(id string) model.Job {
	job := s.jobs[id]
	job.Logs = append([]string(nil), job.Logs...)
	return job
}

func statusPriority(status model.JobStatus) int {
	switch status {
	case model.JobProcessing:
		return 0
	case model.JobPending:
		return 1
	case model.JobCompleted:
		return 2
	case model.JobFailed:
		return 3
	default:
		return 4
	}
}
