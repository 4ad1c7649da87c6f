package pipeline

import (
	"sync"
	"time"

	"docgraph/internal/model"
)

// JobStatus represents the state of an import job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = "parsing"
	StatusNormalizing JobStatus = "normalizing"
	StatusChunking    JobStatus = "chunking"
	StatusCorrelating JobStatus = "correlating"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Job tracks the state of a single document import.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	config   model.ImportConfig
	result   *model.ImportResult
	errors   []string
}

// Progress tracks processing counters.
type Progress struct {
	Elements int      `json:"elements"`
	Chunks   int      `json:"chunks"`
	Tokens   int      `json:"tokens"`
	Errors   []string `json:"errors"`
}

// NewJob creates a queued job holding the uploaded file bytes.
func NewJob(id, filename string, data []byte, cfg model.ImportConfig) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		Status:    StatusQueued,
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
		config:    cfg,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetResult stores the finished import result and its counters. The file
// bytes are released; a completed job only serves status and result reads.
func (j *Job) SetResult(result *model.ImportResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = result
	j.fileData = nil
	j.Progress.Elements = result.ElementCount
	j.Progress.Chunks = result.ChunkCount
	j.Progress.Tokens = result.TotalTokens
	j.UpdatedAt = time.Now()
}

// Result returns the import result, or nil while the job is in flight.
func (j *Job) Result() *model.ImportResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Config returns the import settings for this job.
func (j *Job) Config() model.ImportConfig {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.config
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Filename string    `json:"filename"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Filename: j.Filename,
		Progress: Progress{
			Elements: j.Progress.Elements,
			Chunks:   j.Progress.Chunks,
			Tokens:   j.Progress.Tokens,
			Errors:   errs,
		},
	}
}
