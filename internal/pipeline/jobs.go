package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/myst-ext/myst-ext-points/internal/points"
)

// JobStatus represents the state of an import job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusConverting JobStatus = "converting"
	StatusRendering  JobStatus = "rendering"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single worksheet import.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	draft    DraftResult
	done     bool
	errors   []string
}

// Progress tracks conversion progress. GrandTotal is provisional until
// a grader reviews the draft.
type Progress struct {
	Rewrites    int      `json:"rewrites"`
	ParseErrors int      `json:"parse_errors"`
	Warnings    int      `json:"warnings"`
	GrandTotal  int      `json:"grand_total"`
	Errors      []string `json:"errors"`
}

// DraftResult is the reviewable output of a completed import. Nothing
// is recorded in the gradebook until a grader submits the draft.
type DraftResult struct {
	Markdown    string                 `json:"markdown"`
	Title       string                 `json:"title"`
	ContentHash string                 `json:"content_hash"`
	GrandTotal  int                    `json:"grand_total"`
	Categories  []points.CategoryTotal `json:"categories"`
	Diagnostics []points.Diagnostic    `json:"diagnostics"`
	Rewrites    int                    `json:"rewrites"`
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
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
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

// SetRewrites records how many point annotations the converter rewrote.
func (j *Job) SetRewrites(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Rewrites = n
	j.UpdatedAt = time.Now()
}

// SetDraft stores the reviewable draft and its render diagnostics.
func (j *Job) SetDraft(res DraftResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.draft = res
	j.done = true
	j.Title = res.Title
	j.ContentHash = res.ContentHash
	j.Progress.Rewrites = res.Rewrites
	j.Progress.GrandTotal = res.GrandTotal
	for _, d := range res.Diagnostics {
		if d.Severity == points.SeverityError {
			j.Progress.ParseErrors++
		} else {
			j.Progress.Warnings++
		}
	}
	j.UpdatedAt = time.Now()
}

// Draft returns the completed draft, or ok=false while the job is
// still in flight or has failed.
func (j *Job) Draft() (DraftResult, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.draft, j.done
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
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
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		Progress: Progress{
			Rewrites:    j.Progress.Rewrites,
			ParseErrors: j.Progress.ParseErrors,
			Warnings:    j.Progress.Warnings,
			GrandTotal:  j.Progress.GrandTotal,
			Errors:      errs,
		},
	}
}

// NewJobID derives a short unique id from the upload. The content hash
// keeps related retries recognizable in logs; the timestamp keeps
// repeated uploads of the same file distinct.
func NewJobID(filename string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(filename))
	h.Write(data)
	fmt.Fprintf(h, "%d", time.Now().UnixNano())
	return hex.EncodeToString(h.Sum(nil))[:16]
}
