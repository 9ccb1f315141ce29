package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nexus-outreach/sdk/identity"
)

// FetchJob is a single unit of fetch work submitted to a platform queue.
type FetchJob struct {
	// JobID is a UUID that correlates all jobs in a batch.
	JobID string `json:"job_id"`

	// Index is the position of this job in the batch (0-based).
	Index int `json:"index"`

	// Total is the total number of jobs in the batch.
	Total int `json:"total"`

	// Platform is the platform whose fetcher should handle the job.
	Platform identity.Platform `json:"platform"`

	// Identifier is the handle to fetch on the platform.
	Identifier string `json:"identifier"`

	// TraceID and SpanID carry distributed tracing context.
	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`

	// SubmittedAt is the Unix timestamp in milliseconds when the job was
	// submitted.
	SubmittedAt int64 `json:"submitted_at"`
}

// IsValid checks that the job has all required fields populated correctly.
func (j *FetchJob) IsValid() error {
	if j.JobID == "" {
		return fmt.Errorf("job_id is required")
	}
	if j.Index < 0 {
		return fmt.Errorf("index must be non-negative, got %d", j.Index)
	}
	if j.Total <= 0 {
		return fmt.Errorf("total must be positive, got %d", j.Total)
	}
	if j.Index >= j.Total {
		return fmt.Errorf("index %d is out of bounds for total %d", j.Index, j.Total)
	}
	if !j.Platform.IsValid() {
		return fmt.Errorf("invalid platform: %s", j.Platform)
	}
	if j.Identifier == "" {
		return fmt.Errorf("identifier is required")
	}
	if j.SubmittedAt <= 0 {
		return fmt.Errorf("submitted_at must be positive, got %d", j.SubmittedAt)
	}
	return nil
}

// Age returns the duration since the job was submitted. Useful for
// detecting stale jobs and computing queue wait time.
func (j *FetchJob) Age() time.Duration {
	if j.SubmittedAt <= 0 {
		return 0
	}
	now := time.Now().UnixMilli()
	return time.Duration(now-j.SubmittedAt) * time.Millisecond
}

// FetchResult is the outcome of executing one FetchJob. It is published to
// the batch's pub/sub channel for the coordinator to collect.
type FetchResult struct {
	// JobID and Index correlate the result with the original job.
	JobID string `json:"job_id"`
	Index int    `json:"index"`

	// Platform and Identifier echo the job's target.
	Platform   identity.Platform `json:"platform"`
	Identifier string            `json:"identifier"`

	// NodeJSON is the fetched identity node serialized as JSON. Empty if
	// Error is set.
	NodeJSON string `json:"node_json,omitempty"`

	// Error is the failure message if the fetch failed.
	Error string `json:"error,omitempty"`

	// WorkerID identifies the worker that processed the job.
	WorkerID string `json:"worker_id"`

	// StartedAt and CompletedAt are Unix timestamps in milliseconds.
	StartedAt   int64 `json:"started_at"`
	CompletedAt int64 `json:"completed_at"`
}

// HasError reports whether the result represents a failed fetch.
func (r *FetchResult) HasError() bool {
	return r.Error != ""
}

// Duration returns the wall-clock time the worker spent on the job.
func (r *FetchResult) Duration() time.Duration {
	if r.StartedAt <= 0 || r.CompletedAt <= 0 {
		return 0
	}
	return time.Duration(r.CompletedAt-r.StartedAt) * time.Millisecond
}

// Node decodes the serialized identity node. Returns an error when called
// on a failed result.
func (r *FetchResult) Node() (*identity.Node, error) {
	if r.HasError() {
		return nil, fmt.Errorf("result carries an error: %s", r.Error)
	}
	var node identity.Node
	if err := json.Unmarshal([]byte(r.NodeJSON), &node); err != nil {
		return nil, fmt.Errorf("failed to decode node: %w", err)
	}
	return &node, nil
}

// IsValid checks that the result has all required fields populated
// correctly.
func (r *FetchResult) IsValid() error {
	if r.JobID == "" {
		return fmt.Errorf("job_id is required")
	}
	if r.Index < 0 {
		return fmt.Errorf("index must be non-negative, got %d", r.Index)
	}
	if r.WorkerID == "" {
		return fmt.Errorf("worker_id is required")
	}
	if r.StartedAt <= 0 {
		return fmt.Errorf("started_at must be positive, got %d", r.StartedAt)
	}
	if r.CompletedAt < r.StartedAt {
		return fmt.Errorf("completed_at (%d) cannot be before started_at (%d)", r.CompletedAt, r.StartedAt)
	}
	if !r.HasError() && r.NodeJSON == "" {
		return fmt.Errorf("node_json is required when error is empty")
	}
	return nil
}

// FetcherMeta describes a registered platform fetcher. It is stored as a
// Redis hash and used for capacity discovery.
type FetcherMeta struct {
	// Platform is the platform the fetcher serves.
	Platform identity.Platform `json:"platform"`

	// Version is the fetcher implementation version.
	Version string `json:"version"`

	// Description is a human-readable summary.
	Description string `json:"description"`

	// Simulated marks generated-data fetchers.
	Simulated bool `json:"simulated"`

	// WorkerCount is the number of live workers, maintained through
	// IncrementWorkerCount/DecrementWorkerCount.
	WorkerCount int `json:"worker_count"`
}

// IsValid checks that the metadata has all required fields populated.
func (m *FetcherMeta) IsValid() error {
	if !m.Platform.IsValid() {
		return fmt.Errorf("invalid platform: %s", m.Platform)
	}
	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	if m.WorkerCount < 0 {
		return fmt.Errorf("worker_count must be non-negative, got %d", m.WorkerCount)
	}
	return nil
}

// QueueName returns the work list key for a platform.
func QueueName(platform identity.Platform) string {
	return fmt.Sprintf("fetcher:%s:queue", platform)
}

// ResultsChannel returns the pub/sub channel name for a batch.
func ResultsChannel(jobID string) string {
	return fmt.Sprintf("results:%s", jobID)
}
