package transcribe

import (
	"context"
	"errors"
)

// Sentinel errors for the transcription workflow. Handlers classify with
// errors.Is; wrapped messages carry the provider detail.
var (
	ErrEmptyAudio  = errors.New("audio payload is empty")
	ErrUpload      = errors.New("audio upload failed")
	ErrSubmission  = errors.New("transcription submission failed")
	ErrStatusFetch = errors.New("transcription status fetch failed")
	ErrJobFailed   = errors.New("transcription failed")
	ErrPollTimeout = errors.New("transcription polling timed out")
)

// JobStatus is the lifecycle state of a remote transcription job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job is a point-in-time snapshot of a remote transcription job. The
// provider owns the job; snapshots are observed, never mutated locally.
type Job struct {
	ID     string
	Status JobStatus
	Text   string // present only when completed
	Error  string // provider detail, present only when failed
}

// Provider is the interface for asynchronous speech-to-text backends.
type Provider interface {
	Submit(ctx context.Context, audio []byte) (string, error)
	FetchStatus(ctx context.Context, jobID string) (*Job, error)
}

// StatusFetcher is the subset of Provider the poller needs.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, jobID string) (*Job, error)
}

// parseStatus maps a provider status string onto the job lifecycle. Unknown
// non-terminal strings count as processing, so polling continues until the
// attempt ceiling.
func parseStatus(s string) JobStatus {
	switch s {
	case "queued":
		return StatusQueued
	case "completed":
		return StatusCompleted
	case "error", "failed":
		return StatusFailed
	default:
		return StatusProcessing
	}
}
