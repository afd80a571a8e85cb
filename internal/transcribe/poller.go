package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Fixed polling schedule: one status fetch per interval, up to the attempt
// ceiling (~100 seconds total). No backoff.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 20
)

// Poller turns an asynchronous provider job into a synchronous outcome by
// fetching status snapshots on a fixed schedule.
type Poller struct {
	provider    StatusFetcher
	interval    time.Duration
	maxAttempts int
	log         zerolog.Logger
}

// NewPoller creates a poller. Non-positive interval or maxAttempts fall back
// to the defaults.
func NewPoller(provider StatusFetcher, interval time.Duration, maxAttempts int, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		provider:    provider,
		interval:    interval,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Await polls a job until it completes (returns the transcript text), fails
// (ErrJobFailed), or the attempt ceiling is reached (ErrPollTimeout). Each
// wait is a suspension point tied to ctx, so a cancelled request abandons the
// loop instead of sitting out the remaining attempts.
func (p *Poller) Await(ctx context.Context, jobID string) (string, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("polling abandoned: %w", ctx.Err())
		case <-ticker.C:
		}

		job, err := p.provider.FetchStatus(ctx, jobID)
		if err != nil {
			return "", err
		}

		switch job.Status {
		case StatusCompleted:
			p.log.Debug().Str("job_id", jobID).Int("attempts", attempt).Msg("transcription completed")
			return job.Text, nil
		case StatusFailed:
			if job.Error == "" {
				return "", ErrJobFailed
			}
			return "", fmt.Errorf("%w: %s", ErrJobFailed, job.Error)
		}

		p.log.Debug().
			Str("job_id", jobID).
			Str("status", string(job.Status)).
			Int("attempt", attempt).
			Msg("transcription pending")
	}

	return "", fmt.Errorf("%w after %d attempts", ErrPollTimeout, p.maxAttempts)
}
