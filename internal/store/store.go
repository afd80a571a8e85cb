package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Sentinel errors for persistence failures.
var (
	ErrRead  = errors.New("store read failed")
	ErrWrite = errors.New("store write failed")
)

// Record is a persisted transcription result. Records are immutable once
// created; there is no update path.
type Record struct {
	ID            int64     `json:"id"`
	Transcription string    `json:"transcription"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store abstracts the remote transcription record store.
type Store interface {
	// Insert appends one record; the backend assigns id and created_at.
	Insert(ctx context.Context, text string) (*Record, error)

	// List returns all records newest first. Never returns a nil slice.
	List(ctx context.Context) ([]Record, error)

	// Delete removes one record. Deleting a missing id is not an error.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	Close()
}

// New creates a Store from the URL scheme: postgres:// connects straight to
// the database, http(s):// speaks the PostgREST dialect (Supabase exposes it
// at {project}/rest/v1). The key serves as the REST api key, or as the
// database password when the DSN carries none.
func New(ctx context.Context, rawURL, key string, log zerolog.Logger) (Store, error) {
	u := strings.ToLower(rawURL)
	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return NewPostgres(ctx, rawURL, key, log)

	case strings.HasPrefix(u, "http://"), strings.HasPrefix(u, "https://"):
		rest := NewREST(rawURL, key, log)

		// Startup validation: verify the endpoint and key actually work.
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := rest.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("store startup check failed (url=%q): %w", maskDSN(rawURL), err)
		}
		log.Info().Str("url", maskDSN(rawURL)).Msg("record store reachable (rest)")
		return rest, nil

	default:
		return nil, fmt.Errorf("unsupported store URL %q: want postgres:// or http(s)://", maskDSN(rawURL))
	}
}

// maskDSN hides any password embedded in a store URL for logging.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
