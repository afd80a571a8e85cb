package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// REST stores transcription records through a PostgREST-compatible endpoint.
// The key is sent both as the apikey header and as a bearer token, which is
// what Supabase expects.
type REST struct {
	base   string
	key    string
	client *http.Client
	log    zerolog.Logger
}

// NewREST creates a REST store rooted at baseURL. The transcriptions table
// route lives directly under the root.
func NewREST(baseURL, key string, log zerolog.Logger) *REST {
	return &REST{
		base:   strings.TrimRight(baseURL, "/"),
		key:    key,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// do runs one request against the transcriptions route and decodes the JSON
// response into out when out is non-nil.
func (s *REST) do(ctx context.Context, method, query string, body []byte, prefer string, out any) error {
	u := s.base + "/transcriptions"
	if query != "" {
		u += "?" + query
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("store request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("store API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Insert appends one record and returns the stored row.
func (s *REST) Insert(ctx context.Context, text string) (*Record, error) {
	payload, err := json.Marshal(map[string]string{"transcription": text})
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrWrite, err)
	}

	var rows []Record
	if err := s.do(ctx, http.MethodPost, "", payload, "return=representation", &rows); err != nil {
		return nil, fmt.Errorf("%w: insert: %v", ErrWrite, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert returned no row", ErrWrite)
	}
	return &rows[0], nil
}

// List returns all records newest first, with id breaking timestamp ties.
func (s *REST) List(ctx context.Context) ([]Record, error) {
	records := make([]Record, 0)
	query := "select=id,transcription,created_at&order=created_at.desc,id.desc"
	if err := s.do(ctx, http.MethodGet, query, nil, "", &records); err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrRead, err)
	}
	return records, nil
}

// Delete removes one record. The filter matches nothing for a missing id and
// PostgREST answers 204 all the same, so deletes are idempotent.
func (s *REST) Delete(ctx context.Context, id int64) error {
	if err := s.do(ctx, http.MethodDelete, fmt.Sprintf("id=eq.%d", id), nil, "", nil); err != nil {
		return fmt.Errorf("%w: delete: %v", ErrWrite, err)
	}
	return nil
}

// DeleteAll removes every record. PostgREST refuses unfiltered deletes, so an
// always-true filter stands in.
func (s *REST) DeleteAll(ctx context.Context) error {
	if err := s.do(ctx, http.MethodDelete, "id=not.is.null", nil, "", nil); err != nil {
		return fmt.Errorf("%w: delete all: %v", ErrWrite, err)
	}
	s.log.Info().Msg("all transcriptions deleted")
	return nil
}

// Ping verifies the endpoint answers with the configured key.
func (s *REST) Ping(ctx context.Context) error {
	var rows []Record
	if err := s.do(ctx, http.MethodGet, "select=id&limit=1", nil, "", &rows); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrRead, err)
	}
	return nil
}

// Close is a no-op; the REST store holds no persistent connections.
func (s *REST) Close() {}
