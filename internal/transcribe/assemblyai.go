package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the AssemblyAI speech-to-text API. Transcription is
// asynchronous: raw audio is uploaded to obtain a content URL, a transcript
// job is created against that URL, and the job is polled until it reaches a
// terminal status. Implements the Provider interface.
type Client struct {
	baseURL string
	apiKey  string
	model   string // optional speech model, e.g. "universal"
	client  *http.Client
}

// uploadResponse is the JSON response from POST /v2/upload.
type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

// transcriptRequest is the JSON body for POST /v2/transcript.
type transcriptRequest struct {
	AudioURL    string `json:"audio_url"`
	SpeechModel string `json:"speech_model,omitempty"`
}

// transcriptResponse is the JSON shape of a transcript resource.
type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// NewClient creates an AssemblyAI client.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Submit uploads raw audio and creates a transcription job referencing it,
// returning the provider-assigned job ID. Empty payloads are rejected before
// any remote call is made.
func (c *Client) Submit(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}

	audioURL, err := c.upload(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	jobID, err := c.createTranscript(ctx, audioURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	return jobID, nil
}

// FetchStatus retrieves the current snapshot of a transcription job.
func (c *Client) FetchStatus(ctx context.Context, jobID string) (*Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/transcript/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrStatusFetch, err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatusFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrStatusFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API error (status %d): %s", ErrStatusFetch, resp.StatusCode, string(body))
	}

	var result transcriptResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrStatusFetch, err)
	}

	return &Job{
		ID:     result.ID,
		Status: parseStatus(result.Status),
		Text:   result.Text,
		Error:  result.Error,
	}, nil
}

// upload sends raw audio bytes to the ingestion endpoint and returns the
// content URL the provider assigned.
func (c *Client) upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/upload", bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result uploadResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.UploadURL == "" {
		return "", fmt.Errorf("no upload_url in response")
	}
	return result.UploadURL, nil
}

// createTranscript creates a transcription job for an uploaded audio URL and
// returns the job ID.
func (c *Client) createTranscript(ctx context.Context, audioURL string) (string, error) {
	payload, err := json.Marshal(transcriptRequest{AudioURL: audioURL, SpeechModel: c.model})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcript request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result transcriptResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("no job id in response")
	}
	return result.ID, nil
}
