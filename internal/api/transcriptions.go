package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/snarg/scribe-relay/internal/metrics"
	"github.com/snarg/scribe-relay/internal/store"
	"github.com/snarg/scribe-relay/internal/transcribe"
)

// AudioSubmitter submits raw audio to the transcription provider.
type AudioSubmitter interface {
	Submit(ctx context.Context, audio []byte) (string, error)
}

// TranscriptPoller waits for a submitted job to reach a terminal status.
type TranscriptPoller interface {
	Await(ctx context.Context, jobID string) (string, error)
}

// RecordStore persists finished transcriptions.
type RecordStore interface {
	Insert(ctx context.Context, text string) (*store.Record, error)
	List(ctx context.Context) ([]store.Record, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

// CompletionAnnouncer broadcasts persisted records to downstream consumers.
type CompletionAnnouncer interface {
	TranscriptionCompleted(rec store.Record)
}

// TranscriptionsHandler orchestrates the submit-poll-persist workflow and the
// CRUD surface over stored transcriptions.
type TranscriptionsHandler struct {
	provider  AudioSubmitter
	poller    TranscriptPoller
	store     RecordStore
	announcer CompletionAnnouncer // nil when not configured
	maxUpload int64
	log       zerolog.Logger
}

func NewTranscriptionsHandler(provider AudioSubmitter, poller TranscriptPoller, st RecordStore, announcer CompletionAnnouncer, maxUpload int64, log zerolog.Logger) *TranscriptionsHandler {
	return &TranscriptionsHandler{
		provider:  provider,
		poller:    poller,
		store:     st,
		announcer: announcer,
		maxUpload: maxUpload,
		log:       log.With().Str("handler", "transcriptions").Logger(),
	}
}

func (h *TranscriptionsHandler) Routes(r chi.Router) {
	r.Post("/transcribe", h.Transcribe)
	r.Get("/transcriptions", h.List)
	r.Delete("/transcriptions/{id}", h.DeleteOne)
	r.Delete("/transcriptions", h.DeleteAll)
}

// Transcribe handles POST /transcribe. The multipart audio field is uploaded
// to the provider, the resulting job is polled to completion, and the
// transcript is persisted before the response goes out. A store failure
// fails the whole request; the computed text is never returned best-effort.
func (h *TranscriptionsHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	metrics.TranscribeRequestsTotal.Inc()
	start := time.Now()

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		metrics.TranscriptionsFailedTotal.WithLabelValues("invalid_input").Inc()
		WriteError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		metrics.TranscriptionsFailedTotal.WithLabelValues("invalid_input").Inc()
		WriteError(w, http.StatusBadRequest, "no audio file provided")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		metrics.TranscriptionsFailedTotal.WithLabelValues("invalid_input").Inc()
		WriteError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}

	jobID, err := h.provider.Submit(r.Context(), audio)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.log.Debug().
		Str("job_id", jobID).
		Str("filename", header.Filename).
		Int("bytes", len(audio)).
		Msg("transcription submitted")

	text, err := h.poller.Await(r.Context(), jobID)
	if err != nil {
		h.fail(w, err)
		return
	}

	rec, err := h.store.Insert(r.Context(), text)
	if err != nil {
		h.fail(w, err)
		return
	}

	metrics.TranscriptionsCompletedTotal.Inc()
	metrics.TranscriptionDuration.Observe(time.Since(start).Seconds())
	h.log.Info().
		Str("job_id", jobID).
		Int64("record_id", rec.ID).
		Int("chars", len(text)).
		Dur("duration", time.Since(start)).
		Msg("transcription persisted")

	WriteJSON(w, http.StatusOK, map[string]string{"transcription": text})

	if h.announcer != nil {
		h.announcer.TranscriptionCompleted(*rec)
	}
}

// List handles GET /transcriptions, returning a bare array newest first.
func (h *TranscriptionsHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list transcriptions failed")
		WriteError(w, http.StatusInternalServerError, "failed to fetch transcriptions")
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	WriteJSON(w, http.StatusOK, records)
}

// DeleteOne handles DELETE /transcriptions/{id}. Missing ids delete cleanly.
func (h *TranscriptionsHandler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	id, err := PathInt64(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid transcription ID")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("delete transcription failed")
		WriteError(w, http.StatusInternalServerError, "failed to delete transcription")
		return
	}
	WriteMessage(w, http.StatusOK, "transcription deleted")
}

// DeleteAll handles DELETE /transcriptions.
func (h *TranscriptionsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAll(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("delete all transcriptions failed")
		WriteError(w, http.StatusInternalServerError, "failed to delete transcriptions")
		return
	}
	WriteMessage(w, http.StatusOK, "all transcriptions deleted")
}

// fail maps a workflow error onto the uniform error envelope: client fault
// only for empty input, server fault for everything else.
func (h *TranscriptionsHandler) fail(w http.ResponseWriter, err error) {
	reason := failureReason(err)
	metrics.TranscriptionsFailedTotal.WithLabelValues(reason).Inc()

	if errors.Is(err, transcribe.ErrEmptyAudio) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Error().Err(err).Str("reason", reason).Msg("transcription request failed")
	WriteError(w, http.StatusInternalServerError, err.Error())
}

// failureReason buckets workflow errors for metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, transcribe.ErrEmptyAudio):
		return "invalid_input"
	case errors.Is(err, transcribe.ErrUpload):
		return "upload"
	case errors.Is(err, transcribe.ErrSubmission):
		return "submission"
	case errors.Is(err, transcribe.ErrStatusFetch):
		return "status_fetch"
	case errors.Is(err, transcribe.ErrJobFailed):
		return "job_failed"
	case errors.Is(err, transcribe.ErrPollTimeout):
		return "poll_timeout"
	case errors.Is(err, store.ErrWrite):
		return "store_write"
	case errors.Is(err, store.ErrRead):
		return "store_read"
	default:
		return "internal"
	}
}
