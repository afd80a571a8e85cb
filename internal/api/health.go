package api

import (
	"context"
	"net/http"
	"time"
)

// StorePinger is the reachability probe the health endpoint runs.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// AnnouncerStatus reports the MQTT connection state.
type AnnouncerStatus interface {
	IsConnected() bool
}

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

type HealthHandler struct {
	store     StorePinger
	announcer AnnouncerStatus // nil when not configured
	version   string
	startTime time.Time
}

func NewHealthHandler(store StorePinger, announcer AnnouncerStatus, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		store:     store,
		announcer: announcer,
		version:   version,
		startTime: startTime,
	}
}

// ServeHTTP reports service health. An unreachable store makes the service
// unhealthy; a dropped MQTT connection only degrades it since the
// transcription workflow keeps working without the announcer.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"
	httpStatus := http.StatusOK

	// Record store check
	if err := h.store.Ping(r.Context()); err != nil {
		checks["store"] = "error"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	// MQTT check
	if h.announcer != nil {
		if h.announcer.IsConnected() {
			checks["mqtt"] = "ok"
		} else {
			checks["mqtt"] = "disconnected"
			if status == "healthy" {
				status = "degraded"
			}
		}
	} else {
		checks["mqtt"] = "not_configured"
	}

	WriteJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	})
}
