package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeAnnouncerStatus struct{ connected bool }

func (f fakeAnnouncerStatus) IsConnected() bool { return f.connected }

func getHealth(t *testing.T, h *HealthHandler) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	h.ServeHTTP(rec, req)
	var body HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	t.Run("all_checks_pass", func(t *testing.T) {
		h := NewHealthHandler(fakePinger{}, fakeAnnouncerStatus{connected: true}, "1.2.3", time.Now().Add(-time.Minute))
		rec, body := getHealth(t, h)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body.Status != "healthy" {
			t.Errorf("expected healthy, got %q", body.Status)
		}
		if body.Checks["store"] != "ok" || body.Checks["mqtt"] != "ok" {
			t.Errorf("unexpected checks: %v", body.Checks)
		}
		if body.Version != "1.2.3" {
			t.Errorf("expected version echo, got %q", body.Version)
		}
		if body.UptimeSeconds < 59 {
			t.Errorf("expected uptime around a minute, got %d", body.UptimeSeconds)
		}
	})

	t.Run("store_down_is_unhealthy", func(t *testing.T) {
		h := NewHealthHandler(fakePinger{err: errors.New("down")}, nil, "dev", time.Now())
		rec, body := getHealth(t, h)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		if body.Status != "unhealthy" {
			t.Errorf("expected unhealthy, got %q", body.Status)
		}
		if body.Checks["store"] != "error" {
			t.Errorf("unexpected store check: %q", body.Checks["store"])
		}
	})

	t.Run("dropped_mqtt_degrades", func(t *testing.T) {
		h := NewHealthHandler(fakePinger{}, fakeAnnouncerStatus{connected: false}, "dev", time.Now())
		rec, body := getHealth(t, h)

		if rec.Code != http.StatusOK {
			t.Fatalf("degraded service still answers 200, got %d", rec.Code)
		}
		if body.Status != "degraded" {
			t.Errorf("expected degraded, got %q", body.Status)
		}
		if body.Checks["mqtt"] != "disconnected" {
			t.Errorf("unexpected mqtt check: %q", body.Checks["mqtt"])
		}
	})

	t.Run("announcer_not_configured", func(t *testing.T) {
		h := NewHealthHandler(fakePinger{}, nil, "dev", time.Now())
		rec, body := getHealth(t, h)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body.Status != "healthy" {
			t.Errorf("missing announcer should not degrade, got %q", body.Status)
		}
		if body.Checks["mqtt"] != "not_configured" {
			t.Errorf("unexpected mqtt check: %q", body.Checks["mqtt"])
		}
	})
}
