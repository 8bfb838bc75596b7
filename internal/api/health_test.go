package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_CheckHealth(t *testing.T) {
	h := NewHealthHandler()

	BindServiceHealth(func() bool { return true })
	defer BindServiceHealth(func() bool { return false })

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.CheckHealth(w, req)

	if code := w.Result().StatusCode; code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("expected healthy, got %q", body["status"])
	}
	if body["timestamp"] == "" {
		t.Fatal("expected timestamp")
	}
}

// The liveness endpoint stays 200 while unhealthy; only the body flips.
func TestHealthHandler_CheckHealthUnhealthyStays200(t *testing.T) {
	h := NewHealthHandler()

	BindServiceHealth(func() bool { return false })

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.CheckHealth(w, req)

	if code := w.Result().StatusCode; code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "unhealthy" {
		t.Fatalf("expected unhealthy, got %q", body["status"])
	}
}

func TestHealthHandler_CheckStoreHealth(t *testing.T) {
	h := NewHealthHandler()

	BindStoreHealth(func() bool { return false })
	req := httptest.NewRequest(http.MethodGet, "/api/health/store", nil)
	w := httptest.NewRecorder()
	h.CheckStoreHealth(w, req)
	if code := w.Result().StatusCode; code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while store is down, got %d", code)
	}

	BindStoreHealth(func() bool { return true })
	defer BindStoreHealth(func() bool { return false })
	w = httptest.NewRecorder()
	h.CheckStoreHealth(w, req)
	if code := w.Result().StatusCode; code != http.StatusOK {
		t.Fatalf("expected 200 once store recovers, got %d", code)
	}
}
