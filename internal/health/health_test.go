package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func get(t *testing.T, h http.Handler, path string) (int, report) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var rep report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return rec.Code, rep
}

func TestHealthz(t *testing.T) {
	s := New(0)
	h := s.Handler()

	if code, rep := get(t, h, "/healthz"); code != http.StatusServiceUnavailable || rep.Status != "not_ready" {
		t.Errorf("before ready: %d %+v", code, rep)
	}
	s.SetReady(true)
	if code, rep := get(t, h, "/healthz"); code != http.StatusOK || rep.Status != "ok" {
		t.Errorf("after ready: %d %+v", code, rep)
	}
}

func TestReadyz(t *testing.T) {
	s := New(0)
	s.SetReady(true)
	s.SetDetail("completion", "gemini")

	var storeErr error
	s.AddCheck("store", func(ctx context.Context) error { return storeErr })
	h := s.Handler()

	code, rep := get(t, h, "/readyz")
	if code != http.StatusOK || rep.Checks["store"] != "ok" || rep.Details["completion"] != "gemini" {
		t.Errorf("healthy: %d %+v", code, rep)
	}

	storeErr = errors.New("connection refused")
	code, rep = get(t, h, "/readyz")
	if code != http.StatusServiceUnavailable || rep.Status != "not_ready" || rep.Checks["store"] != "connection refused" {
		t.Errorf("failing check: %d %+v", code, rep)
	}
}
