package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/star/gravsim/internal/gravity"
)

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	Healthz(w, httptest.NewRequest("GET", "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q, want 200 %q", w.Code, w.Body.String(), "ok\n")
	}
}

func TestReadyz(t *testing.T) {
	store := gravity.NewSnapshotStore()
	handler := Readyz(store)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable || w.Body.String() != "not ready\n" {
		t.Errorf("before snapshot: %d %q, want 503 %q", w.Code, w.Body.String(), "not ready\n")
	}

	store.Set(&gravity.Snapshot{})
	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ready\n" {
		t.Errorf("after snapshot: %d %q, want 200 %q", w.Code, w.Body.String(), "ready\n")
	}
}
