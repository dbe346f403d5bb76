package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFrameDropped(t *testing.T) {
	before := testutil.ToFloat64(framesDropped)
	FrameDropped()
	if got := testutil.ToFloat64(framesDropped); got != before+1 {
		t.Fatalf("expected counter to advance by 1, got %v -> %v", before, got)
	}
}

func TestMiddlewareRecordsRequest(t *testing.T) {
	handler := Middleware("test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status passthrough, got %d", rec.Code)
	}

	count := testutil.ToFloat64(httpRequests.WithLabelValues("test", "GET", "/teapot", "418"))
	if count != 1 {
		t.Fatalf("expected 1 recorded request, got %v", count)
	}
}

func TestHijackUnsupported(t *testing.T) {
	rec := &responseRecorder{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := rec.Hijack(); err == nil {
		t.Fatalf("expected error when underlying writer cannot hijack")
	}
}
