package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
)

func TestRoutePattern(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/reservations", "/api/v1/reservations"},
		{"/api/v1/reservations/id/6650f0c2a1b2c3d4e5f60718", "/api/v1/reservations/id/:id"},
		{"/api/v1/reservations/id/6650f0c2a1b2c3d4e5f60718/move", "/api/v1/reservations/id/:id/move"},
		{"/health", "/health"},
	}
	for _, tt := range tests {
		if got := RoutePattern(tt.path); got != tt.want {
			t.Errorf("RoutePattern(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	m := New(DefaultConfig("test"))
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/id/abc/move", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("test", "POST", "/api/v1/reservations/id/:id/move", "409"))
	if got != 1 {
		t.Errorf("expected 1 request recorded, got %v", got)
	}
}

func TestRecorders(t *testing.T) {
	m := New(DefaultConfig("test"))

	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordMove("swap", "reverted", "swap_conflict")
	m.RecordKafkaPublish("reservations", "reservation.created", errors.New("boom"))
	m.RecordHousekeeping("purge_room_locks", nil)
	m.ObserveAvailability(3 * time.Millisecond)
	m.BreakerStateListener("hotels", gobreaker.StateClosed, gobreaker.StateOpen)

	if got := testutil.ToFloat64(m.AvailabilityCache.WithLabelValues("test", "hit")); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.MoveOutcomes.WithLabelValues("test", "swap", "reverted", "swap_conflict")); got != 1 {
		t.Errorf("move outcomes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.KafkaMessagesPublished.WithLabelValues("test", "reservations", "reservation.created", "error")); got != 1 {
		t.Errorf("kafka errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("test", "hotels")); got != float64(gobreaker.StateOpen) {
		t.Errorf("breaker state = %v, want open", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New(DefaultConfig("test"))
	m.RecordHousekeeping("close_daily_sales", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "frontdesk_housekeeping_runs_total") {
		t.Errorf("expected housekeeping counter in exposition output")
	}
}
