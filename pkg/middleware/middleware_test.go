package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"frontdesk/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Output: io.Discard, Service: "test"})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":"ok"}`))
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Code
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(testLogger())(okHandler())

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json post", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"form post", http.MethodPost, `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing header on patch", http.MethodPatch, `{}`, "", http.StatusUnsupportedMediaType},
		{"bodiless post", http.MethodPost, "", "", http.StatusOK},
		{"get ignores header", http.MethodGet, "", "text/plain", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/reservations", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(8, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))
	if rec.Code != http.StatusOK {
		t.Errorf("small body: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"guest":"far too long"}`)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body: status = %d", rec.Code)
	}
	if got := errorCode(t, rec); got != "PAYLOAD_TOO_LARGE" {
		t.Errorf("code = %s", got)
	}
}

func TestKeyRateLimiter(t *testing.T) {
	limiter := NewKeyRateLimiter(2, time.Minute, nil, testLogger())
	defer limiter.Stop()

	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := limiter.Allow("staff:kim"); !ok {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	ok, retry := limiter.Allow("staff:kim")
	if ok {
		t.Fatal("third request inside the window must be refused")
	}
	if retry != time.Minute {
		t.Errorf("retry = %v, want 1m", retry)
	}
	if ok, _ := limiter.Allow("staff:lee"); !ok {
		t.Error("other keys have their own window")
	}

	now = now.Add(time.Minute)
	if ok, _ := limiter.Allow("staff:kim"); !ok {
		t.Error("window should have slid past the first requests")
	}
	if ok, _ := limiter.Allow(""); !ok {
		t.Error("empty key is never limited")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewKeyRateLimiter(1, time.Minute, nil, testLogger())
	defer limiter.Stop()
	h := RateLimit(limiter)(okHandler())

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil)
		req.Header.Set(StaffIDHeader, "front-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(); rec.Code != http.StatusOK {
		t.Fatalf("first request: %d", rec.Code)
	}
	rec := send()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestStaffOrClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	if got := StaffOrClientIP(req); got != "ip:10.0.0.7" {
		t.Errorf("got %q", got)
	}
	req.Header.Set(StaffIDHeader, "desk-2")
	if got := StaffOrClientIP(req); got != "staff:desk-2" {
		t.Errorf("got %q", got)
	}
}

func TestSignatureVerification(t *testing.T) {
	const secret = "ota-secret"
	body := `{"channel":"booking.com","external_id":"BK-1"}`
	h := SignatureVerification(secret, "/api/v1/ota/", testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ := io.ReadAll(r.Body)
		if string(got) != body {
			t.Errorf("body not restored: %q", got)
		}
		w.WriteHeader(http.StatusAccepted)
	}))

	tests := []struct {
		name      string
		path      string
		signature string
		want      int
	}{
		{"valid", "/api/v1/ota/reservations", Sign([]byte(body), secret), http.StatusAccepted},
		{"bare hex", "/api/v1/ota/reservations", strings.TrimPrefix(Sign([]byte(body), secret), "sha256="), http.StatusAccepted},
		{"wrong secret", "/api/v1/ota/reservations", Sign([]byte(body), "other"), http.StatusUnauthorized},
		{"missing", "/api/v1/ota/reservations", "", http.StatusUnauthorized},
		{"other path unchecked", "/api/v1/reservations", "", http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(body))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestIdempotencyReplaysSuccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"r1"}}`))
	}))

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set(IdempotencyKeyHeader, "ota:booking.com:BK-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send("/api/v1/reservations")
	second := send("/api/v1/reservations")
	if calls.Load() != 1 {
		t.Fatalf("handler called %d times, want 1", calls.Load())
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Errorf("replay mismatch: %d %q", second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Error("expected replay marker header")
	}

	send("/api/v1/reservations/swap")
	if calls.Load() != 2 {
		t.Errorf("same key on another path must not replay, calls = %d", calls.Load())
	}
}

func TestIdempotencySkipsFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", nil)
		req.Header.Set(IdempotencyKeyHeader, "k")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls.Load() != 2 {
		t.Errorf("non-2xx responses must not be cached, calls = %d", calls.Load())
	}
}

func TestRequestLoggingPropagatesID(t *testing.T) {
	var seen string
	h := RequestLogging(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("inbound id not reused: ctx %q header %q", seen, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen == "abc-123" {
		t.Errorf("expected a fresh id, got %q", seen)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := errorCode(t, rec); got != "INTERNAL_ERROR" {
		t.Errorf("code = %s", got)
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	h := RequestTimeout(20*time.Millisecond, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		<-release
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	close(release)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}
	if got := errorCode(t, rec); got != "TIMEOUT" {
		t.Errorf("code = %s", got)
	}
}
