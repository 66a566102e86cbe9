package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"frontdesk/pkg/availability"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/metrics"
	"frontdesk/pkg/resilience"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

func TestKeys(t *testing.T) {
	c := NewAvailabilityCache(nil, nil, time.Minute, "reservations:", nil, testLogger())

	if got := c.versionKey("h1"); got != "reservations:avail:h1:ver" {
		t.Errorf("unexpected version key %q", got)
	}
	got := c.entryKey(Key{HotelID: "h1", Version: 7, Fingerprint: "ab12", From: "2025-03-01", To: "2025-03-31"})
	if got != "reservations:avail:h1:v7:ab12:2025-03-01:2025-03-31" {
		t.Errorf("unexpected entry key %q", got)
	}
}

func TestNilClientIsNoop(t *testing.T) {
	c := NewAvailabilityCache(nil, nil, time.Minute, "", nil, testLogger())
	ctx := context.Background()

	if _, ok := c.Version(ctx, "h1"); ok {
		t.Error("expected no version without redis")
	}
	if _, ok := c.Get(ctx, Key{HotelID: "h1"}); ok {
		t.Error("expected miss without redis")
	}
	c.Set(ctx, Key{HotelID: "h1"}, &availability.AvailabilityByDate{})
	c.Invalidate(ctx, "h1")
}

func TestUnreachableRedisDegrades(t *testing.T) {
	log := testLogger()
	m := metrics.New(metrics.DefaultConfig("reservations"))
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	breaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("availability-cache"), log)
	c := NewAvailabilityCache(rdb, breaker, time.Minute, "", m, log)

	if _, ok := c.Version(context.Background(), "h1"); ok {
		t.Fatal("expected version lookup to fail against an unreachable redis")
	}
	if got := testutil.ToFloat64(m.AvailabilityCache.WithLabelValues("reservations", "error")); got != 1 {
		t.Errorf("expected one cache error recorded, got %v", got)
	}
}
