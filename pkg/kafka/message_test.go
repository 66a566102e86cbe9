package kafka

import (
	"errors"
	"testing"
	"time"
)

func TestMessageBuilder(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	msg, err := NewMessage().
		WithKey("hotel-1").
		WithValue(map[string]string{"reservation_id": "r1"}).
		WithEventType("reservation.created").
		WithCorrelationID("req-42").
		WithSource("reservations").
		WithTimestamp(ts).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if msg.Key != "hotel-1" {
		t.Errorf("Key = %q", msg.Key)
	}
	if string(msg.Value) != `{"reservation_id":"r1"}` {
		t.Errorf("Value = %s", msg.Value)
	}
	if msg.GetEventType() != "reservation.created" || msg.GetCorrelationID() != "req-42" {
		t.Errorf("headers = %v", msg.Headers)
	}
	if msg.GetEventID() == "" {
		t.Error("expected generated event id")
	}
	if msg.Headers[HeaderTimestamp] != "2025-03-01T09:30:00Z" {
		t.Errorf("timestamp header = %q", msg.Headers[HeaderTimestamp])
	}
}

func TestMessageBuilderEmptyCorrelationID(t *testing.T) {
	msg, err := NewMessage().WithKey("k").WithRawValue([]byte("x")).WithCorrelationID("").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, ok := msg.GetHeader(HeaderCorrelationID); ok {
		t.Error("empty correlation id should not set the header")
	}
}

func TestMessageBuilderEncodeError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("Build() error = %v, want ErrInvalidMessage", err)
	}
}

func TestRetryCount(t *testing.T) {
	msg := Message{}
	if msg.GetRetryCount() != 0 {
		t.Fatalf("GetRetryCount() = %d", msg.GetRetryCount())
	}
	msg.IncrementRetryCount()
	msg.IncrementRetryCount()
	if msg.GetRetryCount() != 2 {
		t.Errorf("GetRetryCount() = %d, want 2", msg.GetRetryCount())
	}

	msg.Headers[HeaderRetryCount] = "garbage"
	if msg.GetRetryCount() != 0 {
		t.Errorf("unparseable retry count should read as 0")
	}
}

func TestDecodeValuePermanent(t *testing.T) {
	msg := Message{Value: []byte("{not json")}
	var out map[string]any
	err := msg.DecodeValue(&out)
	if ClassifyError(err) != ErrorTypePermanent {
		t.Errorf("DecodeValue error type = %s, want permanent", ClassifyError(err))
	}
}

func TestCloneHeadersIsolated(t *testing.T) {
	msg := Message{Headers: map[string]string{HeaderEventID: "e1"}}
	clone := msg.cloneHeaders()
	clone[HeaderDLQError] = "boom"

	if _, ok := msg.Headers[HeaderDLQError]; ok {
		t.Error("clone must not write through to the original headers")
	}
}
