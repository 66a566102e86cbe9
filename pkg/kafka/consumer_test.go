package kafka

import (
	"context"
	"errors"
	"io"
	"testing"

	"frontdesk/pkg/logger"
)

func testConsumer(handler MessageHandler, maxRetries int) *Consumer {
	return &Consumer{
		topic:      "ota-reservations",
		groupID:    "test",
		maxRetries: maxRetries,
		handler:    handler,
		log:        logger.New(logger.Config{Output: io.Discard}),
	}
}

func TestConsumerProcessRetriesTransient(t *testing.T) {
	calls := 0
	c := testConsumer(func(ctx context.Context, msg Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("hotels unavailable", nil)
		}
		return nil
	}, 3)

	if err := c.process(context.Background(), Message{Headers: map[string]string{}}); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("handler calls = %d, want 3", calls)
	}
}

func TestConsumerProcessStopsOnPermanent(t *testing.T) {
	calls := 0
	c := testConsumer(func(ctx context.Context, msg Message) error {
		calls++
		return NewPermanentError("bad payload", nil)
	}, 3)

	err := c.process(context.Background(), Message{Headers: map[string]string{}})
	if ClassifyError(err) != ErrorTypePermanent {
		t.Fatalf("process() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestConsumerProcessGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	c := testConsumer(func(ctx context.Context, msg Message) error {
		calls++
		return errors.New("connection reset by peer")
	}, 2)

	if err := c.process(context.Background(), Message{Headers: map[string]string{}}); err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("handler calls = %d, want 3 (1 + 2 retries)", calls)
	}
}

func TestConsumerMiddlewareOrder(t *testing.T) {
	var order []string
	c := testConsumer(func(ctx context.Context, msg Message) error {
		order = append(order, "handler")
		return nil
	}, 0)
	for _, name := range []string{"outer", "inner"} {
		name := name
		c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	if err := c.process(context.Background(), Message{Headers: map[string]string{}}); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	want := []string{"outer", "inner", "handler"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSleepCtxCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, 1<<40); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepCtx() = %v, want context.Canceled", err)
	}
}
