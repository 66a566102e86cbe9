package client

import (
	"context"
	"fmt"
	"time"

	"frontdesk/pkg/model"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// ReservationClient creates reservations through the reservations service so
// imported bookings go through the same validation and locking as staff ones.
type ReservationClient struct {
	http *HttpClient
}

func NewReservationClient(baseURL string, timeout time.Duration) *ReservationClient {
	return &ReservationClient{http: NewHttpClient(baseURL, timeout)}
}

// Create posts r. idempotencyKey lets a redelivered message replay the first
// answer instead of creating a second booking.
func (c *ReservationClient) Create(ctx context.Context, r *model.Reservation, idempotencyKey string) (*model.Reservation, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[IdempotencyKeyHeader] = idempotencyKey
	}

	resp, err := c.http.Post(ctx, "/api/v1/reservations", r, headers)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var created model.Reservation
	if err := resp.DecodeData(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created reservation: %w", err)
	}
	return &created, nil
}

func (c *ReservationClient) WaitForHealthy(ctx context.Context, maxWait time.Duration) error {
	return c.http.WaitForHealthy(ctx, maxWait)
}
