package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"frontdesk/pkg/logger"
	"frontdesk/pkg/model"
	"frontdesk/pkg/resilience"
)

// HotelClient reads hotel settings from the hotels service. Calls go through
// a circuit breaker; a 4xx answer is the caller's problem and never trips it.
type HotelClient struct {
	http    *HttpClient
	breaker *resilience.CircuitBreaker
	log     *logger.Logger
}

func NewHotelClient(baseURL string, timeout time.Duration, breaker *resilience.CircuitBreaker, log *logger.Logger) *HotelClient {
	return &HotelClient{
		http:    NewHttpClient(baseURL, timeout),
		breaker: breaker,
		log:     log,
	}
}

// clientError is returned through the breaker as a success so it doesn't count.
type clientError struct {
	err error
}

func (c *HotelClient) GetHotel(ctx context.Context, id string) (*model.HotelSettings, error) {
	res, err := c.breaker.Execute(ctx, func() (any, error) {
		resp, err := c.http.Get(ctx, "/api/v1/hotels/id/"+url.PathEscape(id))
		if err != nil {
			return nil, err
		}
		if statusErr := resp.Err(); statusErr != nil {
			if !errors.Is(statusErr, ErrUnexpectedStatus) {
				return clientError{err: statusErr}, nil
			}
			return nil, statusErr
		}

		var hotel model.HotelSettings
		if err := resp.DecodeData(&hotel); err != nil {
			return nil, fmt.Errorf("failed to decode hotel %s: %w", id, err)
		}
		return &hotel, nil
	})
	if err != nil {
		c.log.Warn("Failed to fetch hotel settings", "hotel_id", id, "error", err)
		return nil, err
	}
	if ce, ok := res.(clientError); ok {
		return nil, ce.err
	}
	return res.(*model.HotelSettings), nil
}
