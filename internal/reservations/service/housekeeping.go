package service

import (
	"context"
	"errors"
	"fmt"

	"frontdesk/internal/reservations/events"
	"frontdesk/pkg/availability"
	"frontdesk/pkg/sales"
)

type DailyClose struct {
	HotelID string       `json:"hotel_id"`
	Date    string       `json:"date"`
	Report  sales.Report `json:"report"`
}

// CloseDailySales publishes yesterday's sales for every hotel that has
// reservations. "Yesterday" is taken in each hotel's own zone. One hotel
// failing does not stop the others.
func (s *reservationService) CloseDailySales(ctx context.Context) error {
	hotelIDs, err := s.repo.DistinctHotelIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list hotels: %w", err)
	}

	var errs []error
	for _, hotelID := range hotelIDs {
		closed, err := s.closeHotelDay(ctx, hotelID)
		if err != nil {
			s.cfg.Log.Warn("Failed to close daily sales",
				"hotel_id", hotelID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("hotel %s: %w", hotelID, err))
			continue
		}

		s.events.Publish(ctx, events.Event{
			Type:    events.TypeSalesDailyClosed,
			HotelID: hotelID,
			Payload: closed,
		})
		s.cfg.Log.Info("Daily sales closed",
			"hotel_id", hotelID,
			"date", closed.Date,
			"revenue", closed.Report.Revenue,
		)
	}
	return errors.Join(errs...)
}

func (s *reservationService) closeHotelDay(ctx context.Context, hotelID string) (*DailyClose, error) {
	hotel, err := s.hotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	loc := availability.LoadLocation(hotel.TimeZone)
	yesterday := availability.DayOnly(s.now(), loc).AddDate(0, 0, -1)

	reservations, err := s.repo.FindByHotelInRange(ctx, hotelID, yesterday, yesterday.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return &DailyClose{
		HotelID: hotelID,
		Date:    availability.DateKey(yesterday),
		Report:  sales.Daily(reservations, yesterday, yesterday, loc),
	}, nil
}

func (s *reservationService) PurgeExpiredLocks(ctx context.Context) (int64, error) {
	purged, err := s.lockRepo.PurgeExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired room locks: %w", err)
	}
	if purged > 0 {
		s.cfg.Log.Info("Purged expired room locks", "count", purged)
	}
	return purged, nil
}
