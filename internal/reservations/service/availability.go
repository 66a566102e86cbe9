package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"frontdesk/internal/reservations/cache"
	"frontdesk/pkg/availability"
	apperrors "frontdesk/pkg/errors"
	"frontdesk/pkg/model"
	"frontdesk/pkg/sales"
)

// maxReportWindowDays bounds search and sales ranges; availability has its
// own configured bound.
const maxReportWindowDays = 366

func (s *reservationService) Availability(ctx context.Context, hotelID, fromRaw, toRaw string) (*availability.AvailabilityByDate, error) {
	if hotelID == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}
	hotel, err := s.hotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	engine := availability.ForHotel(hotel, s.cfg.Log)
	from, to, err := s.parseRange(engine.Location(), fromRaw, toRaw, s.cfg.MaxAvailabilityWindowDays)
	if err != nil {
		return nil, err
	}

	key := cache.Key{
		HotelID:     hotelID,
		Fingerprint: fingerprint(hotel),
		From:        availability.DateKey(from),
		To:          availability.DateKey(to),
	}
	version, cacheable := s.cache.Version(ctx, hotelID)
	if cacheable {
		key.Version = version
		if grid, ok := s.cache.Get(ctx, key); ok {
			return grid, nil
		}
	}

	start := time.Now()
	reservations, err := s.repo.FindByHotelInRange(ctx, hotelID, from, to.AddDate(0, 0, 1))
	if err != nil {
		s.cfg.Log.Error("Failed to load reservations for availability",
			"hotel_id", hotelID,
			"from", key.From,
			"to", key.To,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to calculate availability", err)
	}
	grid := engine.CalculateRoomAvailability(reservations, hotel.RoomTypes, from, to, &hotel.Grid)
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ObserveAvailability(time.Since(start))
	}
	if len(grid.Conflicts) > 0 {
		s.cfg.Log.Warn("Availability grid has double-booked rooms",
			"hotel_id", hotelID,
			"days", len(grid.Conflicts),
		)
	}

	if cacheable {
		s.cache.Set(ctx, key, grid)
	}
	return grid, nil
}

// Search lists the hotel's reservations, cancelled ones included, that touch
// any day in [from, to].
func (s *reservationService) Search(ctx context.Context, hotelID, fromRaw, toRaw string) ([]*model.Reservation, error) {
	if hotelID == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}
	hotel, err := s.hotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	loc := availability.LoadLocation(hotel.TimeZone)
	from, to, err := s.parseRange(loc, fromRaw, toRaw, maxReportWindowDays)
	if err != nil {
		return nil, err
	}

	reservations, err := s.repo.FindByHotelInRange(ctx, hotelID, from, to.AddDate(0, 0, 1))
	if err != nil {
		s.cfg.Log.Error("Failed to search reservations",
			"hotel_id", hotelID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to search reservations", err)
	}
	if reservations == nil {
		reservations = []*model.Reservation{}
	}
	return reservations, nil
}

func (s *reservationService) DailySales(ctx context.Context, hotelID, fromRaw, toRaw string) (*sales.Report, error) {
	if hotelID == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}
	hotel, err := s.hotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	loc := availability.LoadLocation(hotel.TimeZone)
	from, to, err := s.parseRange(loc, fromRaw, toRaw, maxReportWindowDays)
	if err != nil {
		return nil, err
	}

	reservations, err := s.repo.FindByHotelInRange(ctx, hotelID, from, to.AddDate(0, 0, 1))
	if err != nil {
		s.cfg.Log.Error("Failed to load reservations for sales",
			"hotel_id", hotelID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to calculate sales", err)
	}
	report := sales.Daily(reservations, from, to, loc)
	return &report, nil
}

func (s *reservationService) MonthlySales(ctx context.Context, hotelID, month string) (*sales.MonthReport, error) {
	if hotelID == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}
	hotel, err := s.hotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	loc := availability.LoadLocation(hotel.TimeZone)
	year, m, err := sales.ParseMonth(month, loc)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Invalid month %q, expected YYYY-MM", month))
	}

	first := time.Date(year, m, 1, 0, 0, 0, 0, loc)
	reservations, err := s.repo.FindByHotelInRange(ctx, hotelID, first, first.AddDate(0, 1, 0))
	if err != nil {
		s.cfg.Log.Error("Failed to load reservations for sales",
			"hotel_id", hotelID,
			"month", month,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to calculate sales", err)
	}
	report := sales.Monthly(reservations, year, m, loc)
	return &report, nil
}

// parseRange reads an inclusive [from, to] day range in loc.
func (s *reservationService) parseRange(loc *time.Location, fromRaw, toRaw string, maxDays int) (time.Time, time.Time, error) {
	parser, err := s.parserFor(loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Internal("Failed to create date parser", err)
	}

	from, ok := parser.Parse(fromRaw)
	if !ok {
		return time.Time{}, time.Time{}, apperrors.InvalidInput(fmt.Sprintf("Invalid from date %q", fromRaw))
	}
	to, ok := parser.Parse(toRaw)
	if !ok {
		return time.Time{}, time.Time{}, apperrors.InvalidInput(fmt.Sprintf("Invalid to date %q", toRaw))
	}
	from = availability.DayOnly(from, loc)
	to = availability.DayOnly(to, loc)
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("to must not be before from")
	}
	if days := len(availability.EachDay(from, to, loc)); days > maxDays {
		return time.Time{}, time.Time{}, apperrors.InvalidInput(fmt.Sprintf("Date range of %d days exceeds the limit of %d", days, maxDays))
	}
	return from, to, nil
}

// parserFor keeps one memoizing parser per time zone.
func (s *reservationService) parserFor(loc *time.Location) (*availability.DateParser, error) {
	s.parsersMu.Lock()
	defer s.parsersMu.Unlock()

	if p, ok := s.parsers[loc.String()]; ok {
		return p, nil
	}
	p, err := availability.NewDateParser(loc, s.cfg.DateCacheSize)
	if err != nil {
		return nil, err
	}
	s.parsers[loc.String()] = p
	return p, nil
}

// fingerprint changes whenever a hotel setting that shapes the grid does.
func fingerprint(hotel *model.HotelSettings) string {
	h := fnv.New64a()
	data, _ := json.Marshal(struct {
		TimeZone    string             `json:"tz"`
		ReleaseHour int                `json:"rh"`
		RoomTypes   []model.RoomType   `json:"rt"`
		Grid        model.GridSettings `json:"g"`
	}{
		TimeZone:    hotel.TimeZone,
		ReleaseHour: hotel.ReleaseHourOr(availability.DefaultReleaseHour),
		RoomTypes:   hotel.RoomTypes,
		Grid:        hotel.Grid,
	})
	_, _ = h.Write(data)
	return strconv.FormatUint(h.Sum64(), 16)
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
