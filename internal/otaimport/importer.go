// Package otaimport turns bookings received from online travel agencies into
// unassigned reservations.
package otaimport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"frontdesk/pkg/availability"
	"frontdesk/pkg/client"
	"frontdesk/pkg/config"
	"frontdesk/pkg/kafka"
	"frontdesk/pkg/locale"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/metrics"
	"frontdesk/pkg/model"
	"frontdesk/pkg/sanitizer"
)

const (
	EventTypeBooking = "ota.booking_received"

	ResultImported  = "imported"
	ResultDuplicate = "duplicate"
	ResultRejected  = "rejected"
	ResultFailed    = "failed"

	// Date-only values get the usual front desk times.
	defaultCheckInHour  = 15
	defaultCheckOutHour = 11

	maxMemoLength = 1000
)

type HotelSource interface {
	GetHotel(ctx context.Context, id string) (*model.HotelSettings, error)
}

// ReservationCreator is satisfied by *client.ReservationClient.
type ReservationCreator interface {
	Create(ctx context.Context, r *model.Reservation, idempotencyKey string) (*model.Reservation, error)
}

type Importer struct {
	hotels        HotelSource
	reservations  ReservationCreator
	validator     *BookingValidator
	threshold     float64
	dateCacheSize int
	metrics       *metrics.Metrics
	log           *logger.Logger

	mu      sync.Mutex
	parsers map[string]*availability.DateParser
}

func NewImporter(hotels HotelSource, reservations ReservationCreator, validator *BookingValidator, cfg *config.Config) *Importer {
	return &Importer{
		hotels:        hotels,
		reservations:  reservations,
		validator:     validator,
		threshold:     cfg.RoomMatchThreshold,
		dateCacheSize: cfg.DateCacheSize,
		metrics:       cfg.Metrics,
		log:           cfg.Log,
		parsers:       make(map[string]*availability.DateParser),
	}
}

// IdempotencyKey identifies a booking across redeliveries.
func IdempotencyKey(b *model.OTABooking) string {
	return fmt.Sprintf("ota:%s:%s", sanitizer.NormalizeKey(b.Channel), b.ExternalID)
}

// Handle is the consumer handler for the OTA reservations topic. The
// returned errors are classified so the consumer retries outages and parks
// bad bookings in the DLQ.
func (i *Importer) Handle(ctx context.Context, msg kafka.Message) error {
	var booking model.OTABooking
	if err := msg.DecodeValue(&booking); err != nil {
		i.record("unknown", ResultRejected)
		return kafka.NewPermanentError("failed to decode OTA booking", err)
	}

	created, err := i.Import(ctx, &booking)
	switch {
	case err == nil:
		i.record(booking.Channel, ResultImported)
		i.log.Info("OTA booking imported",
			"channel", booking.Channel,
			"external_id", booking.ExternalID,
			"reservation_id", created.ID,
			"room_info", created.RoomInfo,
		)
		return nil
	case errors.Is(err, errDuplicate):
		i.record(booking.Channel, ResultDuplicate)
		i.log.Info("OTA booking already imported",
			"channel", booking.Channel,
			"external_id", booking.ExternalID,
		)
		return nil
	case kafka.ClassifyError(err) == kafka.ErrorTypeTransient:
		i.record(booking.Channel, ResultFailed)
		return err
	default:
		i.record(booking.Channel, ResultRejected)
		i.log.Warn("OTA booking rejected",
			"channel", booking.Channel,
			"external_id", booking.ExternalID,
			"error", err,
		)
		return err
	}
}

var errDuplicate = errors.New("booking already imported")

// Import resolves b against its hotel and creates the reservation.
func (i *Importer) Import(ctx context.Context, b *model.OTABooking) (*model.Reservation, error) {
	if err := i.validator.Validate(b); err != nil {
		return nil, kafka.NewPermanentError("invalid OTA booking", err)
	}

	hotel, err := i.hotels.GetHotel(ctx, b.HotelID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, kafka.NewBusinessError(fmt.Sprintf("hotel %s does not exist", b.HotelID), err)
		}
		return nil, kafka.NewTransientError("failed to fetch hotel settings", err)
	}

	r, err := i.Convert(b, hotel)
	if err != nil {
		return nil, err
	}

	created, err := i.reservations.Create(ctx, r, IdempotencyKey(b))
	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, client.ErrConflict):
		return nil, errDuplicate
	case errors.Is(err, client.ErrRejected), errors.Is(err, client.ErrNotFound):
		return nil, kafka.NewBusinessError("reservations service refused the booking", err)
	default:
		return nil, kafka.NewTransientError("failed to create reservation", err)
	}
}

// Convert maps a booking onto an unassigned reservation of the matched room
// type. Dates are read in the hotel's zone.
func (i *Importer) Convert(b *model.OTABooking, hotel *model.HotelSettings) (*model.Reservation, error) {
	parser, err := i.parserFor(availability.LoadLocation(hotel.TimeZone))
	if err != nil {
		return nil, kafka.NewTransientError("failed to create date parser", err)
	}

	checkIn, ok := parser.Parse(b.CheckIn)
	if !ok {
		return nil, kafka.NewPermanentError(fmt.Sprintf("unparseable check-in %q", b.CheckIn), nil)
	}
	checkOut, ok := parser.Parse(b.CheckOut)
	if !ok {
		return nil, kafka.NewPermanentError(fmt.Sprintf("unparseable check-out %q", b.CheckOut), nil)
	}

	resType := model.ReservationTypeStay
	if b.DayUse {
		resType = model.ReservationTypeDayUse
	} else {
		checkIn = atHourIfDateOnly(checkIn, defaultCheckInHour)
		checkOut = atHourIfDateOnly(checkOut, defaultCheckOutHour)
	}
	if !checkOut.After(checkIn) {
		return nil, kafka.NewPermanentError(fmt.Sprintf("check-out %q is not after check-in %q", b.CheckOut, b.CheckIn), nil)
	}

	match, ok := availability.MatchRoomType(b.RoomDescription, hotel.RoomTypes, i.threshold)
	if !ok {
		return nil, kafka.NewPermanentError(fmt.Sprintf("no room type matches %q", b.RoomDescription), nil).
			WithDetail("hotel_id", hotel.ID)
	}
	i.log.Debug("Matched OTA room description",
		"description", b.RoomDescription,
		"room_info", match.RoomType.RoomInfo,
		"method", match.Method,
		"score", match.Score,
	)

	return &model.Reservation{
		HotelID:    b.HotelID,
		GuestName:  b.GuestName,
		Phone:      i.guestPhone(b, hotel.TimeZone),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Type:       resType,
		RoomTypeID: match.RoomType.ID,
		RoomInfo:   match.RoomType.RoomInfo,
		Status:     model.StatusConfirmed,
		Price:      b.Price,
		Source:     model.SourceOTA,
		ExternalID: b.ExternalID,
		Memo:       memoFor(b),
	}, nil
}

// guestPhone reads the channel's phone as local to the hotel's region. Masked
// or relay numbers some channels send are dropped.
func (i *Importer) guestPhone(b *model.OTABooking, timeZone string) string {
	if strings.TrimSpace(b.Phone) == "" {
		return ""
	}
	phone := sanitizer.NormalizePhoneIn(b.Phone, locale.DetectRegion(timeZone))
	if phone == "" {
		i.log.Debug("Dropping unparseable OTA guest phone", "channel", b.Channel, "external_id", b.ExternalID)
	}
	return phone
}

func (i *Importer) parserFor(loc *time.Location) (*availability.DateParser, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if p, ok := i.parsers[loc.String()]; ok {
		return p, nil
	}
	p, err := availability.NewDateParser(loc, i.dateCacheSize)
	if err != nil {
		return nil, err
	}
	i.parsers[loc.String()] = p
	return p, nil
}

func (i *Importer) record(channel, result string) {
	if i.metrics != nil {
		i.metrics.RecordOTAImport(channel, result)
	}
}

func atHourIfDateOnly(t time.Time, hour int) time.Time {
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, t.Location())
}

func memoFor(b *model.OTABooking) string {
	memo := fmt.Sprintf("[%s] %s", b.Channel, b.RoomDescription)
	if b.Memo != "" {
		memo += "\n" + b.Memo
	}
	if runes := []rune(memo); len(runes) > maxMemoLength {
		memo = string(runes[:maxMemoLength])
	}
	return memo
}
