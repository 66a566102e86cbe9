// Package events announces reservation changes on Kafka.
package events

import (
	"context"
	"time"

	"frontdesk/pkg/kafka"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/middleware"
)

const (
	TypeReservationCreated = "reservation.created"
	TypeReservationUpdated = "reservation.updated"
	TypeReservationDeleted = "reservation.deleted"
	TypeReservationMoved   = "reservation.moved"
	TypeReservationSwapped = "reservation.swapped"
	TypeSalesDailyClosed   = "sales.daily_closed"

	Topic  = "reservation-events"
	Source = "reservations"
)

type Event struct {
	Type          string
	HotelID       string
	ReservationID string
	Payload       any
}

// Publisher never fails the caller: the reservation write has already
// happened, so a lost event is logged and dropped.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type kafkaPublisher struct {
	producer kafka.Publisher
	log      *logger.Logger
	now      func() time.Time
}

func NewKafkaPublisher(producer kafka.Publisher, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log, now: time.Now}
}

func (p *kafkaPublisher) Publish(ctx context.Context, e Event) {
	msg, err := kafka.NewMessage().
		WithKey(e.HotelID).
		WithValue(e.Payload).
		WithEventType(e.Type).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSource(Source).
		WithTimestamp(p.now()).
		Build()
	if err != nil {
		p.log.Error("Failed to build event",
			"event_type", e.Type,
			"hotel_id", e.HotelID,
			"reservation_id", e.ReservationID,
			"error", err,
		)
		return
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish event",
			"event_type", e.Type,
			"hotel_id", e.HotelID,
			"reservation_id", e.ReservationID,
			"error", err,
		)
		return
	}
	p.log.Debug("Event published",
		"event_type", e.Type,
		"hotel_id", e.HotelID,
		"reservation_id", e.ReservationID,
	)
}

type nopPublisher struct{}

// Nop is used when no brokers are configured.
func Nop() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, Event) {}
