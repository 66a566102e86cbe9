package model

import (
	"strings"
	"time"
)

const (
	ReservationTypeStay   = "stay"
	ReservationTypeDayUse = "dayUse"

	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCancelled  = "cancelled"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"

	SourceDirect = "direct"
	SourceOTA    = "ota"
	SourcePhone  = "phone"
	SourceWalkIn = "walk_in"
)

type Reservation struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID    string    `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	GuestName  string    `json:"guest_name" bson:"guest_name" validate:"required,min=1,max=100"`
	Phone      string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	CheckIn    time.Time `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut   time.Time `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	Type       string    `json:"type" bson:"type" validate:"required,oneof=stay dayUse"`
	RoomTypeID string    `json:"room_type_id,omitempty" bson:"room_type_id,omitempty" validate:"omitempty,uuid4"`
	RoomInfo   string    `json:"room_info" bson:"room_info" validate:"required,max=100"`
	RoomNumber string    `json:"room_number,omitempty" bson:"room_number,omitempty" validate:"omitempty,room_number"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled checked_in checked_out"`
	Price      int64     `json:"price" bson:"price" validate:"min=0"`
	Source     string    `json:"source" bson:"source" validate:"required,oneof=direct ota phone walk_in"`
	ExternalID string    `json:"external_id,omitempty" bson:"external_id,omitempty" validate:"omitempty,max=100"`
	Memo       string    `json:"memo,omitempty" bson:"memo,omitempty" validate:"omitempty,max=1000"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type ReservationUpdate struct {
	GuestName  string     `json:"guest_name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone      *string    `json:"phone,omitempty" validate:"omitempty"`
	CheckIn    *time.Time `json:"check_in,omitempty" validate:"omitempty"`
	CheckOut   *time.Time `json:"check_out,omitempty" validate:"omitempty"`
	Type       string     `json:"type,omitempty" validate:"omitempty,oneof=stay dayUse"`
	RoomTypeID *string    `json:"room_type_id,omitempty" validate:"omitempty"`
	RoomInfo   string     `json:"room_info,omitempty" validate:"omitempty,max=100"`
	RoomNumber *string    `json:"room_number,omitempty" validate:"omitempty"`
	Status     string     `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled checked_in checked_out"`
	Price      *int64     `json:"price,omitempty" validate:"omitempty,min=0"`
	Memo       *string    `json:"memo,omitempty" validate:"omitempty"`
}

func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}

func (r *Reservation) IsDayUse() bool {
	return r.Type == ReservationTypeDayUse
}

// IsAssigned reports whether the reservation holds a room number.
func (r *Reservation) IsAssigned() bool {
	return strings.TrimSpace(r.RoomNumber) != ""
}
