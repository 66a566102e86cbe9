package model

import "time"

// OTABooking is a booking as an online travel agency delivers it. Dates and
// room type are free text and are resolved against the hotel on import.
type OTABooking struct {
	Channel         string    `json:"channel" validate:"required,max=50"`
	ExternalID      string    `json:"external_id" validate:"required,max=100"`
	HotelID         string    `json:"hotel_id" validate:"required,mongodb"`
	GuestName       string    `json:"guest_name" validate:"required,max=100"`
	Phone           string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	CheckIn         string    `json:"check_in" validate:"required,max=50"`
	CheckOut        string    `json:"check_out" validate:"required,max=50"`
	DayUse          bool      `json:"day_use,omitempty"`
	RoomDescription string    `json:"room_description" validate:"required,max=200"`
	Price           int64     `json:"price" validate:"min=0"`
	Memo            string    `json:"memo,omitempty" validate:"omitempty,max=1000"`
	ReceivedAt      time.Time `json:"received_at,omitempty"`
}
