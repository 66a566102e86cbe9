package model

import (
	"regexp"
	"strings"
	"time"
)

type HotelSettings struct {
	ID           string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string       `json:"name" bson:"name" validate:"required,min=2,max=100"`
	ContactPhone string       `json:"contact_phone" bson:"contact_phone" validate:"required,e164"`
	TimeZone     string       `json:"time_zone" bson:"time_zone" validate:"omitempty,timezone"`
	ReleaseHour  *int         `json:"release_hour,omitempty" bson:"release_hour,omitempty" validate:"omitempty,min=0,max=23"`
	RoomTypes    []RoomType   `json:"room_types" bson:"room_types" validate:"required,min=1,max=50,dive"`
	Grid         GridSettings `json:"grid_settings" bson:"grid_settings"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type HotelSettingsUpdate struct {
	Name         string        `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	ContactPhone string        `json:"contact_phone,omitempty" validate:"omitempty,e164"`
	TimeZone     string        `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	ReleaseHour  *int          `json:"release_hour,omitempty" validate:"omitempty,min=0,max=23"`
	RoomTypes    []RoomType    `json:"room_types,omitempty" validate:"omitempty,max=50,dive"`
	Grid         *GridSettings `json:"grid_settings,omitempty" validate:"omitempty"`
}

// ReleaseHourOr returns the configured release hour or fallback when unset.
func (h *HotelSettings) ReleaseHourOr(fallback int) int {
	if h.ReleaseHour == nil {
		return fallback
	}
	return *h.ReleaseHour
}

// RoomType is one sellable inventory class. ID is assigned once and stays
// stable; RoomInfo and Aliases are only matching hints.
type RoomType struct {
	ID          string   `json:"id,omitempty" bson:"id,omitempty" validate:"omitempty,uuid4"`
	RoomInfo    string   `json:"room_info" bson:"room_info" validate:"required,min=1,max=100"`
	DisplayName string   `json:"display_name,omitempty" bson:"display_name,omitempty" validate:"omitempty,max=100"`
	Price       int64    `json:"price" bson:"price" validate:"min=0"`
	Stock       int      `json:"stock" bson:"stock" validate:"min=0,max=1000"`
	RoomNumbers []string `json:"room_numbers,omitempty" bson:"room_numbers,omitempty" validate:"omitempty,dive,room_number"`
	Aliases     []string `json:"aliases,omitempty" bson:"aliases,omitempty" validate:"omitempty,dive,required,max=100"`
}

type GridSettings struct {
	Floors []Floor `json:"floors" bson:"floors" validate:"omitempty,dive"`
}

type Floor struct {
	Name       string      `json:"name" bson:"name" validate:"max=50"`
	Containers []Container `json:"containers" bson:"containers" validate:"omitempty,dive"`
}

// Container is a physical numbered room slot.
type Container struct {
	RoomNumber string `json:"room_number" bson:"room_number" validate:"required,room_number"`
	RoomInfo   string `json:"room_info" bson:"room_info" validate:"required,max=100"`
}

// Containers flattens every floor into a single list, floor order preserved.
func (g GridSettings) Containers() []Container {
	var out []Container
	for _, f := range g.Floors {
		out = append(out, f.Containers...)
	}
	return out
}

var roomNumberPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,15}$`)

// ValidRoomNumber backs the room_number validation tag: 1-16 letters, digits
// or dashes, not starting with a dash.
func ValidRoomNumber(room string) bool {
	return roomNumberPattern.MatchString(room)
}

// RoomTypeByID returns the room type with the given stable id.
func (h *HotelSettings) RoomTypeByID(id string) (RoomType, bool) {
	for _, rt := range h.RoomTypes {
		if rt.ID == id {
			return rt, true
		}
	}
	return RoomType{}, false
}

// Matches reports whether term names this type by key or alias, ignoring
// case and repeated whitespace.
func (rt RoomType) Matches(term string) bool {
	want := foldKey(term)
	if want == "" {
		return false
	}
	if foldKey(rt.RoomInfo) == want {
		return true
	}
	for _, alias := range rt.Aliases {
		if foldKey(alias) == want {
			return true
		}
	}
	return false
}

// RoomTypeOfRoom finds the type a numbered room belongs to: the type that
// lists it, else the type of its grid cell.
func (h *HotelSettings) RoomTypeOfRoom(room string) (RoomType, bool) {
	room = strings.TrimSpace(room)
	if room == "" {
		return RoomType{}, false
	}
	for _, rt := range h.RoomTypes {
		for _, n := range rt.RoomNumbers {
			if strings.EqualFold(strings.TrimSpace(n), room) {
				return rt, true
			}
		}
	}
	for _, c := range h.Grid.Containers() {
		if !strings.EqualFold(strings.TrimSpace(c.RoomNumber), room) {
			continue
		}
		for _, rt := range h.RoomTypes {
			if rt.Matches(c.RoomInfo) {
				return rt, true
			}
		}
	}
	return RoomType{}, false
}

func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
