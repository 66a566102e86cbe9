package availability

import (
	"time"

	"frontdesk/pkg/model"
)

const (
	ReasonInvalidInterval = "invalid_interval"
	ReasonUnassigned      = "no_target_room"
	ReasonRoomOccupied    = "room_occupied"
)

// Placement is a candidate position for a reservation: which room, which
// window, which kind of booking.
type Placement struct {
	ReservationID string
	RoomNumber    string
	RoomInfo      string
	Type          string
	CheckIn       time.Time
	CheckOut      time.Time
}

// PlacementOf places r into room, keeping everything else about it.
func PlacementOf(r *model.Reservation, room string) Placement {
	return Placement{
		ReservationID: r.ID,
		RoomNumber:    room,
		RoomInfo:      r.RoomInfo,
		Type:          r.Type,
		CheckIn:       r.CheckIn,
		CheckOut:      r.CheckOut,
	}
}

func (p Placement) asReservation() *model.Reservation {
	return &model.Reservation{
		ID:         p.ReservationID,
		RoomNumber: p.RoomNumber,
		RoomInfo:   p.RoomInfo,
		Type:       p.Type,
		CheckIn:    p.CheckIn,
		CheckOut:   p.CheckOut,
		Status:     model.StatusConfirmed,
	}
}

type PlacementResult struct {
	CanMove                bool                `json:"can_move"`
	Reason                 string              `json:"reason,omitempty"`
	ConflictDays           []string            `json:"conflict_days,omitempty"`
	ConflictReservationIDs []string            `json:"conflict_reservation_ids,omitempty"`
	FreeRooms              map[string][]string `json:"free_rooms,omitempty"`
}

func rejected(reason string) PlacementResult {
	return PlacementResult{CanMove: false, Reason: reason}
}

func (e *Engine) occupantsOf(room string, reservations []*model.Reservation, skip ...string) []*model.Reservation {
	var out []*model.Reservation
	for _, r := range reservations {
		if !active(r) || !sameRoom(r.RoomNumber, room) {
			continue
		}
		skipped := false
		for _, id := range skip {
			if id != "" && r.ID == id {
				skipped = true
				break
			}
		}
		if !skipped {
			out = append(out, r)
		}
	}
	return out
}

// IsRoomAvailableForPeriod walks the candidate's occupied days one at a time
// and records every day some other reservation holds the same room.
func (e *Engine) IsRoomAvailableForPeriod(p Placement, reservations []*model.Reservation, excludeID string) PlacementResult {
	if normalizeRoom(p.RoomNumber) == "" {
		return rejected(ReasonUnassigned)
	}
	candidate := p.asReservation()
	days, ok := e.occupiedDays(candidate)
	if !ok {
		return rejected(ReasonInvalidInterval)
	}

	type occupant struct {
		r    *model.Reservation
		days map[string]struct{}
	}
	var occupants []occupant
	for _, r := range e.occupantsOf(p.RoomNumber, reservations, excludeID, p.ReservationID) {
		rd, ok := e.occupiedDays(r)
		if !ok {
			continue
		}
		set := make(map[string]struct{}, len(rd))
		for _, d := range rd {
			set[DateKey(d)] = struct{}{}
		}
		occupants = append(occupants, occupant{r: r, days: set})
	}

	var conflictDays, conflictIDs []string
	for _, d := range days {
		key := DateKey(d)
		for _, o := range occupants {
			if _, held := o.days[key]; !held {
				continue
			}
			if candidate.IsDayUse() && o.r.IsDayUse() && !Overlaps(
				Interval{Start: candidate.CheckIn, End: candidate.CheckOut},
				Interval{Start: o.r.CheckIn, End: o.r.CheckOut},
				false,
			) {
				continue
			}
			conflictDays = append(conflictDays, key)
			conflictIDs = append(conflictIDs, o.r.ID)
		}
	}

	return PlacementResult{
		CanMove:                len(conflictDays) == 0,
		Reason:                 reasonFor(conflictDays),
		ConflictDays:           sortedUnique(conflictDays),
		ConflictReservationIDs: sortedUnique(conflictIDs),
	}
}

// CheckContainerOverlap compares the candidate against each occupant of the
// target room as whole intervals, independently of the day walk above.
func (e *Engine) CheckContainerOverlap(p Placement, reservations []*model.Reservation, excludeID string) PlacementResult {
	if normalizeRoom(p.RoomNumber) == "" {
		return rejected(ReasonUnassigned)
	}
	candidate := p.asReservation()
	if _, ok := e.dayInterval(candidate); !ok {
		return rejected(ReasonInvalidInterval)
	}

	var conflictDays, conflictIDs []string
	for _, r := range e.occupantsOf(p.RoomNumber, reservations, excludeID, p.ReservationID) {
		if days := e.conflictDays(candidate, r); len(days) > 0 {
			conflictDays = append(conflictDays, days...)
			conflictIDs = append(conflictIDs, r.ID)
		}
	}

	return PlacementResult{
		CanMove:                len(conflictDays) == 0,
		Reason:                 reasonFor(conflictDays),
		ConflictDays:           sortedUnique(conflictDays),
		ConflictReservationIDs: sortedUnique(conflictIDs),
	}
}

// CanMoveToRoom requires both checks to pass and merges what they found.
// When roomTypes is non-empty a rejection also lists the rooms of the
// candidate's type that are still free on each conflicting day.
func (e *Engine) CanMoveToRoom(
	p Placement,
	reservations []*model.Reservation,
	excludeID string,
	roomTypes []model.RoomType,
	grid *model.GridSettings,
) PlacementResult {
	byDay := e.IsRoomAvailableForPeriod(p, reservations, excludeID)
	byContainer := e.CheckContainerOverlap(p, reservations, excludeID)

	if byDay.Reason == ReasonInvalidInterval || byContainer.Reason == ReasonInvalidInterval {
		return rejected(ReasonInvalidInterval)
	}
	if byDay.Reason == ReasonUnassigned {
		return rejected(ReasonUnassigned)
	}

	merged := PlacementResult{
		CanMove:                byDay.CanMove && byContainer.CanMove,
		ConflictDays:           sortedUnique(append(append([]string{}, byDay.ConflictDays...), byContainer.ConflictDays...)),
		ConflictReservationIDs: sortedUnique(append(append([]string{}, byDay.ConflictReservationIDs...), byContainer.ConflictReservationIDs...)),
	}
	if merged.CanMove {
		return merged
	}
	merged.Reason = ReasonRoomOccupied

	if len(roomTypes) > 0 && len(merged.ConflictDays) > 0 {
		merged.FreeRooms = e.freeRoomsOn(p, merged.ConflictDays, reservations, excludeID, roomTypes, grid)
	}
	return merged
}

func (e *Engine) freeRoomsOn(
	p Placement,
	days []string,
	reservations []*model.Reservation,
	excludeID string,
	roomTypes []model.RoomType,
	grid *model.GridSettings,
) map[string][]string {
	first, err := time.ParseInLocation(DateKeyLayout, days[0], e.loc)
	if err != nil {
		return nil
	}
	last, err := time.ParseInLocation(DateKeyLayout, days[len(days)-1], e.loc)
	if err != nil {
		return nil
	}

	others := make([]*model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r == nil || (excludeID != "" && r.ID == excludeID) || (p.ReservationID != "" && r.ID == p.ReservationID) {
			continue
		}
		others = append(others, r)
	}

	avail := e.CalculateRoomAvailability(others, roomTypes, first, last, grid)
	cat := newRoomCatalog(roomTypes, grid)
	typeIdx, typed := cat.lookup(p.RoomInfo)

	free := make(map[string][]string, len(days))
	for _, day := range days {
		var rooms []string
		for idx := range cat.types {
			if typed && idx != typeIdx {
				continue
			}
			if ra, ok := avail.Get(day, cat.key(idx)); ok {
				rooms = append(rooms, ra.LeftoverRooms...)
			}
		}
		free[day] = sortedUnique(rooms)
	}
	return free
}

func reasonFor(conflictDays []string) string {
	if len(conflictDays) > 0 {
		return ReasonRoomOccupied
	}
	return ""
}
