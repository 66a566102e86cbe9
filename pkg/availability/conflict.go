package availability

import (
	"time"

	"frontdesk/pkg/model"
)

type ConflictResult struct {
	IsConflict          bool               `json:"is_conflict"`
	PastCheckIn         bool               `json:"past_check_in,omitempty"`
	ConflictReservation *model.Reservation `json:"conflict_reservation,omitempty"`
}

// CheckConflict is the drag-and-drop guard. It rejects a reservation whose
// check-in day is before now's day, otherwise returns the first other active
// reservation in targetRoom (input order) that collides with it.
func (e *Engine) CheckConflict(dragged *model.Reservation, targetRoom string, all []*model.Reservation, now time.Time) ConflictResult {
	if DayOnly(dragged.CheckIn, e.loc).Before(DayOnly(now, e.loc)) {
		return ConflictResult{IsConflict: true, PastCheckIn: true}
	}

	candidate := *dragged
	candidate.RoomNumber = targetRoom

	for _, other := range all {
		if !active(other) || sameReservation(other, dragged) {
			continue
		}
		if !sameRoom(other.RoomNumber, targetRoom) {
			continue
		}
		if e.conflicts(&candidate, other) {
			return ConflictResult{IsConflict: true, ConflictReservation: other}
		}
	}
	return ConflictResult{}
}
