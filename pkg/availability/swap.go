package availability

import "frontdesk/pkg/model"

const (
	ReasonSameRoom     = "same_room"
	ReasonSwapConflict = "swap_conflict"
)

type SwapResult struct {
	CanSwap bool            `json:"can_swap"`
	Reason  string          `json:"reason,omitempty"`
	AtoB    PlacementResult `json:"a_to_b"`
	BtoA    PlacementResult `json:"b_to_a"`
}

// CanSwapReservations reports whether a and b can exchange rooms without
// either landing on another reservation.
func (e *Engine) CanSwapReservations(a, b *model.Reservation, all []*model.Reservation) bool {
	return e.EvaluateSwap(a, b, all).CanSwap
}

// EvaluateSwap checks a in b's room and b in a's room against every other
// reservation, ignoring a and b themselves since both are moving.
func (e *Engine) EvaluateSwap(a, b *model.Reservation, all []*model.Reservation) SwapResult {
	if a == nil || b == nil || !a.IsAssigned() || !b.IsAssigned() {
		return SwapResult{Reason: ReasonUnassigned}
	}
	if sameRoom(a.RoomNumber, b.RoomNumber) || sameReservation(a, b) {
		return SwapResult{Reason: ReasonSameRoom}
	}

	others := make([]*model.Reservation, 0, len(all))
	for _, r := range all {
		if r == nil || sameReservation(r, a) || sameReservation(r, b) {
			continue
		}
		others = append(others, r)
	}

	aInB := PlacementOf(a, b.RoomNumber)
	aInB.RoomInfo = b.RoomInfo
	bInA := PlacementOf(b, a.RoomNumber)
	bInA.RoomInfo = a.RoomInfo

	result := SwapResult{
		AtoB: e.CanMoveToRoom(aInB, others, "", nil, nil),
		BtoA: e.CanMoveToRoom(bInA, others, "", nil, nil),
	}
	result.CanSwap = result.AtoB.CanMove && result.BtoA.CanMove
	if !result.CanSwap {
		result.Reason = ReasonSwapConflict
	}
	return result
}
