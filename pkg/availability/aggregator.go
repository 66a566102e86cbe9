package availability

import (
	"sort"
	"strings"
	"time"

	"frontdesk/pkg/model"
)

type RoomAvailability struct {
	Remain        int      `json:"remain"`
	LeftoverRooms []string `json:"leftover_rooms"`
	AssignedRooms []string `json:"assigned_rooms"`
}

func (ra *RoomAvailability) IsAssigned(room string) bool {
	for _, r := range ra.AssignedRooms {
		if sameRoom(r, room) {
			return true
		}
	}
	return false
}

// RoomConflict reports a room held by more than one reservation on a day.
type RoomConflict struct {
	RoomNumber     string   `json:"room_number"`
	ReservationIDs []string `json:"reservation_ids"`
}

// AvailabilityByDate maps date key -> room type key -> occupancy.
type AvailabilityByDate struct {
	Dates      []string                                `json:"dates"`
	ByDate     map[string]map[string]*RoomAvailability `json:"by_date"`
	Unassigned map[string]int                          `json:"unassigned"`
	Conflicts  map[string][]RoomConflict               `json:"conflicts,omitempty"`
}

// Get looks up a room type case-insensitively.
func (a *AvailabilityByDate) Get(date, roomInfo string) (*RoomAvailability, bool) {
	types, ok := a.ByDate[date]
	if !ok {
		return nil, false
	}
	if ra, ok := types[roomInfo]; ok {
		return ra, true
	}
	want := normalizeKey(roomInfo)
	for key, ra := range types {
		if normalizeKey(key) == want {
			return ra, true
		}
	}
	return nil, false
}

func (a *AvailabilityByDate) Remain(date, roomInfo string) int {
	if ra, ok := a.Get(date, roomInfo); ok {
		return ra.Remain
	}
	return 0
}

// CalculateRoomAvailability recomputes occupancy for every day in [from, to].
// Cancelled reservations are ignored and reservations with an unusable stay
// window are skipped with a warning.
func (e *Engine) CalculateRoomAvailability(
	reservations []*model.Reservation,
	roomTypes []model.RoomType,
	from, to time.Time,
	grid *model.GridSettings,
) *AvailabilityByDate {
	cat := newRoomCatalog(roomTypes, grid)
	days := EachDay(from, to, e.loc)

	result := &AvailabilityByDate{
		Dates:      make([]string, 0, len(days)),
		ByDate:     make(map[string]map[string]*RoomAvailability, len(days)),
		Unassigned: make(map[string]int, len(days)),
		Conflicts:  make(map[string][]RoomConflict),
	}
	if len(days) == 0 {
		return result
	}

	inWindow := make(map[string]struct{}, len(days))
	for _, d := range days {
		key := DateKey(d)
		inWindow[key] = struct{}{}
		result.Dates = append(result.Dates, key)
		result.Unassigned[key] = 0
	}

	// assigned[day][type] holds the room numbers that type's reservations use;
	// held[day][room] is every reservation physically in that room.
	assigned := make(map[string]map[int]map[string]string, len(days))
	held := make(map[string]map[string][]*model.Reservation, len(days))

	for _, r := range reservations {
		if !active(r) {
			continue
		}
		occupied, ok := e.occupiedDays(r)
		if !ok {
			e.log.Warn("Skipping reservation with invalid stay window",
				"reservation_id", r.ID,
				"check_in", r.CheckIn,
				"check_out", r.CheckOut,
			)
			continue
		}

		typeIdx, typed := cat.resolve(r)
		if r.IsAssigned() && !typed {
			e.log.Debug("Reservation room type not in catalog",
				"reservation_id", r.ID,
				"room_info", r.RoomInfo,
				"room_number", r.RoomNumber,
			)
		}

		for _, d := range occupied {
			key := DateKey(d)
			if _, ok := inWindow[key]; !ok {
				continue
			}
			if !r.IsAssigned() {
				result.Unassigned[key]++
				continue
			}

			room := normalizeRoom(r.RoomNumber)
			if held[key] == nil {
				held[key] = make(map[string][]*model.Reservation)
			}
			held[key][room] = append(held[key][room], r)

			if typed {
				if assigned[key] == nil {
					assigned[key] = make(map[int]map[string]string)
				}
				if assigned[key][typeIdx] == nil {
					assigned[key][typeIdx] = make(map[string]string)
				}
				assigned[key][typeIdx][room] = strings.TrimSpace(r.RoomNumber)
			}
		}
	}

	for _, key := range result.Dates {
		perType := make(map[string]*RoomAvailability, len(roomTypes))
		for idx, rt := range cat.types {
			rooms := make([]string, 0, len(assigned[key][idx]))
			for _, display := range assigned[key][idx] {
				rooms = append(rooms, display)
			}
			sort.Strings(rooms)

			leftover := make([]string, 0, len(cat.rooms[idx]))
			for _, room := range cat.rooms[idx] {
				if len(held[key][normalizeRoom(room)]) == 0 {
					leftover = append(leftover, room)
				}
			}

			perType[cat.key(idx)] = &RoomAvailability{
				Remain:        max(rt.Stock-len(rooms), 0),
				LeftoverRooms: leftover,
				AssignedRooms: rooms,
			}
		}
		result.ByDate[key] = perType

		if conflicts := e.roomConflicts(held[key]); len(conflicts) > 0 {
			result.Conflicts[key] = conflicts
		}
	}

	return result
}

// roomConflicts finds rooms on one day whose occupants genuinely collide.
// Non-overlapping day-use bookings may share a room-day.
func (e *Engine) roomConflicts(held map[string][]*model.Reservation) []RoomConflict {
	var out []RoomConflict
	for _, occupants := range held {
		if len(occupants) < 2 {
			continue
		}
		var ids []string
		for i := 0; i < len(occupants); i++ {
			for j := i + 1; j < len(occupants); j++ {
				a, b := occupants[i], occupants[j]
				if a.IsDayUse() && b.IsDayUse() && !Overlaps(
					Interval{Start: a.CheckIn, End: a.CheckOut},
					Interval{Start: b.CheckIn, End: b.CheckOut},
					false,
				) {
					continue
				}
				ids = append(ids, a.ID, b.ID)
			}
		}
		if len(ids) > 0 {
			out = append(out, RoomConflict{
				RoomNumber:     strings.TrimSpace(occupants[0].RoomNumber),
				ReservationIDs: sortedUnique(ids),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RoomNumber < out[j].RoomNumber
	})
	return out
}
