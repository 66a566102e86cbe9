package availability

import (
	"sort"
	"strings"

	"frontdesk/pkg/model"
)

// roomCatalog indexes room types by id, key and alias, and records which
// type owns each numbered room.
type roomCatalog struct {
	types     []model.RoomType
	rooms     [][]string
	byID      map[string]int
	byKey     map[string]int
	roomOwner map[string]int
}

func newRoomCatalog(roomTypes []model.RoomType, grid *model.GridSettings) *roomCatalog {
	c := &roomCatalog{
		types:     roomTypes,
		rooms:     make([][]string, len(roomTypes)),
		byID:      make(map[string]int),
		byKey:     make(map[string]int),
		roomOwner: make(map[string]int),
	}

	for i, rt := range roomTypes {
		if rt.ID != "" {
			c.byID[rt.ID] = i
		}
		if k := normalizeKey(rt.RoomInfo); k != "" {
			if _, taken := c.byKey[k]; !taken {
				c.byKey[k] = i
			}
		}
	}
	// Aliases never shadow a real key.
	for i, rt := range roomTypes {
		for _, alias := range rt.Aliases {
			if k := normalizeKey(alias); k != "" {
				if _, taken := c.byKey[k]; !taken {
					c.byKey[k] = i
				}
			}
		}
	}

	var containers []model.Container
	if grid != nil {
		containers = grid.Containers()
	}
	for i, rt := range roomTypes {
		var rooms []string
		if len(rt.RoomNumbers) > 0 {
			rooms = append(rooms, rt.RoomNumbers...)
		} else {
			for _, cell := range containers {
				if idx, ok := c.byKey[normalizeKey(cell.RoomInfo)]; ok && idx == i {
					rooms = append(rooms, cell.RoomNumber)
				}
			}
		}
		c.rooms[i] = uniqueRooms(rooms)
		for _, room := range c.rooms[i] {
			if _, taken := c.roomOwner[normalizeRoom(room)]; !taken {
				c.roomOwner[normalizeRoom(room)] = i
			}
		}
	}
	return c
}

func (c *roomCatalog) lookup(roomInfo string) (int, bool) {
	idx, ok := c.byKey[normalizeKey(roomInfo)]
	return idx, ok
}

func (c *roomCatalog) ownerOf(room string) (int, bool) {
	idx, ok := c.roomOwner[normalizeRoom(room)]
	return idx, ok
}

// resolve finds the type a reservation counts against: stable id first,
// then its room-type text, then whichever type owns its room.
func (c *roomCatalog) resolve(r *model.Reservation) (int, bool) {
	if r.RoomTypeID != "" {
		if idx, ok := c.byID[r.RoomTypeID]; ok {
			return idx, true
		}
	}
	if idx, ok := c.lookup(r.RoomInfo); ok {
		return idx, true
	}
	if r.IsAssigned() {
		return c.ownerOf(r.RoomNumber)
	}
	return 0, false
}

func (c *roomCatalog) key(idx int) string {
	return c.types[idx].RoomInfo
}

func uniqueRooms(rooms []string) []string {
	seen := make(map[string]struct{}, len(rooms))
	out := make([]string, 0, len(rooms))
	for _, room := range rooms {
		n := normalizeRoom(room)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, strings.TrimSpace(room))
	}
	sort.Strings(out)
	return out
}
