package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	apperrors "frontdesk/pkg/errors"
	"frontdesk/pkg/model"
	"frontdesk/pkg/sanitizer"
)

type roomLock struct {
	id   string
	room string
}

func roomLockID(hotelID, room string) string {
	return fmt.Sprintf("room_lock_%s_%s", hotelID, room)
}

// acquireRoomLocks takes the advisory lock of every given room, in a fixed
// order, under a single owner token. Any lock already held by someone else
// fails the whole call with a conflict and releases what was taken.
func (s *reservationService) acquireRoomLocks(ctx context.Context, hotelID string, rooms ...string) (func(), error) {
	seen := make(map[string]struct{}, len(rooms))
	var locks []roomLock
	for _, room := range rooms {
		room = sanitizer.NormalizeRoomNumber(room)
		if room == "" {
			continue
		}
		if _, dup := seen[room]; dup {
			continue
		}
		seen[room] = struct{}{}
		locks = append(locks, roomLock{id: roomLockID(hotelID, room), room: room})
	}
	sort.Slice(locks, func(i, j int) bool { return locks[i].id < locks[j].id })

	owner := uuid.NewString()
	var held []string
	release := func() {
		relCtx := context.WithoutCancel(ctx)
		for _, id := range held {
			if err := s.lockRepo.Delete(relCtx, id, owner); err != nil {
				s.cfg.Log.Warn("Failed to release room lock", "lock_id", id, "error", err)
			}
		}
	}

	expiresAt := s.now().UTC().Add(s.cfg.RoomLockTTL)
	for _, l := range locks {
		_, err := s.lockRepo.Create(ctx, &model.RoomLock{
			ID:        l.id,
			Owner:     owner,
			ExpiresAt: expiresAt,
		})
		if err != nil {
			release()
			if mongo.IsDuplicateKeyError(err) {
				s.cfg.Log.Warn("Room is locked by another request",
					"hotel_id", hotelID,
					"room_number", l.room,
				)
				return nil, apperrors.Conflict(fmt.Sprintf("Room %s is being updated by another request, please retry", l.room))
			}
			return nil, apperrors.Internal("Failed to acquire room lock", err)
		}
		held = append(held, l.id)
	}
	return release, nil
}
