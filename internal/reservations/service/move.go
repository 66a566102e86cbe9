package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"frontdesk/internal/reservations/events"
	"frontdesk/pkg/availability"
	apperrors "frontdesk/pkg/errors"
	"frontdesk/pkg/model"
	"frontdesk/pkg/sanitizer"
)

// Move runs the drag-and-drop flow for one reservation. A reverted plan is
// a normal result, not an error; only a committed plan is written.
func (s *reservationService) Move(ctx context.Context, id, targetRoom string, confirmSwap bool) (*availability.MovePlan, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve reservation")
	}
	hotel, err := s.hotel(ctx, r.HotelID)
	if err != nil {
		return nil, err
	}

	target := sanitizer.NormalizeRoomNumber(targetRoom)
	if target != "" {
		if _, ok := hotel.RoomTypeOfRoom(target); !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf("Room %s does not exist in hotel %s", target, hotel.ID))
		}
	}

	release, err := s.acquireRoomLocks(ctx, r.HotelID, target, r.RoomNumber)
	if err != nil {
		return nil, err
	}
	defer release()

	engine := availability.ForHotel(hotel, s.cfg.Log)
	req := availability.MoveRequest{Reservation: r, TargetRoom: target, ConfirmSwap: confirmSwap}

	var plan availability.MovePlan
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		all, err := s.loadWindow(sessCtx, engine, r.HotelID, r.CheckIn, r.CheckOut)
		if err != nil {
			return err
		}
		plan, err = engine.PlanMove(req, all, hotel.RoomTypes, &hotel.Grid, s.now())
		if err != nil {
			return err
		}

		// A swap puts r into the occupant's whole stay, which can reach past r's
		// own window, so look again with both stays in view.
		if occupant := plan.Conflict; plan.Action == availability.ActionSwap && occupant != nil && confirmSwap {
			all, err = s.loadWindow(sessCtx, engine, r.HotelID,
				earliest(r.CheckIn, occupant.CheckIn), latest(r.CheckOut, occupant.CheckOut))
			if err != nil {
				return err
			}
			plan, err = engine.PlanMove(req, all, hotel.RoomTypes, &hotel.Grid, s.now())
			if err != nil {
				return err
			}
		}

		if plan.State != availability.StateCommitted {
			return nil
		}
		return s.applyChanges(sessCtx, hotel, plan.Changes)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to move reservation",
			"id", id,
			"target_room", target,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to move reservation", err)
	}

	s.finishMove(ctx, r.HotelID, id, plan)
	return &plan, nil
}

// Swap exchanges the rooms of two reservations of the same hotel.
func (s *reservationService) Swap(ctx context.Context, idA, idB string) (*availability.MovePlan, error) {
	if idA == "" || idB == "" {
		return nil, apperrors.InvalidInput("Both reservation IDs are required")
	}
	if idA == idB {
		return nil, apperrors.InvalidInput("Cannot swap a reservation with itself")
	}

	a, err := s.repo.FindByID(ctx, idA)
	if err != nil {
		return nil, s.mapRepoError(err, idA, "Failed to retrieve reservation")
	}
	b, err := s.repo.FindByID(ctx, idB)
	if err != nil {
		return nil, s.mapRepoError(err, idB, "Failed to retrieve reservation")
	}
	if a.HotelID != b.HotelID {
		return nil, apperrors.InvalidInput("Reservations belong to different hotels")
	}

	hotel, err := s.hotel(ctx, a.HotelID)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireRoomLocks(ctx, a.HotelID, a.RoomNumber, b.RoomNumber)
	if err != nil {
		return nil, err
	}
	defer release()

	engine := availability.ForHotel(hotel, s.cfg.Log)
	plan := availability.MovePlan{Action: availability.ActionSwap, Conflict: b}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		today := availability.DayOnly(s.now(), engine.Location())
		for _, r := range []*model.Reservation{a, b} {
			if availability.DayOnly(r.CheckIn, engine.Location()).Before(today) {
				plan.Reason = availability.ReasonPastCheckIn
				finishPlan(&plan, availability.StateReverted)
				return nil
			}
		}

		all, err := s.loadWindow(sessCtx, engine, a.HotelID,
			earliest(a.CheckIn, b.CheckIn), latest(a.CheckOut, b.CheckOut))
		if err != nil {
			return err
		}

		swap := engine.EvaluateSwap(a, b, all)
		plan.Swap = &swap
		if !swap.CanSwap {
			plan.Reason = swap.Reason
			finishPlan(&plan, availability.StateReverted)
			return nil
		}

		plan.Changes = []availability.RoomChange{
			{ReservationID: a.ID, FromRoom: a.RoomNumber, ToRoom: b.RoomNumber, FromRoomInfo: a.RoomInfo, ToRoomInfo: b.RoomInfo},
			{ReservationID: b.ID, FromRoom: b.RoomNumber, ToRoom: a.RoomNumber, FromRoomInfo: b.RoomInfo, ToRoomInfo: a.RoomInfo},
		}
		finishPlan(&plan, availability.StateCommitted)
		return s.applyChanges(sessCtx, hotel, plan.Changes)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to swap reservations",
			"reservation_a", idA,
			"reservation_b", idB,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to swap reservations", err)
	}

	s.finishMove(ctx, a.HotelID, idA, plan)
	return &plan, nil
}

// applyChanges writes each room change in order. Without transactions a
// failed write undoes the changes already written.
func (s *reservationService) applyChanges(ctx context.Context, hotel *model.HotelSettings, changes []availability.RoomChange) error {
	var applied []availability.RoomChange
	for _, c := range changes {
		err := s.repo.UpdateRoom(ctx, c.ReservationID, c.ToRoom, c.ToRoomInfo, roomTypeIDOf(hotel, c.ToRoomInfo))
		if err != nil {
			if !s.repo.Transactional() {
				s.revertChanges(ctx, hotel, applied)
			}
			return fmt.Errorf("failed to move reservation %s to room %s: %w", c.ReservationID, c.ToRoom, err)
		}
		applied = append(applied, c)
	}
	return nil
}

func (s *reservationService) revertChanges(ctx context.Context, hotel *model.HotelSettings, applied []availability.RoomChange) {
	ctx = context.WithoutCancel(ctx)
	for i := len(applied) - 1; i >= 0; i-- {
		c := applied[i]
		if err := s.repo.UpdateRoom(ctx, c.ReservationID, c.FromRoom, c.FromRoomInfo, roomTypeIDOf(hotel, c.FromRoomInfo)); err != nil {
			s.cfg.Log.Error("Failed to revert room change",
				"reservation_id", c.ReservationID,
				"from_room", c.FromRoom,
				"to_room", c.ToRoom,
				"error", err,
			)
			continue
		}
		s.cfg.Log.Warn("Reverted room change",
			"reservation_id", c.ReservationID,
			"room_number", c.FromRoom,
		)
	}
}

func (s *reservationService) finishMove(ctx context.Context, hotelID, id string, plan availability.MovePlan) {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordMove(string(plan.Action), plan.StateName, plan.Reason)
	}
	if plan.State != availability.StateCommitted {
		s.cfg.Log.Info("Reservation move reverted",
			"id", id,
			"action", plan.Action,
			"reason", plan.Reason,
		)
		return
	}

	eventType := events.TypeReservationMoved
	if plan.Action == availability.ActionSwap {
		eventType = events.TypeReservationSwapped
	}
	s.afterWrite(ctx, eventType, hotelID, id, plan.Changes)
	s.cfg.Log.Info("Reservation move committed",
		"id", id,
		"action", plan.Action,
		"changes", len(plan.Changes),
	)
}

func finishPlan(plan *availability.MovePlan, state availability.MoveState) {
	plan.State = state
	plan.StateName = state.String()
}
