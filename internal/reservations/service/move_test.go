package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"frontdesk/internal/reservations/events"
	"frontdesk/pkg/availability"
	apperrors "frontdesk/pkg/errors"
)

func TestMove_ToFreeRoom(t *testing.T) {
	f := newFixture()
	f.withReservations(stay(resAID, "101", "Standard", stdTypeID, 2, 2))

	plan, err := f.svc.Move(context.Background(), resAID, "102", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.State != availability.StateCommitted || plan.Action != availability.ActionMove {
		t.Fatalf("expected committed move, got %s/%s (%s)", plan.StateName, plan.Action, plan.Reason)
	}

	want := []roomUpdate{{id: resAID, room: "102", roomInfo: "Standard", roomTypeID: stdTypeID}}
	if !reflect.DeepEqual(f.repo.roomUpdates, want) {
		t.Errorf("expected %+v, got %+v", want, f.repo.roomUpdates)
	}
	if len(f.locks.acquired) != 2 || len(f.locks.released) != 2 {
		t.Errorf("expected both rooms locked and released, got %d/%d", len(f.locks.acquired), len(f.locks.released))
	}
	if len(f.events.published) != 1 || f.events.published[0].Type != events.TypeReservationMoved {
		t.Errorf("expected moved event, got %+v", f.events.published)
	}
	if len(f.cache.invalidated) != 1 {
		t.Errorf("expected cache invalidated once, got %v", f.cache.invalidated)
	}
}

func TestMove_OccupiedNeedsConfirmation(t *testing.T) {
	f := newFixture()
	f.withReservations(
		stay(resAID, "101", "Standard", stdTypeID, 2, 2),
		stay(resBID, "201", "Deluxe", dlxTypeID, 2, 2),
	)

	plan, err := f.svc.Move(context.Background(), resAID, "201", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.State != availability.StateReverted || plan.Reason != availability.ReasonSwapDeclined {
		t.Fatalf("expected reverted swap_not_confirmed, got %s/%s", plan.StateName, plan.Reason)
	}
	if plan.Conflict == nil || plan.Conflict.ID != resBID {
		t.Errorf("expected conflict with %s, got %+v", resBID, plan.Conflict)
	}
	if len(f.repo.roomUpdates) != 0 || len(f.events.published) != 0 || len(f.cache.invalidated) != 0 {
		t.Error("a reverted plan must not write anything")
	}
}

func TestMove_ConfirmedSwap(t *testing.T) {
	f := newFixture()
	f.withReservations(
		stay(resAID, "101", "Standard", stdTypeID, 2, 2),
		stay(resBID, "201", "Deluxe", dlxTypeID, 2, 2),
	)

	plan, err := f.svc.Move(context.Background(), resAID, "201", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.State != availability.StateCommitted || plan.Action != availability.ActionSwap {
		t.Fatalf("expected committed swap, got %s/%s (%s)", plan.StateName, plan.Action, plan.Reason)
	}

	want := []roomUpdate{
		{id: resAID, room: "201", roomInfo: "Deluxe", roomTypeID: dlxTypeID},
		{id: resBID, room: "101", roomInfo: "Standard", roomTypeID: stdTypeID},
	}
	if !reflect.DeepEqual(f.repo.roomUpdates, want) {
		t.Errorf("expected %+v, got %+v", want, f.repo.roomUpdates)
	}
	if len(f.events.published) != 1 || f.events.published[0].Type != events.TypeReservationSwapped {
		t.Errorf("expected swapped event, got %+v", f.events.published)
	}
}

func TestMove_PastCheckIn(t *testing.T) {
	f := newFixture()
	f.svc.now = func() time.Time { return at(5, 10) }
	f.withReservations(stay(resAID, "101", "Standard", stdTypeID, 2, 2))

	plan, err := f.svc.Move(context.Background(), resAID, "102", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.State != availability.StateReverted || plan.Reason != availability.ReasonPastCheckIn {
		t.Errorf("expected past_check_in, got %s/%s", plan.StateName, plan.Reason)
	}
}

func TestMove_UnknownRoom(t *testing.T) {
	f := newFixture()
	f.withReservations(stay(resAID, "101", "Standard", stdTypeID, 2, 2))

	if _, err := f.svc.Move(context.Background(), resAID, "909", false); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
	if _, err := f.svc.Move(context.Background(), resBID, "102", false); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestMove_RevertsPartialSwapWithoutTransactions(t *testing.T) {
	tests := []struct {
		name          string
		transactional bool
		wantUpdates   int
	}{
		{"standalone mongod undoes the first write", false, 3},
		{"transaction rolls back on its own", true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.transactional = tt.transactional
			f.withReservations(
				stay(resAID, "101", "Standard", stdTypeID, 2, 2),
				stay(resBID, "201", "Deluxe", dlxTypeID, 2, 2),
			)
			f.repo.updateRoomFunc = func(_ context.Context, id, _, _, _ string) error {
				if id == resBID {
					return errors.New("write conflict")
				}
				return nil
			}

			_, err := f.svc.Move(context.Background(), resAID, "201", true)
			if !apperrors.HasCode(err, apperrors.CodeInternal) {
				t.Fatalf("expected internal error, got %v", err)
			}
			if len(f.repo.roomUpdates) != tt.wantUpdates {
				t.Fatalf("expected %d room writes, got %+v", tt.wantUpdates, f.repo.roomUpdates)
			}
			if !tt.transactional {
				revert := f.repo.roomUpdates[2]
				want := roomUpdate{id: resAID, room: "101", roomInfo: "Standard", roomTypeID: stdTypeID}
				if revert != want {
					t.Errorf("expected revert %+v, got %+v", want, revert)
				}
			}
			if len(f.events.published) != 0 {
				t.Error("a failed move must not publish")
			}
		})
	}
}

func TestSwap(t *testing.T) {
	f := newFixture()
	f.withReservations(
		stay(resAID, "101", "Standard", stdTypeID, 2, 2),
		stay(resBID, "201", "Deluxe", dlxTypeID, 3, 1),
	)

	plan, err := f.svc.Swap(context.Background(), resAID, resBID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.State != availability.StateCommitted || len(plan.Changes) != 2 {
		t.Fatalf("expected committed swap with two changes, got %s (%s)", plan.StateName, plan.Reason)
	}
	if len(f.repo.roomUpdates) != 2 {
		t.Errorf("expected two room writes, got %+v", f.repo.roomUpdates)
	}
	if len(f.events.published) != 1 || f.events.published[0].Type != events.TypeReservationSwapped {
		t.Errorf("expected swapped event, got %+v", f.events.published)
	}
}

func TestSwap_BlockedByThirdReservation(t *testing.T) {
	f := newFixture()
	f.withReservations(
		stay(resAID, "101", "Standard", stdTypeID, 2, 2),
		stay(resBID, "201", "Deluxe", dlxTypeID, 2, 1),
		stay(createdID, "201", "Deluxe", dlxTypeID, 3, 1),
	)

	plan, err := f.svc.Swap(context.Background(), resAID, resBID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.State != availability.StateReverted || plan.Reason != availability.ReasonSwapConflict {
		t.Fatalf("expected swap_conflict, got %s/%s", plan.StateName, plan.Reason)
	}
	if plan.Swap == nil || plan.Swap.AtoB.CanMove {
		t.Errorf("expected A->B placement to fail, got %+v", plan.Swap)
	}
	if len(f.repo.roomUpdates) != 0 {
		t.Error("a reverted swap must not write")
	}
}

func TestSwap_Rejections(t *testing.T) {
	f := newFixture()
	other := stay(resBID, "201", "Deluxe", dlxTypeID, 2, 2)
	other.HotelID = otherHotel
	f.withReservations(stay(resAID, "101", "Standard", stdTypeID, 2, 2), other)

	if _, err := f.svc.Swap(context.Background(), resAID, resAID); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input for self swap, got %v", err)
	}
	if _, err := f.svc.Swap(context.Background(), resAID, resBID); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input across hotels, got %v", err)
	}
	if _, err := f.svc.Swap(context.Background(), resAID, createdID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
