package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"frontdesk/pkg/model"
)

type MoveState int

const (
	StateIdle MoveState = iota
	StateDragStarted
	StateDropped
	StateCommitted
	StateReverted
)

func (s MoveState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragStarted:
		return "drag_started"
	case StateDropped:
		return "dropped"
	case StateCommitted:
		return "committed"
	case StateReverted:
		return "reverted"
	default:
		return fmt.Sprintf("MoveState(%d)", int(s))
	}
}

func (s MoveState) Terminal() bool {
	return s == StateCommitted || s == StateReverted
}

type MoveAction string

const (
	ActionNone MoveAction = "none"
	ActionMove MoveAction = "move"
	ActionSwap MoveAction = "swap"
)

const (
	ReasonPastCheckIn   = "past_check_in"
	ReasonSwapDeclined  = "swap_not_confirmed"
	ReasonDragCancelled = "drag_cancelled"
)

var ErrInvalidTransition = errors.New("invalid move state transition")

// RoomChange is one reservation's new position after a committed plan.
type RoomChange struct {
	ReservationID string `json:"reservation_id"`
	FromRoom      string `json:"from_room"`
	ToRoom        string `json:"to_room"`
	FromRoomInfo  string `json:"from_room_info"`
	ToRoomInfo    string `json:"to_room_info"`
}

type MovePlan struct {
	State     MoveState          `json:"-"`
	StateName string             `json:"state"`
	Action    MoveAction         `json:"action"`
	Reason    string             `json:"reason,omitempty"`
	Conflict  *model.Reservation `json:"conflict,omitempty"`
	Placement *PlacementResult   `json:"placement,omitempty"`
	Swap      *SwapResult        `json:"swap,omitempty"`
	Changes   []RoomChange       `json:"changes,omitempty"`
}

type MoveRequest struct {
	Reservation *model.Reservation
	TargetRoom  string
	ConfirmSwap bool
}

// MoveFlow tracks one drag of one reservation from pick-up to a terminal
// state. Reservations handed to it are read only.
type MoveFlow struct {
	engine    *Engine
	roomTypes []model.RoomType
	grid      *model.GridSettings
	state     MoveState
	dragged   *model.Reservation
	plan      MovePlan
}

func (e *Engine) NewMoveFlow(roomTypes []model.RoomType, grid *model.GridSettings) *MoveFlow {
	return &MoveFlow{
		engine:    e,
		roomTypes: roomTypes,
		grid:      grid,
		state:     StateIdle,
	}
}

func (f *MoveFlow) State() MoveState {
	return f.state
}

func (f *MoveFlow) Plan() MovePlan {
	return f.plan
}

func (f *MoveFlow) Start(r *model.Reservation) error {
	if f.state != StateIdle {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, f.state)
	}
	if r == nil {
		return fmt.Errorf("reservation cannot be nil")
	}
	f.dragged = r
	f.state = StateDragStarted
	return nil
}

// Cancel aborts a drag before it is dropped. Nothing has been written yet.
func (f *MoveFlow) Cancel() error {
	if f.state != StateDragStarted {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, f.state)
	}
	f.finish(MovePlan{Action: ActionNone, Reason: ReasonDragCancelled}, StateReverted)
	return nil
}

// Drop runs the conflict detector and then the swap or placement validator,
// ending in Committed or Reverted.
func (f *MoveFlow) Drop(targetRoom string, confirmSwap bool, all []*model.Reservation, now time.Time) (MovePlan, error) {
	if f.state != StateDragStarted {
		return MovePlan{}, fmt.Errorf("%w: drop from %s", ErrInvalidTransition, f.state)
	}
	f.state = StateDropped

	e := f.engine
	r := f.dragged
	cat := newRoomCatalog(f.roomTypes, f.grid)

	if strings.TrimSpace(targetRoom) == "" {
		f.finish(MovePlan{Action: ActionNone, Reason: ReasonUnassigned}, StateReverted)
		return f.plan, nil
	}

	check := e.CheckConflict(r, targetRoom, all, now)
	if check.PastCheckIn {
		f.finish(MovePlan{Action: ActionNone, Reason: ReasonPastCheckIn}, StateReverted)
		return f.plan, nil
	}

	if check.IsConflict {
		occupant := check.ConflictReservation
		if !confirmSwap {
			f.finish(MovePlan{Action: ActionSwap, Reason: ReasonSwapDeclined, Conflict: occupant}, StateReverted)
			return f.plan, nil
		}
		swap := e.EvaluateSwap(r, occupant, all)
		plan := MovePlan{Action: ActionSwap, Conflict: occupant, Swap: &swap}
		if !swap.CanSwap {
			plan.Reason = swap.Reason
			f.finish(plan, StateReverted)
			return f.plan, nil
		}
		plan.Changes = []RoomChange{
			{
				ReservationID: r.ID,
				FromRoom:      r.RoomNumber,
				ToRoom:        occupant.RoomNumber,
				FromRoomInfo:  r.RoomInfo,
				ToRoomInfo:    occupant.RoomInfo,
			},
			{
				ReservationID: occupant.ID,
				FromRoom:      occupant.RoomNumber,
				ToRoom:        r.RoomNumber,
				FromRoomInfo:  occupant.RoomInfo,
				ToRoomInfo:    r.RoomInfo,
			},
		}
		f.finish(plan, StateCommitted)
		return f.plan, nil
	}

	toInfo := r.RoomInfo
	if idx, ok := cat.ownerOf(targetRoom); ok {
		toInfo = cat.key(idx)
	}
	p := PlacementOf(r, targetRoom)
	p.RoomInfo = toInfo
	placement := e.CanMoveToRoom(p, all, r.ID, f.roomTypes, f.grid)

	plan := MovePlan{Action: ActionMove, Placement: &placement}
	if !placement.CanMove {
		plan.Reason = placement.Reason
		f.finish(plan, StateReverted)
		return f.plan, nil
	}
	plan.Changes = []RoomChange{{
		ReservationID: r.ID,
		FromRoom:      r.RoomNumber,
		ToRoom:        strings.TrimSpace(targetRoom),
		FromRoomInfo:  r.RoomInfo,
		ToRoomInfo:    toInfo,
	}}
	f.finish(plan, StateCommitted)
	return f.plan, nil
}

func (f *MoveFlow) finish(plan MovePlan, state MoveState) {
	plan.State = state
	plan.StateName = state.String()
	f.plan = plan
	f.state = state
}

// PlanMove runs a whole drag in one call.
func (e *Engine) PlanMove(
	req MoveRequest,
	all []*model.Reservation,
	roomTypes []model.RoomType,
	grid *model.GridSettings,
	now time.Time,
) (MovePlan, error) {
	flow := e.NewMoveFlow(roomTypes, grid)
	if err := flow.Start(req.Reservation); err != nil {
		return MovePlan{}, err
	}
	return flow.Drop(req.TargetRoom, req.ConfirmSwap, all, now)
}
