package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"frontdesk/internal/reservations/service"
	"frontdesk/pkg/availability"
	apperrors "frontdesk/pkg/errors"
	httputil "frontdesk/pkg/http"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/model"
)

type MoveRequest struct {
	TargetRoom  string `json:"target_room"`
	ConfirmSwap bool   `json:"confirm_swap"`
}

type SwapRequest struct {
	ReservationA string `json:"reservation_a"`
	ReservationB string `json:"reservation_b"`
}

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reservation model.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		h.writeBadBody(w, "Create")
		return
	}

	if err := h.service.Create(r.Context(), &reservation); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	reservations, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hotelID, from, to, err := rangeQuery(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	reservations, err := h.service.Search(r.Context(), hotelID, from, to)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservations); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadBody(w, "Update")
		return
	}

	reservation, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) Move(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "Move")
		return
	}

	plan, err := h.service.Move(r.Context(), ps.ByName("id"), req.TargetRoom, req.ConfirmSwap)
	if err != nil {
		h.writeError(w, "Move", err)
		return
	}
	h.writePlan(w, "Move", plan)
}

func (h *ReservationHandler) Swap(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "Swap")
		return
	}

	plan, err := h.service.Swap(r.Context(), req.ReservationA, req.ReservationB)
	if err != nil {
		h.writeError(w, "Swap", err)
		return
	}
	h.writePlan(w, "Swap", plan)
}

func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hotelID, from, to, err := rangeQuery(r)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	grid, err := h.service.Availability(r.Context(), hotelID, from, to)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, grid); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) DailySales(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hotelID, from, to, err := rangeQuery(r)
	if err != nil {
		h.writeError(w, "DailySales", err)
		return
	}

	report, err := h.service.DailySales(r.Context(), hotelID, from, to)
	if err != nil {
		h.writeError(w, "DailySales", err)
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "DailySales", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) MonthlySales(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hotelID, err := httputil.RequiredQuery(r, "hotel_id")
	if err != nil {
		h.writeError(w, "MonthlySales", err)
		return
	}
	month, err := httputil.RequiredQuery(r, "month")
	if err != nil {
		h.writeError(w, "MonthlySales", err)
		return
	}

	report, err := h.service.MonthlySales(r.Context(), hotelID, month)
	if err != nil {
		h.writeError(w, "MonthlySales", err)
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "MonthlySales", "operation", "WriteSuccess", "error", err)
	}
}

// writePlan answers 200 with a committed plan. A reverted plan becomes a
// ROOM_CONFLICT carrying the plan and what blocked it.
func (h *ReservationHandler) writePlan(w http.ResponseWriter, handler string, plan *availability.MovePlan) {
	if plan.State == availability.StateCommitted {
		if err := httputil.WriteSuccess(w, plan); err != nil {
			h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
		}
		return
	}
	h.writeError(w, handler, planConflict(plan))
}

func planConflict(plan *availability.MovePlan) error {
	details := map[string]any{
		"plan":   plan,
		"reason": plan.Reason,
	}
	if plan.Conflict != nil {
		details["conflict_reservation"] = plan.Conflict
	}
	if p := plan.Placement; p != nil {
		details["conflict_days"] = p.ConflictDays
		if len(p.FreeRooms) > 0 {
			details["free_rooms"] = p.FreeRooms
		}
	}
	return apperrors.RoomConflict(moveMessage(plan.Reason), details)
}

func moveMessage(reason string) string {
	switch reason {
	case availability.ReasonPastCheckIn:
		return "Reservations that have already checked in cannot be moved"
	case availability.ReasonSwapDeclined:
		return "Target room is occupied, confirm the swap to exchange rooms"
	case availability.ReasonSwapConflict:
		return "Rooms cannot be swapped without overlapping another reservation"
	case availability.ReasonSameRoom:
		return "Reservations are already in the same room"
	case availability.ReasonUnassigned:
		return "A target room is required"
	case availability.ReasonRoomOccupied:
		return "Target room is occupied on some of the requested days"
	default:
		return "Reservation could not be moved"
	}
}

func rangeQuery(r *http.Request) (hotelID, from, to string, err error) {
	if hotelID, err = httputil.RequiredQuery(r, "hotel_id"); err != nil {
		return "", "", "", err
	}
	if from, err = httputil.RequiredQuery(r, "from"); err != nil {
		return "", "", "", err
	}
	if to, err = httputil.RequiredQuery(r, "to"); err != nil {
		return "", "", "", err
	}
	return hotelID, from, to, nil
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.GetAll)
	router.GET("/api/v1/reservations/search", h.Search)
	router.POST("/api/v1/reservations/swap", h.Swap)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.PATCH("/api/v1/reservations/id/:id", h.Update)
	router.DELETE("/api/v1/reservations/id/:id", h.Delete)
	router.POST("/api/v1/reservations/id/:id/move", h.Move)

	router.GET("/api/v1/availability", h.Availability)
	router.GET("/api/v1/sales/daily", h.DailySales)
	router.GET("/api/v1/sales/monthly", h.MonthlySales)
}
