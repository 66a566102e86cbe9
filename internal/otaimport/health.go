package otaimport

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	httputil "frontdesk/pkg/http"
	"frontdesk/pkg/logger"
)

type HealthResponse struct {
	Status       string `json:"status"`
	Reservations string `json:"reservations,omitempty"`
	Lag          int64  `json:"lag"`
}

// HealthHandler reports on the import worker. Ready fails while the
// reservations service cannot be reached, since nothing can be imported then.
type HealthHandler struct {
	reservationsPing func(ctx context.Context) error
	lag              func() int64
	log              *logger.Logger
}

func NewHealthHandler(reservationsPing func(ctx context.Context) error, lag func() int64, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		reservationsPing: reservationsPing,
		lag:              lag,
		log:              log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Lag:    h.currentLag(),
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, resp := http.StatusOK, HealthResponse{Status: "ready", Reservations: "ok", Lag: h.currentLag()}
	if h.reservationsPing != nil {
		if err := h.reservationsPing(ctx); err != nil {
			h.log.Error("Reservations service health check failed", "error", err, "path", r.URL.Path)
			status = http.StatusServiceUnavailable
			resp.Status, resp.Reservations = "unavailable", "error"
		}
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) currentLag() int64 {
	if h.lag == nil {
		return 0
	}
	return h.lag()
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
