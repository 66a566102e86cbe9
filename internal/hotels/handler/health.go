package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"

	httputil "frontdesk/pkg/http"
	"frontdesk/pkg/logger"
)

const readyTimeout = 2 * time.Second

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Hotels   *int64 `json:"hotels,omitempty"`
}

// HealthHandler serves liveness and readiness. Ready also reports how many
// hotels are configured; a failed count does not make the service unready.
type HealthHandler struct {
	mongoPing   func(ctx context.Context) error
	countHotels func(ctx context.Context) (int64, error)
	log         *logger.Logger
}

func NewHealthHandler(mongoClient *mongo.Client, countHotels func(ctx context.Context) (int64, error), log *logger.Logger) *HealthHandler {
	h := &HealthHandler{countHotels: countHotels, log: log}
	if mongoClient != nil {
		h.mongoPing = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }
	}
	return h
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.write(w, "Health", http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if h.mongoPing == nil {
		h.write(w, "Ready", http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: "disconnected"})
		return
	}
	if err := h.mongoPing(ctx); err != nil {
		h.log.Error("Database health check failed", "error", err, "path", r.URL.Path)
		h.write(w, "Ready", http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: "error"})
		return
	}

	resp := HealthResponse{Status: "ready", Database: "ok"}
	if h.countHotels != nil {
		if n, err := h.countHotels(ctx); err != nil {
			h.log.Warn("Failed to count hotels", "error", err)
		} else {
			resp.Hotels = &n
		}
	}
	h.write(w, "Ready", http.StatusOK, resp)
}

func (h *HealthHandler) write(w http.ResponseWriter, handler string, status int, resp HealthResponse) {
	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
