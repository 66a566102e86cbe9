package otaimport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	apperrors "frontdesk/pkg/errors"
	httputil "frontdesk/pkg/http"
	"frontdesk/pkg/kafka"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/middleware"
	"frontdesk/pkg/model"
)

const Source = "ota-webhook"

type Accepted struct {
	Channel        string `json:"channel"`
	ExternalID     string `json:"external_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

// WebhookHandler receives bookings pushed by channel managers and queues
// them for the importer. The signature is checked by middleware before the
// request gets here.
type WebhookHandler struct {
	producer  kafka.Publisher
	validator *BookingValidator
	log       *logger.Logger
	now       func() time.Time
}

func NewWebhookHandler(producer kafka.Publisher, validator *BookingValidator, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		producer:  producer,
		validator: validator,
		log:       log,
		now:       time.Now,
	}
}

func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.OTABooking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Receive", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.validator.Validate(&booking); err != nil {
		h.writeError(w, apperrors.Validation(err.Error(), nil))
		return
	}
	if booking.ReceivedAt.IsZero() {
		booking.ReceivedAt = h.now().UTC()
	}

	msg, err := kafka.NewMessage().
		WithKey(booking.HotelID).
		WithValue(booking).
		WithEventType(EventTypeBooking).
		WithCorrelationID(middleware.RequestID(r.Context())).
		WithSource(Source).
		WithTimestamp(booking.ReceivedAt).
		Build()
	if err != nil {
		h.writeError(w, apperrors.Internal("Failed to queue OTA booking", err))
		return
	}

	if err := h.producer.Publish(r.Context(), msg); err != nil {
		h.log.Error("Failed to queue OTA booking",
			"channel", booking.Channel,
			"external_id", booking.ExternalID,
			"error", err,
		)
		h.writeError(w, apperrors.Unavailable("OTA import queue"))
		return
	}

	h.log.Info("OTA booking queued",
		"channel", booking.Channel,
		"external_id", booking.ExternalID,
		"hotel_id", booking.HotelID,
	)
	if err := httputil.WriteAccepted(w, Accepted{
		Channel:        booking.Channel,
		ExternalID:     booking.ExternalID,
		IdempotencyKey: IdempotencyKey(&booking),
	}); err != nil {
		h.log.Error("failed to write accepted response", "handler", "Receive", "operation", "WriteAccepted", "error", err)
	}
}

func (h *WebhookHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Receive", "operation", "WriteError", "error", writeErr)
	}
}

func (h *WebhookHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/ota/reservations", h.Receive)
}
