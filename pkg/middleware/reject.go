package middleware

import (
	"net/http"

	httputil "frontdesk/pkg/http"
	"frontdesk/pkg/logger"
)

// reject writes the same error body handlers produce.
func reject(w http.ResponseWriter, log *logger.Logger, status int, code, message string) {
	if err := httputil.WriteJSON(w, status, httputil.ErrorResponse{Error: message, Code: code}); err != nil {
		log.Error("failed to write middleware rejection", "status", status, "error", err)
	}
}
