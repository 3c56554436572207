package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/postline/internal/service"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// WriteError writes a standardized JSON error response
func WriteError(w http.ResponseWriter, status int, errorType, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorType,
		Message: message,
	})
}

// errorWriter maps service errors to HTTP responses. Internal detail is
// only exposed when debug is set.
type errorWriter struct {
	debug bool
}

func (e errorWriter) handle(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status  int
		kind    string
		message string
	)

	switch {
	case service.IsValidation(err):
		var ve *service.ValidationError
		errors.As(err, &ve)
		WriteError(w, http.StatusBadRequest, "ValidationError", ve.Message)
		return

	case service.IsNotFound(err):
		WriteError(w, http.StatusNotFound, "NotFound", "Post not found")
		return

	case service.IsStaging(err):
		status, kind, message = http.StatusInternalServerError, "StagingError", "Failed to stage upload"

	case service.IsUpload(err):
		status, kind, message = http.StatusBadGateway, "UploadError", "Failed to upload media"

	case service.IsPersistence(err):
		status, kind, message = http.StatusInternalServerError, "PersistenceError", "Failed to save post"

	default:
		status, kind, message = http.StatusInternalServerError, "InternalError", "An internal error occurred"
	}

	logRequestError(r, kind, err)

	resp := errorResponse{Error: kind, Message: message}
	if e.debug {
		resp.Detail = err.Error()
	}
	WriteJSON(w, status, resp)
}
