package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"order-relay/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Success: false,
		Error:   code,
		Message: message,
	})
}

// writeServiceError maps a service error onto an HTTP status.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var (
		ve *model.ValidationError
		pe *model.PersistenceError
		de *model.DomainError
	)

	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Code, ve.Error(), logger)
	case errors.As(err, &pe):
		logger.Error().Err(pe.Err).Str("op", pe.Op).Int("item_index", pe.Index).Msg("persistence failure")
		writeError(w, http.StatusInternalServerError, model.ErrCodePersistence, "failed to save order", logger)
	case errors.As(err, &de):
		writeError(w, domainStatus(de), de.Code, de.Message, logger)
	default:
		logger.Error().Err(err).Msg("unexpected service error")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
	}
}

func domainStatus(de *model.DomainError) int {
	switch de.Code {
	case model.ErrCodeOrderNotFound, model.ErrCodeProductNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidStatus:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
