package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tally-server/src/geocode"
	"tally-server/src/logging"
	"tally-server/src/middleware"
	"tally-server/src/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps err onto a status code. op names the failed operation in logs
// and 500 bodies; what names the resource in 404 and 409 bodies. Internal error
// details are only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error, op, what string) {
	logger := logging.FromContext(r.Context())
	var verr *models.ValidationError
	switch {
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// The client is gone; nothing useful can be written.
		logger.Debug(op+" canceled by client", logging.FieldError, err)
	case errors.As(err, &verr):
		logger.Info("rejected "+op, logging.FieldError, err)
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrNoTemplate):
		writeMessage(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, models.ErrConflict):
		writeMessage(w, http.StatusConflict, what+" already exists")
	case errors.Is(err, geocode.ErrNotConfigured):
		writeMessage(w, http.StatusInternalServerError, "Google Maps API key not configured")
	case errors.Is(err, geocode.ErrUpstream):
		writeMessage(w, http.StatusBadGateway, "Google Maps request failed")
	default:
		logger.Error("failed to "+op, logging.FieldOperation, op, logging.FieldError, err)
		writeMessage(w, http.StatusInternalServerError, "failed to "+op)
	}
}

// decodeJSON reads a JSON body into v; malformed bodies become validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewValidationError("request body is required")
		}
		return models.NewValidationError("invalid request body: %v", err)
	}
	return nil
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, models.NewValidationError("invalid %s", param)
	}
	return id, nil
}

func successBody() map[string]bool {
	return map[string]bool{"success": true}
}
