// Package respond writes JSON bodies and maps service errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/auth"
)

type errorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// Error writes the status matching err's class. Authorization failures never
// say more than "access denied"; storage and unclassified failures are logged
// and hidden.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *apperr.ValidationError
		notFound   *apperr.NotFoundError
	)

	switch {
	case errors.Is(err, apperr.ErrStorage):
		internalError(w, r, err)
	case errors.As(err, &validation):
		Message(w, http.StatusBadRequest, validation.Error())
	case errors.Is(err, apperr.ErrValidation):
		Message(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		Message(w, http.StatusForbidden, "access denied")
	case errors.As(err, &notFound):
		Message(w, http.StatusNotFound, notFound.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		Message(w, http.StatusUnauthorized, "unauthorized")
	default:
		internalError(w, r, err)
	}
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	Message(w, http.StatusInternalServerError, "internal error")
}

// UserID returns the authenticated caller. Handlers mounted behind the auth
// middleware always have one.
func UserID(r *http.Request) (string, error) {
	id, ok := auth.FromContext(r.Context())
	if !ok || id.UserID == "" {
		return "", auth.ErrUnauthenticated
	}

	return id.UserID, nil
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return apperr.Validation("body", err.Error())
	}

	return nil
}
