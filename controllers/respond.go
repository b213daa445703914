package controllers

import (
	"errors"
	"net/http"
	"time"

	"go-medicamp/logging"
	"go-medicamp/payment"
	"go-medicamp/store"
	"go-medicamp/validation"

	"github.com/goccy/go-json"
)

// requestTimeout bounds the database work of a single handler
const requestTimeout = 10 * time.Second

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeError maps err to a status code. Unexpected errors are logged and
// reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, "invalid id")
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrAlreadyRequested):
		writeMessage(w, http.StatusBadRequest, "You have already requested, wait for some time")
	case errors.Is(err, store.ErrDelivered):
		writeMessage(w, http.StatusConflict, "Cannot cancel once the camp is delivered!")
	case errors.Is(err, payment.ErrUnknownCamp):
		writeMessage(w, http.StatusBadRequest, "camp not found")
	case errors.Is(err, payment.ErrInvalidAmount):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// decodeValid decodes and validates the body, writing a 400 on failure
func decodeValid(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeJSON(r, v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid input")
		return false
	}
	if err := validation.Struct(v); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
