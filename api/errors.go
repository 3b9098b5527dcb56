package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"okinoko_vote/contract"
)

// StatusFor maps an engine error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, contract.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, contract.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, contract.ErrInvalidState), errors.Is(err, contract.ErrDuplicateVote):
		return http.StatusConflict
	case errors.Is(err, contract.ErrTooEarly):
		return http.StatusTooEarly
	case errors.Is(err, contract.ErrInvalidTimeWindow), errors.Is(err, contract.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, contract.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, contract.ErrPayoutFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(log *slog.Logger, w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Warn("Internal error serving request", "err", err)
		msg = "internal error"
	}
	writeJSON(log, w, status, errorBody{Error: msg, Kind: contract.Kind(err)})
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Failed to encode response", "err", err)
	}
}
