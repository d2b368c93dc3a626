package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ledger-service/internal/posting"
	"ledger-service/internal/repositories"
)

// Response is the wire envelope: success carries data, failure carries
// a display message.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondWithData(w http.ResponseWriter, code int, data interface{}) {
	respondWithJSON(w, code, Response{Success: true, Data: data})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, Response{Success: false, Message: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "message": "error marshaling response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithDomainError maps the error taxonomy onto status codes:
// validation failures are 422 (corrected by the caller and resubmitted),
// lost optimistic races and wrong-state transitions are 409, missing
// records are 404. Anything outside the taxonomy is a 500: the real
// error goes to the log, the client only sees a generic message.
func respondWithDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		unbalanced *posting.UnbalancedEntryError
		empty      *posting.EmptyEntryError
		invalid    *posting.InvalidLineError
		transition *posting.InvalidTransitionError
		immutable  *posting.ImmutableEntryError
	)

	switch {
	case errors.As(err, &unbalanced), errors.As(err, &empty), errors.As(err, &invalid):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &transition), errors.As(err, &immutable):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repositories.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("unexpected error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
