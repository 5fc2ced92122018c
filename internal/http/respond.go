package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/josinaldojr/docqa/internal/completion"
	"github.com/josinaldojr/docqa/internal/document"
	"github.com/josinaldojr/docqa/internal/rag"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes. Unclassified errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed (id=%s): %v", r.Method, r.URL.Path, RequestID(r.Context()), err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	var tooBig *http.MaxBytesError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, rag.ErrInvalidInput),
		errors.Is(err, completion.ErrInvalidInput),
		errors.Is(err, document.ErrInvalidName),
		errors.Is(err, http.ErrMissingFile):
		return http.StatusBadRequest
	case errors.Is(err, rag.ErrNoDocument):
		return http.StatusNotFound
	case errors.Is(err, rag.ErrEmptyDocument),
		errors.Is(err, rag.ErrUnreadableDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, rag.ErrProviderUnavailable),
		errors.Is(err, completion.ErrBackendUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
