package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/josinaldojr/docqa/internal/completion"
)

type Completer interface {
	Generate(ctx context.Context, req completion.GenerateRequest) (*completion.GenerateResponse, error)
}

// CompletionHandler serves the direct-completion service.
type CompletionHandler struct {
	svc     Completer
	timeout time.Duration
}

func NewCompletionHandler(svc Completer, timeout time.Duration) *CompletionHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &CompletionHandler{svc: svc, timeout: timeout}
}

func (h *CompletionHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "completion service is running"})
}

func (h *CompletionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req completion.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json body", completion.ErrInvalidInput))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.svc.Generate(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
