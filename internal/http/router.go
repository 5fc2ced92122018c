package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/josinaldojr/docqa/internal/metrics"
)

// NewRouter builds the PDF-QA service routes.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(instrument("rag"))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/upload", h.Upload).Methods(http.MethodPost)
	r.HandleFunc("/generate", h.Generate).Methods(http.MethodPost)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return wrap(r, allowedOrigins)
}

// NewCompletionRouter builds the completion service routes.
func NewCompletionRouter(h *CompletionHandler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(instrument("completion"))

	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/generate", h.Generate).Methods(http.MethodPost)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return wrap(r, allowedOrigins)
}

func wrap(r *mux.Router, allowedOrigins []string) http.Handler {
	return withRequestID(accessLog(corsMiddleware(allowedOrigins)(r)))
}
