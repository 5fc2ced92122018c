package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/josinaldojr/docqa/internal/metrics"
	"github.com/josinaldojr/docqa/internal/rag"
)

const multipartMemory = 32 << 20

// Answerer is the RAG query use case.
type Answerer interface {
	Generate(ctx context.Context, req rag.GenerateRequest) (*rag.GenerateResponse, error)
}

// Uploads stores files sent to /upload.
type Uploads interface {
	Save(name string, r io.Reader) (rag.Document, error)
}

type Handler struct {
	ragService Answerer
	uploads    Uploads
	maxUpload  int64
	timeout    time.Duration
}

func NewHandler(ragService Answerer, uploads Uploads, maxUpload int64, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Handler{
		ragService: ragService,
		uploads:    uploads,
		maxUpload:  maxUpload,
		timeout:    timeout,
	}
}

type uploadResponse struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		if r.ContentLength > h.maxUpload {
			writeError(w, r, &http.MaxBytesError{Limit: h.maxUpload})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", rag.ErrInvalidInput, err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: field \"file\": %w", rag.ErrInvalidInput, err))
		return
	}
	defer file.Close()

	doc, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.Uploads.Inc()
	log.Printf("uploaded %s (%d bytes)", doc.Name, header.Size)
	writeJSON(w, http.StatusOK, uploadResponse{Filename: doc.Name, Path: doc.Path})
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req rag.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json body", rag.ErrInvalidInput))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.ragService.Generate(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
