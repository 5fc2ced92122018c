package rag

import "errors"

var (
	// ErrNoDocument is returned when no document has been uploaded yet.
	ErrNoDocument = errors.New("no document available, upload one first")

	// ErrInvalidInput marks requests missing required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable wraps failures talking to the chat or embedding provider.
	ErrProviderUnavailable = errors.New("model provider unavailable")
)

// ErrEmptyDocument is returned when a document yields no extractable text.
var ErrEmptyDocument = errors.New("document has no extractable text")

// ErrUnreadableDocument is returned when a document cannot be parsed, for
// example a corrupt PDF.
var ErrUnreadableDocument = errors.New("document could not be read")
