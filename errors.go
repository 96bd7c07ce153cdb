package studyhint

import "errors"

var (
	// ErrDocumentNotFound is returned when a document path or ID is unknown.
	ErrDocumentNotFound = errors.New("studyhint: document not found")

	// ErrUnsupportedFormat is returned for unrecognized file formats.
	ErrUnsupportedFormat = errors.New("studyhint: unsupported document format")

	// ErrParsingFailed is returned when document parsing fails.
	ErrParsingFailed = errors.New("studyhint: parsing failed")

	// ErrEmbeddingFailed is returned when embedding generation fails.
	ErrEmbeddingFailed = errors.New("studyhint: embedding generation failed")

	// ErrSessionNotFound is returned when a chat session id is unknown or expired.
	ErrSessionNotFound = errors.New("studyhint: session not found")

	// ErrEmptyMessage is returned when a chat message is blank.
	ErrEmptyMessage = errors.New("studyhint: empty message")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("studyhint: invalid configuration")
)
