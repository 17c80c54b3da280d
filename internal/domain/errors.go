package domain

import "errors"

var (
	ErrNotFound = errors.New("resource not found")

	// Validation
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrImageTooLarge        = errors.New("image exceeds maximum allowed size")
	ErrEmptyImage           = errors.New("image file is empty")
	ErrMissingImage         = errors.New("no image file in request")

	// OCR
	ErrEngineUnavailable = errors.New("recognition engine unavailable")

	// Extraction
	ErrExtractionAuth        = errors.New("extraction service authentication failed")
	ErrExtractionUnavailable = errors.New("extraction service unavailable")
	ErrMalformedExtraction   = errors.New("extraction service returned malformed response")
)
