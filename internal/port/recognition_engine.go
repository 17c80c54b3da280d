package port

import (
	"context"

	"parcelscan/internal/domain"
)

// RecognitionEngine abstracts the OCR engine. Implementations are expected to
// be long-lived, constructed once at startup, and safe for concurrent use
// (serializing access internally if the underlying engine requires it).
type RecognitionEngine interface {
	// Recognize runs OCR over the image bytes. A readable image with no
	// detectable text yields an empty Transcript, not an error.
	Recognize(ctx context.Context, image []byte) (*domain.Transcript, error)

	// Ready reports whether the engine initialized successfully.
	Ready() bool

	// Device describes the compute device in use, for health reporting.
	Device() string
}
