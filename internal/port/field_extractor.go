package port

import "context"

// ExtractInput carries the data sent to the extraction service.
type ExtractInput struct {
	Text        string
	Image       []byte
	ContentType string
}

// RawFields holds the extractor's field values before normalization. Values
// are passed through as the service returned them, including sentinel
// placeholders; the normalizer decides what counts as absent.
type RawFields struct {
	RecipientName   string
	RoomNumber      string
	ShippingCompany string
	TrackingNumber  string
}

// FieldExtractor abstracts the hosted AI extraction service.
type FieldExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*RawFields, error)

	// Configured reports whether the extractor has credentials, for health reporting.
	Configured() bool
}
