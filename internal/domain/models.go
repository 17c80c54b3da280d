package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Region is the pixel bounding box of a recognized text fragment.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Fragment is a single recognized line of text with its confidence and position.
type Fragment struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Region     Region  `json:"region"`
}

// Transcript is the ordered OCR output for one image.
type Transcript struct {
	Fragments []Fragment `json:"fragments"`
}

// Text joins all fragment texts into a newline-separated transcript.
func (t *Transcript) Text() string {
	lines := make([]string, 0, len(t.Fragments))
	for _, f := range t.Fragments {
		if s := strings.TrimSpace(f.Text); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

// Empty reports whether the transcript carries no usable text.
func (t *Transcript) Empty() bool {
	return t.Text() == ""
}

// ExtractedFields holds the four normalized label fields. A nil pointer is
// the absent marker and serializes as JSON null, distinct from an empty string.
type ExtractedFields struct {
	RecipientName   *string `json:"recipient_name"`
	RoomNumber      *string `json:"room_number"`
	ShippingCompany *string `json:"shipping_company"`
	TrackingNumber  *string `json:"tracking_number"`
}

// StageTimings holds per-stage durations in seconds. A nil pointer means the
// stage never ran to completion and is omitted from the response, so callers
// can tell "fast" from "skipped".
type StageTimings struct {
	PaddleOCR  *float64 `json:"paddle_ocr,omitempty"`
	TyphoonAPI *float64 `json:"typhoon_api,omitempty"`
	Total      *float64 `json:"total,omitempty"`
}

// ScanResult is the outcome of one pipeline run. On failure Fields is nil and
// Timings still carries whichever stages completed.
type ScanResult struct {
	ID             uuid.UUID
	Fields         *ExtractedFields
	Timings        StageTimings
	RawTextPreview string
	ArchiveBucket  string
	ArchiveKey     string
}

// ScanRecord is a persisted scan history row.
type ScanRecord struct {
	ID              uuid.UUID `db:"id" json:"id"`
	OriginalName    string    `db:"original_name" json:"original_name"`
	ContentType     string    `db:"content_type" json:"content_type"`
	FileSize        int64     `db:"file_size" json:"file_size"`
	Success         bool      `db:"success" json:"success"`
	ErrorMessage    *string   `db:"error_message" json:"error_message,omitempty"`
	RecipientName   *string   `db:"recipient_name" json:"recipient_name"`
	RoomNumber      *string   `db:"room_number" json:"room_number"`
	ShippingCompany *string   `db:"shipping_company" json:"shipping_company"`
	TrackingNumber  *string   `db:"tracking_number" json:"tracking_number"`
	OcrSeconds      *float64  `db:"ocr_seconds" json:"ocr_seconds,omitempty"`
	ExtractSeconds  *float64  `db:"extract_seconds" json:"extract_seconds,omitempty"`
	TotalSeconds    *float64  `db:"total_seconds" json:"total_seconds,omitempty"`
	RawTextPreview  string    `db:"raw_text_preview" json:"raw_text_preview,omitempty"`
	ArchiveBucket   string    `db:"archive_bucket" json:"-"`
	ArchiveKey      string    `db:"archive_key" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`

	// ArchiveURL is a presigned download link for the archived image,
	// filled in at read time when the row has an archive object.
	ArchiveURL string `db:"-" json:"archive_url,omitempty"`
}

// ScanStats aggregates scan history for the stats endpoint.
type ScanStats struct {
	TotalScans        int     `db:"total_scans" json:"total_scans"`
	Succeeded         int     `db:"succeeded" json:"succeeded"`
	Failed            int     `db:"failed" json:"failed"`
	SuccessRate       float64 `json:"success_rate"`
	AvgOcrSeconds     float64 `db:"avg_ocr_seconds" json:"avg_ocr_seconds"`
	AvgExtractSeconds float64 `db:"avg_extract_seconds" json:"avg_extract_seconds"`
	AvgTotalSeconds   float64 `db:"avg_total_seconds" json:"avg_total_seconds"`
}

// CarrierAlias maps one label spelling to a canonical shipping company name.
type CarrierAlias struct {
	ID        int64     `db:"id" json:"id"`
	Canonical string    `db:"canonical" json:"canonical"`
	Alias     string    `db:"alias" json:"alias"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
