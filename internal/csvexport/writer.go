package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"parcelscan/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Scan ID",
	"File Name",
	"Content Type",
	"File Size (bytes)",
	"Status",
	"Error",
	"Recipient Name",
	"Room Number",
	"Shipping Company",
	"Tracking Number",
	"OCR Seconds",
	"Extraction Seconds",
	"Total Seconds",
	"Created At",
}

// Writer wraps csv.Writer for exporting scan history as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteScans converts a batch of scan records to CSV rows and writes them.
func (w *Writer) WriteScans(records []domain.ScanRecord) error {
	for i := range records {
		if err := w.csv.Write(scanRow(&records[i])); err != nil {
			return fmt.Errorf("writing row for scan %s: %w", records[i].ID, err)
		}
	}
	return nil
}

// Flush writes any buffered data and reports flush errors.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

func scanRow(rec *domain.ScanRecord) []string {
	status := "success"
	if !rec.Success {
		status = "failed"
	}
	return []string{
		rec.ID.String(),
		rec.OriginalName,
		rec.ContentType,
		strconv.FormatInt(rec.FileSize, 10),
		status,
		strValue(rec.ErrorMessage),
		strValue(rec.RecipientName),
		strValue(rec.RoomNumber),
		strValue(rec.ShippingCompany),
		strValue(rec.TrackingNumber),
		secsValue(rec.OcrSeconds),
		secsValue(rec.ExtractSeconds),
		secsValue(rec.TotalSeconds),
		rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func secsValue(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 3, 64)
}
