package validator

import (
	"net/http"
	"path/filepath"
	"strings"

	"parcelscan/internal/domain"
)

// MaxImageBytes is the upload size cap (16 MiB), matching the HTTP layer's
// request body limit.
const MaxImageBytes = 16 * 1024 * 1024

// allowedExtensions maps accepted file extensions to canonical content types.
var allowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
}

// allowedContentTypes is the set of sniffed content types accepted for OCR.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/webp": true,
}

// Image validates an uploaded image against format and size constraints.
// It checks the file extension, the byte length, and the magic bytes, in
// that order, and performs no I/O. maxBytes <= 0 falls back to MaxImageBytes.
func Image(filename string, data []byte, maxBytes int64) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		return domain.ErrUnsupportedImageType
	}

	if len(data) == 0 {
		return domain.ErrEmptyImage
	}

	if maxBytes <= 0 {
		maxBytes = MaxImageBytes
	}
	if int64(len(data)) > maxBytes {
		return domain.ErrImageTooLarge
	}

	// Magic-byte sniff so a renamed non-image doesn't reach the engine.
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if !allowedContentTypes[http.DetectContentType(head)] {
		return domain.ErrUnsupportedImageType
	}

	return nil
}

// ContentTypeFor returns the canonical content type for a validated filename.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return allowedExtensions[ext]
}
