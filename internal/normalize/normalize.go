package normalize

import (
	"strings"

	"parcelscan/internal/domain"
	"parcelscan/internal/port"
)

// sentinels are placeholder values the extraction service emits for "no
// data". Latin entries are matched case-insensitively after trimming.
var sentinels = map[string]bool{
	"":              true,
	"-":             true,
	"—":             true,
	"n/a":           true,
	"na":            true,
	"null":          true,
	"none":          true,
	"unknown":       true,
	"not found":     true,
	"ไม่พบ":         true,
	"ไม่พบข้อมูล":   true,
	"ไม่มีข้อมูล":   true,
	"ไม่ระบุ":       true,
	"ไม่ทราบ":       true,
}

// IsSentinel reports whether a raw value means "no data".
func IsSentinel(raw string) bool {
	return sentinels[strings.ToLower(strings.TrimSpace(raw))]
}

// Value maps a raw field value to its canonical form: nil for missing, empty,
// or sentinel values, otherwise a pointer to the trimmed string.
func Value(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if IsSentinel(trimmed) {
		return nil
	}
	return &trimmed
}

// Fields normalizes raw extractor output into the response field set.
func Fields(raw *port.RawFields) domain.ExtractedFields {
	if raw == nil {
		return domain.ExtractedFields{}
	}
	return domain.ExtractedFields{
		RecipientName:   Value(raw.RecipientName),
		RoomNumber:      Value(raw.RoomNumber),
		ShippingCompany: Value(raw.ShippingCompany),
		TrackingNumber:  Value(raw.TrackingNumber),
	}
}

// Clean re-normalizes an already-normalized field set. Normalization is
// idempotent: Clean(Fields(x)) == Fields(x).
func Clean(f domain.ExtractedFields) domain.ExtractedFields {
	return domain.ExtractedFields{
		RecipientName:   cleanPtr(f.RecipientName),
		RoomNumber:      cleanPtr(f.RoomNumber),
		ShippingCompany: cleanPtr(f.ShippingCompany),
		TrackingNumber:  cleanPtr(f.TrackingNumber),
	}
}

func cleanPtr(p *string) *string {
	if p == nil {
		return nil
	}
	return Value(*p)
}

// CarrierTable canonicalizes shipping-company spellings against the seeded
// alias table. Lookups are case-insensitive on the trimmed alias.
type CarrierTable struct {
	aliases map[string]string
}

// NewCarrierTable builds a lookup table from alias rows.
func NewCarrierTable(rows []domain.CarrierAlias) *CarrierTable {
	aliases := make(map[string]string, len(rows))
	for _, row := range rows {
		key := strings.ToLower(strings.TrimSpace(row.Alias))
		if key != "" {
			aliases[key] = row.Canonical
		}
	}
	return &CarrierTable{aliases: aliases}
}

// Canonical returns the canonical carrier name for a label spelling, or the
// input unchanged when no alias matches.
func (t *CarrierTable) Canonical(name string) string {
	if t == nil {
		return name
	}
	if canonical, ok := t.aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return canonical
	}
	return name
}

// Apply rewrites the shipping company in place when an alias matches.
func (t *CarrierTable) Apply(f *domain.ExtractedFields) {
	if t == nil || f == nil || f.ShippingCompany == nil {
		return
	}
	canonical := t.Canonical(*f.ShippingCompany)
	f.ShippingCompany = &canonical
}
