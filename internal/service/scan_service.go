package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"parcelscan/internal/config"
	"parcelscan/internal/domain"
	"parcelscan/internal/normalize"
	"parcelscan/internal/port"
	"parcelscan/internal/validator"
)

// ScanInput is the DTO for one uploaded parcel image.
type ScanInput struct {
	OriginalName string
	ContentType  string
	Data         []byte
}

// ScanService runs the full pipeline: validate, recognize, extract, normalize.
type ScanService interface {
	Process(ctx context.Context, input ScanInput) (*domain.ScanResult, error)
	EngineReady() bool
	ExtractorConfigured() bool
}

type scanService struct {
	engine    port.RecognitionEngine
	extractor port.FieldExtractor
	carriers  *normalize.CarrierTable
	scanRepo  port.ScanRepository // nil disables history recording
	storage   port.ObjectStorage  // nil disables image archival
	cfg       *config.Config
}

// NewScanService creates a new ScanService. scanRepo and storage may be nil;
// the pipeline result never depends on either.
func NewScanService(
	engine port.RecognitionEngine,
	extractor port.FieldExtractor,
	carriers *normalize.CarrierTable,
	scanRepo port.ScanRepository,
	storage port.ObjectStorage,
	cfg *config.Config,
) ScanService {
	return &scanService{
		engine:    engine,
		extractor: extractor,
		carriers:  carriers,
		scanRepo:  scanRepo,
		storage:   storage,
		cfg:       cfg,
	}
}

// Process runs one pipeline execution. On failure the returned error carries
// the stage fault and the result still holds whichever stage timings were
// committed; no partial field data is ever returned.
func (s *scanService) Process(ctx context.Context, input ScanInput) (*domain.ScanResult, error) {
	res := &domain.ScanResult{ID: uuid.New()}

	if err := validator.Image(input.OriginalName, input.Data, s.cfg.Upload.MaxFileSizeMB*1024*1024); err != nil {
		s.record(ctx, input, res, err)
		return res, err
	}

	totalStart := time.Now()

	log.Printf("scanService.Process: [%s] running OCR for %s (%d bytes)",
		res.ID, input.OriginalName, len(input.Data))
	ocrStart := time.Now()
	transcript, err := s.engine.Recognize(ctx, input.Data)
	if err != nil {
		s.record(ctx, input, res, err)
		return res, fmt.Errorf("ocr stage: %w", err)
	}
	res.Timings.PaddleOCR = roundSeconds(time.Since(ocrStart))

	text := transcript.Text()
	if text == "" {
		// Continue with an empty transcript; the extractor also receives the
		// image, so fields may still be recovered.
		log.Printf("scanService.Process: [%s] OCR found no text, continuing", res.ID)
	}
	res.RawTextPreview = truncate(text, s.previewMaxLen())

	log.Printf("scanService.Process: [%s] OCR done in %.3fs (%d fragments), extracting",
		res.ID, *res.Timings.PaddleOCR, len(transcript.Fragments))
	extractStart := time.Now()
	raw, err := s.extractor.Extract(ctx, port.ExtractInput{
		Text:        text,
		Image:       input.Data,
		ContentType: input.ContentType,
	})
	if err != nil {
		s.record(ctx, input, res, err)
		return res, fmt.Errorf("extraction stage: %w", err)
	}
	res.Timings.TyphoonAPI = roundSeconds(time.Since(extractStart))

	fields := normalize.Fields(raw)
	s.carriers.Apply(&fields)
	res.Fields = &fields
	res.Timings.Total = roundSeconds(time.Since(totalStart))

	log.Printf("scanService.Process: [%s] done in %.3fs", res.ID, *res.Timings.Total)

	s.archive(ctx, input, res)
	s.record(ctx, input, res, nil)

	return res, nil
}

func (s *scanService) EngineReady() bool {
	return s.engine.Ready()
}

func (s *scanService) ExtractorConfigured() bool {
	return s.extractor.Configured()
}

// archive uploads the processed image to the archive bucket, best-effort.
func (s *scanService) archive(ctx context.Context, input ScanInput, res *domain.ScanResult) {
	if s.storage == nil || !s.cfg.S3.Enabled {
		return
	}

	key := fmt.Sprintf("scans/%s/%s", res.ID, input.OriginalName)
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.S3.Bucket,
		Key:         key,
		Body:        bytes.NewReader(input.Data),
		ContentType: input.ContentType,
		Size:        int64(len(input.Data)),
	})
	if err != nil {
		log.Printf("scanService.archive: [%s] upload failed: %v", res.ID, err)
		return
	}
	res.ArchiveBucket = s.cfg.S3.Bucket
	res.ArchiveKey = key
}

// record persists a history row for the run, best-effort.
func (s *scanService) record(ctx context.Context, input ScanInput, res *domain.ScanResult, runErr error) {
	if s.scanRepo == nil || !s.cfg.History.Enabled {
		return
	}

	rec := &domain.ScanRecord{
		ID:             res.ID,
		OriginalName:   input.OriginalName,
		ContentType:    input.ContentType,
		FileSize:       int64(len(input.Data)),
		Success:        runErr == nil,
		OcrSeconds:     res.Timings.PaddleOCR,
		ExtractSeconds: res.Timings.TyphoonAPI,
		TotalSeconds:   res.Timings.Total,
		RawTextPreview: res.RawTextPreview,
		ArchiveBucket:  res.ArchiveBucket,
		ArchiveKey:     res.ArchiveKey,
	}
	if runErr != nil {
		msg := runErr.Error()
		rec.ErrorMessage = &msg
	}
	if res.Fields != nil {
		rec.RecipientName = res.Fields.RecipientName
		rec.RoomNumber = res.Fields.RoomNumber
		rec.ShippingCompany = res.Fields.ShippingCompany
		rec.TrackingNumber = res.Fields.TrackingNumber
	}

	if err := s.scanRepo.Create(ctx, rec); err != nil {
		log.Printf("scanService.record: [%s] failed to persist history row: %v", res.ID, err)
	}
}

func (s *scanService) previewMaxLen() int {
	if s.cfg.History.PreviewMaxLen > 0 {
		return s.cfg.History.PreviewMaxLen
	}
	return 200
}

// roundSeconds converts a duration to seconds rounded to the millisecond,
// the resolution of the timing contract.
func roundSeconds(d time.Duration) *float64 {
	secs := math.Round(d.Seconds()*1000) / 1000
	return &secs
}

// truncate caps s at maxRunes characters, cutting on a rune boundary so a
// Thai preview never ends mid-character.
func truncate(s string, maxRunes int) string {
	if len(s) <= maxRunes {
		return s
	}
	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i]
		}
		count++
	}
	return s
}
