package ocr

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"parcelscan/internal/config"
	"parcelscan/internal/domain"
)

// Engine is a Tesseract-backed recognition engine. Tesseract clients are not
// safe to share between goroutines, so each call gets its own client and a
// channel semaphore bounds how many run at once.
type Engine struct {
	languages     []string
	tessdataDir   string
	minConfidence float64
	sem           chan struct{}
	ready         bool
}

// NewEngine initializes the engine and probes Tesseract once so a missing
// installation or traineddata surfaces at startup, not on the first request.
func NewEngine(cfg *config.OCRConfig) (*Engine, error) {
	langs := strings.Split(cfg.Languages, "+")
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	e := &Engine{
		languages:     langs,
		tessdataDir:   cfg.TessdataDir,
		minConfidence: cfg.MinConfidence,
		sem:           make(chan struct{}, concurrency),
	}

	client, err := e.newClient()
	if err != nil {
		return nil, fmt.Errorf("probing tesseract: %w", err)
	}
	_ = client.Close()
	e.ready = true

	log.Printf("ocr.Engine: initialized (languages=%s, concurrency=%d, min_confidence=%.2f)",
		cfg.Languages, concurrency, cfg.MinConfidence)
	return e, nil
}

func (e *Engine) newClient() (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if e.tessdataDir != "" {
		if err := client.SetTessdataPrefix(e.tessdataDir); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("setting tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(e.languages...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("setting languages %v: %w", e.languages, err)
	}
	return client, nil
}

// Recognize runs OCR over the image and returns line-level fragments with
// confidence and pixel regions. Fragments below the confidence floor are
// dropped. An image with no detectable text yields an empty transcript.
func (e *Engine) Recognize(ctx context.Context, image []byte) (*domain.Transcript, error) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-e.sem }()

	client, err := e.newClient()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	defer func() { _ = client.Close() }()

	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("%w: setting image: %v", domain.ErrEngineUnavailable, err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}

	transcript := &domain.Transcript{}
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		confidence := box.Confidence / 100.0
		if confidence < e.minConfidence {
			continue
		}
		transcript.Fragments = append(transcript.Fragments, domain.Fragment{
			Text:       text,
			Confidence: confidence,
			Region: domain.Region{
				X:      box.Box.Min.X,
				Y:      box.Box.Min.Y,
				Width:  box.Box.Dx(),
				Height: box.Box.Dy(),
			},
		})
	}

	return transcript, nil
}

// Ready reports whether the startup probe succeeded.
func (e *Engine) Ready() bool {
	return e.ready
}

// Device describes the compute device. Tesseract runs on CPU only.
func (e *Engine) Device() string {
	return "CPU"
}
