package service

import (
	"context"
	"log"
	"time"

	"parcelscan/internal/config"
	"parcelscan/internal/port"
)

// RetentionWorker periodically purges archived images and scan rows older
// than the configured retention window.
type RetentionWorker struct {
	scanRepo port.ScanRepository
	storage  port.ObjectStorage // nil when archival is disabled
	cfg      config.RetentionConfig
}

// NewRetentionWorker creates a new RetentionWorker.
func NewRetentionWorker(scanRepo port.ScanRepository, storage port.ObjectStorage, cfg config.RetentionConfig) *RetentionWorker {
	return &RetentionWorker{
		scanRepo: scanRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

// Start runs the sweep loop until ctx is canceled. Sweeps run inline, so
// returning means no sweep is in flight.
func (w *RetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	log.Printf("retentionWorker: started (max_age=%s, sweep_interval=%s)",
		w.cfg.MaxAge, w.cfg.SweepInterval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("retentionWorker: shutting down")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep deletes one batch of expired scans per tick. Archive objects are
// removed before their rows so a failed delete is retried next sweep.
func (w *RetentionWorker) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-w.cfg.MaxAge)

	expired, err := w.scanRepo.ListExpired(ctx, cutoff, 100)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("retentionWorker: ListExpired error: %v", err)
		}
		return
	}

	purged := 0
	for _, rec := range expired {
		if w.storage != nil && rec.ArchiveKey != "" {
			if err := w.storage.Delete(ctx, rec.ArchiveBucket, rec.ArchiveKey); err != nil {
				log.Printf("retentionWorker: deleting archive object %s/%s: %v",
					rec.ArchiveBucket, rec.ArchiveKey, err)
				continue
			}
		}
		if err := w.scanRepo.Delete(ctx, rec.ID); err != nil {
			log.Printf("retentionWorker: deleting scan %s: %v", rec.ID, err)
			continue
		}
		purged++
	}

	if purged > 0 {
		log.Printf("retentionWorker: purged %d scans older than %s", purged, cutoff.Format(time.RFC3339))
	}
}
