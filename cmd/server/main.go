package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	"parcelscan/internal/config"
	"parcelscan/internal/extraction"
	"parcelscan/internal/extraction/typhoon"
	"parcelscan/internal/handler"
	"parcelscan/internal/normalize"
	"parcelscan/internal/ocr"
	"parcelscan/internal/port"
	"parcelscan/internal/repository/postgres"
	"parcelscan/internal/router"
	"parcelscan/internal/service"
	s3storage "parcelscan/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Recognition engine loads once at startup; requests get the shared handle.
	engine, err := ocr.NewEngine(&cfg.OCR)
	if err != nil {
		return fmt.Errorf("failed to initialize OCR engine: %w", err)
	}

	typhoonClient := typhoon.NewClient(&cfg.Typhoon)
	extractor := extraction.WithRetry(typhoonClient, cfg.Typhoon.MaxRetries)

	// History and archival are optional; the pipeline runs without either.
	var db *sqlx.DB
	var scanRepo port.ScanRepository
	carriers := normalize.NewCarrierTable(nil)
	if cfg.History.Enabled {
		db, err = postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		scanRepo = postgres.NewScanRepo(db)

		aliases, err := postgres.NewCarrierRepo(db).ListAll(ctx)
		if err != nil {
			log.Printf("main: loading carrier aliases: %v (canonicalization disabled)", err)
		} else {
			carriers = normalize.NewCarrierTable(aliases)
			log.Printf("main: loaded %d carrier aliases", len(aliases))
		}
	}

	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewArchiveClient(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize archive storage: %w", err)
		}
	}

	scanSvc := service.NewScanService(engine, extractor, carriers, scanRepo, storage, cfg)

	scanH := handler.NewScanHandler(scanSvc)
	healthH := handler.NewHealthHandler(scanSvc, db)
	var historyH *handler.HistoryHandler
	if scanRepo != nil {
		historySvc := service.NewHistoryService(scanRepo, storage)
		historyH = handler.NewHistoryHandler(historySvc, cfg.History.DefaultPageLen)
	}

	r := router.Setup(cfg, scanH, historyH, healthH)

	if scanRepo != nil {
		worker := service.NewRetentionWorker(scanRepo, storage, cfg.Retention)
		go worker.Start(ctx)
	}

	log.Printf("OCR engine: ready (device=%s)", engine.Device())
	log.Printf("Typhoon API: configured=%v (model=%s)", extractor.Configured(), cfg.Typhoon.Model)
	log.Printf("Server starting on %s", cfg.Server.Port)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
