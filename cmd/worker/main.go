package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hszk-dev/notecanvas/internal/config"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
	"github.com/hszk-dev/notecanvas/internal/engine"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/cache"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/filestore"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/postgres"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/queue"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/storage"
	"github.com/hszk-dev/notecanvas/internal/transcoder"
	"github.com/hszk-dev/notecanvas/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Ensure temp directory exists
	if err := os.MkdirAll(cfg.Worker.TempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	layout, err := filestore.NewLayout(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	mediaStore := filestore.NewMediaStore(layout)

	var (
		canvasRepo repository.CanvasRepository
		noteRepo   repository.NoteRepository
	)
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pgCfg := postgres.DefaultClientConfig(cfg.Database.DSN())
		pgCfg.MaxConns = cfg.Database.MaxConns
		pgClient, err := postgres.NewClient(ctx, pgCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer pgClient.Close()
		logger.Info("connected to PostgreSQL")

		canvasRepo = postgres.NewCanvasRepository(pgClient.Pool())
		noteRepo = postgres.NewNoteRepository(pgClient.Pool())
	default:
		canvasRepo = filestore.NewCanvasRepository(layout)
		noteRepo = filestore.NewNoteRepository(layout)
	}

	var replica repository.ObjectStorage
	if cfg.MinIO.Enabled {
		storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
			Endpoint:       cfg.MinIO.Endpoint,
			PublicEndpoint: cfg.MinIO.PublicEndpoint,
			AccessKey:      cfg.MinIO.AccessKey,
			SecretKey:      cfg.MinIO.SecretKey,
			Bucket:         cfg.MinIO.Bucket,
			UseSSL:         cfg.MinIO.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to MinIO: %w", err)
		}
		replica = storageClient
		logger.Info("connected to MinIO")
	}

	// The worker exists only to drain the queue, so RabbitMQ is required here.
	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	// The worker keeps its own cache; results are not shared with the API process.
	resultCache := cache.NewMemoryResultCache(cache.WithMaxEntries(cfg.Cache.MaxEntries))
	janitor, err := cache.NewJanitor(resultCache, cfg.Cache.PurgeInterval, logger)
	if err != nil {
		return err
	}
	janitor.Start()

	ffmpegCfg := transcoder.DefaultFFmpegConfig()
	ffmpegCfg.FFmpegPath = cfg.FFmpeg.Path

	noteSvc := usecase.NewNoteService(canvasRepo, noteRepo)
	mediaSvc := usecase.NewMediaService(canvasRepo, mediaStore, replica, usecase.DefaultMediaServiceConfig())
	processingSvc := usecase.NewProcessingService(usecase.ProcessingDeps{
		Canvases: canvasRepo,
		Store:    mediaStore,
		Media:    mediaSvc,
		Notes:    noteSvc,
		OCR: engine.NewTesseractEngine(engine.TesseractConfig{
			TesseractPath:   cfg.OCR.TesseractPath,
			DefaultLanguage: cfg.OCR.DefaultLanguage,
		}),
		Speech: engine.NewVoskEngine(engine.VoskConfig{
			TranscriberPath: cfg.Speech.TranscriberPath,
			Models:          cfg.Speech.Models,
			DefaultLanguage: cfg.Speech.DefaultLanguage,
		}),
		Converter: transcoder.NewFFmpegConverter(ffmpegCfg),
		Cache:     resultCache,
	}, usecase.ProcessingServiceConfig{
		TempDir:       cfg.Worker.TempDir,
		MaxRetries:    cfg.Worker.MaxRetries,
		EngineTimeout: cfg.Worker.EngineTimeout,
	})

	// Setup signal handling for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// WaitGroup to track in-flight tasks
	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker, consuming processing tasks")
		err := queueClient.ConsumeProcessingTasks(ctx, func(task repository.ProcessingTask) error {
			wg.Add(1)
			defer wg.Done()

			attrs := []any{
				slog.String("kind", string(task.Kind)),
				slog.String("canvas_id", task.CanvasID.String()),
				slog.String("file_path", task.FilePath),
				slog.Int("retry_count", task.RetryCount),
			}
			logger.Info("processing task", attrs...)

			if err := processingSvc.ProcessTask(ctx, task); err != nil {
				logger.Error("task processing failed", append(attrs, slog.String("error", err.Error()))...)
				return err
			}

			logger.Info("task completed", attrs...)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	// Cancel the main context to stop consuming new messages
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all in-flight tasks completed")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, some tasks may not have completed")
	}
	janitor.Stop(shutdownCtx)

	logger.Info("worker stopped")
	return nil
}
