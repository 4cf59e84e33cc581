package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hszk-dev/notecanvas/internal/api/handler"
	"github.com/hszk-dev/notecanvas/internal/api/middleware"
	"github.com/hszk-dev/notecanvas/internal/config"
	"github.com/hszk-dev/notecanvas/internal/domain/model"
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

// handlers groups everything setupRouter mounts.
type handlers struct {
	health     *handler.HealthHandler
	canvas     *handler.CanvasHandler
	note       *handler.NoteHandler
	media      *handler.MediaHandler
	processing *handler.ProcessingHandler
	cache      *handler.CacheHandler
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

	checks := map[string]handler.HealthCheck{}

	// Media files always live on disk; only canvases and notes move to PostgreSQL.
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

		if err := postgres.Migrate(ctx, pgClient.Pool()); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		canvasRepo = postgres.NewCanvasRepository(pgClient.Pool())
		noteRepo = postgres.NewNoteRepository(pgClient.Pool())
		checks["postgres"] = pgClient.Ping
	default:
		canvasRepo = filestore.NewCanvasRepository(layout)
		noteRepo = filestore.NewNoteRepository(layout)
	}
	logger.Info("store ready",
		slog.String("backend", cfg.Storage.Backend),
		slog.String("data_dir", layout.Root()),
	)

	// A nil interface keeps the replica disabled in the services.
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
		checks["minio"] = storageClient.Ping
		logger.Info("connected to MinIO", slog.String("bucket", cfg.MinIO.Bucket))
	}

	var mq repository.MessageQueue
	if cfg.RabbitMQ.Enabled {
		queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		defer queueClient.Close()
		mq = queueClient
		logger.Info("connected to RabbitMQ")
	}

	resultCache := cache.NewMemoryResultCache(cache.WithMaxEntries(cfg.Cache.MaxEntries))
	janitor, err := cache.NewJanitor(resultCache, cfg.Cache.PurgeInterval, logger)
	if err != nil {
		return err
	}
	janitor.Start()

	canvasSvc := usecase.NewCanvasService(canvasRepo, mediaStore, replica)
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
		Converter: newConverter(cfg.FFmpeg),
		Cache:     resultCache,
		Queue:     mq,
	}, usecase.ProcessingServiceConfig{
		TempDir:       os.TempDir(),
		MaxRetries:    cfg.Worker.MaxRetries,
		EngineTimeout: cfg.Worker.EngineTimeout,
	})

	r := setupRouter(logger, cfg.Server, handlers{
		health:     handler.NewHealthHandler(checks),
		canvas:     handler.NewCanvasHandler(canvasSvc),
		note:       handler.NewNoteHandler(noteSvc),
		media:      handler.NewMediaHandler(mediaSvc, cfg.Server.MaxUploadBytes),
		processing: handler.NewProcessingHandler(processingSvc, cfg.Server.MaxUploadBytes),
		cache:      handler.NewCacheHandler(usecase.NewCacheAdminService(resultCache)),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	janitor.Stop(shutdownCtx)

	logger.Info("server stopped")
	return nil
}

func newConverter(cfg config.FFmpegConfig) *transcoder.FFmpegConverter {
	ffmpegCfg := transcoder.DefaultFFmpegConfig()
	ffmpegCfg.FFmpegPath = cfg.Path
	return transcoder.NewFFmpegConverter(ffmpegCfg)
}

func setupRouter(logger *slog.Logger, cfg config.ServerConfig, h handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", h.health.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/media/{canvasID}/*", h.media.Serve)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/canvases", func(r chi.Router) {
			r.Get("/", h.canvas.List)
			r.Post("/", h.canvas.Create)

			r.Route("/{canvasID}", func(r chi.Router) {
				r.Get("/", h.canvas.Get)
				r.Delete("/", h.canvas.Delete)

				r.Route("/notes", func(r chi.Router) {
					r.Get("/", h.note.List)
					r.Post("/", h.note.Create)
					r.Patch("/positions", h.note.UpdatePositions)
					r.Patch("/sizes", h.note.UpdateSizes)
					r.Put("/{noteID}", h.note.Update)
					r.Delete("/{noteID}", h.note.Delete)
				})

				r.Post("/upload/image", h.media.Upload(model.MediaImages))
				r.Post("/upload/audio", h.media.Upload(model.MediaAudio))
				r.Post("/upload/ocr-image", h.media.Upload(model.MediaOCR))
				r.Get("/media", h.media.List)
				r.Get("/media/url", h.media.URL)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RateLimit(cfg.ProcessingRPS, cfg.ProcessingBurst))
					r.Post("/ocr", h.processing.OCR)
					r.Post("/ocr-existing", h.processing.OCRExisting)
					r.Post("/transcribe", h.processing.Transcribe)
					r.Post("/transcribe-existing", h.processing.TranscribeExisting)
				})
			})
		})

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", h.cache.Stats)
			r.Post("/purge", h.cache.Purge)
		})
	})

	return r
}
