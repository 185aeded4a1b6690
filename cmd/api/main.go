package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tryon/internal/config"
	"tryon/internal/http/handlers"
	httpapi "tryon/internal/http/httpapi"
	"tryon/internal/imaging"
	"tryon/internal/infra"
	"tryon/internal/pipeline"
	"tryon/internal/providers/generate"
	"tryon/internal/storage"
	"tryon/internal/store"
	"tryon/internal/vision"
)

func main() {
	cfg := config.Load()
	logger := infra.NewLogger(cfg.Env)

	files, err := storage.NewFileStore(cfg.StoragePath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init storage")
	}

	jobs := store.New(cfg.QueueSize)
	loader := imaging.NewLoader(imaging.LoaderOptions{
		MaxBytes: int64(cfg.MaxImageSizeMB) << 20,
		WorkSize: cfg.WorkImageSize,
	})
	pose := vision.NewPoseClient(vision.PoseClientOptions{
		BaseURL: cfg.PoseBaseURL,
		Timeout: cfg.VisionTimeout,
	})
	segmenter := vision.NewSegmentClient(vision.SegmentClientOptions{
		BaseURL: cfg.SegmentBaseURL,
		Timeout: cfg.VisionTimeout,
	})
	gateway := generate.NewClient(generate.Options{
		BaseURL: cfg.GenerateBaseURL,
		APIKey:  cfg.GenerateAPIKey,
		Timeout: cfg.GenerateTimeout,
	})

	orch := pipeline.New(jobs, loader, pose, segmenter, gateway, files, pipeline.Config{
		QualityThreshold:   cfg.QualityThreshold,
		PollTimeout:        cfg.PollTimeout,
		SaveDebugArtifacts: cfg.SaveDebugArtifacts,
		PoseConfidence:     cfg.PoseConfidence,
	}, logger)

	// The store is in-memory, so the worker runs in-process with the API.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		_ = orch.Run(workerCtx)
	}()

	// The form may carry both the person and the garment upload.
	maxUpload := 2 * int64(cfg.MaxImageSizeMB) << 20
	app := handlers.NewApp(jobs, files, logger, maxUpload, cfg.MaxRetries)
	router := httpapi.NewRouter(app, httpapi.Options{
		Log:             logger,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg.Port, cfg.ReadHeaderTimeout, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	stopWorker()
	<-workerDone
	logger.Info().Msg("server stopped")
}
