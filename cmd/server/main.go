package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"recording_ingest/internal/archive"
	"recording_ingest/internal/config"
	"recording_ingest/internal/publisher"
	"recording_ingest/internal/scheduler"
	"recording_ingest/internal/service"
	"recording_ingest/internal/source/drive"
	"recording_ingest/internal/storage/postgres"
	"recording_ingest/internal/summarize"
	"recording_ingest/internal/transcode"
	"recording_ingest/internal/transcribe"
	transport "recording_ingest/internal/transport/http"
	"recording_ingest/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	driveCreds, err := os.ReadFile(cfg.Drive.CredentialsFile)
	if err != nil {
		logger.Error("failed to read drive credentials", "error", err)
		os.Exit(1)
	}

	driveSource, err := drive.New(ctx, driveCreds, logger)
	if err != nil {
		logger.Error("failed to create drive client", "error", err)
		os.Exit(1)
	}

	storageCreds := driveCreds
	if cfg.Storage.CredentialsFile != "" && cfg.Storage.CredentialsFile != cfg.Drive.CredentialsFile {
		storageCreds, err = os.ReadFile(cfg.Storage.CredentialsFile)
		if err != nil {
			logger.Error("failed to read storage credentials", "error", err)
			os.Exit(1)
		}
	}

	archiver, err := archive.New(ctx, cfg.Storage.Bucket, storageCreds)
	if err != nil {
		logger.Error("failed to create storage client", "error", err)
		os.Exit(1)
	}

	summarizer, err := summarize.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}

	var pub service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	recordStore := postgres.NewRecordingStore(db)
	cursorStore := postgres.NewCursorStore(db)

	transcoder := transcode.New(executor.New(), cfg.Pipeline.FFmpegBinary)
	transcriber := transcribe.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	fetcher := service.NewFileFetcher(driveSource, transcoder, cfg.Pipeline.ScratchDir, logger)
	pipeline := service.NewPipelineService(
		fetcher,
		archiver,
		transcriber,
		summarizer,
		recordStore,
		pub,
		cfg.Pipeline.Language,
		logger,
	)
	poll := service.NewPollService(driveSource, pipeline, cursorStore, cfg.Drive.FolderID, logger)

	if cfg.Poll.Interval > 0 {
		sched := scheduler.NewScheduler(poll, cfg.Poll.Interval, cfg.Poll.Timeout, logger)
		go func() {
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("scheduler error", "error", err)
			}
		}()
	}

	api := transport.NewAPI(poll, pipeline, logger)
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: transport.NewRouter(api),
	}

	go func() {
		logger.Info("starting http server",
			"address", cfg.Server.Address,
			"folder_id", cfg.Drive.FolderID,
			"poll_interval", cfg.Poll.Interval,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
