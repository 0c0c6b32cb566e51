package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"multimodalchat/internal/api"
	"multimodalchat/internal/config"
	"multimodalchat/internal/handlers"
	"multimodalchat/internal/observability"
	"multimodalchat/internal/render"
	"multimodalchat/internal/scheduler"
	"multimodalchat/internal/seed"
	"multimodalchat/internal/services"
	"multimodalchat/internal/store/memory"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logCloser := observability.NewLogger(observability.LogOptions{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
	})
	defer logCloser.Close()
	slog.SetDefault(logger)
	logger.Info("starting multimodal chat server", "port", cfg.HTTPPort, "reply_delay", cfg.ReplyDelay.String())

	// 2. Telemetry
	shutdownTelemetry, err := observability.InitTelemetry(context.Background(), cfg.TelemetryFile, logger)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer shutdownTelemetry()

	// 3. Initialize Dependencies (Store, Services, Handlers)
	messageStore := memory.NewMessageStore(logger)
	if cfg.SeedMockData {
		seed.IfEmpty(messageStore, logger)
	}

	chatService := services.NewChatService(messageStore, scheduler.Real(),
		services.WithReplyDelay(cfg.ReplyDelay),
		services.WithLogger(logger),
	)
	defer chatService.Close()

	// The server never copies, so the renderer only hosts the annotation side-table.
	renderer := render.NewRenderer(nil, nil, logger)
	annotationService := services.NewAnnotationService(messageStore, renderer, logger)

	chatHandler := handlers.NewChatHandlers(chatService, logger)
	annotationHandler := handlers.NewAnnotationHandlers(annotationService, logger)
	streamHandler := handlers.NewStreamHandler(messageStore, cfg.AllowedOrigins, logger)

	// 4. Setup Router & Inject Dependencies
	router := api.NewRouter(api.RouterDependencies{
		ChatHandler:       chatHandler,
		AnnotationHandler: annotationHandler,
		StreamHandler:     streamHandler,
		Config:            cfg,
		Logger:            logger,
	})

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	server.RegisterOnShutdown(streamHandler.Shutdown)

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-stopChan:
		logger.Info("shutdown signal received, initiating graceful shutdown", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "addr", server.Addr, "error", err)
			chatService.Close()
			os.Exit(1)
		}
	}

	// Stop pending replies before draining so nothing is appended mid-shutdown.
	chatService.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server graceful shutdown failed", "error", err)
	}

	logger.Info("server shutdown complete", "messages", messageStore.Len())
}
