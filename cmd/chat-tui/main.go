package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"multimodalchat/internal/config"
	"multimodalchat/internal/observability"
	"multimodalchat/internal/render"
	"multimodalchat/internal/scheduler"
	"multimodalchat/internal/seed"
	"multimodalchat/internal/services"
	"multimodalchat/internal/store/memory"
	"multimodalchat/internal/tui"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = "chat-tui.log"
	}
	var style string
	flag.DurationVar(&cfg.ReplyDelay, "delay", cfg.ReplyDelay, "Delay before the assistant reply")
	flag.BoolVar(&cfg.SeedMockData, "seed", cfg.SeedMockData, "Start with the demo conversation")
	flag.StringVar(&logFile, "log-file", logFile, "Log file (the terminal is reserved for the UI)")
	flag.StringVar(&style, "style", "dark", "Code block style (dark|light|notty|dracula|tokyo-night)")
	flag.Parse()

	if cfg.ReplyDelay < 0 {
		fmt.Fprintln(os.Stderr, "-delay must not be negative")
		os.Exit(2)
	}

	logger, logCloser := observability.NewLogger(observability.LogOptions{Level: cfg.LogLevel, File: logFile})
	defer logCloser.Close()

	shutdownTelemetry, err := observability.InitTelemetry(context.Background(), cfg.TelemetryFile, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}
	defer shutdownTelemetry()

	messageStore := memory.NewMessageStore(logger)
	if cfg.SeedMockData {
		seed.IfEmpty(messageStore, logger)
	}
	chatService := services.NewChatService(messageStore, scheduler.Real(),
		services.WithReplyDelay(cfg.ReplyDelay),
		services.WithLogger(logger),
	)
	defer chatService.Close()

	term, err := render.NewTerminalRenderer(style, 80)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize renderer: %v\n", err)
		os.Exit(1)
	}

	model := tui.New(tui.Config{
		Store:    messageStore,
		Chat:     chatService,
		Renderer: render.NewRenderer(nil, render.SystemClipboard{}, logger),
		Terminal: term,
		Logger:   logger,
	})

	logger.Info("starting terminal client", "reply_delay", cfg.ReplyDelay.String(), "seeded", cfg.SeedMockData)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		logger.Error("terminal client failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("terminal client exited", "messages", messageStore.Len())
}
