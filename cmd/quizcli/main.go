package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"pdf-quiz/internal/adapter"
	"pdf-quiz/internal/adapter/backend"
	"pdf-quiz/internal/cli"
	"pdf-quiz/internal/config"
	"pdf-quiz/internal/logger"
	"pdf-quiz/internal/observability"
	"pdf-quiz/internal/service"

	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "PDF to quiz yourself on")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: quizcli -file document.pdf")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// keep stderr quiet unless asked otherwise
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logger.Level = "warn"
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, logger.Get(), cfg.Tracing, cfg.Logger.Env)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Get().Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", *file, err)
		os.Exit(1)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to stat %s: %v\n", *file, err)
		os.Exit(1)
	}

	store := service.NewSessionStore(adapter.NewMemoryCacheAdapter(), cfg.Session.TTL)
	svc := service.NewPracticeService(backend.NewClient(cfg.Backend), store, int64(cfg.MaxUploadBytes()))

	runner := cli.NewRunner(svc, os.Stdin, os.Stdout, cli.WithColor(!*noColor))
	err = runner.Run(ctx, service.FileInput{
		Name:    filepath.Base(*file),
		Size:    info.Size(),
		Content: f,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
