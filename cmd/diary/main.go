package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/pribylovaa/go-diary/internal/cli"
	"github.com/pribylovaa/go-diary/internal/client"
	"github.com/pribylovaa/go-diary/internal/config"
	"github.com/pribylovaa/go-diary/pkg/log"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg, err := config.LoadClient(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	lg := setupLogger(cfg.Env)
	slog.SetDefault(lg)

	loc, err := cfg.View.Loc()
	if err != nil {
		lg.Error("view_location_invalid", slog.String("location", cfg.View.Location), slog.String("err", err.Error()))
		os.Exit(1)
	}

	api, err := client.New(client.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.Client.Timeout,
		TokenFile: cfg.Client.TokenFile,
	}, nil)
	if err != nil {
		lg.Error("client_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctx = log.Into(ctx, lg)

	cli.NewApp(api, loc, os.Stdin, os.Stdout).Run(ctx)
}

// setupLogger пишет в stderr, чтобы не смешивать логи с выводом REPL.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
}
