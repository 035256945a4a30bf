package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Leopold1975/usermodel/internal/pkg/config"
	"github.com/Leopold1975/usermodel/internal/usermodel/app"
)

func main() {
	var configPath string

	flag.StringVar(&configPath, "config", envOr("USERMODEL_CONFIG", "configs/config.yaml"), "path to configuration file")
	flag.Parse()

	cfg, err := config.New(configPath)
	if err != nil {
		log.Fatalf("config %s: %v", configPath, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	um, err := app.New(ctx, cfg)
	if err != nil {
		log.Printf("usermodel: %v", err)
		stop()
		os.Exit(1) //nolint:gocritic
	}

	um.Run(ctx)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}
