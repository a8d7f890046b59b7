package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/iliyamo/roomescape/internal/config"
	"github.com/iliyamo/roomescape/internal/logger"
	"github.com/iliyamo/roomescape/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(logger.Options{Level: cfg.App.LogLevel, Console: cfg.IsDev(), Service: "roomescape-worker"})

	if cfg.RabbitMQ.URL == "" {
		log.Fatal().Msg("ROOMESCAPE_RABBITMQ_URL is required for the worker")
	}

	dir := cfg.RabbitMQ.EventLogDir
	events, err := queue.OpenEventLog(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("open event log")
	}
	defer events.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := queue.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, events.Handle, log)
	log.Info().Str("queue", cfg.RabbitMQ.Queue).Str("dir", dir).Msg("worker started")
	if err := consumer.Run(log.WithContext(ctx)); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker stopped")
		return
	}
	log.Info().Msg("worker stopped")
}
