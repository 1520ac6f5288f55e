// Command board prints the live now-playing board from the session event
// stream. It needs EVENT_BROKER=kafka on the server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"karaoke/internal/notifications"
	"karaoke/internal/shared/config"
	"karaoke/pkg/logger"
)

func main() {
	appLogger := logger.NewWithWriter(os.Stderr)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	consumerConfig := notifications.DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Broker.KafkaBrokers
	consumerConfig.GroupID = cfg.Broker.ConsumerGroup
	consumerConfig.Topics = []string{cfg.Broker.Topic}

	board := notifications.NewBoard(os.Stdout)
	consumer, err := notifications.NewKafkaConsumer(consumerConfig, board.Handle, appLogger)
	if err != nil {
		appLogger.Error("Failed to start board consumer", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(ctx); err != nil {
		appLogger.Error("Board consumer stopped", slog.Any("error", err))
	}
	if err := consumer.Close(); err != nil {
		appLogger.Error("Failed to close board consumer", slog.Any("error", err))
	}
}
