package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-leavedesk/internal/messaging/kafka"
	"go-leavedesk/internal/messaging/kafka/producer"
	"go-leavedesk/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker polls the outbox table and publishes pending events to Kafka
// until the process receives SIGINT or SIGTERM.
func RunWorker() error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}
	writer := connection.NewKafkaWriter(brokers)
	defer writer.Close()

	outboxRepo := kafka.NewOutboxRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := zap.L().With(zap.String("brokers", brokers))
	producer.ProcessOutboxEvents(ctx, outboxRepo, writer, logger, 3*time.Second)
	return nil
}
