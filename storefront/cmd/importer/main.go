package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"op_trader/pkg/logging"
	"op_trader/storefront/internal/config"
	"op_trader/storefront/internal/jobs"
	"op_trader/storefront/internal/store"

	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	envPath := flag.String("env", "storefront/.env", "path to .env file")
	configPath := flag.String("config", os.Getenv("STOREFRONT_CONFIG"), "path to YAML config")
	flag.Parse()

	// 1. Configuration and logging
	cfg, err := config.Load(*envPath, *configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, closeLogs, err := logging.New("importer", cfg.Logging)
	if err != nil {
		log.Fatalf("failed to init logging: %v", err)
	}
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database connection
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	worker := jobs.NewWorker(
		jobs.NewStore(db),
		store.NewCollectionStore(db),
		store.NewMarketPriceStore(db),
		logger.With("component", "worker"),
		jobs.WithImportDir(cfg.Jobs.ImportDir),
	)

	// 3. Queue consumer
	mq, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer mq.Close()

	consumer, err := jobs.NewConsumer(mq, jobs.ConsumerConfig{
		Queue:     cfg.Jobs.Queue,
		Pipelines: jobs.Pipelines,
		Prefetch:  cfg.Jobs.Prefetch,
	}, logger)
	if err != nil {
		log.Fatalf("failed to start job consumer: %v", err)
	}
	defer consumer.Close()

	logger.Info("importer running", "queue", cfg.Jobs.Queue, "pipelines", jobs.Pipelines, "import_dir", cfg.Jobs.ImportDir)
	if err := consumer.Run(ctx, worker.Handle); err != nil {
		logger.Error("consumer stopped", "err", err)
	}
	logger.Info("shutting down")
}
