package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"op_trader/pkg/logging"
	"op_trader/pricing/rpc"
	"op_trader/storefront/internal/config"
	"op_trader/storefront/internal/handlers"
	"op_trader/storefront/internal/jobs"
	"op_trader/storefront/internal/labels"
	"op_trader/storefront/internal/store"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
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
	logger, closeLogs, err := logging.New("storefront", cfg.Logging)
	if err != nil {
		log.Fatalf("failed to init logging: %v", err)
	}
	defer closeLogs()
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database connection
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	listingStore := store.NewListingStore(db)
	collectionStore := store.NewCollectionStore(db)

	// 3. Pricing service connection (lazy)
	pricingConn, err := grpc.NewClient(cfg.PricingAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to create pricing client: %v", err)
	}
	defer pricingConn.Close()

	// 4. Import job queue
	mq, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer mq.Close()

	producer, err := jobs.NewProducer(mq, logger.With("component", "jobs"))
	if err != nil {
		log.Fatalf("failed to start job producer: %v", err)
	}
	defer producer.Close()

	// 5. Label rendering (optional)
	var renderer handlers.Renderer
	if cfg.Labels.RendererURL != "" {
		opts := []labels.Option{labels.WithHTTPClient(&http.Client{Timeout: cfg.Labels.Timeout})}
		if cfg.Labels.Accept != "" {
			opts = append(opts, labels.WithAccept(cfg.Labels.Accept))
		}
		renderer = labels.NewClient(cfg.Labels.RendererURL, opts...)
	}

	// 6. HTTP server
	router := handlers.NewRouter(handlers.Deps{
		Listings:   listingStore,
		Collection: collectionStore,
		Pricing:    rpc.NewPricingServiceClient(pricingConn),
		Jobs:       jobs.NewService(jobs.NewStore(db), producer),
		Labels:     renderer,
		Logger:     logger,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown failed", "err", err)
		}
	}()

	logger.Info("storefront running", "addr", cfg.HTTPAddr, "pricing", cfg.PricingAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server crashed: %v", err)
	}
}
