package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"op_trader/pkg/logging"
	"op_trader/pricing/internal/config"
	"op_trader/pricing/internal/handler"
	"op_trader/pricing/internal/logic"
	"op_trader/pricing/internal/mq"
	"op_trader/pricing/internal/rates"
	"op_trader/pricing/internal/repricer"
	"op_trader/pricing/internal/store"
	"op_trader/pricing/rpc"

	_ "github.com/lib/pq"
	"google.golang.org/grpc"
)

func main() {
	envPath := flag.String("env", "pricing/.env", "path to .env file")
	configPath := flag.String("config", os.Getenv("PRICING_CONFIG"), "path to YAML config")
	flag.Parse()

	// 1. Configuration and logging
	cfg, err := config.Load(*envPath, *configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, closeLogs, err := logging.New("pricing", cfg.Logging)
	if err != nil {
		log.Fatalf("failed to init logging: %v", err)
	}
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database connection
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	marketStore := store.NewMarketDataStore(db)
	ruleStore := store.NewRuleStore(db)
	listingStore := store.NewListingStore(db)

	// 3. Rates: warm from redis, then poll the feed and write back on change
	rateCache := store.NewRateCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Rates.CacheTTL)
	defer rateCache.Close()

	rateClient := rates.NewClient(cfg.Rates.FeedURL,
		rates.WithPollInterval(cfg.Rates.PollInterval),
		rates.WithLogger(logger.With("component", "rates")),
		rates.WithOnUpdate(func(table logic.RateTable, at time.Time) {
			saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := rateCache.SaveRates(saveCtx, store.RateSnapshot{Table: table, FetchedAt: at}); err != nil {
				logger.Warn("rate cache write failed", "err", err)
			}
		}),
	)
	warmRates(ctx, rateCache, rateClient, logger)
	rateClient.Start(ctx)
	defer rateClient.Stop()

	// 4. Background re-pricer (non-blocking)
	if cfg.Repricer.Enabled {
		publisher, err := mq.NewPublisher(cfg.Events.Port)
		if err != nil {
			log.Fatalf("failed to start price event publisher: %v", err)
		}
		defer publisher.Close()

		rp := repricer.New(listingStore, marketStore, ruleStore, publisher, logger)
		go rp.Run(ctx, cfg.Repricer.Interval)
	}

	// 5. gRPC server
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer()
	rpc.RegisterPricingServiceServer(grpcServer, handler.NewPricingHandler(marketStore, ruleStore, rateClient, logger))

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		grpcServer.GracefulStop()
	}()

	logger.Info("pricing service running", "addr", cfg.GRPCAddr)
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}

func warmRates(ctx context.Context, cache *store.RateCache, client *rates.Client, logger *slog.Logger) {
	loadCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := cache.Ping(loadCtx); err != nil {
		logger.Warn("rate cache unreachable, waiting for the feed", "err", err)
		return
	}
	snap, ok, err := cache.LoadRates(loadCtx, logic.DefaultBaseCurrency)
	switch {
	case err != nil:
		logger.Warn("rate cache read failed", "err", err)
	case ok:
		client.Seed(snap.Table, snap.FetchedAt)
		logger.Info("rates warmed from cache", "fetched_at", snap.FetchedAt)
	}
}
