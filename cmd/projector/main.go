package main

import (
	"context"
	"github.com/ariefcatur/go-tool-rental/internal/config"
	kafkax "github.com/ariefcatur/go-tool-rental/internal/kafka"
	"github.com/ariefcatur/go-tool-rental/internal/logx"
	"github.com/ariefcatur/go-tool-rental/internal/postgres"
	"github.com/ariefcatur/go-tool-rental/internal/projector"
	"github.com/ariefcatur/go-tool-rental/internal/redisx"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/ariefcatur/go-tool-rental/internal/store"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger, err := logx.New(cfg.LogLevel, cfg.LogEncoding, cfg.ServiceName+"-projector")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB (read-only queries)
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.DBMaxConns)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &projector.Service{
		Stats: &store.Store{DB: db},
		Cache: redisx.NewCache(rdb),
		Log:   logger,
		Name:  cfg.ProjectorGroup,
	}
	// warm snapshot sebelum event pertama
	if err := svc.RefreshStats(ctx); err != nil {
		logger.Warn("initial stats refresh", zap.Error(err))
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ProjectorGroup, rental.TopicRentalEvents, cfg.ProjectorWorkers, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("projector consumer started",
			zap.String("group", cfg.ProjectorGroup), zap.String("topic", rental.TopicRentalEvents),
			zap.Int("workers", cfg.ProjectorWorkers))
		if err := cons.Start(ctx, svc.HandleRentalEvent); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumer...")
	cancel()
	<-done
}
