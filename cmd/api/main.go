package main

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-tool-rental/internal/auth"
	"github.com/ariefcatur/go-tool-rental/internal/config"
	"github.com/ariefcatur/go-tool-rental/internal/httpx"
	kafkax "github.com/ariefcatur/go-tool-rental/internal/kafka"
	"github.com/ariefcatur/go-tool-rental/internal/logx"
	"github.com/ariefcatur/go-tool-rental/internal/postgres"
	"github.com/ariefcatur/go-tool-rental/internal/redisx"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/ariefcatur/go-tool-rental/internal/store"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := logx.New(cfg.LogLevel, cfg.LogEncoding, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if err := cfg.RequireJWTSecret(); err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.DBMaxConns)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	st := &store.Store{DB: db}
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			logger.Fatal("hash admin password", zap.Error(err))
		}
		if err := st.EnsureAdmin(ctx, cfg.AdminUsername, "Administrator", hash); err != nil {
			logger.Fatal("seed admin", zap.Error(err))
		}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, rental.TopicRentalEvents, 1024, logger)
	prod.Start(ctx)

	tx := &postgres.TxManager{DB: db}
	engine := &rental.Engine{
		Items:     st,
		Ledger:    st,
		Customers: st,
		Tx:        tx,
		Events:    &kafkax.EventPublisher{P: prod},
		Log:       logger.Named("engine"),
		Producer:  cfg.ServiceName,
		TxTimeout: cfg.TxTimeout,
	}
	api := &httpx.API{
		Engine:          engine,
		Feedback:        &rental.FeedbackDesk{Tx: tx, Customers: st, Store: st},
		Categories:      st,
		Inquiries:       st,
		Stats:           st,
		Guard:           &auth.Guard{Secret: []byte(cfg.JWTSecret), TTL: cfg.AdminTokenTTL, Admins: st},
		Cache:           redisx.NewCache(rdb),
		Log:             logger,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}
	router := httpx.NewRouter(logger)
	api.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		// handler yang masih jalan bisa publish setelah ini; producer menolaknya tanpa panic
		logger.Warn("http shutdown", zap.Error(err))
	}
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
	cancel()
}
