package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elkhamyyali/ecommerceback/internal/httpserver"
	"github.com/elkhamyyali/ecommerceback/internal/lifecycle"
	"github.com/elkhamyyali/ecommerceback/internal/models"
	"github.com/elkhamyyali/ecommerceback/internal/repo"
	"github.com/elkhamyyali/ecommerceback/internal/search"
	"github.com/elkhamyyali/ecommerceback/internal/service"
	"github.com/elkhamyyali/ecommerceback/internal/webhook"
	"github.com/elkhamyyali/ecommerceback/pkg/config"
	"github.com/elkhamyyali/ecommerceback/pkg/db"
	"github.com/elkhamyyali/ecommerceback/pkg/events"
	"github.com/elkhamyyali/ecommerceback/pkg/logging"
	"github.com/elkhamyyali/ecommerceback/pkg/metrics"
	authmw "github.com/elkhamyyali/ecommerceback/pkg/middleware/auth"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(string(cfg.JWTAccessSecret), "JWT_SECRET")
	config.MustPositive(cfg.OrderSeqStep, "ORDER_SEQ_STEP")

	logger := logging.New(cfg.LogLevel, cfg.Environment)
	slog.SetDefault(logger)
	logger.Info("config_loaded", "environment", cfg.Environment, "port", cfg.ServerPort)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logger.Error("database_connect_error", "error", err)
		return 1
	}
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		logger.Error("database_migrate_error", "error", err)
		_ = db.Close(gdb)
		return 1
	}
	logger.Info("database_connected")

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaOrderTopic)

	catalogRepo := &repo.CatalogRepo{DB: gdb}
	userRepo := &repo.UserRepo{DB: gdb}
	cartRepo := &repo.CartRepo{DB: gdb}
	counters := repo.NewCounterRepo(gdb, cfg.OrderSeqStart, cfg.OrderSeqStep)

	catalog := &service.CatalogService{Repo: catalogRepo}
	if cfg.ESURL != "" {
		es, err := search.NewClient(search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			logger.Error("elasticsearch_client_error", "error", err)
			return 1
		}
		index := search.NewIndex(es, cfg.ESProductIndex)
		if err := index.Ping(ctx); err != nil {
			logger.Warn("elasticsearch_unreachable", "error", err)
		}
		catalog.Index = index
	}

	srvMetrics := metrics.NewServerMetrics("api")

	orders := &service.OrderService{
		Orders:        &repo.OrderRepo{DB: gdb, Counters: counters},
		Users:         userRepo,
		Catalog:       catalogRepo,
		Carts:         cartRepo,
		Events:        publisher,
		Metrics:       srvMetrics,
		TaxPrice:      cfg.TaxPrice,
		ShippingPrice: cfg.ShippingPrice,
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.ServerPort),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	ctl := lifecycle.New(srv, cfg.ShutdownTimeout, logger)

	var hooks *webhook.Verifier
	if cfg.WebhookSecret != "" {
		hooks = webhook.NewVerifier(cfg.WebhookSecret)
	} else {
		logger.Warn("webhook_disabled", "reason", "STRIPE_WEBHOOK_SECRET not set")
	}

	srv.Handler = httpserver.New(&httpserver.Deps{
		Environment: cfg.Environment,
		FrontendURL: cfg.FrontendURL,
		UploadsDir:  cfg.UploadsDir,
		Logger:      logger,
		Metrics:     srvMetrics,
		Auth:        authmw.NewVerifier(cfg.JWTAccessSecret),
		Webhook:     hooks,
		Orders:      orders,
		Catalog:     catalog,
		Users:       &service.UserService{Repo: userRepo},
		Carts:       &service.CartService{Repo: cartRepo, Catalog: catalogRepo},
		Ready:       func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		OnFatal:     ctl.Fatal,
	})

	ctl.OnStop("kafka", publisher.Close)
	ctl.OnStop("database", func() error { return db.Close(gdb) })

	logger.Info("server_listening", "addr", srv.Addr)
	err = ctl.Run(ctx)
	return lifecycle.ExitCode(err)
}
