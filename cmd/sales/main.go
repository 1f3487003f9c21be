package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/penzflow/penzflow-sales-service/internal/config"
	"github.com/penzflow/penzflow-sales-service/internal/events"
	"github.com/penzflow/penzflow-sales-service/internal/handlers"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/metrics"
	"github.com/penzflow/penzflow-sales-service/internal/pricing"
	"github.com/penzflow/penzflow-sales-service/internal/repository"
	"github.com/penzflow/penzflow-sales-service/internal/server"
	"github.com/penzflow/penzflow-sales-service/internal/service"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

type publisher interface {
	service.EventPublisher
	Close() error
}

func main() {
	logger := logging.NewLogger("sales-service")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", logging.Fields{"error": err.Error()})
	}
	logging.SetLevel(cfg.LogLevel)
	logger = logging.NewLogger("sales-service")

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheusRecorder(registry)
	if err != nil {
		logger.Fatal("Failed to register metrics", logging.Fields{"error": err.Error()})
	}

	checks := []handlers.ReadinessCheck{{Name: "database", Check: db.PingContext}}

	var products repository.ProductRepository = repository.NewPostgresProductRepository(db, logging.NewLogger("product-repository"))
	if cfg.Features.EnableCatalogCache {
		client := repository.NewRedisClient(cfg.Redis)
		defer client.Close()

		cache := repository.NewRedisProductCache(client, cfg.Redis.TTL, logging.NewLogger("catalog-cache"))
		products = repository.NewCachedProductCatalog(products, cache, recorder, logging.NewLogger("catalog"))
		checks = append(checks, handlers.ReadinessCheck{Name: "redis", Check: cache.Ping})
	}

	tiers, err := cfg.Pricing.TierTable()
	if err != nil {
		logger.Fatal("Invalid pricing tiers", logging.Fields{"error": err.Error()})
	}
	policy, err := service.NewApprovalPolicy(cfg.Pricing.ApprovalRule)
	if err != nil {
		logger.Fatal("Invalid approval rule", logging.Fields{"error": err.Error()})
	}

	var eventPublisher publisher = events.NoopPublisher{}
	if cfg.Features.EnableOrderEvents {
		eventPublisher = events.NewKafkaPublisher(cfg.Kafka, logging.NewLogger("event-publisher"))
	}
	defer eventPublisher.Close()

	customers := repository.NewPostgresCustomerRepository(db, logging.NewLogger("customer-repository"))
	users := repository.NewPostgresUserRepository(db, logging.NewLogger("user-repository"))

	orderService := service.NewOrderService(
		repository.NewPostgresOrderRepository(db, logging.NewLogger("order-repository")),
		products,
		customers,
		users,
		pricing.NewCalculator(tiers),
		policy,
		eventPublisher,
		recorder,
		cfg.Pricing,
	)
	authService := service.NewAuthService(users)

	h := handlers.NewHandlers(orderService, authService, products, customers, cfg, checks...)
	srv := server.New(h, cfg, recorder)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":                 cfg.Server.Port,
			"db_driver":            cfg.Database.Driver,
			"enable_order_events":  cfg.Features.EnableOrderEvents,
			"enable_approval_feed": cfg.Features.EnableApprovalFeed,
			"enable_catalog_cache": cfg.Features.EnableCatalogCache,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	var approvals *events.KafkaConsumer
	if cfg.Features.EnableApprovalFeed {
		approvals = events.NewKafkaConsumer(cfg.Kafka, orderService, logging.NewLogger("approval-consumer"))
		go func() {
			if err := approvals.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Approval consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stopConsumer()
	if approvals != nil {
		approvals.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
	_ = logger.Sync()
}

// initDatabase opens the pool with the configured driver: "postgres" is
// lib/pq, "pgx" is the pgx stdlib adapter.
func initDatabase(cfg *config.Config, logger *logging.Logger) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Database connected", logging.Fields{
		"driver": cfg.Database.Driver,
		"host":   cfg.Database.Host,
		"name":   cfg.Database.Name,
	})
	return db, nil
}
