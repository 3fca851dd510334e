package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/civ-draft/internal/analytics"
	"github.com/dom/civ-draft/internal/api"
	"github.com/dom/civ-draft/internal/api/handlers"
	"github.com/dom/civ-draft/internal/config"
	"github.com/dom/civ-draft/internal/logger"
	"github.com/dom/civ-draft/internal/pubsub"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/dom/civ-draft/internal/repository/memory"
	"github.com/dom/civ-draft/internal/repository/sqlstore"
	"github.com/dom/civ-draft/internal/service"
	"github.com/dom/civ-draft/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log, err := logger.Init(cfg.LogLevel, cfg.Environment)
	if err != nil {
		zap.NewExample().Fatal("failed to init logger", zap.Error(err))
	}
	defer logger.Sync()

	// Initialize storage
	repos, db, err := openRepositories(cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.String("driver", cfg.DatabaseDriver), zap.Error(err))
	}

	// Initialize event broker
	broker, err := openBroker(cfg)
	if err != nil {
		log.Fatal("failed to start pub/sub", zap.String("driver", cfg.PubSubDriver), zap.Error(err))
	}

	// Optional analytics sink. Both interfaces stay nil when disabled.
	var (
		recorder service.ActionRecorder
		stats    handlers.LeaderStatsSource
		ch       *analytics.ClickHouseRecorder
	)
	if cfg.ClickHouseAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ch, err = analytics.NewClickHouseRecorder(ctx, analytics.Options{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		})
		cancel()
		if err != nil {
			log.Fatal("failed to connect to ClickHouse", zap.String("addr", cfg.ClickHouseAddr), zap.Error(err))
		}
		recorder, stats = ch, ch
	}

	// Initialize services
	scheduler := service.NewTimerScheduler()
	services := service.NewServices(repos, cfg, broker, recorder, service.SystemClock(), scheduler)

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	leaders, maps, err := services.Catalog.Seed(seedCtx)
	cancel()
	if err != nil {
		log.Fatal("failed to seed catalog", zap.Error(err))
	}
	log.Info("catalog seeded", zap.Int("leaders", leaders), zap.Int("maps", maps))

	// Initialize WebSocket hub
	hub := websocket.NewHub(broker, services.Lobby, services.Selection)
	go hub.Run()

	router := api.NewRouter(services, hub, stats)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("database", cfg.DatabaseDriver),
			zap.String("pubsub", cfg.PubSubDriver),
			zap.Bool("analytics", ch != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	scheduler.Stop()
	hub.Stop()
	broker.Close()
	if ch != nil {
		if err := ch.Close(); err != nil {
			log.Warn("failed to close ClickHouse", zap.Error(err))
		}
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	log.Info("server stopped")
}

// openRepositories returns the configured store. db is nil for the memory
// driver.
func openRepositories(cfg *config.Config, log *zap.Logger) (*repository.Repositories, *gorm.DB, error) {
	if cfg.DatabaseDriver == "memory" {
		log.Warn("using in-memory storage, lobbies are lost on restart")
		return memory.NewRepositories(), nil, nil
	}

	db, err := sqlstore.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	return sqlstore.NewRepositories(db), db, nil
}

func openBroker(cfg *config.Config) (pubsub.Broker, error) {
	switch cfg.PubSubDriver {
	case "nats":
		return pubsub.NewNATSPubSub(cfg.NATSURL, pubsub.NATSOptions{Subject: cfg.NATSSubject})
	case "embedded-nats":
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = cfg.NATSSubject
		return pubsub.NewEmbeddedNATSPubSub(opts)
	default:
		return pubsub.New(), nil
	}
}
