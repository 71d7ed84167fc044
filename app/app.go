package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"sniper-dashboard/api"
	"sniper-dashboard/backend"
	"sniper-dashboard/cache"
	"sniper-dashboard/config"
	"sniper-dashboard/dashboard"
	"sniper-dashboard/database"
	"sniper-dashboard/handlers"
	"sniper-dashboard/logging"
	"sniper-dashboard/notifications"
	"sniper-dashboard/realtime"
	"sniper-dashboard/websocket"
)

const shutdownTimeout = 10 * time.Second

// App represents the main application
type App struct {
	config         *config.Config
	handlerManager *handlers.HandlerManager
	engine         *dashboard.Engine
	db             *database.Database
	journalRepo    *database.JournalRepository
	redis          *cache.RedisClient
	webhookManager *notifications.WebhookManager
	broker         *realtime.Broker
	hub            *websocket.Hub
	asyncHandlers  []*handlers.AsyncHandler
	log            *logrus.Entry
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{
		config:         cfg,
		handlerManager: handlers.NewHandlerManager(),
		log:            logging.WithComponent("app"),
	}
}

// Start runs the application until ctx is cancelled, then shuts down.
func (a *App) Start(ctx context.Context) error {
	// 1. Database Connection (optional)
	if a.config.DatabaseEnabled {
		a.log.Info("🗄️  Connecting to database...")
		db, err := database.Connect(database.Config{
			Host:     a.config.DatabaseHost,
			Port:     a.config.DatabasePort,
			User:     a.config.DatabaseUser,
			Password: a.config.DatabasePassword,
			DBName:   a.config.DatabaseName,
		})
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		a.db = db

		a.journalRepo = database.NewJournalRepository(a.db)
		if err := a.journalRepo.InitSchema(); err != nil {
			_ = a.db.Close()
			return fmt.Errorf("schema initialization failed: %w", err)
		}
	} else {
		a.log.Info("ℹ️  Scan journal DISABLED")
	}

	// 2. Redis Connection (optional)
	if a.config.RedisEnabled {
		a.log.Info("🧠 Connecting to Redis...")
		a.redis = cache.NewRedisClient(a.config.RedisHost, a.config.RedisPort, a.config.RedisPassword)
		if a.redis == nil {
			a.log.Warn("⚠️  Redis connection failed. Snapshot mirror and alert cooldown disabled.")
		}
	}

	// 3. Push channels and notifications
	a.broker = realtime.NewBroker()
	a.hub = websocket.NewHub()
	if len(a.config.WebhookURLs) > 0 {
		a.webhookManager = notifications.NewWebhookManager(a.config.WebhookURLs, a.redis, a.config.Dashboard.InitialBalance)
		a.log.WithField("targets", len(a.config.WebhookURLs)).Info("✅ Webhook notifications ENABLED")
	}

	// 4. State event handlers
	a.setupHandlers()

	// 5. Engine
	client := backend.NewClient(backend.Options{
		BaseURL:    a.config.Backend.URL,
		Timeout:    a.config.Backend.Timeout,
		RetryCount: a.config.Backend.RetryCount,
	})
	a.engine = dashboard.NewEngine(client, a.handlerManager, dashboard.Options{
		InitialMode:  a.config.InitialMode(),
		PollInterval: a.config.Dashboard.PollInterval,
	})

	// 6. API Server
	var journal api.JournalReader
	if a.journalRepo != nil {
		journal = a.journalRepo
	}
	apiServer := api.NewServer(api.Options{
		Engine:         a.engine,
		Broker:         a.broker,
		Hub:            a.hub,
		Journal:        journal,
		InitialBalance: a.config.Dashboard.InitialBalance,
		MirrorEnabled:  a.redis != nil,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.broker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return apiServer.Start(gctx, a.config.APIPort)
	})

	g.Go(func() error {
		a.engine.Start(gctx)
		<-gctx.Done()
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		a.log.Info("🛑 Shutdown signal received, initiating graceful shutdown...")
	}
	if shutdownErr := a.shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

// setupHandlers registers every consumer of engine state events
func (a *App) setupHandlers() {
	a.handlerManager.RegisterHandler("sse", a.broker)
	a.handlerManager.RegisterHandler("websocket", a.hub)

	// Webhook cooldown checks hit Redis, so the notifying variant runs off
	// the publishing goroutine.
	if a.webhookManager != nil {
		status := handlers.NewAsyncHandler(handlers.NewSimulationStatusHandler(a.webhookManager), 16)
		a.startAsync("simulation-status", status)
	} else {
		a.handlerManager.RegisterHandler("simulation-status", handlers.NewSimulationStatusHandler(nil))
	}

	if a.redis != nil {
		mirror := handlers.NewAsyncHandler(cache.NewSnapshotCache(a.redis), 64)
		a.startAsync("redis-mirror", mirror)
	}
	if a.journalRepo != nil {
		journal := handlers.NewAsyncHandler(database.NewJournalHandler(a.journalRepo), 256)
		a.startAsync("journal", journal)
	}
}

func (a *App) startAsync(name string, h *handlers.AsyncHandler) {
	h.Start()
	a.asyncHandlers = append(a.asyncHandlers, h)
	a.handlerManager.RegisterHandler(name, h)
}

// shutdown stops components in dependency order with a timeout
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownComplete := make(chan struct{})
	go func() {
		defer close(shutdownComplete)

		if a.engine != nil {
			a.engine.Close()
		}
		if a.hub != nil {
			a.hub.Close()
		}
		for _, h := range a.asyncHandlers {
			h.Stop()
		}
		if a.webhookManager != nil {
			a.webhookManager.Wait()
		}

		// Close database connection
		if a.db != nil {
			if err := a.db.Close(); err != nil {
				a.log.WithError(err).Warn("Error closing database")
			} else {
				a.log.Info("✅ Database connection closed")
			}
		}

		// Close Redis connection
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				a.log.WithError(err).Warn("Error closing redis")
			} else {
				a.log.Info("✅ Redis connection closed")
			}
		}
	}()

	select {
	case <-shutdownComplete:
		a.log.Info("✅ Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		a.log.Warn("⚠️  Shutdown timeout exceeded, forcing exit")
		return fmt.Errorf("shutdown timeout")
	}
}
