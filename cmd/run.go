package cmd

import (
	"context"
	"fmt"
	"time"

	"harvest/bot"
	"harvest/cache"
	"harvest/config"
	"harvest/database"
	"harvest/events"
	"harvest/infrastructure"
	"harvest/observability"
	"harvest/repository"
	"harvest/service"

	log "github.com/sirupsen/logrus"
)

// shutdownTimeout bounds the flush of queued writes and telemetry on exit
const shutdownTimeout = 15 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
	}).Info("Starting harvest bot...")

	// Registered as each resource comes up, released in reverse on any return
	var cleanup closers
	defer cleanup.run()

	// Metrics stay no-op unless enabled
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	cleanup.add("metrics", func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return metrics.Shutdown(shutdownCtx)
	})

	// Database and schema
	databaseURL := cfg.GetDatabaseURL()
	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanup.add("database", func() error {
		db.Close()
		return nil
	})
	log.Info("Database connection established")

	store, closeStore := newStore(ctx, cfg)
	cleanup.add("cache", func() error {
		closeStore()
		return nil
	})

	eventBus := events.NewBus()

	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := natsClient.Connect(connectCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		cleanup.add("nats", natsClient.Close)
		infrastructure.NewNATSEventForwarder(natsClient, metrics).Register(eventBus)
		log.Info("Forwarding events to NATS")
	}

	// Repositories and services
	economyRepo := repository.NewEconomyRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	persisterConfig := service.DefaultPersisterConfig()
	persisterConfig.Workers = cfg.PersistWorkers
	persisterConfig.QueueSize = cfg.PersistQueueSize
	persister := service.NewPersister(economyRepo, metrics, persisterConfig)
	// Queued writes drain before the stores they target go away
	cleanup.add("persister", func() error {
		persister.Close()
		eventBus.Wait()
		return nil
	})

	ledgerService := service.NewLedgerService(economyRepo, store, persister, eventBus, metrics)

	pools, err := service.DefaultOutcomePools()
	if err != nil {
		return fmt.Errorf("failed to load beg outcomes: %w", err)
	}
	begService := service.NewBegService(ledgerService, eventBus, pools, nil)

	settingsService := service.NewSettingsService(settingsRepo, store, eventBus, metrics, cfg.DefaultPrefix)

	discordBot, err := bot.New(bot.Config{
		Token:         cfg.DiscordToken,
		DefaultPrefix: cfg.DefaultPrefix,
		PrimaryColor:  cfg.PrimaryColor,
		IsOwner:       cfg.IsOwner,
	}, bot.Services{
		Ledger:   ledgerService,
		Beg:      begService,
		Settings: settingsService,
	}, metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	// Stop taking commands before draining their writes
	cleanup.add("discord", discordBot.Close)
	log.Info("Discord bot is running")

	<-ctx.Done()
	log.Info("Shutting down...")
	return nil
}

// closers releases resources in reverse order of registration
type closers []namedCloser

type namedCloser struct {
	name  string
	close func() error
}

func (c *closers) add(name string, fn func() error) {
	*c = append(*c, namedCloser{name: name, close: fn})
}

// run closes everything registered, logging failures and carrying on
func (c *closers) run() {
	for i := len(*c) - 1; i >= 0; i-- {
		closer := (*c)[i]
		if err := closer.close(); err != nil {
			log.WithFields(log.Fields{
				"resource": closer.name,
				"error":    err,
			}).Warn("Error during shutdown")
		}
	}
	*c = nil
	log.Info("Shutdown completed")
}

// newStore connects to redis, falling back to an in-process cache when no
// redis is configured or reachable
func newStore(ctx context.Context, cfg *config.Config) (cache.Store, func()) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set, using in-memory cache")
		return cache.NewMemoryStore(cfg.CacheTTL), func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := cache.NewRedisClient(pingCtx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, using in-memory cache")
		return cache.NewMemoryStore(cfg.CacheTTL), func() {}
	}

	return cache.NewRedisStore(client, cfg.CacheTTL), func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Error closing redis client")
		}
	}
}

func configureLogging(cfg *config.Config) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
