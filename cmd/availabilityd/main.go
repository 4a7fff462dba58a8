package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"slotbook/internal/api"
	"slotbook/internal/bot"
	"slotbook/internal/config"
	"slotbook/internal/db"
	"slotbook/internal/events"
	"slotbook/internal/gcal"
	"slotbook/internal/metrics"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfgPath := os.Getenv("SLOTBOOK_CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	database, err := db.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	bus := events.NewBus()

	server := api.NewServer(database, rdb, api.Options{
		APIKey:          cfg.Server.APIKey,
		DefaultDuration: cfg.SlotDuration(),
		MaxRangeDays:    cfg.MaxRangeDays(),
		RateLimit:       cfg.Server.RateLimit,
		RateBurst:       cfg.Server.RateBurst,
		CacheTTL:        cfg.CacheTTL(),
	}, &logger)

	// Computed responses go stale whenever a calendar sync lands.
	bus.Subscribe(events.TypeBusySynced, func(events.Event) error {
		return server.FlushCache(ctx)
	})

	if cfg.Google.CredentialsFile != "" && cfg.Google.CalendarID != "" {
		client, err := gcal.NewClient(ctx, cfg.Google.CredentialsFile, cfg.Google.CalendarID)
		if err != nil {
			logger.Fatal().Err(err).Msg("create calendar client")
		}
		syncer := gcal.NewSyncer(client, database, bus, cfg.SyncInterval(), cfg.SyncHorizon(), &logger)
		go syncer.Run(ctx)
	}

	var tgBot *bot.Bot
	if cfg.Telegram.BotToken != "" {
		tgBot, err = bot.New(cfg.Telegram.BotToken, database, cfg.SlotDuration(), &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create bot error")
		}
		go tgBot.Start(ctx)
	}

	// Booking defaults follow the config file without a restart.
	if err := config.Watch(ctx, cfgPath, 30*time.Second, func(c *config.Config) {
		server.UpdateDefaults(c.SlotDuration(), c.MaxRangeDays())
		if tgBot != nil {
			tgBot.SetSlotDuration(c.SlotDuration())
		}
		logger.Info().
			Int("slot_duration", c.SlotDuration()).
			Int("max_range_days", c.MaxRangeDays()).
			Msg("config reloaded")
	}); err != nil {
		logger.Warn().Err(err).Msg("config watch disabled")
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, database, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: server.Handler()}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Str("addr", addr).Msg("availability service started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("http server error")
	}
}

func startHealthServer(ctx context.Context, port int, database *db.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := database.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
