package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/bot"
	"github.com/xaenox/school-bot/internal/classifier"
	"github.com/xaenox/school-bot/internal/kakao"
	"github.com/xaenox/school-bot/internal/provider"
	"github.com/xaenox/school-bot/internal/storage"
	"github.com/xaenox/school-bot/pkg/config"
)

func main() {
	configPath := flag.String("config", os.Getenv("SCHOOLBOT_CONFIG"), "path to config.yaml")
	flag.Parse()

	path := *configPath
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("School bot stopped", zap.Error(err))
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clock := func() time.Time { return time.Now().In(loc) }

	store, err := openStorage(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	defer store.Close()

	providers := buildProviders(cfg, clock, logger)

	b := bot.New(store, classifier.NewKeywordClassifier(), providers, logger)
	if cfg.OpenAI.APIKey != "" {
		logger.Info("GPT fallback classifier enabled", zap.String("model", cfg.OpenAI.Model))
		b.WithFallbackClassifier(classifier.NewGPTClassifier(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.BaseURL,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			cfg.OpenAI.Timeout,
			logger,
		))
	}

	handler := kakao.NewHandler(b, store, loc, logger)
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           kakao.NewEngine(cfg.Server.Mode, handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting webhook server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	case config.DriverSQLite:
		logger.Info("Using SQLite storage", zap.String("path", cfg.SQLite.Path))
		return storage.NewSQLiteStorage(ctx, cfg.SQLite.Path, logger)
	case config.DriverPostgres:
		logger.Info("Using PostgreSQL storage", zap.String("host", cfg.Postgres.Host))
		return storage.NewPostgresStorage(ctx, storage.DatabaseConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			DBName:   cfg.Postgres.DBName,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
	case config.DriverRedis:
		logger.Info("Using Redis storage")
		return storage.NewRedisStorage(ctx, storage.RedisConfig{
			URL:      cfg.Redis.URL,
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func buildProviders(cfg *config.Config, clock func() time.Time, logger *zap.Logger) bot.Providers {
	fetcher := provider.NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent)
	neis := provider.NewNEISClient(cfg.NEIS.BaseURL, cfg.NEIS.APIKey,
		cfg.School.NEISOfficeCode, cfg.School.NEISSchoolCode, fetcher)

	var providers bot.Providers

	switch cfg.Timetable.Source {
	case config.SourceNEIS:
		providers.Timetable = provider.NewNEISTimetable(neis)
	default:
		tt, err := provider.LoadStaticTimetable(cfg.Timetable.StaticFile, clock)
		if err != nil {
			// Keep serving meals and calendar; timetable replies report the failure.
			logger.Error("Static timetable unavailable", zap.Error(err), zap.String("path", cfg.Timetable.StaticFile))
		} else {
			providers.Timetable = tt
		}
	}

	switch cfg.Meal.Source {
	case config.SourceNEIS:
		providers.Meal = provider.NewNEISMeal(neis)
	default:
		providers.Meal = provider.NewKoreaChartsMeal(cfg.Meal.BaseURL, cfg.School.KoreaChartsCode, fetcher)
	}

	providers.Calendar = provider.NewSchoolInfoCalendar(cfg.Calendar.BaseURL, cfg.School.SchoolInfoID, fetcher)

	logger.Info("Providers configured",
		zap.String("timetable", cfg.Timetable.Source),
		zap.String("meal", cfg.Meal.Source),
		zap.String("calendar", cfg.Calendar.Source))
	return providers
}
